package view

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// CleanText strips markup from user-edited text. The result is plain text;
// templates escape it again on output.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
