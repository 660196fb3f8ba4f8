// Package chatbot answers shopper questions from a fixed keyword table.
package chatbot

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed responses.yaml
var defaultKnowledge []byte

// wholeWordMax is the longest keyword still matched as a whole word only.
// Longer keywords match anywhere in the message.
const wholeWordMax = 3

type Topic struct {
	Key      string   `yaml:"key"`
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
}

type Knowledge struct {
	Topics   []Topic  `yaml:"topics"`
	Defaults []string `yaml:"defaults"`
}

func ParseKnowledge(raw []byte) (Knowledge, error) {
	var kb Knowledge
	if err := yaml.Unmarshal(raw, &kb); err != nil {
		return Knowledge{}, fmt.Errorf("decode knowledge: %w", err)
	}
	if len(kb.Defaults) == 0 {
		return Knowledge{}, errors.New("knowledge needs at least one default reply")
	}
	seen := make(map[string]struct{}, len(kb.Topics))
	for i, t := range kb.Topics {
		if t.Key == "" || t.Response == "" {
			return Knowledge{}, fmt.Errorf("topic %d: key and response required", i)
		}
		if _, dup := seen[t.Key]; dup {
			return Knowledge{}, fmt.Errorf("topic %q defined twice", t.Key)
		}
		seen[t.Key] = struct{}{}
		for j, kw := range t.Keywords {
			kb.Topics[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	return kb, nil
}

// DefaultKnowledge is the embedded shop table.
func DefaultKnowledge() Knowledge {
	kb, err := ParseKnowledge(defaultKnowledge)
	if err != nil {
		panic(err)
	}
	return kb
}

type Reply struct {
	Topic string `json:"topic,omitempty"`
	Text  string `json:"text"`
}

type Bot struct {
	kb    Knowledge
	byKey map[string]Topic
	intn  func(n int) int
}

// New builds a bot over kb. intn picks among the default replies; it must
// return a value in [0, n).
func New(kb Knowledge, intn func(n int) int) *Bot {
	b := &Bot{kb: kb, byKey: make(map[string]Topic, len(kb.Topics)), intn: intn}
	for _, t := range kb.Topics {
		b.byKey[t.Key] = t
	}
	return b
}

// Reply answers msg with the first topic that has a matching keyword, or one
// of the default replies.
func (b *Bot) Reply(msg string) Reply {
	lower := strings.ToLower(msg)
	words := wordSet(lower)

	for _, t := range b.kb.Topics {
		for _, kw := range t.Keywords {
			if matches(lower, words, kw) {
				return Reply{Topic: t.Key, Text: t.Response}
			}
		}
	}
	return Reply{Text: b.kb.Defaults[b.pick(len(b.kb.Defaults))]}
}

// Suggest answers a suggestion button by topic key.
func (b *Bot) Suggest(key string) (Reply, bool) {
	t, ok := b.byKey[key]
	if !ok {
		return Reply{}, false
	}
	return Reply{Topic: t.Key, Text: t.Response}, true
}

// Label is the question text shown for a suggestion key.
func (b *Bot) Label(key string) string {
	return b.byKey[key].Label
}

func (b *Bot) Topics() []Topic {
	return append([]Topic(nil), b.kb.Topics...)
}

func (b *Bot) pick(n int) int {
	if b.intn == nil || n <= 1 {
		return 0
	}
	i := b.intn(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}

func matches(lower string, words map[string]struct{}, kw string) bool {
	if kw == "" {
		return false
	}
	if utf8.RuneCountInString(kw) <= wholeWordMax {
		_, ok := words[kw]
		return ok
	}
	return strings.Contains(lower, kw)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
