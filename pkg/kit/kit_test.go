package kit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_SlidingWindow(t *testing.T) {
	l := NewIPRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("a"))
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too many requests", body.Error)
}

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Qty   int    `json:"qty" validate:"min=1,max=5"`
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		fields map[string]string
		bad    bool
	}{
		{name: "ok", body: `{"email":"a@b.com","qty":2}`},
		{name: "unknown field", body: `{"email":"a@b.com","qty":2,"x":1}`, bad: true},
		{name: "trailing data", body: `{"email":"a@b.com","qty":2}{}`, bad: true},
		{name: "invalid", body: `{"email":"nope","qty":9}`, fields: map[string]string{
			"email": "must be a valid email",
			"qty":   "must be at most 5",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst sample
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)

			switch {
			case tc.bad:
				require.ErrorIs(t, err, ErrBadJSON)
			case tc.fields != nil:
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.fields, verr.Fields)
			default:
				require.NoError(t, err)
				assert.Equal(t, 2, dst.Qty)
			}
		})
	}
}

func TestWriteDecodeError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	WriteDecodeError(rec, req, &ValidationError{Fields: map[string]string{"qty": "is required"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, map[string]any{"qty": "is required"}, body.Details)
}

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "closed without token", token: "", header: "Bearer x", want: http.StatusForbidden},
		{name: "missing header", token: "s3cret", want: http.StatusForbidden},
		{name: "wrong token", token: "s3cret", header: "Bearer nope", want: http.StatusForbidden},
		{name: "accepted", token: "s3cret", header: "Bearer s3cret", want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			MetricsAuth(tc.token)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestWriteAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAttachment(rec, "products.json", "application/json", []byte(`[]`))

	assert.Equal(t, `attachment; filename="products.json"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "[]", rec.Body.String())
}
