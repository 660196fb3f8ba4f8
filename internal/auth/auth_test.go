package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testEmail    = "admin@whip-helmets.com"
	testPassword = "correct horse"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	store := NewMemStore()
	require.NoError(t, store.AddPassword(testEmail, testPassword, bcrypt.MinCost))

	s := &Server{Store: store, JWT: NewTokenMaker("test-secret"), TTL: time.Minute}
	r := chi.NewRouter()
	r.Mount("/admin", s.Routes())
	return s, r
}

func login(t *testing.T, h http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenMaker("s")
	tok, err := tm.New(testEmail, RoleAdmin, time.Minute)
	require.NoError(t, err)

	c, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, testEmail, c.Email)
	assert.Equal(t, RoleAdmin, c.Role)
	assert.Equal(t, issuer, c.Issuer)

	_, err = NewTokenMaker("other").Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpires(t *testing.T) {
	tm := NewTokenMaker("s")
	base := time.Now()
	tm.now = func() time.Time { return base }

	tok, err := tm.New(testEmail, RoleAdmin, time.Minute)
	require.NoError(t, err)

	tm.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = tm.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretRefusesTokens(t *testing.T) {
	_, err := NewTokenMaker("").New(testEmail, RoleAdmin, time.Minute)
	assert.Error(t, err)
}

func TestMemStoreRejectsBadHash(t *testing.T) {
	assert.Error(t, NewMemStore().AddHash(testEmail, "not-a-hash"))
}

func TestLoginAndWhoAmI(t *testing.T) {
	_, h := newTestServer(t)

	rec := login(t, h, "ADMIN@whip-helmets.com", testPassword)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(60), resp.ExpiresIn)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), testEmail)

	req = httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	_, h := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, login(t, h, testEmail, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, "other@whip-helmets.com", testPassword).Code)
	assert.Equal(t, http.StatusBadRequest, login(t, h, "not-an-email", testPassword).Code)
}

func TestRequireAdmin(t *testing.T) {
	tm := NewTokenMaker("s")
	h := RequireAdmin(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(c.Email))
	}))

	do := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("garbage"))

	viewer, err := tm.New("x@y.z", "viewer", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(viewer))

	admin, err := tm.New(testEmail, RoleAdmin, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(admin))
}
