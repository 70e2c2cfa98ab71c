package auth_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plajta/depo-service/internal/auth"
	"github.com/plajta/depo-service/internal/config"
	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/internal/pocketbase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	result pocketbase.AuthResult
	err    error
}

func (f *fakeAuthenticator) AuthWithPassword(ctx context.Context, collection, identity, password string) (pocketbase.AuthResult, error) {
	return f.result, f.err
}

// собирает непроверяемый JWT с нужным exp, подпись сервису не важна
func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{"exp": exp.Unix(), "id": "user-1"})
	require.NoError(t, err)
	return fmt.Sprintf("%s.%s.sig", header, base64.RawURLEncoding.EncodeToString(payload))
}

func newAuthService(pb auth.Authenticator) *auth.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(logger, pb, config.Session{
		Secret: "test-secret",
		MaxAge: 30 * 24 * time.Hour,
	})
}

// переносит cookie из ответа в следующий запрос
func withCookies(t *testing.T, res *httptest.ResponseRecorder, req *http.Request) *http.Request {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestService_LoginPersistsSession(t *testing.T) {
	token := testToken(t, time.Now().Add(time.Hour))
	svc := newAuthService(&fakeAuthenticator{
		result: pocketbase.AuthResult{
			Token:  token,
			Record: pocketbase.AuthRecord{ID: "user-1", Name: "Jana", Email: "jana@example.com"},
		},
	})

	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	user, err := svc.Login(res, req, "jana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Jana", user.Name)
	require.NotEmpty(t, res.Result().Cookies(), "login must set a session cookie")

	// последующий запрос с той же cookie аутентифицирован без повторного входа
	next := withCookies(t, res, httptest.NewRequest(http.MethodGet, "/me", nil))
	got, ok := svc.CurrentUser(next)
	require.True(t, ok)
	assert.Equal(t, "Jana", got.Name)
	assert.Equal(t, "user-1", got.ID)
}

func TestService_LoginRejected(t *testing.T) {
	svc := newAuthService(&fakeAuthenticator{err: pocketbase.ErrInvalidCredentials})

	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	_, err := svc.Login(res, req, "jana@example.com", "wrong")
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	// неуспешный вход не создаёт сессию
	next := withCookies(t, res, httptest.NewRequest(http.MethodGet, "/me", nil))
	_, ok := svc.CurrentUser(next)
	assert.False(t, ok)
}

func TestService_Logout(t *testing.T) {
	token := testToken(t, time.Now().Add(time.Hour))
	svc := newAuthService(&fakeAuthenticator{
		result: pocketbase.AuthResult{Token: token, Record: pocketbase.AuthRecord{ID: "user-1", Name: "Jana"}},
	})

	loginRes := httptest.NewRecorder()
	_, err := svc.Login(loginRes, httptest.NewRequest(http.MethodPost, "/login", nil), "jana@example.com", "secret")
	require.NoError(t, err)

	logoutRes := httptest.NewRecorder()
	logoutReq := withCookies(t, loginRes, httptest.NewRequest(http.MethodPost, "/logout", nil))
	svc.Logout(logoutRes, logoutReq)

	cleared := logoutRes.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Negative(t, cleared[0].MaxAge, "logout must expire the cookie")

	// запрос с очищенной cookie анонимен
	next := withCookies(t, logoutRes, httptest.NewRequest(http.MethodGet, "/me", nil))
	_, ok := svc.CurrentUser(next)
	assert.False(t, ok)
}

func TestService_CurrentUser_ExpiredToken(t *testing.T) {
	token := testToken(t, time.Now().Add(-time.Hour))
	svc := newAuthService(&fakeAuthenticator{
		result: pocketbase.AuthResult{Token: token, Record: pocketbase.AuthRecord{ID: "user-1", Name: "Jana"}},
	})

	res := httptest.NewRecorder()
	_, err := svc.Login(res, httptest.NewRequest(http.MethodPost, "/login", nil), "jana@example.com", "secret")
	require.NoError(t, err)

	next := withCookies(t, res, httptest.NewRequest(http.MethodGet, "/me", nil))
	_, ok := svc.CurrentUser(next)
	assert.False(t, ok, "expired token must not authenticate")
}

func TestService_CurrentUser_NoSession(t *testing.T) {
	svc := newAuthService(&fakeAuthenticator{})
	_, ok := svc.CurrentUser(httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.False(t, ok)
}
