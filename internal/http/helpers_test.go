package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hellosession/internal/config"
	"hellosession/internal/repos"
	"hellosession/internal/server"
)

// newTestServer builds the real app over a throwaway SQLite file.
func newTestServer(t *testing.T, mutate ...func(*config.Config)) *server.Server {
	t.Helper()
	cfg := config.Default()
	cfg.DB.DSN = filepath.Join(t.TempDir(), "test.db")
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Security.LoginLimit = 1000
	for _, f := range mutate {
		f(&cfg)
	}
	db, err := repos.OpenDB(cfg.DB.Driver, cfg.DB.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return server.New(cfg, db, io.Discard)
}

func formRequest(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func do(t *testing.T, srv *server.Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := srv.App.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func extractCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func register(t *testing.T, srv *server.Server, name, email, password string) {
	t.Helper()
	_, body := do(t, srv, formRequest("/register", url.Values{
		"name": {name}, "email": {email}, "password": {password},
	}))
	require.Equal(t, "success", body)
}

// login returns the session cookie issued for a successful login.
func login(t *testing.T, srv *server.Server, email, password string) *http.Cookie {
	t.Helper()
	resp, _ := do(t, srv, formRequest("/login", url.Values{"email": {email}, "password": {password}}))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	sid := extractCookie(resp, "sid")
	require.NotNil(t, sid, "session cookie missing")
	return sid
}
