package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnauthenticatedRequestsNeverReachTheStore(t *testing.T) {
	store := newMemoryStore()
	store.seed("keep.json", "{}")
	b := newApp(t, store)

	pages := map[string]func() page{
		"GET /":         func() page { return b.get("/") },
		"GET /download": func() page { return b.get("/download?key=keep.json") },
		"POST /delete": func() page {
			return b.postForm("/delete", url.Values{"key": {"keep.json"}})
		},
		"POST /upload": func() page { return b.upload("", "evil.json", "{}") },
	}

	for name, request := range pages {
		t.Run(name, func(t *testing.T) {
			p := request()

			assert.Equal(t, http.StatusSeeOther, p.status)
			assert.Equal(t, "/login", p.location)
		})
	}

	assert.Zero(t, store.callCount())
	assert.True(t, store.has("keep.json"))
	assert.False(t, store.has("evil.json"))
}

func TestWrongPasswordLeavesSessionUnauthenticated(t *testing.T) {
	store := newMemoryStore()
	b := newApp(t, store)

	for _, password := range []string{"wrong", "", " " + testPassword, testPassword + "\n"} {
		p := b.login(password)

		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "Invalid password.")

		dashboard := b.get("/")
		assert.Equal(t, http.StatusSeeOther, dashboard.status)
		assert.Equal(t, "/login", dashboard.location)
	}

	assert.Zero(t, store.callCount())
}

func TestLoginRequiresCSRFToken(t *testing.T) {
	b := newApp(t, newMemoryStore())
	b.get("/login")

	p := b.postForm("/login", url.Values{"password": {testPassword}})

	assert.Equal(t, http.StatusBadRequest, p.status)
	assert.Equal(t, http.StatusSeeOther, b.get("/").status)
}

func TestAuthenticatedPostWithoutCSRFTokenIsRejected(t *testing.T) {
	store := newMemoryStore()
	store.seed("keep.json", "{}")
	b := newApp(t, store)
	b.mustLogin()

	p := b.postForm("/delete", url.Values{"key": {"keep.json"}})

	assert.Equal(t, http.StatusBadRequest, p.status)
	assert.True(t, store.has("keep.json"))

	forged := b.postForm("/delete", url.Values{"key": {"keep.json"}, "_csrf": {"forged"}})
	assert.Equal(t, http.StatusForbidden, forged.status)
	assert.True(t, store.has("keep.json"))
}

func TestLoginPageRedirectsOnceAuthenticated(t *testing.T) {
	b := newApp(t, newMemoryStore())
	b.mustLogin()

	p := b.get("/login")

	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/", p.location)
}

func TestLogoutEndsSession(t *testing.T) {
	b := newApp(t, newMemoryStore())
	b.mustLogin()

	p := b.get("/logout")
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/login", p.location)

	dashboard := b.get("/")
	assert.Equal(t, http.StatusSeeOther, dashboard.status)
	assert.Equal(t, "/login", dashboard.location)
}

func TestTamperedSessionCookieIsRejected(t *testing.T) {
	b := newApp(t, newMemoryStore())
	b.mustLogin()

	u, err := url.Parse(b.server.URL)
	require.NoError(t, err)
	for _, cookie := range b.client.Jar.Cookies(u) {
		if cookie.Name == "dashboard_session" {
			cookie.Value = strings.ToUpper(cookie.Value)
			b.client.Jar.SetCookies(u, []*http.Cookie{cookie})
		}
	}

	p := b.get("/")
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/login", p.location)
}

func TestRedisSessionsAreRevokedOnLogout(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Session.RedisURL = "redis://" + mr.Addr()

	sessions, closeSessions, err := newSessionStore(context.Background(), cfg.Session)
	require.NoError(t, err)
	defer closeSessions()
	require.IsType(t, &session.RedisStore{}, sessions)

	b := newBrowser(t, cfg, newMemoryStore(), sessions)
	b.mustLogin()
	require.Len(t, mr.Keys(), 1)

	b.get("/logout")
	assert.Empty(t, mr.Keys())
	assert.Equal(t, http.StatusSeeOther, b.get("/").status)
}

func TestRedisSessionsExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Session.RedisURL = "redis://" + mr.Addr()
	cfg.Session.TTL = time.Minute

	sessions, closeSessions, err := newSessionStore(context.Background(), cfg.Session)
	require.NoError(t, err)
	defer closeSessions()

	b := newBrowser(t, cfg, newMemoryStore(), sessions)
	b.mustLogin()

	mr.FastForward(2 * time.Minute)

	p := b.get("/")
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/login", p.location)
}
