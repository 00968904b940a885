package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/renderer"
	"github.com/Pakhtun2017/compliance-checker/internal/services"
	"github.com/Pakhtun2017/compliance-checker/internal/session"
	"github.com/Pakhtun2017/compliance-checker/internal/utils"
	"github.com/Pakhtun2017/compliance-checker/views"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testBucket = "reports"

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	r, err := renderer.New(views.FS)
	require.NoError(t, err)
	e.Renderer = r
	return e
}

func newTestSessions(t *testing.T) *session.CookieStore {
	t.Helper()
	codec, err := session.NewCodec("handlers-test-secret")
	require.NoError(t, err)
	return session.NewCookieStore(codec, time.Hour)
}

func newTestService(store services.ObjectStore) *services.DashboardService {
	return services.NewDashboardService(store, testBucket, time.Second, zerolog.Nop())
}

// withSession places sess in the context the way the auth middleware does
func withSession(c echo.Context, sess *session.Session) {
	c.Set(utils.ContextKeySession, sess)
}

// savedSession decodes the session cookie written to rec
func savedSession(t *testing.T, store session.Store, rec *httptest.ResponseRecorder) *session.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	found := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == utils.CookieName {
			req.AddCookie(cookie)
			found = true
		}
	}
	require.True(t, found, "no session cookie written")

	sess, err := store.Get(echo.New().NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	return sess
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == utils.CookieName {
			return true
		}
	}
	return false
}

func multipartRequest(t *testing.T, target, field, filename, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file here"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}
