package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"assistant/models"
	"assistant/pkg/database"
	"assistant/pkg/repository"
	"assistant/pkg/session"
)

type authEnv struct {
	router   *gin.Engine
	sessions *session.Manager
	user     *models.User
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := database.OpenTest(t)
	users := repository.NewUserRepo(db)
	u := &models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, users.CreateWithProfile(context.Background(), u, ""))

	sessions := session.NewManager("secret", time.Hour, session.NewMemoryStore())
	r := gin.New()
	r.Use(Session(sessions, users, false, zap.NewNop()))
	r.GET("/api/me", RequireAPIUser(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	r.GET("/page", RequirePageUser(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return &authEnv{router: r, sessions: sessions, user: u}
}

func (e *authEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRequireAPIUserAnonymous(t *testing.T) {
	e := newAuthEnv(t)
	w := e.do(httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication credentials were not provided."}`, w.Body.String())
}

func TestSessionFromCookieAndBearer(t *testing.T) {
	e := newAuthEnv(t)
	raw, _, err := e.sessions.Issue(e.user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
	w := e.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	w = e.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevokedSessionIsAnonymous(t *testing.T) {
	e := newAuthEnv(t)
	raw, s, err := e.sessions.Issue(e.user.ID)
	require.NoError(t, err)
	require.NoError(t, e.sessions.Revoke(context.Background(), s))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
	w := e.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var cleared bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "stale session cookie is cleared")
}

func TestSessionForDeletedUser(t *testing.T) {
	e := newAuthEnv(t)
	raw, _, err := e.sessions.Issue(e.user.ID + 100)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, e.do(req).Code)
}

func TestRequirePageUserRedirects(t *testing.T) {
	e := newAuthEnv(t)
	w := e.do(httptest.NewRequest(http.MethodGet, "/page", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/", w.Header().Get("Location"))
}
