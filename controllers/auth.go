package controllers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assistant/middleware"
	"assistant/models"
	"assistant/pkg/repository"
	"assistant/pkg/session"
	"assistant/web"
)

const (
	pageLogin    = "login"
	pageRegister = "register"
	pageChat     = "chat"

	maxUsernameLen = 150
)

type pageData struct {
	Page      string
	Error     string
	Username  string
	CSRFToken string
	User      *models.User
	IsAdmin   bool
}

func render(c *gin.Context, status int, data pageData) {
	data.CSRFToken = middleware.CSRFToken(c)
	c.HTML(status, web.PageTemplate, data)
}

// Auth groups the form handlers behind /login/, /register/ and /logout/.
type Auth struct {
	Users        *repository.UserRepo
	Sessions     *session.Manager
	SecureCookie bool
	Log          *zap.Logger
}

func (a *Auth) LoginPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, pageData{Page: pageLogin})
}

func (a *Auth) Login(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	username := c.PostForm("username")
	password := c.PostForm("password")
	invalid := pageData{Page: pageLogin, Username: username, Error: "Invalid username or password."}

	u, err := a.Users.GetByUsername(c.Request.Context(), username)
	if errors.Is(err, repository.ErrNotFound) {
		render(c, http.StatusOK, invalid)
		return
	}
	if err != nil {
		a.Log.Error("login lookup", zap.Error(err))
		render(c, http.StatusInternalServerError, pageData{Page: pageLogin, Username: username, Error: "Something went wrong. Please try again."})
		return
	}
	if !u.CheckPassword(password) {
		render(c, http.StatusOK, invalid)
		return
	}

	if err := a.Users.TouchLastLogin(c.Request.Context(), u); err != nil {
		a.Log.Warn("update last_login", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	a.startSession(c, u, pageLogin)
}

func (a *Auth) RegisterPage(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, pageData{Page: pageRegister})
}

func (a *Auth) Register(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	confirm := c.PostForm("password_confirm")
	fail := func(status int, msg string) {
		render(c, status, pageData{Page: pageRegister, Username: username, Error: msg})
	}

	if username == "" || password == "" {
		fail(http.StatusOK, "Username and password are required.")
		return
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		fail(http.StatusOK, "Username must be 150 characters or fewer.")
		return
	}
	if password != confirm {
		fail(http.StatusOK, "Passwords do not match.")
		return
	}

	u := &models.User{Username: username}
	if err := u.SetPassword(password); err != nil {
		a.Log.Error("hash password", zap.Error(err))
		fail(http.StatusInternalServerError, "Error creating account.")
		return
	}
	err := a.Users.CreateWithProfile(c.Request.Context(), u, models.DefaultProfileRole)
	if errors.Is(err, repository.ErrUsernameTaken) {
		fail(http.StatusOK, "Username already exists.")
		return
	}
	if err != nil {
		a.Log.Error("create user", zap.String("username", username), zap.Error(err))
		fail(http.StatusInternalServerError, "Error creating account.")
		return
	}

	a.Log.Info("user registered", zap.Uint("user_id", u.ID))
	a.startSession(c, u, pageRegister)
}

func (a *Auth) startSession(c *gin.Context, u *models.User, page string) {
	token, _, err := a.Sessions.Issue(u.ID)
	if err != nil {
		a.Log.Error("issue session", zap.Uint("user_id", u.ID), zap.Error(err))
		render(c, http.StatusInternalServerError, pageData{Page: page, Username: u.Username, Error: "Something went wrong. Please try again."})
		return
	}
	middleware.SetSessionCookie(c, token, a.Sessions.TTL(), a.SecureCookie)
	c.Redirect(http.StatusFound, "/")
}

func (a *Auth) Logout(c *gin.Context) {
	if s := middleware.CurrentSession(c); s != nil {
		if err := a.Sessions.Revoke(c.Request.Context(), s); err != nil {
			a.Log.Warn("revoke session", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(c, a.SecureCookie)
	c.Redirect(http.StatusFound, "/login/")
}
