package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vkovalov/chatline/internal/auth"
	"github.com/vkovalov/chatline/web"
)

// PageHandlers serves the login/register/chat pages and the form flow
// around them.
type PageHandlers struct {
	auth *auth.Service
	log  *zerolog.Logger
}

// NewPageHandlers creates a new page handlers instance.
func NewPageHandlers(authService *auth.Service, logger *zerolog.Logger) *PageHandlers {
	return &PageHandlers{auth: authService, log: logger}
}

func (h *PageHandlers) servePage(c *gin.Context, name string) {
	data, err := web.Static.ReadFile("static/" + name)
	if err != nil {
		h.log.Error().Err(err).Str("page", name).Msg("missing embedded page")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

func redirectWithMessage(c *gin.Context, path, message string, success bool) {
	q := url.Values{}
	q.Set("message", message)
	if success {
		q.Set("success", "true")
	} else {
		q.Set("success", "false")
	}
	c.Redirect(http.StatusFound, path+"?"+q.Encode())
}

// RegisterForm serves the registration page.
// GET /register
func (h *PageHandlers) RegisterForm(c *gin.Context) {
	h.servePage(c, "register.html")
}

// LoginForm serves the login page.
// GET /login
func (h *PageHandlers) LoginForm(c *gin.Context) {
	h.servePage(c, "login.html")
}

// Register handles the registration form.
// POST /register
func (h *PageHandlers) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := h.auth.Register(c.Request.Context(), username, password)
	switch {
	case err == nil:
		h.log.Info().Str("username", username).Msg("user registered")
		redirectWithMessage(c, "/login", "Registration successful", true)
	case errors.Is(err, auth.ErrUserExists):
		redirectWithMessage(c, "/register", "Username already taken", false)
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
		redirectWithMessage(c, "/register", "Invalid username or password", false)
	default:
		h.log.Error().Err(err).Str("username", username).Msg("failed to register user")
		redirectWithMessage(c, "/register", "Registration failed", false)
	}
}

// Login handles the login form, minting a session token on success.
// POST /login
func (h *PageHandlers) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	token, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.log.Error().Err(err).Str("username", username).Msg("login failed")
		}
		redirectWithMessage(c, "/login", "Invalid credentials", false)
		return
	}

	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	h.log.Info().Str("username", username).Msg("user logged in")
	c.Redirect(http.StatusFound, "/")
}

// Index serves the chat page to clients holding a valid session.
// GET /
func (h *PageHandlers) Index(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil {
		if _, vErr := h.auth.ValidateSession(c.Request.Context(), token); vErr == nil {
			h.servePage(c, "index.html")
			return
		}
	}

	redirectWithMessage(c, "/login", "Please log in", false)
}

// Logout revokes the session server-side and expires the cookie.
// POST /logout
func (h *PageHandlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.log.Warn().Err(err).Msg("failed to revoke session")
		}
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	redirectWithMessage(c, "/login", "Logged out", true)
}
