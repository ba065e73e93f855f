package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vkovalov/chatline/internal/auth"
)

// APIHandlers provides HTTP handlers for the JSON API endpoints.
type APIHandlers struct {
	auth *auth.Service
	log  *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(authService *auth.Service, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{auth: authService, log: logger}
}

// TokenResponse represents the token issuance response body.
type TokenResponse struct {
	Token string `json:"token"`
}

// MeResponse represents the authenticated identity response body.
type MeResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IssueToken exchanges a valid session cookie for a signed bearer token.
// POST /api/token
func (h *APIHandlers) IssueToken(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing session"})
		return
	}

	userID, err := h.auth.ValidateSession(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidSession) {
			h.log.Error().Err(err).Msg("session validation failed")
		}
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid session"})
		return
	}

	apiToken, err := h.auth.IssueAPIToken(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to issue api token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: apiToken})
}

// Me returns the identity bound to the bearer token.
// GET /api/me
func (h *APIHandlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, MeResponse{
		UserID:   c.GetInt64(ContextKeyUserID),
		Username: c.GetString(ContextKeyUsername),
	})
}
