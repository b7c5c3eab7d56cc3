package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoinvoice/internal/middleware"
	"autoinvoice/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler serves the Google sign-in flow and session endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login redirects the browser to the Google consent page.
// GET /api/v1/auth/google/login
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.LoginURL(state))
}

// Callback completes the OAuth exchange and returns a session token.
// GET /api/v1/auth/google/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		RespondError(c, http.StatusUnauthorized, "OAUTH_DENIED", "google sign-in was denied")
		return
	}

	state := c.Query("state")
	wantState, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != wantState {
		RespondError(c, http.StatusUnauthorized, "INVALID_STATE", "oauth state mismatch")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_CODE", "authorization code is required")
		return
	}

	token, session, err := h.authService.HandleCallback(c.Request.Context(), code)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"token":      token,
		"email":      session.Email,
		"expires_at": session.ExpiresAt,
	})
}

// Me returns the identity behind the presented token.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	RespondOK(c, gin.H{
		"user_id": claims.Subject,
		"email":   claims.Email,
	})
}

// Logout deletes the server-side session.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "logged out"})
}
