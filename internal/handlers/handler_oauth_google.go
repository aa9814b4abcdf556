package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/dto"
	"github.com/shikshaspace/user-service/internal/metrics"
	"github.com/shikshaspace/user-service/internal/middleware"
)

// GoogleOAuthHandler handles federated Google sign-in requests.
type GoogleOAuthHandler struct {
	oauth2Service portssvc.OAuth2SvcFacade
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(os portssvc.OAuth2SvcFacade) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{oauth2Service: os}
}

// GoogleSignIn godoc
// @Summary Sign in with Google
// @Description Validates a Google-issued ID token, provisions the identity on first sign-in, and returns an access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param signin body dto.GoogleSignInRequest true "Google ID token"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired ID token"
// @Failure 503 {object} ErrorResponse "Identity provider unavailable"
// @Router /auth/google [post]
func (h *GoogleOAuthHandler) GoogleSignIn(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.oauth2Service.SignInWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		metrics.RecordAuthAttempt("google", false)
		logger.Warn("Google sign-in failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	metrics.RecordAuthAttempt("google", true)
	logger.Info("Google sign-in succeeded", slog.String("user_id", resp.UserID), slog.String("email", resp.Email))
	c.JSON(http.StatusOK, resp)
}
