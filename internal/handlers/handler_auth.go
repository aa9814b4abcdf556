package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/dto"
	"github.com/shikshaspace/user-service/internal/metrics"
	"github.com/shikshaspace/user-service/internal/middleware"
)

// AuthHandler handles credential authentication requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AuthSvcFacade) *AuthHandler {
	return &AuthHandler{authService: as}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(rg *gin.Engine, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services.Auth)
	oh := NewGoogleOAuthHandler(services.OAuth2)

	// Credential endpoints are rate limited per IP: 10 requests per minute.
	rate, _ := limiter.NewRateFromFormatted("10-M")
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)
	limitMiddleware := limitergin.NewMiddleware(ipLimiter)

	auth := rg.Group("/api/v1/auth")
	{
		auth.POST("/register", limitMiddleware, h.Register)
		auth.POST("/login", limitMiddleware, h.Login)
		auth.POST("/refresh", limitMiddleware, h.Refresh)
		auth.POST("/google", limitMiddleware, oh.GoogleSignIn)
	}
}

// Register godoc
// @Summary Register new user
// @Description Creates the account on the identity provider, persists the local identity, and returns tokens from an implicit login.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Username or email already registered"
// @Failure 503 {object} ErrorResponse "Identity provider unavailable"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		metrics.RecordAuthAttempt("register", false)
		logger.Warn("Registration failed", slog.String("username", req.Username), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	metrics.RecordAuthAttempt("register", true)
	logger.Info("User registered", slog.String("user_id", resp.UserID), slog.String("username", resp.Username))
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary User login
// @Description Exchanges credentials for an access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid username or password"
// @Failure 404 {object} ErrorResponse "Identity has no local record"
// @Failure 503 {object} ErrorResponse "Identity provider unavailable"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordAuthAttempt("login", false)
		logger.Warn("Login failed", slog.String("username", req.Username), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	metrics.RecordAuthAttempt("login", true)
	logger.Info("User logged in", slog.String("user_id", resp.UserID))
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Refresh tokens
// @Description Exchanges a refresh token for a new access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Refresh token expired or revoked"
// @Failure 503 {object} ErrorResponse "Identity provider unavailable"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		metrics.RecordAuthAttempt("refresh", false)
		logger.Warn("Token refresh failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	metrics.RecordAuthAttempt("refresh", true)
	c.JSON(http.StatusOK, resp)
}
