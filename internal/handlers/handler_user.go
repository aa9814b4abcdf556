package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/dto"
	"github.com/shikshaspace/user-service/internal/middleware"
)

// userHandler handles HTTP requests for the authenticated user's profile.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{userService: us}
}

// registerUserRoutes registers the profile routes. The group carries the auth
// middleware, so every request arrives with a verified subject in context.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("/me", h.getProfile)
		users.PUT("/me", h.updateProfile)
		users.DELETE("/me", h.deleteUser)
	}
}

// getProfile godoc
// @Summary Get own profile
// @Description Returns the authenticated user's profile. If the identity exists at the provider but has no local record, one is created from the provider profile.
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Identity not found at the provider"
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) getProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	subjectID, ok := middleware.GetSubjectFromContext(c.Request.Context())
	if !ok {
		logger.Error("Subject not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), subjectID)
	if err != nil {
		logger.Error("Failed to load profile", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserProfileResponse(user))
}

// updateProfile godoc
// @Summary Update own profile
// @Description Applies the provided profile fields. Absent fields are left untouched. Profile completeness is recomputed on every update.
// @Tags users
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} dto.UserProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (h *userHandler) updateProfile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	subjectID, ok := middleware.GetSubjectFromContext(c.Request.Context())
	if !ok {
		logger.Error("Subject not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), subjectID, req)
	if err != nil {
		logger.Error("Failed to update profile", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("Profile updated", slog.String("user_id", user.UserID), slog.Bool("profile_complete", user.IsProfileComplete))
	c.JSON(http.StatusOK, dto.ToUserProfileResponse(user))
}

// deleteUser godoc
// @Summary Delete own account
// @Description Removes the identity in two phases: the identity provider account first, then the local record. The local record survives if the provider deletion fails.
// @Tags users
// @Produce json
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Identity provider unavailable"
// @Security BearerAuth
// @Router /users/me [delete]
func (h *userHandler) deleteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	subjectID, ok := middleware.GetSubjectFromContext(c.Request.Context())
	if !ok {
		logger.Error("Subject not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), subjectID); err != nil {
		logger.Error("Failed to delete user", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	logger.Info("User deleted", slog.String("subject_id", subjectID))
	c.Status(http.StatusNoContent)
}
