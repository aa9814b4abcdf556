package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikshaspace/user-service/internal/apperrors"
)

// ErrorResponse is the generic error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusForKind maps the error taxonomy onto HTTP status codes.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuthenticationFailed, apperrors.KindTokenRefreshFailed:
		return http.StatusUnauthorized
	case apperrors.KindNotFound, apperrors.KindIdentityNotFound:
		return http.StatusNotFound
	case apperrors.KindDuplicate:
		return http.StatusConflict
	case apperrors.KindIdentityProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error response for a service error. Messages
// from the taxonomy are caller-safe; anything unclassified is masked.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(statusForKind(appErr.Kind), ErrorResponse{Error: appErr.Message})
		return
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}
