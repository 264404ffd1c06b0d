package api

import (
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"alcyxob/confidence-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"message": message})
}

// respondError maps service errors onto HTTP statuses. Anything unrecognised
// is a 500 whose body echoes the underlying error next to message.
func respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"message": message, "error": err.Error()})
		return
	}
	abortWithError(c, status, capitalize(err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAssessmentIncomplete),
		errors.Is(err, service.ErrInvalidProgress),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPlanAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrPlanNotActive),
		errors.Is(err, service.ErrConfidenceConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
