package handler

import (
	"errors"
	"net/http"

	"tutor-central/internal/resolver"
	"tutor-central/internal/transport/httpdto"
	tutor_errors "tutor-central/pkg/errors"

	"github.com/gin-gonic/gin"
)

func httpStatus(err error) int {
	if errors.Is(err, tutor_errors.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch resolver.CodeOf(err) {
	case resolver.CodeUnauthenticated:
		return http.StatusUnauthorized
	case resolver.CodeNotFound:
		return http.StatusNotFound
	case resolver.CodeConflict:
		return http.StatusConflict
	case resolver.CodeBadUserInput:
		return http.StatusBadRequest
	case resolver.CodeRateLimited:
		return http.StatusTooManyRequests
	case resolver.CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, op string, err error) {
	c.JSON(httpStatus(err), httpdto.NewErrorResponse(op, err.Error(), string(resolver.CodeOf(err))))
}

func badRequest(message string) error {
	return &resolver.Error{Message: message, Code: resolver.CodeBadUserInput}
}
