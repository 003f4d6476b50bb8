package middleware

import (
	"net/http"

	"tutor-central/internal/transport/httpdto"
	"tutor-central/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler reports errors attached with c.Error that no handler turned
// into a response.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.WithContext(c.Request.Context()).Errorf("request error: %s", err.Error())
		}
		if c.Writer.Written() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		c.JSON(status, httpdto.NewErrorResponse(c.GetString(OperationKey), "internal error", "INTERNAL"))
	}
}
