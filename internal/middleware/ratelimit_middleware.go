package middleware

import (
	"net/http"
	"strconv"

	"tutor-central/internal/redis"
	"tutor-central/internal/services"
	"tutor-central/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// OperationKey is the gin context key holding the requested operation name.
const OperationKey = "operation"

var authOperations = map[string]bool{
	httpdto.OpLogin:          true,
	httpdto.OpAddStudent:     true,
	httpdto.OpAddTutor:       true,
	httpdto.OpUpdatePassword: true,
}

// PeekOperation returns the operation of a JSON query without consuming the
// body. The body is cached so the handler can bind it again.
func PeekOperation(c *gin.Context) string {
	if op := c.GetString(OperationKey); op != "" {
		return op
	}
	if c.ContentType() != binding.MIMEJSON {
		return ""
	}
	var req httpdto.QueryRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return ""
	}
	c.Set(OperationKey, req.Operation)
	return req.Operation
}

// RateLimitMiddleware limits credential operations per client IP and
// addMessage per account. Must run after IdentityMiddleware.
func RateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		op := PeekOperation(c)
		ctx := c.Request.Context()

		var (
			result *redis.RateLimitResult
			err    error
		)
		switch {
		case authOperations[op]:
			result, err = limiter.AllowAuth(ctx, c.ClientIP())
		case op == httpdto.OpAddMessage:
			id, ok := services.IdentityFromContext(ctx)
			if !ok {
				c.Next()
				return
			}
			result, err = limiter.AllowMessage(ctx, id.AccountID.String())
		default:
			c.Next()
			return
		}

		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(op, "rate limit error", "INTERNAL"))
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(op, "rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
