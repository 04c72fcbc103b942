package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/errs"
)

// HttpErr is what every handler reports via c.Error; errorMiddleware maps
// its Kind to the status codes in the control surface's status table.
type HttpErr struct {
	Kind errs.Kind
	Err  error
}

func (e HttpErr) Error() string { return e.Err.Error() }

func fail(c *gin.Context, err error) {
	c.Error(HttpErr{Kind: errs.KindOf(err), Err: err}) //nolint:errcheck
	c.Abort()
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.Validation:
		return http.StatusBadRequest
	case errs.Unauthenticated:
		return http.StatusUnauthorized
	case errs.Forbidden:
		return http.StatusForbidden
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Conflict:
		return http.StatusConflict
	case errs.Deprecated:
		return http.StatusGone
	case errs.ArtifactInvalid:
		return http.StatusUnprocessableEntity
	case errs.RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorMiddleware renders the first error a handler recorded via fail, so
// handlers never write status codes directly.
func errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		httpErr, ok := c.Errors[0].Err.(HttpErr)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": c.Errors[0].Error()})
			return
		}
		c.JSON(statusFor(httpErr.Kind), gin.H{"msg": httpErr.Error()})
	}
}
