package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/errorlog"
)

// ErrorReport records server-side failures (5xx responses) for triage.
func ErrorReport(reporter *errorlog.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if reporter == nil || c.Writer.Status() < http.StatusInternalServerError {
			return
		}

		err := c.Errors.Last()
		var cause error
		if err != nil {
			cause = err.Err
		} else {
			cause = errors.New(http.StatusText(c.Writer.Status()))
		}

		reporter.Report(c.Request.Context(), c.FullPath(), cause, map[string]any{
			"user_id":    UserIDFromContext(c),
			"request_id": RequestIDFromContext(c),
			"method":     c.Request.Method,
			"status":     c.Writer.Status(),
		})
	}
}
