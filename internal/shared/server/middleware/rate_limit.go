package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/ratelimit"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/metrics"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/respond"
)

// RateLimit enforces the given preset, keyed by the authenticated user when
// present and by client IP otherwise.
func RateLimit(limiter *ratelimit.Limiter, preset ratelimit.Preset) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		subject := ratelimit.IPSubject(c.ClientIP())
		if userID := UserIDFromContext(c); userID != "" {
			subject = ratelimit.UserSubject(userID)
		}

		res := limiter.Check(c.Request.Context(), subject, preset)
		RateLimitHeaders(c, res)
		if !res.Allowed {
			metrics.IncRateLimited()
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later", gin.H{
				"resetAt": res.ResetAt,
			})
			return
		}
		c.Next()
	}
}

// RateLimitHeaders writes the standard rate-limit response headers.
func RateLimitHeaders(c *gin.Context, res ratelimit.Result) {
	h := c.Writer.Header()
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}
