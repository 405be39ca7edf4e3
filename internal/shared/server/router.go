package server

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/account"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/analysis"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/errorlog"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/ratelimit"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/config"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/metrics"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/middleware"
)

// RouterDeps carries handler dependencies into route registration.
type RouterDeps struct {
	Config          config.Config
	DB              *sql.DB
	Limiter         *ratelimit.Limiter
	Errors          *errorlog.Reporter
	AnalysisHandler *analysis.Handler
	CreditsHandler  *credits.Handler
	AccountHandler  *account.Handler
}

// NewRouter builds the gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.CORS(deps.Config.CORSAllowOrigin))
	r.Use(middleware.ErrorReport(deps.Errors))

	// Unauthenticated surface is throttled by client IP.
	r.GET("/health", middleware.RateLimit(deps.Limiter, ratelimit.Anonymous), healthHandler(deps.DB))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.Auth())
	api.Use(middleware.RateLimit(deps.Limiter, ratelimit.General))

	deps.AnalysisHandler.RegisterRoutes(api)
	deps.CreditsHandler.RegisterRoutes(api)

	sensitive := r.Group("/api/v1")
	sensitive.Use(middleware.Auth())
	sensitive.Use(middleware.RateLimit(deps.Limiter, ratelimit.AccountSensitive))
	deps.AccountHandler.RegisterRoutes(sensitive)

	if deps.Config.Env != "production" {
		deps.CreditsHandler.RegisterDevRoutes(api)
	}

	return r
}

// healthHandler reports process liveness and, when configured, database
// reachability. A failing ping degrades the payload without failing the probe.
func healthHandler(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{"ok": true, "database": "disabled"}
		if database != nil {
			if err := database.PingContext(c.Request.Context()); err != nil {
				payload["database"] = "unreachable"
			} else {
				payload["database"] = "ok"
			}
		}
		c.JSON(http.StatusOK, payload)
	}
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
