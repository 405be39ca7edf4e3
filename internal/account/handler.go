package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/middleware"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/respond"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches account routes. Callers should put these behind the
// sensitive-endpoint throttle.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/account", h.profile)
	rg.DELETE("/account", h.erase)
}

func (h *Handler) profile(c *gin.Context) {
	respond.OK(c, gin.H{
		"id":    middleware.UserIDFromContext(c),
		"email": middleware.UserEmailFromContext(c),
	})
}

func (h *Handler) erase(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	result, err := h.Svc.Erase(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to erase account data", nil)
		return
	}

	telemetry.Info("account.erased", map[string]any{
		"user_id":             userID,
		"erased_analyses":     result.ErasedAnalyses,
		"erased_transactions": result.ErasedTransactions,
	})
	respond.OK(c, result)
}
