package analysis

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/middleware"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches one POST route per analysis kind plus the history
// routes to the router group. Throttling for the analysis routes lives in the
// service so the denial can carry the exact window state.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	for _, spec := range Kinds() {
		kind := spec.Kind
		rg.POST("/analyses/"+spec.Path, func(c *gin.Context) {
			h.create(c, kind)
		})
	}
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
}

func (h *Handler) create(c *gin.Context, kind Kind) {
	userID := middleware.UserIDFromContext(c)

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	a, limit, err := h.Svc.Run(c.Request.Context(), userID, kind, &req)
	if limit.ResetAt.Unix() > 0 {
		middleware.RateLimitHeaders(c, limit)
	}
	if err != nil {
		h.respondRunError(c, err)
		return
	}

	c.Set("analysisId", a.ID)
	c.Set("analysisKind", string(a.Kind))
	c.Set("creditsUsed", a.CreditsUsed)

	respond.JSON(c, http.StatusOK, gin.H{
		"analysis": a,
		"result":   Envelope{Kind: a.Kind, Payload: a.Result},
	})
}

func (h *Handler) respondRunError(c *gin.Context, err error) {
	var validation *ValidationError
	var limited *RateLimitedError
	var insufficient *credits.InsufficientCreditsError
	var unavailable *llm.UnavailableError
	var persistence *PersistenceError

	switch {
	case errors.As(err, &validation):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", validation.Fields)
	case errors.As(err, &limited):
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later", gin.H{
			"resetAt": limited.Result.ResetAt,
		})
	case errors.As(err, &insufficient):
		respond.Error(c, http.StatusPaymentRequired, "insufficient_credits", "Insufficient credits", gin.H{
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.As(err, &unavailable):
		respond.Error(c, http.StatusServiceUnavailable, "generation_unavailable", "the analysis service is temporarily unavailable, you have not been charged", nil)
	case errors.As(err, &persistence):
		respond.Error(c, http.StatusInternalServerError, "internal_error", "your request may not have completed; check your credit balance before retrying", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := historyPagination(c)

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	if list == nil {
		list = []Analysis{}
	}
	respond.OK(c, gin.H{"analyses": list})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	a, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read analysis", nil)
		return
	}
	respond.OK(c, gin.H{"analysis": a})
}

func historyPagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
