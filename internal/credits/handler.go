package credits

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/middleware"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the ledger service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches credit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credits", h.getBalance)
	rg.GET("/credits/transactions", h.listTransactions)
	rg.POST("/credits/purchase", h.purchase)
}

// RegisterDevRoutes attaches dev-only routes (admin grants without a payment
// collaborator) to the router group.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/credits/grant", h.grant)
}

func (h *Handler) getBalance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	balance, err := h.Svc.Balance(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read balance", nil)
		return
	}
	respond.OK(c, gin.H{"credits": balance})
}

func (h *Handler) listTransactions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pagination(c)

	txs, err := h.Svc.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list transactions", nil)
		return
	}
	if txs == nil {
		txs = []Transaction{}
	}
	respond.OK(c, gin.H{"transactions": txs})
}

type purchaseRequest struct {
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

func (h *Handler) purchase(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Amount <= 0 || req.Amount > 10000 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "amount must be between 1 and 10000", []map[string]string{
			{"field": "amount", "issue": "out_of_range"},
		})
		return
	}
	if req.Description == "" {
		req.Description = "Credit purchase"
	}

	t, err := h.Svc.Purchase(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record purchase", nil)
		return
	}

	balance, err := h.Svc.Balance(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read balance", nil)
		return
	}
	respond.OK(c, gin.H{"transaction": t, "credits": balance})
}

func (h *Handler) grant(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "amount must be positive", nil)
		return
	}
	if req.Description == "" {
		req.Description = "Admin grant"
	}

	t, err := h.Svc.Grant(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to grant credits", nil)
		return
	}
	respond.OK(c, gin.H{"transaction": t})
}

func pagination(c *gin.Context) (int, int) {
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
