package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medledger/internal/core/apperror"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/registers/settlement"
	"medledger/internal/infrastructure/http/v1/dto"
	"medledger/internal/infrastructure/storage/postgres"
	"medledger/pkg/logger"
)

// PaymentsHandler handles HTTP requests for the payment ledger.
type PaymentsHandler struct {
	*BaseHandler
	service *settlement.Service
	audit   *postgres.AuditService
}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler(base *BaseHandler, service *settlement.Service, audit *postgres.AuditService) *PaymentsHandler {
	return &PaymentsHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Apply handles POST /payments
// Applies a payment against a medicine liability or a purchase order.
// Overpayment is rejected: the amount may not exceed the outstanding due.
func (h *PaymentsHandler) Apply(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entityID, err := id.Parse(req.EntityID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid entityId format"))
		return
	}

	period := time.Now().UTC()
	if req.Period != nil {
		period = *req.Period
	}

	amount := types.MinorUnits(req.Amount)
	resp := dto.ApplyPaymentResponse{
		EntityKind: req.EntityKind,
		EntityID:   entityID.String(),
	}

	switch settlement.EntityKind(req.EntityKind) {
	case settlement.KindMedicine:
		med, err := h.service.ApplyToMedicine(ctx, entityID, amount, period)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Settlement = dto.FromSettlement(med.Settlement)

	case settlement.KindPurchaseOrder:
		doc, err := h.service.ApplyToPurchaseOrder(ctx, entityID, amount, period)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Settlement = dto.FromSettlement(doc.Settlement)

	default:
		h.Error(c, apperror.NewValidation("unknown entityKind").WithDetail("value", req.EntityKind))
		return
	}

	h.logAudit(c, req.EntityKind, entityID, req.Amount)

	c.JSON(http.StatusOK, resp)
}

// History handles GET /payments
func (h *PaymentsHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	filter := settlement.PaymentFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if kindStr := c.Query("entityKind"); kindStr != "" {
		kind := settlement.EntityKind(kindStr)
		filter.EntityKind = &kind
	}

	if idStr := c.Query("entityId"); idStr != "" {
		entityID, err := id.Parse(idStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid entityId format"))
			return
		}
		filter.EntityID = &entityID
	}

	if fromStr := c.Query("fromDate"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.FromDate = &parsed
		}
	}
	if toStr := c.Query("toDate"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.ToDate = &parsed
		}
	}

	payments, err := h.service.History(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = dto.FromPayment(p)
	}

	c.JSON(http.StatusOK, dto.PaymentListResponse{Items: items})
}

// Totals handles GET /payments/totals
func (h *PaymentsHandler) Totals(c *gin.Context) {
	ctx := c.Request.Context()

	filter := settlement.TotalsFilter{}

	if fromStr := c.Query("fromDate"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.FromDate = &parsed
		}
	}
	if toStr := c.Query("toDate"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.ToDate = &parsed
		}
	}

	totals, err := h.service.Totals(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromKindTotals(totals))
}

// logAudit records the applied payment in the audit trail (best-effort).
func (h *PaymentsHandler) logAudit(c *gin.Context, entityKind string, entityID id.ID, amount int64) {
	if h.audit == nil {
		return
	}
	ctx := c.Request.Context()
	err := h.audit.LogChange(ctx, entityKind, entityID, postgres.AuditActionPayment, map[string]any{
		"amount": amount,
	})
	if err != nil {
		logger.Error(ctx, "audit log failed", "entity", entityKind, "id", entityID, "error", err)
	}
}

// RegisterRoutes registers payment ledger routes.
func (h *PaymentsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Apply)
	rg.GET("", h.History)
	rg.GET("/totals", h.Totals)
}
