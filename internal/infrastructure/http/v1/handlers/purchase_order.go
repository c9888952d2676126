package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medledger/internal/core/apperror"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain"
	"medledger/internal/domain/documents/purchaseorder"
	"medledger/internal/infrastructure/http/v1/dto"
	"medledger/internal/infrastructure/storage/postgres"
	"medledger/pkg/logger"
)

// PurchaseOrderHandler handles HTTP requests for Purchase Order documents.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchaseorder.Service
	audit   *postgres.AuditService
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchaseorder.Service, audit *postgres.AuditService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Record handles POST /documents/purchase-orders
func (h *PurchaseOrderHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordPurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToPurchaseOrder()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format in request"))
		return
	}

	if err := h.service.Record(ctx, doc, types.MinorUnits(req.InitialPaid)); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, doc, postgres.AuditActionRecord)

	c.JSON(http.StatusCreated, dto.FromPurchaseOrder(doc))
}

// Complete handles POST /documents/purchase-orders/:id/complete
// Receives the ordered goods into stock and closes the order.
func (h *PurchaseOrderHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Complete(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, doc, postgres.AuditActionReceive)

	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Cancel handles POST /documents/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Cancel(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, doc, postgres.AuditActionCancel)

	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Get handles GET /documents/purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// List handles GET /documents/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := purchaseorder.ListFilter{
		ListFilter: domain.ListFilter{
			Search:  c.Query("search"),
			Limit:   h.ParseIntQuery(c, "limit", 50),
			Offset:  h.ParseIntQuery(c, "offset", 0),
			OrderBy: c.DefaultQuery("orderBy", "-date"),
		},
	}

	if vendorStr := c.Query("vendorId"); vendorStr != "" {
		vendorID, err := id.Parse(vendorStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid vendorId format"))
			return
		}
		filter.VendorID = &vendorID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := purchaseorder.Status(statusStr)
		if !status.IsValid() {
			h.Error(c, apperror.NewValidation("invalid status").WithDetail("value", statusStr))
			return
		}
		filter.Status = &status
	}

	if fromStr := c.Query("dateFrom"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if toStr := c.Query("dateTo"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromPurchaseOrder(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// logAudit records the order transition in the audit trail (best-effort).
func (h *PurchaseOrderHandler) logAudit(c *gin.Context, doc *purchaseorder.PurchaseOrder, action postgres.AuditAction) {
	if h.audit == nil {
		return
	}
	ctx := c.Request.Context()
	err := h.audit.LogChange(ctx, "purchase_order", doc.ID, action, map[string]any{
		"number":      doc.Number,
		"vendorId":    doc.VendorID.String(),
		"status":      string(doc.Status),
		"totalAmount": int64(doc.TotalAmount),
	})
	if err != nil {
		logger.Error(ctx, "audit log failed", "entity", "purchase_order", "id", doc.ID, "error", err)
	}
}

// RegisterRoutes registers purchase order routes.
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Record)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/complete", h.Complete)
	rg.POST("/:id/cancel", h.Cancel)
}
