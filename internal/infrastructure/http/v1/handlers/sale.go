package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medledger/internal/core/apperror"
	"medledger/internal/core/id"
	"medledger/internal/domain"
	"medledger/internal/domain/documents/sale"
	"medledger/internal/infrastructure/http/v1/dto"
	"medledger/internal/infrastructure/storage/postgres"
	"medledger/pkg/logger"
)

// SaleHandler handles HTTP requests for Sale documents.
// Sales are immutable once recorded: there is no update or delete.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
	audit   *postgres.AuditService
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service, audit *postgres.AuditService) *SaleHandler {
	return &SaleHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// Record handles POST /documents/sales
func (h *SaleHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToSale()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid medicineId format"))
		return
	}

	if err := h.service.Record(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, doc)

	c.JSON(http.StatusCreated, dto.FromSale(doc))
}

// Get handles GET /documents/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromSale(doc))
}

// List handles GET /documents/sales
func (h *SaleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := sale.ListFilter{
		ListFilter: domain.ListFilter{
			Search:  c.Query("search"),
			Limit:   h.ParseIntQuery(c, "limit", 50),
			Offset:  h.ParseIntQuery(c, "offset", 0),
			OrderBy: c.DefaultQuery("orderBy", "-date"),
		},
	}

	if medStr := c.Query("medicineId"); medStr != "" {
		medID, err := id.Parse(medStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid medicineId format"))
			return
		}
		filter.MedicineID = &medID
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
		items[i] = dto.FromSale(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// logAudit records the sale in the audit trail (best-effort).
func (h *SaleHandler) logAudit(c *gin.Context, doc *sale.Sale) {
	if h.audit == nil {
		return
	}
	ctx := c.Request.Context()
	err := h.audit.LogChange(ctx, "sale", doc.ID, postgres.AuditActionRecord, map[string]any{
		"number":        doc.Number,
		"totalQuantity": doc.TotalQuantity.Int64(),
		"totalAmount":   int64(doc.TotalAmount),
		"lineCount":     len(doc.Lines),
	})
	if err != nil {
		logger.Error(ctx, "audit log failed", "entity", "sale", "id", doc.ID, "error", err)
	}
}

// RegisterRoutes registers sale document routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Record)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
