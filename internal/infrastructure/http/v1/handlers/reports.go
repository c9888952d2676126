package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medledger/internal/core/apperror"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/reports"
	"medledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStockSummary handles GET /reports/stock-summary
func (h *ReportsHandler) GetStockSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.StockSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := reports.StockSummaryFilter{
		LowStockOnly: req.LowStockOnly,
	}

	if req.Threshold != nil {
		threshold := types.Quantity(*req.Threshold)
		filter.Threshold = &threshold
	}

	for _, medStr := range req.MedicineIDs {
		medID, err := id.Parse(medStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid medicineId format").WithDetail("value", medStr))
			return
		}
		filter.MedicineIDs = append(filter.MedicineIDs, medID)
	}

	summary, err := h.service.GetStockSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSalesSummary handles GET /reports/sales-summary
func (h *ReportsHandler) GetSalesSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SalesSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := reports.SalesSummaryFilter{
		WindowDays: req.WindowDays,
	}

	if req.MedicineID != nil && *req.MedicineID != "" {
		medID, err := id.Parse(*req.MedicineID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid medicineId format"))
			return
		}
		filter.MedicineID = &medID
	}

	summary, err := h.service.GetSalesSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetPaymentSummary handles GET /reports/payment-summary
func (h *ReportsHandler) GetPaymentSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PaymentSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := reports.PaymentSummaryFilter{EntityKind: req.EntityKind}

	summary, err := h.service.GetPaymentSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetVendorSummary handles GET /reports/vendor-summary
func (h *ReportsHandler) GetVendorSummary(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.service.GetVendorSummary(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stock-summary", h.GetStockSummary)
	rg.GET("/sales-summary", h.GetSalesSummary)
	rg.GET("/payment-summary", h.GetPaymentSummary)
	rg.GET("/vendor-summary", h.GetVendorSummary)
}
