package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/registers/stock"
	"medledger/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
	repo    stock.Repository
}

// NewStockHandler creates a new stock register handler.
func NewStockHandler(base *BaseHandler, service *stock.Service, repo stock.Repository) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		repo:        repo,
	}
}

// GetBalances handles GET /registers/stock/balances
func (h *StockHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	filter := stock.BalanceFilter{
		ExcludeZero: c.Query("excludeZero") != "false",
	}

	if medStr := c.Query("medicineId"); medStr != "" {
		medID, err := id.Parse(medStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid medicineId format"))
			return
		}
		filter.MedicineIDs = []id.ID{medID}
	}

	if maxStr := c.Query("maxQuantity"); maxStr != "" {
		maxQty := types.Quantity(h.ParseIntQuery(c, "maxQuantity", 0))
		filter.MaxQuantity = &maxQty
	}

	entityBalances, err := h.repo.ListBalances(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	balances := make([]dto.StockBalanceResponse, len(entityBalances))
	for i, b := range entityBalances {
		balances[i] = dto.FromStockBalance(b)
	}

	c.JSON(http.StatusOK, dto.StockBalanceListResponse{Items: balances})
}

// GetMovements handles GET /registers/stock/movements
func (h *StockHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	medStr := c.Query("medicineId")
	if medStr == "" {
		h.Error(c, apperror.NewValidation("medicineId is required"))
		return
	}

	medID, err := id.Parse(medStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid medicineId format"))
		return
	}

	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if rtStr := c.Query("recordType"); rtStr != "" {
		rt := entity.RecordType(rtStr)
		filter.RecordType = &rt
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

	movements, err := h.service.GetMovementHistory(ctx, medID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := make([]dto.StockMovementResponse, len(movements))
	for i, m := range movements {
		response[i] = dto.FromStockMovement(m)
	}

	c.JSON(http.StatusOK, dto.StockMovementListResponse{
		Items:      response,
		TotalCount: len(response),
	})
}

// GetTurnover handles GET /registers/stock/turnover
func (h *StockHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	fromStr := c.Query("fromDate")
	toStr := c.Query("toDate")

	if fromStr == "" || toStr == "" {
		h.Error(c, apperror.NewValidation("fromDate and toDate are required"))
		return
	}

	fromDate, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
		return
	}

	toDate, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
		return
	}

	filter := stock.TurnoverFilter{
		FromDate: fromDate,
		ToDate:   toDate,
	}

	if medStr := c.Query("medicineId"); medStr != "" {
		medID, err := id.Parse(medStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid medicineId format"))
			return
		}
		filter.MedicineID = &medID
	}

	turnover, err := h.service.GetTurnover(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockTurnover(turnover))
}

// GetAvailability handles GET /registers/stock/availability/:medicineId
func (h *StockHandler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	medID, err := id.Parse(c.Param("medicineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid medicineId format"))
		return
	}

	quantity, err := h.service.GetAvailability(ctx, medID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medicineId": medID.String(),
		"quantity":   quantity.Int64(),
	})
}

// RegisterRoutes registers stock register routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/balances", h.GetBalances)
	rg.GET("/movements", h.GetMovements)
	rg.GET("/turnover", h.GetTurnover)
	rg.GET("/availability/:medicineId", h.GetAvailability)
}
