package dto

import (
	"time"

	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/domain/registers/stock"
)

// --- Response DTOs for Stock Register ---

// StockBalanceResponse represents stock balance in API responses.
type StockBalanceResponse struct {
	MedicineID     string     `json:"medicineId"`
	Quantity       int64      `json:"quantity"`
	LastMovementAt *time.Time `json:"lastMovementAt,omitempty"`
}

// FromStockBalance converts entity to response DTO.
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	// Zero-value time means the balance row exists but never moved;
	// render it as null rather than "0001-01-01".
	var lastMovement *time.Time
	if !b.LastMovementAt.IsZero() {
		val := b.LastMovementAt
		lastMovement = &val
	}

	return StockBalanceResponse{
		MedicineID:     b.MedicineID.String(),
		Quantity:       b.Quantity.Int64(),
		LastMovementAt: lastMovement,
	}
}

// StockMovementResponse represents stock movement in API responses.
type StockMovementResponse struct {
	ID           string    `json:"id"`
	RecorderID   string    `json:"recorderId"`
	RecorderType string    `json:"recorderType"`
	RecordType   string    `json:"recordType"`
	Period       time.Time `json:"period"`
	LineNo       int       `json:"lineNo"`
	MedicineID   string    `json:"medicineId"`
	Quantity     int64     `json:"quantity"`
}

// FromStockMovement converts entity to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:           m.ID.String(),
		RecorderID:   m.RecorderID.String(),
		RecorderType: m.RecorderType,
		RecordType:   string(m.RecordType),
		Period:       m.Period,
		LineNo:       m.LineNo,
		MedicineID:   m.MedicineID.String(),
		Quantity:     m.Quantity.Int64(),
	}
}

// StockTurnoverResponse represents a stock turnover report.
type StockTurnoverResponse struct {
	MedicineID     string `json:"medicineId,omitempty"`
	OpeningBalance int64  `json:"openingBalance"`
	Receipt        int64  `json:"receipt"`
	Expense        int64  `json:"expense"`
	ClosingBalance int64  `json:"closingBalance"`
}

// FromStockTurnover converts domain turnover to response DTO.
func FromStockTurnover(t stock.Turnover) StockTurnoverResponse {
	resp := StockTurnoverResponse{
		OpeningBalance: t.OpeningBalance.Int64(),
		Receipt:        t.Receipt.Int64(),
		Expense:        t.Expense.Int64(),
		ClosingBalance: t.ClosingBalance.Int64(),
	}
	if !id.IsNil(t.MedicineID) {
		resp.MedicineID = t.MedicineID.String()
	}
	return resp
}

// StockBalanceListResponse represents a list of stock balances.
type StockBalanceListResponse struct {
	Items []StockBalanceResponse `json:"items"`
}

// StockMovementListResponse represents a list of stock movements.
type StockMovementListResponse struct {
	Items      []StockMovementResponse `json:"items"`
	TotalCount int                     `json:"totalCount,omitempty"`
}
