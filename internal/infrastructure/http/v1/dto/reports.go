package dto

// Report responses are served from the domain report types directly;
// only the query-side request DTOs live here.

// StockSummaryRequest represents query parameters for the stock summary.
type StockSummaryRequest struct {
	MedicineIDs  []string `form:"medicineId"`
	LowStockOnly bool     `form:"lowStockOnly"`
	Threshold    *int64   `form:"threshold"`
}

// SalesSummaryRequest represents query parameters for the sales summary.
type SalesSummaryRequest struct {
	WindowDays int     `form:"windowDays" binding:"min=0,max=365"`
	MedicineID *string `form:"medicineId"`
}

// PaymentSummaryRequest represents query parameters for the payment summary.
// The summary is a snapshot of current settlement state; kind optionally
// restricts it to one ledger.
type PaymentSummaryRequest struct {
	EntityKind string `form:"kind" binding:"omitempty,oneof=medicine purchase_order"`
}
