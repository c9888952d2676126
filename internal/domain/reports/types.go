// Package reports provides read-side aggregation over the ledgers.
package reports

import (
	"time"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// --- Stock Summary ---

// StockSummaryFilter defines filter for the stock summary.
type StockSummaryFilter struct {
	// MedicineIDs restricts the summary to specific medicines
	MedicineIDs []id.ID

	// LowStockOnly returns only rows below the threshold
	LowStockOnly bool

	// Threshold overrides the configured low-stock threshold
	Threshold *types.Quantity

	// Pagination
	Limit  int
	Offset int
}

// StockSummaryItem is one medicine's stock position.
type StockSummaryItem struct {
	MedicineID   id.ID            `json:"medicineId"`
	MedicineName string           `json:"medicineName"`
	Code         string           `json:"code"`
	Quantity     types.Quantity   `json:"quantity"`
	UnitPrice    types.MinorUnits `json:"unitPrice"`
	StockValue   types.MinorUnits `json:"stockValue"`
	LowStock     bool             `json:"lowStock"`
	OutOfStock   bool             `json:"outOfStock"`
}

// StockSummary is the full stock position report.
type StockSummary struct {
	AsOf       time.Time          `json:"asOf"`
	Threshold  types.Quantity     `json:"threshold"`
	Items      []StockSummaryItem `json:"items"`
	TotalItems int                `json:"totalItems"`

	TotalQuantity   types.Quantity `json:"totalQuantity"`
	TotalValue      types.Money    `json:"totalValue"`
	LowStockCount   int            `json:"lowStockCount"`
	OutOfStockCount int            `json:"outOfStockCount"`
}

// --- Sales Summary ---

// SalesSummaryFilter defines filter for the sales summary.
type SalesSummaryFilter struct {
	// WindowDays is the reporting window ending today (default 7)
	WindowDays int

	// MedicineID restricts to one medicine
	MedicineID *id.ID
}

// SalesBucket is one day's sales totals.
type SalesBucket struct {
	Date        time.Time        `json:"date"`
	SalesCount  int64            `json:"salesCount"`
	Quantity    types.Quantity   `json:"quantity"`
	TotalAmount types.MinorUnits `json:"totalAmount"`
}

// TopMedicine is a best-selling medicine within the window.
type TopMedicine struct {
	MedicineID   id.ID            `json:"medicineId"`
	MedicineName string           `json:"medicineName"`
	Quantity     types.Quantity   `json:"quantity"`
	TotalAmount  types.MinorUnits `json:"totalAmount"`
}

// SalesSummary is the windowed sales report.
type SalesSummary struct {
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`

	SalesCount    int64            `json:"salesCount"`
	TotalQuantity types.Quantity   `json:"totalQuantity"`
	TotalAmount   types.MinorUnits `json:"totalAmount"`
	TotalRevenue  types.Money      `json:"totalRevenue"`

	Buckets      []SalesBucket `json:"buckets"`
	TopMedicines []TopMedicine `json:"topMedicines,omitempty"`
}

// --- Payment Summary ---

// PaymentSummaryFilter defines filter for the payment summary.
type PaymentSummaryFilter struct {
	// EntityKind restricts the snapshot to one ledger ("medicine" or
	// "purchase_order"); empty covers both
	EntityKind string
}

// PaymentKindSummary aggregates settlement state for one entity kind.
type PaymentKindSummary struct {
	EntityKind   string           `json:"entityKind"`
	EntityCount  int64            `json:"entityCount"`
	TotalPaid    types.MinorUnits `json:"totalPaid"`
	TotalDue     types.MinorUnits `json:"totalDue"`
	PaidCount    int64            `json:"paidCount"`
	PartialCount int64            `json:"partialCount"`
	DueCount     int64            `json:"dueCount"`
}

// PaymentSummary is the reconciliation overview across ledgers.
type PaymentSummary struct {
	AsOf  time.Time            `json:"asOf"`
	Kinds []PaymentKindSummary `json:"kinds"`

	TotalPaid types.MinorUnits `json:"totalPaid"`
	TotalDue  types.MinorUnits `json:"totalDue"`
}

// --- Vendor Summary ---

// VendorSummaryItem aggregates purchase orders per vendor.
type VendorSummaryItem struct {
	VendorID       id.ID            `json:"vendorId"`
	VendorName     string           `json:"vendorName"`
	OrderCount     int64            `json:"orderCount"`
	PendingCount   int64            `json:"pendingCount"`
	ReceivedCount  int64            `json:"receivedCount"`
	CancelledCount int64            `json:"cancelledCount"`
	TotalOrdered   types.MinorUnits `json:"totalOrdered"`
	TotalPaid      types.MinorUnits `json:"totalPaid"`
	TotalDue       types.MinorUnits `json:"totalDue"`
}

// VendorSummary is the per-vendor purchasing report.
type VendorSummary struct {
	AsOf  time.Time           `json:"asOf"`
	Items []VendorSummaryItem `json:"items"`
}
