// Package stock provides the stock accumulation register.
package stock

import (
	"context"
	"time"

	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// Repository defines operations for the stock register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used while recording a document)
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)

	// Balance operations

	// GetBalance returns current balance for a medicine
	GetBalance(ctx context.Context, medicineID id.ID) (entity.StockBalance, error)

	// GetBalanceForUpdate returns balance with row lock for stock control.
	// An absent row is returned as a zero balance after inserting the row,
	// so the lock is always held.
	GetBalanceForUpdate(ctx context.Context, medicineID id.ID) (entity.StockBalance, error)

	// ApplyBalanceDelta upserts the balance row by delta. Callers check
	// availability under lock before applying a negative delta.
	ApplyBalanceDelta(ctx context.Context, medicineID id.ID, delta types.Quantity, period time.Time) error

	// ListBalances returns balances matching the filter
	ListBalances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error)

	// Reporting

	// GetMovementHistory returns movement history for a medicine
	GetMovementHistory(ctx context.Context, medicineID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// GetTurnover calculates receipt and expense totals for a period
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	MedicineIDs []id.ID
	ExcludeZero bool
	MaxQuantity *types.Quantity
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	RecordType *entity.RecordType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	MedicineID *id.ID
	FromDate   time.Time
	ToDate     time.Time
}

// Turnover represents receipt/expense totals.
type Turnover struct {
	MedicineID     id.ID          `json:"medicineId,omitempty"`
	OpeningBalance types.Quantity `json:"openingBalance"`
	Receipt        types.Quantity `json:"receipt"`
	Expense        types.Quantity `json:"expense"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}
