package settlement

import (
	"context"
	"time"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// Repository defines operations for the payment ledger.
type Repository interface {
	// CreatePayment inserts an applied payment
	CreatePayment(ctx context.Context, payment Payment) error

	// ListPayments returns payment history matching the filter
	ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// GetTotals returns aggregate paid amounts per entity kind
	GetTotals(ctx context.Context, filter TotalsFilter) ([]KindTotal, error)
}

// PaymentFilter for filtering payment history.
type PaymentFilter struct {
	EntityKind *EntityKind
	EntityID   *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TotalsFilter for aggregate queries.
type TotalsFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
}

// KindTotal is an aggregate of payments for one entity kind.
type KindTotal struct {
	EntityKind   EntityKind       `db:"entity_kind" json:"entityKind"`
	PaymentCount int64            `db:"payment_count" json:"paymentCount"`
	TotalAmount  types.MinorUnits `db:"total_amount" json:"totalAmount"`
}
