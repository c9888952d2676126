package purchaseorder

import (
	"context"
	"time"

	"medledger/internal/core/id"
	"medledger/internal/domain"
)

// Repository defines operations for purchase order documents.
type Repository interface {
	Create(ctx context.Context, doc *PurchaseOrder) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
	GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error)

	// GetForUpdate retrieves the order with a row lock. State transitions
	// and payments load through this inside a transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error)

	// Update persists header fields with optimistic locking.
	Update(ctx context.Context, doc *PurchaseOrder) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error)
}

// ListFilter for filtering purchase orders.
type ListFilter struct {
	domain.ListFilter

	VendorID *id.ID
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}
