package medicine

import (
	"context"

	"medledger/internal/core/id"
	"medledger/internal/domain"
)

// Repository defines the interface for Medicine persistence.
type Repository interface {
	domain.CatalogRepository[*Medicine]

	// FindByBarcode retrieves medicine by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Medicine, error)

	// GetForUpdate retrieves medicine with row lock (for settlement updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Medicine, error)

	// UpdateSettlement persists the settlement fields with optimistic locking.
	UpdateSettlement(ctx context.Context, med *Medicine) error
}
