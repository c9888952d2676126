// Package medicine provides the Medicine catalog.
// A medicine carries its selling price and the settlement state of the
// liability owed to its vendor; on-hand quantity lives in the stock register.
package medicine

import (
	"context"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// Medicine represents a sellable pharmacy item.
type Medicine struct {
	entity.Catalog

	// Price is the selling price per unit, in minor currency units
	Price types.MinorUnits `db:"price" json:"price"`

	// VendorID is the primary supplying vendor (optional)
	VendorID *id.ID `db:"vendor_id" json:"vendorId,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// Settlement tracks the vendor liability accumulated by this medicine
	entity.Settlement
}

// NewMedicine creates a new Medicine with required fields.
func NewMedicine(code, name string, price types.MinorUnits) *Medicine {
	m := &Medicine{
		Catalog: entity.NewCatalog(code, name),
		Price:   price,
	}
	m.PaymentStatus = entity.StatusFor(m.PaidAmount, m.DueAmount)
	return m
}

// Validate implements entity.Validatable interface.
func (m *Medicine) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if m.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	if m.PaidAmount.IsNegative() || m.DueAmount.IsNegative() {
		return apperror.NewValidation("settlement amounts cannot be negative").
			WithDetail("field", "settlement")
	}
	if m.PaymentStatus != entity.StatusFor(m.PaidAmount, m.DueAmount) {
		return apperror.NewValidation("payment status does not match settlement amounts").
			WithDetail("field", "paymentStatus")
	}

	return nil
}
