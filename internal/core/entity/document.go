package entity

import (
	"context"
	"time"

	"medledger/internal/core/apperror"
)

// Document contains common fields for all document entities
// (sales, purchase orders). Documents record business events and
// produce ledger movements when recorded.
type Document struct {
	BaseDocument

	// Number is a unique human-readable document number (e.g. "SL-2026-00042")
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`
}

// NewDocument creates a new Document with generated ID and timestamps.
func NewDocument(number string, date time.Time) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Number:       number,
		Date:         date,
	}
}

// Validate checks base document invariants.
// Number can be auto-generated, so it is optional at creation.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// DocumentEntity is the interface all document models implement.
type DocumentEntity interface {
	GetID() string
	GetNumber() string
	GetDate() time.Time
}

// GetID returns the entity ID as string.
func (d *Document) GetID() string {
	return d.ID.String()
}

// GetNumber returns the document number.
func (d *Document) GetNumber() string {
	return d.Number
}

// GetDate returns the document date.
func (d *Document) GetDate() time.Time {
	return d.Date
}
