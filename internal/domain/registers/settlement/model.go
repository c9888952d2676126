// Package settlement provides the payment ledger: applying payments to
// outstanding obligations and keeping the payment history.
package settlement

import (
	"time"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// EntityKind identifies what a payment settles against.
type EntityKind string

const (
	KindMedicine      EntityKind = "medicine"
	KindPurchaseOrder EntityKind = "purchase_order"
)

// Payment is a single applied payment. Payments are immutable facts:
// once applied they are never updated or removed.
type Payment struct {
	ID id.ID `db:"id" json:"id"`

	// EntityKind and EntityID identify the settled obligation
	EntityKind EntityKind `db:"entity_kind" json:"entityKind"`
	EntityID   id.ID      `db:"entity_id" json:"entityId"`

	// Amount in minor currency units (always positive)
	Amount types.MinorUnits `db:"amount" json:"amount"`

	// Period is the business date of the payment
	Period time.Time `db:"period" json:"period"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}
