package entity

import (
	"time"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// RecordType defines the direction of a register movement.
type RecordType string

const (
	// RecordTypeReceipt increases the balance (purchase order completion)
	RecordTypeReceipt RecordType = "receipt"

	// RecordTypeExpense decreases the balance (sale)
	RecordTypeExpense RecordType = "expense"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable facts: they are inserted once and never updated.
type MovementBase struct {
	// ID is the movement primary key
	ID id.ID `db:"id" json:"id"`

	// RecorderType is the document type that produced this movement
	// (e.g. "sale", "purchase_order")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderID is the ID of the document that produced this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecordType is the movement direction (receipt or expense)
	RecordType RecordType `db:"record_type" json:"recordType"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	// LineNo orders movements within one document
	LineNo int `db:"line_no" json:"lineNo"`
}

// NewMovementBase creates a movement base for a recorder document.
func NewMovementBase(recorderType string, recorderID id.ID, recordType RecordType, period time.Time, lineNo int) MovementBase {
	return MovementBase{
		ID:           id.New(),
		RecorderType: recorderType,
		RecorderID:   recorderID,
		RecordType:   recordType,
		Period:       period,
		LineNo:       lineNo,
	}
}

// StockMovement is a single movement in the stock register.
type StockMovement struct {
	MovementBase

	// MedicineID is the register dimension
	MedicineID id.ID `db:"medicine_id" json:"medicineId"`

	// Quantity moved (always positive; direction comes from RecordType)
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// SignedQuantity returns the quantity with the sign implied by RecordType.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockBalance is the current on-hand quantity for a medicine.
// Balances are maintained transactionally alongside movements.
type StockBalance struct {
	// MedicineID is the register dimension (primary key)
	MedicineID id.ID `db:"medicine_id" json:"medicineId"`

	// Quantity currently on hand (never negative)
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// LastMovementAt is the period of the most recent movement
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`

	// UpdatedAt is the wall-clock time of the last balance update
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
