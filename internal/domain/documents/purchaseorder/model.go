// Package purchaseorder provides the PurchaseOrder document.
// A purchase order tracks an incoming delivery from a vendor through an
// explicit state machine; stock is credited only on completion.
package purchaseorder

import (
	"context"
	"time"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// DocumentType identifies purchase order movements in the stock register.
const DocumentType = "purchase_order"

// Status is the purchase order lifecycle state.
type Status string

const (
	// StatusPending means the order is placed but goods have not arrived
	StatusPending Status = "pending"

	// StatusReceived means the order is completed and stock was credited
	StatusReceived Status = "received"

	// StatusCancelled means the order was cancelled before arrival
	StatusCancelled Status = "cancelled"
)

// allowed transitions; received and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending: {StatusReceived, StatusCancelled},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to target is allowed.
func (s Status) CanTransition(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// PurchaseOrder represents an order placed with a vendor.
type PurchaseOrder struct {
	entity.Document

	// VendorID is the supplying vendor
	VendorID id.ID `db:"vendor_id" json:"vendorId"`

	// Status is the explicit lifecycle state
	Status Status `db:"status" json:"status"`

	// ReceivedAt is set when the order is completed
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`

	// CancelledAt is set when the order is cancelled
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`

	// Totals (recalculated from lines, never accepted from input)
	TotalQuantity types.Quantity   `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.MinorUnits `db:"total_amount" json:"totalAmount"`

	// Settlement tracks payments made to the vendor against this order
	entity.Settlement

	// Table part: ordered medicines
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a line in the purchase order.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	MedicineID id.ID            `db:"medicine_id" json:"medicineId"`
	Quantity   types.Quantity   `db:"quantity" json:"quantity"`
	UnitCost   types.MinorUnits `db:"unit_cost" json:"unitCost"`
	Amount     types.MinorUnits `db:"amount" json:"amount"`
}

// NewPurchaseOrder creates a new pending purchase order.
func NewPurchaseOrder(vendorID id.ID, date time.Time) *PurchaseOrder {
	po := &PurchaseOrder{
		Document: entity.NewDocument("", date),
		VendorID: vendorID,
		Status:   StatusPending,
		Lines:    make([]Line, 0),
	}
	po.PaymentStatus = entity.StatusFor(po.PaidAmount, po.DueAmount)
	return po
}

// AddLine adds a line and recalculates totals.
func (p *PurchaseOrder) AddLine(medicineID id.ID, quantity types.Quantity, unitCost types.MinorUnits) {
	line := Line{
		LineID:     id.New(),
		LineNo:     len(p.Lines) + 1,
		MedicineID: medicineID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		Amount:     types.MinorUnits(quantity.Int64()) * unitCost,
	}

	p.Lines = append(p.Lines, line)
	p.RecalculateTotals()
}

// RecalculateTotals rebuilds document totals from lines.
func (p *PurchaseOrder) RecalculateTotals() {
	p.TotalQuantity = 0
	p.TotalAmount = 0
	for i := range p.Lines {
		p.Lines[i].Amount = types.MinorUnits(p.Lines[i].Quantity.Int64()) * p.Lines[i].UnitCost
		p.TotalQuantity += p.Lines[i].Quantity
		p.TotalAmount += p.Lines[i].Amount
	}
}

// Transition moves the order to target, stamping the transition time.
// Invalid transitions (including repeats of a terminal state) fail with
// InvalidTransition.
func (p *PurchaseOrder) Transition(target Status, at time.Time) error {
	if !p.Status.CanTransition(target) {
		return apperror.NewInvalidTransition("purchase_order", string(p.Status), string(target))
	}

	switch target {
	case StatusReceived:
		t := at
		p.ReceivedAt = &t
	case StatusCancelled:
		t := at
		p.CancelledAt = &t
	}
	p.Status = target
	return nil
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.VendorID) {
		return apperror.NewValidation("vendor is required").
			WithDetail("field", "vendorId")
	}

	switch p.Status {
	case StatusPending, StatusReceived, StatusCancelled:
	default:
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]bool, len(p.Lines))
	for i, line := range p.Lines {
		if id.IsNil(line.MedicineID) {
			return apperror.NewValidation("medicine is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if seen[line.MedicineID] {
			return apperror.NewValidation("duplicate medicine in lines").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		seen[line.MedicineID] = true
	}

	return nil
}
