// Package sale provides the Sale document.
// A sale records an over-the-counter dispense and deducts stock when recorded.
package sale

import (
	"context"
	"time"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// DocumentType identifies sale movements in the stock register.
const DocumentType = "sale"

// Payment methods accepted at the counter.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Sale represents a completed sale of medicines.
// Sales are final once recorded: there is no draft state and no reversal.
type Sale struct {
	entity.Document

	// CustomerName is a free-form customer reference (optional)
	CustomerName *string `db:"customer_name" json:"customerName,omitempty"`

	// PaymentMethod is how the customer paid; Paid is false only for
	// sales put on a customer tab
	PaymentMethod string `db:"payment_method" json:"paymentMethod"`
	Paid          bool   `db:"paid" json:"paid"`

	// Totals (recalculated from lines, never accepted from input)
	TotalQuantity types.Quantity   `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.MinorUnits `db:"total_amount" json:"totalAmount"`

	// Table part: sold medicines
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a line in the sale.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	MedicineID id.ID            `db:"medicine_id" json:"medicineId"`
	Quantity   types.Quantity   `db:"quantity" json:"quantity"`
	UnitPrice  types.MinorUnits `db:"unit_price" json:"unitPrice"`
	Amount     types.MinorUnits `db:"amount" json:"amount"`
}

// NewSale creates a new sale document, paid in cash unless changed.
func NewSale(date time.Time) *Sale {
	return &Sale{
		Document:      entity.NewDocument("", date),
		PaymentMethod: PaymentMethodCash,
		Paid:          true,
		Lines:         make([]Line, 0),
	}
}

// AddLine adds a line and recalculates totals. The line amount is always
// quantity times unit price; callers cannot override it.
func (s *Sale) AddLine(medicineID id.ID, quantity types.Quantity, unitPrice types.MinorUnits) {
	line := Line{
		LineID:     id.New(),
		LineNo:     len(s.Lines) + 1,
		MedicineID: medicineID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Amount:     types.MinorUnits(quantity.Int64()) * unitPrice,
	}

	s.Lines = append(s.Lines, line)
	s.RecalculateTotals()
}

// RecalculateTotals rebuilds document totals from lines.
func (s *Sale) RecalculateTotals() {
	s.TotalQuantity = 0
	s.TotalAmount = 0
	for i := range s.Lines {
		s.Lines[i].Amount = types.MinorUnits(s.Lines[i].Quantity.Int64()) * s.Lines[i].UnitPrice
		s.TotalQuantity += s.Lines[i].Quantity
		s.TotalAmount += s.Lines[i].Amount
	}
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if s.PaymentMethod != PaymentMethodCash && s.PaymentMethod != PaymentMethodCard {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", s.PaymentMethod)
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]bool, len(s.Lines))
	for i, line := range s.Lines {
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
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
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
