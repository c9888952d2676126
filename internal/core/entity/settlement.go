package entity

import (
	"medledger/internal/core/apperror"
	"medledger/internal/core/types"
)

// PaymentStatus is the settlement state of an entity carrying money
// obligations (a medicine's vendor liability, a purchase order).
type PaymentStatus string

const (
	// PaymentStatusPaid means the obligation is fully settled (due == 0)
	PaymentStatusPaid PaymentStatus = "PAID"

	// PaymentStatusPartial means some, but not all, has been paid
	PaymentStatusPartial PaymentStatus = "PARTIAL"

	// PaymentStatusDue means nothing has been paid yet
	PaymentStatusDue PaymentStatus = "DUE"
)

// StatusFor derives the payment status from the paid/due pair.
// The status is never stored independently of the amounts: it is
// recomputed on every mutation so the three fields cannot drift apart.
func StatusFor(paid, due types.MinorUnits) PaymentStatus {
	switch {
	case due.IsZero():
		return PaymentStatusPaid
	case paid.IsZero():
		return PaymentStatusDue
	default:
		return PaymentStatusPartial
	}
}

// Settlement is the payment-ledger state embedded in entities that
// accumulate obligations. Invariant: PaidAmount + DueAmount equals the
// total obligation, both are non-negative, and PaymentStatus matches
// StatusFor(PaidAmount, DueAmount).
type Settlement struct {
	// PaidAmount is the total settled so far, in minor currency units
	PaidAmount types.MinorUnits `db:"paid_amount" json:"paidAmount"`

	// DueAmount is the outstanding remainder, in minor currency units
	DueAmount types.MinorUnits `db:"due_amount" json:"dueAmount"`

	// PaymentStatus is derived from the amounts above
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
}

// InitializeSettlement builds settlement state for a new obligation.
// initialPaid may pre-settle part or all of the total at creation time.
func InitializeSettlement(entity string, total, initialPaid types.MinorUnits) (Settlement, error) {
	if total.IsNegative() {
		return Settlement{}, apperror.NewInvalidAmount("total amount cannot be negative")
	}
	if initialPaid.IsNegative() {
		return Settlement{}, apperror.NewInvalidAmount("initial paid amount cannot be negative")
	}
	if initialPaid > total {
		return Settlement{}, apperror.NewOverpaymentRejected(entity, int64(initialPaid), int64(total))
	}

	s := Settlement{
		PaidAmount: initialPaid,
		DueAmount:  total - initialPaid,
	}
	s.PaymentStatus = StatusFor(s.PaidAmount, s.DueAmount)
	return s, nil
}

// Apply settles amount against the outstanding due. Amount must be
// strictly positive and must not exceed DueAmount: partial overpayment
// is rejected whole, nothing is clamped or carried over.
func (s *Settlement) Apply(entity string, amount types.MinorUnits) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", int64(amount))
	}
	if amount > s.DueAmount {
		return apperror.NewOverpaymentRejected(entity, int64(amount), int64(s.DueAmount))
	}

	s.PaidAmount += amount
	s.DueAmount -= amount
	s.PaymentStatus = StatusFor(s.PaidAmount, s.DueAmount)
	return nil
}

// AddObligation increases the outstanding due (e.g. a completed purchase
// order accrues new liability on each of its medicines).
func (s *Settlement) AddObligation(amount types.MinorUnits) error {
	if amount.IsNegative() {
		return apperror.NewInvalidAmount("obligation amount cannot be negative")
	}
	s.DueAmount += amount
	s.PaymentStatus = StatusFor(s.PaidAmount, s.DueAmount)
	return nil
}
