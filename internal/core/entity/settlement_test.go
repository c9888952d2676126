package entity

import (
	"testing"

	"medledger/internal/core/apperror"
	"medledger/internal/core/types"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		paid types.MinorUnits
		due  types.MinorUnits
		want PaymentStatus
	}{
		{"nothing paid", 0, 5000, PaymentStatusDue},
		{"partially paid", 2000, 3000, PaymentStatusPartial},
		{"fully paid", 5000, 0, PaymentStatusPaid},
		{"zero obligation", 0, 0, PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.paid, tt.due); got != tt.want {
				t.Errorf("StatusFor(%d, %d) = %s, want %s", tt.paid, tt.due, got, tt.want)
			}
		})
	}
}

func TestInitializeSettlement(t *testing.T) {
	t.Run("unpaid obligation", func(t *testing.T) {
		s, err := InitializeSettlement("medicine", 50000, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.PaidAmount != 0 || s.DueAmount != 50000 {
			t.Errorf("got paid=%d due=%d, want 0/50000", s.PaidAmount, s.DueAmount)
		}
		if s.PaymentStatus != PaymentStatusDue {
			t.Errorf("status = %s, want DUE", s.PaymentStatus)
		}
	})

	t.Run("pre-settled in full", func(t *testing.T) {
		s, err := InitializeSettlement("medicine", 50000, 50000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.PaymentStatus != PaymentStatusPaid {
			t.Errorf("status = %s, want PAID", s.PaymentStatus)
		}
	})

	t.Run("negative initial paid", func(t *testing.T) {
		_, err := InitializeSettlement("medicine", 50000, -1)
		if !apperror.IsCode(err, apperror.CodeInvalidAmount) {
			t.Errorf("expected INVALID_AMOUNT, got %v", err)
		}
	})

	t.Run("initial paid exceeds total", func(t *testing.T) {
		_, err := InitializeSettlement("medicine", 50000, 50001)
		if !apperror.IsCode(err, apperror.CodeOverpaymentRejected) {
			t.Errorf("expected OVERPAYMENT_REJECTED, got %v", err)
		}
	})
}

func TestSettlementApply(t *testing.T) {
	t.Run("exact payoff then overpayment", func(t *testing.T) {
		s, _ := InitializeSettlement("medicine", 500, 0)

		if err := s.Apply("medicine", 500); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.PaymentStatus != PaymentStatusPaid || s.DueAmount != 0 {
			t.Errorf("after payoff: status=%s due=%d, want PAID/0", s.PaymentStatus, s.DueAmount)
		}

		err := s.Apply("medicine", 1)
		if !apperror.IsCode(err, apperror.CodeOverpaymentRejected) {
			t.Errorf("expected OVERPAYMENT_REJECTED, got %v", err)
		}
		// rejected payment leaves the state untouched
		if s.PaidAmount != 500 || s.DueAmount != 0 {
			t.Errorf("state mutated after rejection: paid=%d due=%d", s.PaidAmount, s.DueAmount)
		}
	})

	t.Run("partial payments accumulate", func(t *testing.T) {
		s, _ := InitializeSettlement("purchase_order", 10000, 0)

		if err := s.Apply("purchase_order", 4000); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.PaymentStatus != PaymentStatusPartial {
			t.Errorf("status = %s, want PARTIAL", s.PaymentStatus)
		}
		if err := s.Apply("purchase_order", 6000); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.PaymentStatus != PaymentStatusPaid {
			t.Errorf("status = %s, want PAID", s.PaymentStatus)
		}
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		s, _ := InitializeSettlement("medicine", 1000, 0)
		for _, amount := range []types.MinorUnits{0, -100} {
			err := s.Apply("medicine", amount)
			if !apperror.IsCode(err, apperror.CodeValidation) {
				t.Errorf("Apply(%d): expected VALIDATION_ERROR, got %v", amount, err)
			}
		}
	})

	t.Run("overpayment rejected whole, not clamped", func(t *testing.T) {
		s, _ := InitializeSettlement("medicine", 1000, 0)
		err := s.Apply("medicine", 1001)
		if !apperror.IsCode(err, apperror.CodeOverpaymentRejected) {
			t.Errorf("expected OVERPAYMENT_REJECTED, got %v", err)
		}
		if s.PaidAmount != 0 || s.DueAmount != 1000 {
			t.Errorf("state mutated after rejection: paid=%d due=%d", s.PaidAmount, s.DueAmount)
		}
	})
}

func TestSettlementAddObligation(t *testing.T) {
	s, _ := InitializeSettlement("medicine", 0, 0)
	if s.PaymentStatus != PaymentStatusPaid {
		t.Fatalf("empty settlement should start PAID, got %s", s.PaymentStatus)
	}

	if err := s.AddObligation(2500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.DueAmount != 2500 || s.PaymentStatus != PaymentStatusDue {
		t.Errorf("got due=%d status=%s, want 2500/DUE", s.DueAmount, s.PaymentStatus)
	}

	if err := s.AddObligation(-1); !apperror.IsCode(err, apperror.CodeInvalidAmount) {
		t.Errorf("expected INVALID_AMOUNT, got %v", err)
	}
}
