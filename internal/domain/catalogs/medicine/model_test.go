package medicine

import (
	"context"
	"testing"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
)

func TestMedicineValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid medicine", func(t *testing.T) {
		m := NewMedicine("MED-001", "Paracetamol 500mg", 1250)
		if err := m.Validate(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		m := NewMedicine("MED-002", "", 100)
		if err := m.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})

	t.Run("negative price", func(t *testing.T) {
		m := NewMedicine("MED-003", "Ibuprofen", -1)
		if err := m.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})

	t.Run("drifted payment status", func(t *testing.T) {
		m := NewMedicine("MED-004", "Aspirin", 500)
		m.DueAmount = 1000
		m.PaymentStatus = entity.PaymentStatusPaid
		if err := m.Validate(ctx); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}
