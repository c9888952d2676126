package settlement

import (
	"context"
	"fmt"
	"time"

	"medledger/internal/core/apperror"
	appctx "medledger/internal/core/context"
	"medledger/internal/core/id"
	"medledger/internal/core/tx"
	"medledger/internal/core/types"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/domain/documents/purchaseorder"
	"medledger/pkg/logger"
)

// MedicineStore loads and settles medicines under lock.
type MedicineStore interface {
	GetForUpdate(ctx context.Context, medID id.ID) (*medicine.Medicine, error)
	UpdateSettlement(ctx context.Context, med *medicine.Medicine) error
}

// OrderStore loads and settles purchase orders under lock.
type OrderStore interface {
	GetForUpdate(ctx context.Context, docID id.ID) (*purchaseorder.PurchaseOrder, error)
	Update(ctx context.Context, doc *purchaseorder.PurchaseOrder) error
}

// Service applies payments against medicines and purchase orders.
// Each apply locks the target row, mutates its settlement state, and
// records the payment, all in one transaction.
type Service struct {
	repo      Repository
	medicines MedicineStore
	orders    OrderStore
	txManager tx.Manager
}

// NewService creates a new settlement service.
func NewService(repo Repository, medicines MedicineStore, orders OrderStore, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		medicines: medicines,
		orders:    orders,
		txManager: txManager,
	}
}

// ApplyToMedicine settles amount against a medicine's vendor liability.
// Archived medicines reject payments.
func (s *Service) ApplyToMedicine(ctx context.Context, medID id.ID, amount types.MinorUnits, period time.Time) (*medicine.Medicine, error) {
	var med *medicine.Medicine
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		med, err = s.medicines.GetForUpdate(ctx, medID)
		if err != nil {
			return err
		}

		if med.DeletionMark {
			return apperror.NewValidation("cannot pay an archived medicine").
				WithDetail("medicineId", medID.String())
		}

		if err := med.Apply("medicine", amount); err != nil {
			return err
		}
		if err := s.medicines.UpdateSettlement(ctx, med); err != nil {
			return fmt.Errorf("update medicine settlement: %w", err)
		}

		return s.recordPayment(ctx, KindMedicine, medID, amount, period)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment applied to medicine",
		"medicine_id", medID,
		"amount", amount,
		"status", med.PaymentStatus,
	)
	return med, nil
}

// ApplyToPurchaseOrder settles amount against a purchase order.
// Cancelled orders reject payments.
func (s *Service) ApplyToPurchaseOrder(ctx context.Context, docID id.ID, amount types.MinorUnits, period time.Time) (*purchaseorder.PurchaseOrder, error) {
	var doc *purchaseorder.PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.orders.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.Status == purchaseorder.StatusCancelled {
			return apperror.NewValidation("cannot pay a cancelled purchase order").
				WithDetail("purchaseOrderId", docID.String())
		}

		if err := doc.Apply("purchase_order", amount); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, doc); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}

		return s.recordPayment(ctx, KindPurchaseOrder, docID, amount, period)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment applied to purchase order",
		"purchase_order_id", docID,
		"amount", amount,
		"status", doc.PaymentStatus,
	)
	return doc, nil
}

// History returns payment history matching the filter.
func (s *Service) History(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	return s.repo.ListPayments(ctx, filter)
}

// Totals returns aggregate paid amounts per entity kind.
func (s *Service) Totals(ctx context.Context, filter TotalsFilter) ([]KindTotal, error) {
	return s.repo.GetTotals(ctx, filter)
}

func (s *Service) recordPayment(ctx context.Context, kind EntityKind, entityID id.ID, amount types.MinorUnits, period time.Time) error {
	payment := Payment{
		ID:         id.New(),
		EntityKind: kind,
		EntityID:   entityID,
		Amount:     amount,
		Period:     period,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  appctx.GetUserID(ctx),
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}
