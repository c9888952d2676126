package purchaseorder

import (
	"context"
	"fmt"
	"time"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/tx"
	"medledger/internal/core/types"
	"medledger/internal/domain"
	"medledger/internal/domain/audit"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/domain/registers/stock"
	"medledger/pkg/logger"
	"medledger/pkg/numerator"
)

// VendorReader checks vendors referenced by purchase orders.
type VendorReader interface {
	Exists(ctx context.Context, vendorID id.ID) (bool, error)
}

// MedicineStore resolves and settles medicines referenced by order lines.
type MedicineStore interface {
	GetByID(ctx context.Context, medID id.ID) (*medicine.Medicine, error)
	GetForUpdate(ctx context.Context, medID id.ID) (*medicine.Medicine, error)
	UpdateSettlement(ctx context.Context, med *medicine.Medicine) error
}

// Service provides business operations for purchase order documents.
type Service struct {
	repo      Repository
	vendors   VendorReader
	medicines MedicineStore
	stock     *stock.Service
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	vendors VendorReader,
	medicines MedicineStore,
	stockSvc *stock.Service,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		vendors:   vendors,
		medicines: medicines,
		stock:     stockSvc,
		numerator: num,
		txManager: txManager,
	}
}

// Record validates and persists a new pending purchase order. Stock is
// not touched: goods arrive only on completion. initialPaid pre-settles
// part of the order total at creation time.
func (s *Service) Record(ctx context.Context, doc *PurchaseOrder, initialPaid types.MinorUnits) error {
	doc.Status = StatusPending
	doc.RecalculateTotals()

	settlement, err := entity.InitializeSettlement("purchase_order", doc.TotalAmount, initialPaid)
	if err != nil {
		return err
	}
	doc.Settlement = settlement

	if err := doc.Validate(ctx); err != nil {
		return err
	}
	audit.EnrichCreatedBy(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	exists, err := s.vendors.Exists(ctx, doc.VendorID)
	if err != nil {
		return fmt.Errorf("check vendor: %w", err)
	}
	if !exists {
		return apperror.NewNotFound("vendor", doc.VendorID.String())
	}

	for _, line := range doc.Lines {
		med, err := s.medicines.GetByID(ctx, line.MedicineID)
		if err != nil {
			return err
		}
		if med.DeletionMark {
			return apperror.NewValidation("medicine is archived").
				WithDetail("medicineId", med.ID.String())
		}
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig("PO")
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order recorded",
		"id", doc.ID,
		"number", doc.Number,
		"total_amount", doc.TotalAmount,
	)
	return nil
}

// Complete marks a pending order received: stock is credited and each
// line's cost accrues on the medicine's vendor liability, all in one
// transaction. Completing a non-pending order fails with InvalidTransition.
func (s *Service) Complete(ctx context.Context, docID id.ID) error {
	var number string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		now := time.Now().UTC()
		if err := doc.Transition(StatusReceived, now); err != nil {
			return err
		}
		audit.EnrichUpdatedBy(ctx, &doc.UpdatedBy)

		creditLines := make([]stock.Line, 0, len(doc.Lines))
		for _, line := range doc.Lines {
			creditLines = append(creditLines, stock.Line{
				MedicineID: line.MedicineID,
				Quantity:   line.Quantity,
			})
		}
		if err := s.stock.Credit(ctx, DocumentType, doc.ID, doc.Date, creditLines); err != nil {
			return err
		}

		for _, line := range doc.Lines {
			med, err := s.medicines.GetForUpdate(ctx, line.MedicineID)
			if err != nil {
				return err
			}
			if err := med.AddObligation(line.Amount); err != nil {
				return err
			}
			if err := s.medicines.UpdateSettlement(ctx, med); err != nil {
				return fmt.Errorf("update medicine settlement: %w", err)
			}
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		number = doc.Number
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order completed", "id", docID, "number", number)
	return nil
}

// Cancel marks a pending order cancelled. No stock or settlement effects
// are produced; orders with recorded payments cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, docID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if doc.PaidAmount.IsPositive() {
			return apperror.NewConflict("cannot cancel a purchase order with recorded payments").
				WithDetail("paidAmount", int64(doc.PaidAmount))
		}

		if err := doc.Transition(StatusCancelled, time.Now().UTC()); err != nil {
			return err
		}
		audit.EnrichUpdatedBy(ctx, &doc.UpdatedBy)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order cancelled", "id", docID)
	return nil
}

// GetByID retrieves a purchase order with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}
