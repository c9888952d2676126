package sale

import (
	"context"
	"fmt"
	"time"

	"medledger/internal/core/apperror"
	"medledger/internal/core/id"
	"medledger/internal/core/tx"
	"medledger/internal/domain"
	"medledger/internal/domain/audit"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/domain/registers/stock"
	"medledger/pkg/logger"
	"medledger/pkg/numerator"
)

// MedicineReader resolves medicines referenced by sale lines.
type MedicineReader interface {
	GetByID(ctx context.Context, medID id.ID) (*medicine.Medicine, error)
}

// Service provides business operations for sale documents.
type Service struct {
	repo      Repository
	medicines MedicineReader
	stock     *stock.Service
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new sale service.
func NewService(
	repo Repository,
	medicines MedicineReader,
	stockSvc *stock.Service,
	num *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		medicines: medicines,
		stock:     stockSvc,
		numerator: num,
		txManager: txManager,
	}
}

// Record validates, prices and persists a sale, deducting stock in the
// same transaction. If any line lacks stock the whole sale is rejected
// and nothing is written.
//
// Unit prices always come from the medicine catalog; totals are
// recalculated from the priced lines.
func (s *Service) Record(ctx context.Context, doc *Sale) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	for i := range doc.Lines {
		med, err := s.medicines.GetByID(ctx, doc.Lines[i].MedicineID)
		if err != nil {
			return err
		}
		if med.DeletionMark {
			return apperror.NewValidation("medicine is archived").
				WithDetail("medicineId", med.ID.String())
		}
		doc.Lines[i].UnitPrice = med.Price
	}
	doc.RecalculateTotals()
	audit.EnrichCreatedBy(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	if doc.Number == "" {
		cfg := numerator.DefaultConfig("SL")
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	deductLines := make([]stock.Line, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		deductLines = append(deductLines, stock.Line{
			MedicineID: line.MedicineID,
			Quantity:   line.Quantity,
		})
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.stock.Deduct(ctx, DocumentType, doc.ID, doc.Date, deductLines); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale recorded",
		"id", doc.ID,
		"number", doc.Number,
		"total_amount", doc.TotalAmount,
	)
	return nil
}

// GetByID retrieves a sale with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Sale, error) {
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

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}
