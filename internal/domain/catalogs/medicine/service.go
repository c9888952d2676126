package medicine

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
	"medledger/internal/domain/registers/stock"
	"medledger/pkg/numerator"
)

// Service provides business logic for the Medicine catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Medicine]
	repo      Repository
	txManager tx.Manager
	stock     *stock.Service
	numerator *numerator.Service
}

// NewService creates a new Medicine service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	stockSvc *stock.Service,
	num *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Medicine]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "medicine",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
		stock:          stockSvc,
		numerator:      num,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.checkBarcodeUnique)

	return svc
}

// Opening describes the initial state a medicine is registered with:
// on-hand quantity plus the vendor liability for that opening batch.
type Opening struct {
	Quantity    types.Quantity
	TotalCost   types.MinorUnits
	InitialPaid types.MinorUnits
}

// CreateWithOpening registers a medicine together with its opening stock
// and settlement state. The catalog row, the opening stock receipt, and
// the settlement initialization commit atomically.
func (s *Service) CreateWithOpening(ctx context.Context, med *Medicine, opening Opening) error {
	if opening.Quantity.IsNegative() {
		return apperror.NewValidation("opening quantity cannot be negative").
			WithDetail("field", "quantity")
	}

	settlement, err := entity.InitializeSettlement("medicine", opening.TotalCost, opening.InitialPaid)
	if err != nil {
		return err
	}
	med.Settlement = settlement

	if err := med.Validate(ctx); err != nil {
		return err
	}
	if err := s.prepareForCreate(ctx, med); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, med); err != nil {
			return fmt.Errorf("create medicine: %w", err)
		}
		if opening.Quantity.IsPositive() {
			err := s.stock.Credit(ctx, "medicine_opening", med.ID, time.Now().UTC(), []stock.Line{
				{MedicineID: med.ID, Quantity: opening.Quantity},
			})
			if err != nil {
				return fmt.Errorf("credit opening stock: %w", err)
			}
		}
		return nil
	})
}

// GetForUpdate retrieves medicine with row lock.
func (s *Service) GetForUpdate(ctx context.Context, medID id.ID) (*Medicine, error) {
	return s.repo.GetForUpdate(ctx, medID)
}

// FindByBarcode retrieves medicine by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Medicine, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, med *Medicine) error {
	if med.Code == "" {
		cfg := numerator.DefaultConfig("MED")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		med.Code = code
	}
	return s.checkBarcodeUnique(ctx, med)
}

// checkBarcodeUnique verifies the barcode is not used by another medicine.
func (s *Service) checkBarcodeUnique(ctx context.Context, med *Medicine) error {
	if med.Barcode == nil || *med.Barcode == "" {
		return nil
	}
	existing, err := s.repo.FindByBarcode(ctx, *med.Barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != med.ID {
		return apperror.NewConflict("medicine with this barcode already exists").
			WithDetail("barcode", *med.Barcode)
	}
	return nil
}
