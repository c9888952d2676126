package stock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/pkg/logger"
)

// Line is a single stock mutation requested by a document.
type Line struct {
	MedicineID id.ID
	Quantity   types.Quantity
}

// Service provides business operations for the stock register.
// Transactions are managed by the caller (document services): Deduct and
// Credit must run inside an open transaction.
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Deduct atomically checks availability and writes expense movements for
// all lines. Balance rows are locked in medicine ID order; if any line
// lacks stock the whole call fails with InsufficientStock and no movement
// is written.
func (s *Service) Deduct(ctx context.Context, recorderType string, recorderID id.ID, period time.Time, lines []Line) error {
	if err := validateLines(recorderID, lines); err != nil {
		return err
	}

	ordered := orderedByMedicine(lines)

	for _, line := range ordered {
		balance, err := s.repo.GetBalanceForUpdate(ctx, line.MedicineID)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", line.MedicineID, err)
		}
		if balance.Quantity < line.Quantity {
			return apperror.NewInsufficientStock(
				line.MedicineID.String(),
				line.Quantity.Int64(),
				balance.Quantity.Int64(),
			)
		}
	}

	movements := make([]entity.StockMovement, 0, len(ordered))
	for i, line := range ordered {
		movements = append(movements, entity.StockMovement{
			MovementBase: entity.NewMovementBase(recorderType, recorderID, entity.RecordTypeExpense, period, i+1),
			MedicineID:   line.MedicineID,
			Quantity:     line.Quantity,
		})
	}
	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	for _, line := range ordered {
		if err := s.repo.ApplyBalanceDelta(ctx, line.MedicineID, line.Quantity.Neg(), period); err != nil {
			return fmt.Errorf("apply balance delta for %s: %w", line.MedicineID, err)
		}
	}

	logger.Info(ctx, "deducted stock",
		"recorder_type", recorderType,
		"recorder_id", recorderID,
		"lines", len(ordered),
	)
	return nil
}

// Credit writes receipt movements and increases balances for all lines.
func (s *Service) Credit(ctx context.Context, recorderType string, recorderID id.ID, period time.Time, lines []Line) error {
	if err := validateLines(recorderID, lines); err != nil {
		return err
	}

	ordered := orderedByMedicine(lines)

	movements := make([]entity.StockMovement, 0, len(ordered))
	for i, line := range ordered {
		movements = append(movements, entity.StockMovement{
			MovementBase: entity.NewMovementBase(recorderType, recorderID, entity.RecordTypeReceipt, period, i+1),
			MedicineID:   line.MedicineID,
			Quantity:     line.Quantity,
		})
	}
	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	for _, line := range ordered {
		if err := s.repo.ApplyBalanceDelta(ctx, line.MedicineID, line.Quantity, period); err != nil {
			return fmt.Errorf("apply balance delta for %s: %w", line.MedicineID, err)
		}
	}

	logger.Info(ctx, "credited stock",
		"recorder_type", recorderType,
		"recorder_id", recorderID,
		"lines", len(ordered),
	)
	return nil
}

// GetAvailability returns the current on-hand quantity for a medicine.
func (s *Service) GetAvailability(ctx context.Context, medicineID id.ID) (types.Quantity, error) {
	balance, err := s.repo.GetBalance(ctx, medicineID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.Quantity, nil
}

// GetMovements returns the movements produced by a document.
func (s *Service) GetMovements(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	return s.repo.GetMovementsByRecorder(ctx, recorderID)
}

// GetMovementHistory returns movement history for a medicine.
func (s *Service) GetMovementHistory(ctx context.Context, medicineID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.GetMovementHistory(ctx, medicineID, filter)
}

// GetTurnover generates a turnover report for the period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}

func validateLines(recorderID id.ID, lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required")
	}
	if id.IsNil(recorderID) {
		return apperror.NewValidation("recorder_id is required")
	}
	seen := make(map[id.ID]bool, len(lines))
	for i, line := range lines {
		if id.IsNil(line.MedicineID) {
			return apperror.NewValidation(fmt.Sprintf("line %d: medicine_id is required", i+1))
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if seen[line.MedicineID] {
			return apperror.NewValidation(fmt.Sprintf("line %d: duplicate medicine", i+1))
		}
		seen[line.MedicineID] = true
	}
	return nil
}

// orderedByMedicine returns a copy sorted by medicine ID. Locks are
// always taken in this order to avoid deadlocks between concurrent
// documents touching the same medicines.
func orderedByMedicine(lines []Line) []Line {
	ordered := make([]Line, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MedicineID.String() < ordered[j].MedicineID.String()
	})
	return ordered
}
