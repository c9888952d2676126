package reports

import (
	"context"
	"fmt"

	"medledger/internal/core/apperror"
)

// DefaultLowStockThreshold is used when no threshold is configured.
const DefaultLowStockThreshold = 10

// DefaultSalesWindowDays is the default sales summary window.
const DefaultSalesWindowDays = 7

// Service provides report generation operations.
type Service struct {
	repo Repository

	// lowStockThreshold is the configured quantity below which a
	// medicine is flagged as low stock
	lowStockThreshold int64
}

// NewService creates a new reports service.
func NewService(repo Repository, lowStockThreshold int64) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{repo: repo, lowStockThreshold: lowStockThreshold}
}

// GetStockSummary generates the stock position report.
func (s *Service) GetStockSummary(ctx context.Context, filter StockSummaryFilter) (*StockSummary, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	threshold := s.lowStockThreshold
	if filter.Threshold != nil {
		if filter.Threshold.IsNegative() {
			return nil, apperror.NewValidation("threshold cannot be negative").
				WithDetail("field", "threshold")
		}
		threshold = filter.Threshold.Int64()
	}

	report, err := s.repo.GetStockSummary(ctx, filter, threshold)
	if err != nil {
		return nil, fmt.Errorf("get stock summary: %w", err)
	}
	return report, nil
}

// GetSalesSummary generates the windowed sales report.
func (s *Service) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error) {
	if filter.WindowDays <= 0 {
		filter.WindowDays = DefaultSalesWindowDays
	}
	if filter.WindowDays > 365 {
		return nil, apperror.NewValidation("window cannot exceed 365 days").
			WithDetail("field", "windowDays")
	}

	report, err := s.repo.GetSalesSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get sales summary: %w", err)
	}
	return report, nil
}

// GetPaymentSummary generates the reconciliation overview, a snapshot of
// settlement state across the ledgers at the time of the read.
func (s *Service) GetPaymentSummary(ctx context.Context, filter PaymentSummaryFilter) (*PaymentSummary, error) {
	switch filter.EntityKind {
	case "", "medicine", "purchase_order":
	default:
		return nil, apperror.NewValidation("unknown entity kind").
			WithDetail("field", "kind").
			WithDetail("value", filter.EntityKind)
	}

	report, err := s.repo.GetPaymentSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get payment summary: %w", err)
	}
	return report, nil
}

// GetVendorSummary generates the per-vendor purchasing report.
func (s *Service) GetVendorSummary(ctx context.Context) (*VendorSummary, error) {
	report, err := s.repo.GetVendorSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("get vendor summary: %w", err)
	}
	return report, nil
}
