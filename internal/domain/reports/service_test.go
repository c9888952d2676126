package reports

import (
	"context"
	"testing"

	"medledger/internal/core/apperror"
	"medledger/internal/core/types"
)

type fakeRepo struct {
	stockFilter    StockSummaryFilter
	stockThreshold int64
	salesFilter    SalesSummaryFilter
	paymentFilter  PaymentSummaryFilter
	paymentSummary *PaymentSummary
}

func (f *fakeRepo) GetStockSummary(ctx context.Context, filter StockSummaryFilter, threshold int64) (*StockSummary, error) {
	f.stockFilter = filter
	f.stockThreshold = threshold
	return &StockSummary{Threshold: types.Quantity(threshold)}, nil
}

func (f *fakeRepo) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error) {
	f.salesFilter = filter
	return &SalesSummary{}, nil
}

func (f *fakeRepo) GetPaymentSummary(ctx context.Context, filter PaymentSummaryFilter) (*PaymentSummary, error) {
	f.paymentFilter = filter
	if f.paymentSummary != nil {
		return f.paymentSummary, nil
	}
	return &PaymentSummary{}, nil
}

func (f *fakeRepo) GetVendorSummary(ctx context.Context) (*VendorSummary, error) {
	return &VendorSummary{}, nil
}

func TestGetStockSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("configured threshold applies by default", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, 25)

		if _, err := svc.GetStockSummary(ctx, StockSummaryFilter{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.stockThreshold != 25 {
			t.Errorf("threshold = %d, want 25", repo.stockThreshold)
		}
	})

	t.Run("filter threshold overrides", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, 25)

		override := types.Quantity(5)
		if _, err := svc.GetStockSummary(ctx, StockSummaryFilter{Threshold: &override}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.stockThreshold != 5 {
			t.Errorf("threshold = %d, want 5", repo.stockThreshold)
		}
	})

	t.Run("negative threshold rejected", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, 0)

		bad := types.Quantity(-1)
		_, err := svc.GetStockSummary(ctx, StockSummaryFilter{Threshold: &bad})
		if !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}

func TestGetSalesSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults the window", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, 0)

		if _, err := svc.GetSalesSummary(ctx, SalesSummaryFilter{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.salesFilter.WindowDays != DefaultSalesWindowDays {
			t.Errorf("window = %d, want %d", repo.salesFilter.WindowDays, DefaultSalesWindowDays)
		}
	})

	t.Run("oversized window rejected", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, 0)

		_, err := svc.GetSalesSummary(ctx, SalesSummaryFilter{WindowDays: 400})
		if !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}

func TestGetPaymentSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("kind filter reaches the repository", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, 0)

		if _, err := svc.GetPaymentSummary(ctx, PaymentSummaryFilter{EntityKind: "medicine"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.paymentFilter.EntityKind != "medicine" {
			t.Errorf("kind = %q, want medicine", repo.paymentFilter.EntityKind)
		}
	})

	t.Run("empty kind covers both ledgers", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, 0)

		if _, err := svc.GetPaymentSummary(ctx, PaymentSummaryFilter{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, 0)

		_, err := svc.GetPaymentSummary(ctx, PaymentSummaryFilter{EntityKind: "warehouse"})
		if !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}
