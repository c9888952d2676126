package reports

import "context"

// Repository defines the read-side queries behind the reports.
// Aggregation happens in SQL at query time; nothing is precomputed.
type Repository interface {
	GetStockSummary(ctx context.Context, filter StockSummaryFilter, threshold int64) (*StockSummary, error)
	GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error)
	GetPaymentSummary(ctx context.Context, filter PaymentSummaryFilter) (*PaymentSummary, error)
	GetVendorSummary(ctx context.Context) (*VendorSummary, error)
}
