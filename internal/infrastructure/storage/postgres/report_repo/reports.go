// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/reports"
	"medledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
// All aggregation is pushed into SQL; nothing is precomputed.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// stockSummaryRow is the scan target for the stock summary query.
type stockSummaryRow struct {
	MedicineID   string `db:"medicine_id"`
	MedicineName string `db:"medicine_name"`
	Code         string `db:"code"`
	Quantity     int64  `db:"quantity"`
	UnitPrice    int64  `db:"unit_price"`
	StockValue   int64  `db:"stock_value"`
}

// GetStockSummary generates the stock position report joined with the catalog.
func (r *ReportRepo) GetStockSummary(ctx context.Context, filter reports.StockSummaryFilter, threshold int64) (*reports.StockSummary, error) {
	query := `
		SELECT
			m.id as medicine_id,
			m.name as medicine_name,
			COALESCE(m.code, '') as code,
			COALESCE(b.quantity, 0) as quantity,
			m.price as unit_price,
			COALESCE(b.quantity, 0) * m.price as stock_value
		FROM cat_medicines m
		LEFT JOIN reg_stock_balances b ON b.medicine_id = m.id
		WHERE m.deletion_mark = false
	`
	args := []any{threshold}
	argIndex := 2

	if len(filter.MedicineIDs) > 0 {
		placeholders := make([]string, len(filter.MedicineIDs))
		for i, medID := range filter.MedicineIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, medID)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.LowStockOnly {
		query += " AND COALESCE(b.quantity, 0) < $1"
	}

	query += " ORDER BY m.name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []stockSummaryRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("stock summary: %w", err)
	}

	return buildStockSummary(rows, threshold)
}

// buildStockSummary aggregates the scanned rows into the report. A medicine
// is low stock when its quantity is strictly below the threshold, and out of
// stock when the quantity is zero.
func buildStockSummary(rows []stockSummaryRow, threshold int64) (*reports.StockSummary, error) {
	summary := &reports.StockSummary{
		AsOf:      time.Now(),
		Threshold: types.Quantity(threshold),
		Items:     make([]reports.StockSummaryItem, 0, len(rows)),
	}

	var totalValue types.MinorUnits
	for _, row := range rows {
		medID, err := id.Parse(row.MedicineID)
		if err != nil {
			return nil, fmt.Errorf("parse medicine id: %w", err)
		}

		item := reports.StockSummaryItem{
			MedicineID:   medID,
			MedicineName: row.MedicineName,
			Code:         row.Code,
			Quantity:     types.Quantity(row.Quantity),
			UnitPrice:    types.MinorUnits(row.UnitPrice),
			StockValue:   types.MinorUnits(row.StockValue),
			LowStock:     row.Quantity < threshold,
			OutOfStock:   row.Quantity == 0,
		}
		summary.Items = append(summary.Items, item)
		summary.TotalQuantity += item.Quantity
		totalValue += item.StockValue
		if item.LowStock {
			summary.LowStockCount++
		}
		if item.OutOfStock {
			summary.OutOfStockCount++
		}
	}

	summary.TotalItems = len(summary.Items)
	summary.TotalValue = totalValue.ToMajor(2)

	return summary, nil
}

// salesBucketRow is the scan target for the daily sales buckets.
type salesBucketRow struct {
	Date        time.Time `db:"date"`
	SalesCount  int64     `db:"sales_count"`
	Quantity    int64     `db:"quantity"`
	TotalAmount int64     `db:"total_amount"`
}

// topMedicineRow is the scan target for the best-sellers query.
type topMedicineRow struct {
	MedicineID   string `db:"medicine_id"`
	MedicineName string `db:"medicine_name"`
	Quantity     int64  `db:"quantity"`
	TotalAmount  int64  `db:"total_amount"`
}

// GetSalesSummary generates the windowed sales report with daily buckets
// and best-selling medicines.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummary, error) {
	toDate := time.Now()
	fromDate := toDate.AddDate(0, 0, -filter.WindowDays)

	querier := r.querier(ctx)

	bucketQuery := `
		SELECT
			date_trunc('day', s.date) as date,
			COUNT(DISTINCT s.id) as sales_count,
			COALESCE(SUM(l.quantity), 0) as quantity,
			COALESCE(SUM(l.amount), 0) as total_amount
		FROM doc_sales s
		JOIN doc_sale_lines l ON l.document_id = s.id
		WHERE s.deletion_mark = false
		  AND s.date >= $1 AND s.date < $2
	`
	args := []any{fromDate, toDate}

	if filter.MedicineID != nil {
		bucketQuery += " AND l.medicine_id = $3"
		args = append(args, *filter.MedicineID)
	}

	bucketQuery += `
		GROUP BY date_trunc('day', s.date)
		ORDER BY date
	`

	var bucketRows []salesBucketRow
	if err := pgxscan.Select(ctx, querier, &bucketRows, bucketQuery, args...); err != nil {
		return nil, fmt.Errorf("sales buckets: %w", err)
	}

	summary := &reports.SalesSummary{
		FromDate: fromDate,
		ToDate:   toDate,
		Buckets:  make([]reports.SalesBucket, 0, len(bucketRows)),
	}

	var totalAmount types.MinorUnits
	for _, row := range bucketRows {
		bucket := reports.SalesBucket{
			Date:        row.Date,
			SalesCount:  row.SalesCount,
			Quantity:    types.Quantity(row.Quantity),
			TotalAmount: types.MinorUnits(row.TotalAmount),
		}
		summary.Buckets = append(summary.Buckets, bucket)
		summary.SalesCount += bucket.SalesCount
		summary.TotalQuantity += bucket.Quantity
		totalAmount += bucket.TotalAmount
	}
	summary.TotalAmount = totalAmount
	summary.TotalRevenue = totalAmount.ToMajor(2)

	// Best sellers are only meaningful for the unfiltered report.
	if filter.MedicineID == nil {
		topQuery := `
			SELECT
				l.medicine_id,
				m.name as medicine_name,
				SUM(l.quantity) as quantity,
				SUM(l.amount) as total_amount
			FROM doc_sale_lines l
			JOIN doc_sales s ON s.id = l.document_id
			JOIN cat_medicines m ON m.id = l.medicine_id
			WHERE s.deletion_mark = false
			  AND s.date >= $1 AND s.date < $2
			GROUP BY l.medicine_id, m.name
			ORDER BY SUM(l.quantity) DESC
			LIMIT 10
		`

		var topRows []topMedicineRow
		if err := pgxscan.Select(ctx, querier, &topRows, topQuery, fromDate, toDate); err != nil {
			return nil, fmt.Errorf("top medicines: %w", err)
		}

		for _, row := range topRows {
			medID, err := id.Parse(row.MedicineID)
			if err != nil {
				return nil, fmt.Errorf("parse medicine id: %w", err)
			}
			summary.TopMedicines = append(summary.TopMedicines, reports.TopMedicine{
				MedicineID:   medID,
				MedicineName: row.MedicineName,
				Quantity:     types.Quantity(row.Quantity),
				TotalAmount:  types.MinorUnits(row.TotalAmount),
			})
		}
	}

	return summary, nil
}

// paymentKindRow is the scan target for the per-kind settlement aggregates.
type paymentKindRow struct {
	EntityKind   string `db:"entity_kind"`
	EntityCount  int64  `db:"entity_count"`
	TotalPaid    int64  `db:"total_paid"`
	TotalDue     int64  `db:"total_due"`
	PaidCount    int64  `db:"paid_count"`
	PartialCount int64  `db:"partial_count"`
	DueCount     int64  `db:"due_count"`
}

// GetPaymentSummary generates the reconciliation overview across the
// settlement-bearing ledgers, optionally restricted to one kind.
func (r *ReportRepo) GetPaymentSummary(ctx context.Context, filter reports.PaymentSummaryFilter) (*reports.PaymentSummary, error) {
	query := `
		SELECT
			kinds.entity_kind,
			COUNT(*) as entity_count,
			COALESCE(SUM(kinds.paid_amount), 0) as total_paid,
			COALESCE(SUM(kinds.due_amount), 0) as total_due,
			COUNT(*) FILTER (WHERE kinds.payment_status = 'PAID') as paid_count,
			COUNT(*) FILTER (WHERE kinds.payment_status = 'PARTIAL') as partial_count,
			COUNT(*) FILTER (WHERE kinds.payment_status = 'DUE') as due_count
		FROM (
			SELECT 'medicine' as entity_kind, paid_amount, due_amount, payment_status
			FROM cat_medicines
			WHERE deletion_mark = false

			UNION ALL

			SELECT 'purchase_order' as entity_kind, paid_amount, due_amount, payment_status
			FROM doc_purchase_orders
			WHERE deletion_mark = false AND status <> 'cancelled'
		) kinds
	`
	var args []any
	if filter.EntityKind != "" {
		query += " WHERE kinds.entity_kind = $1"
		args = append(args, filter.EntityKind)
	}
	query += `
		GROUP BY kinds.entity_kind
		ORDER BY kinds.entity_kind
	`

	var rows []paymentKindRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("payment summary: %w", err)
	}

	summary := &reports.PaymentSummary{
		AsOf:  time.Now(),
		Kinds: make([]reports.PaymentKindSummary, 0, len(rows)),
	}

	for _, row := range rows {
		kind := reports.PaymentKindSummary{
			EntityKind:   row.EntityKind,
			EntityCount:  row.EntityCount,
			TotalPaid:    types.MinorUnits(row.TotalPaid),
			TotalDue:     types.MinorUnits(row.TotalDue),
			PaidCount:    row.PaidCount,
			PartialCount: row.PartialCount,
			DueCount:     row.DueCount,
		}
		summary.Kinds = append(summary.Kinds, kind)
		summary.TotalPaid += kind.TotalPaid
		summary.TotalDue += kind.TotalDue
	}

	return summary, nil
}

// vendorSummaryRow is the scan target for the vendor purchasing aggregates.
type vendorSummaryRow struct {
	VendorID       string `db:"vendor_id"`
	VendorName     string `db:"vendor_name"`
	OrderCount     int64  `db:"order_count"`
	PendingCount   int64  `db:"pending_count"`
	ReceivedCount  int64  `db:"received_count"`
	CancelledCount int64  `db:"cancelled_count"`
	TotalOrdered   int64  `db:"total_ordered"`
	TotalPaid      int64  `db:"total_paid"`
	TotalDue       int64  `db:"total_due"`
}

// GetVendorSummary generates the per-vendor purchasing report.
func (r *ReportRepo) GetVendorSummary(ctx context.Context) (*reports.VendorSummary, error) {
	query := `
		SELECT
			v.id as vendor_id,
			v.name as vendor_name,
			COUNT(o.id) as order_count,
			COUNT(o.id) FILTER (WHERE o.status = 'pending') as pending_count,
			COUNT(o.id) FILTER (WHERE o.status = 'received') as received_count,
			COUNT(o.id) FILTER (WHERE o.status = 'cancelled') as cancelled_count,
			COALESCE(SUM(o.total_amount) FILTER (WHERE o.status <> 'cancelled'), 0) as total_ordered,
			COALESCE(SUM(o.paid_amount) FILTER (WHERE o.status <> 'cancelled'), 0) as total_paid,
			COALESCE(SUM(o.due_amount) FILTER (WHERE o.status <> 'cancelled'), 0) as total_due
		FROM cat_vendors v
		LEFT JOIN doc_purchase_orders o ON o.vendor_id = v.id AND o.deletion_mark = false
		WHERE v.deletion_mark = false
		GROUP BY v.id, v.name
		ORDER BY v.name
	`

	var rows []vendorSummaryRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, query); err != nil {
		return nil, fmt.Errorf("vendor summary: %w", err)
	}

	summary := &reports.VendorSummary{
		AsOf:  time.Now(),
		Items: make([]reports.VendorSummaryItem, 0, len(rows)),
	}

	for _, row := range rows {
		vendorID, err := id.Parse(row.VendorID)
		if err != nil {
			return nil, fmt.Errorf("parse vendor id: %w", err)
		}
		summary.Items = append(summary.Items, reports.VendorSummaryItem{
			VendorID:       vendorID,
			VendorName:     row.VendorName,
			OrderCount:     row.OrderCount,
			PendingCount:   row.PendingCount,
			ReceivedCount:  row.ReceivedCount,
			CancelledCount: row.CancelledCount,
			TotalOrdered:   types.MinorUnits(row.TotalOrdered),
			TotalPaid:      types.MinorUnits(row.TotalPaid),
			TotalDue:       types.MinorUnits(row.TotalDue),
		})
	}

	return summary, nil
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
