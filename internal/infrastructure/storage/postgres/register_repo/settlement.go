package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medledger/internal/domain/registers/settlement"
	"medledger/internal/infrastructure/storage/postgres"
)

const paymentsTable = "reg_payments"

// SettlementRepo implements settlement.Repository.
type SettlementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSettlementRepo creates a new payment ledger repository.
func NewSettlementRepo(txManager *postgres.TxManager) *SettlementRepo {
	return &SettlementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SettlementRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// CreatePayment inserts an applied payment.
func (r *SettlementRepo) CreatePayment(ctx context.Context, payment settlement.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns("id", "entity_kind", "entity_id", "amount", "period", "created_at", "created_by").
		Values(
			payment.ID, payment.EntityKind, payment.EntityID,
			payment.Amount, payment.Period, payment.CreatedAt, payment.CreatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// ListPayments returns payment history matching the filter.
func (r *SettlementRepo) ListPayments(ctx context.Context, filter settlement.PaymentFilter) ([]settlement.Payment, error) {
	q := r.builder.Select(
		"id", "entity_kind", "entity_id", "amount", "period", "created_at", "created_by",
	).From(paymentsTable)

	if filter.EntityKind != nil {
		q = q.Where(squirrel.Eq{"entity_kind": *filter.EntityKind})
	}

	if filter.EntityID != nil {
		q = q.Where(squirrel.Eq{"entity_id": *filter.EntityID})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []settlement.Payment
	if err := pgxscan.Select(ctx, r.querier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}

	return payments, nil
}

// GetTotals returns aggregate paid amounts per entity kind.
func (r *SettlementRepo) GetTotals(ctx context.Context, filter settlement.TotalsFilter) ([]settlement.KindTotal, error) {
	q := r.builder.Select(
		"entity_kind",
		"COUNT(*) AS payment_count",
		"COALESCE(SUM(amount), 0) AS total_amount",
	).From(paymentsTable)

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.GroupBy("entity_kind").OrderBy("entity_kind")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var totals []settlement.KindTotal
	if err := pgxscan.Select(ctx, r.querier(ctx), &totals, sql, args...); err != nil {
		return nil, fmt.Errorf("select totals: %w", err)
	}

	return totals, nil
}

// Ensure interface compliance.
var _ settlement.Repository = (*SettlementRepo)(nil)
