// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/registers/stock"
	"medledger/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	stockBalancesTable  = "reg_stock_balances"
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

var movementCols = []string{
	"id", "recorder_type", "recorder_id", "record_type",
	"period", "line_no", "medicine_id", "quantity",
}

// CreateMovements batch inserts movements.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.RecorderType, m.RecorderID, m.RecordType,
				m.Period, m.LineNo, m.MedicineID, m.Quantity,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert. Prefer calling CreateMovements within tx.
	q := r.builder.Insert(stockMovementsTable).Columns(movementCols...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.RecorderType, m.RecorderID, m.RecordType,
			m.Period, m.LineNo, m.MedicineID, m.Quantity,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementCols...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns current balance for a medicine.
// A missing row reads as a zero balance.
func (r *StockRepo) GetBalance(ctx context.Context, medicineID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	q := r.builder.Select(
		"medicine_id", "quantity", "last_movement_at", "updated_at",
	).From(stockBalancesTable).
		Where(squirrel.Eq{"medicine_id": medicineID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{MedicineID: medicineID, Quantity: 0}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns balance with pessimistic lock.
// The row is created on first access so the lock is always taken, which
// serializes concurrent deductions against the same medicine.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, medicineID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	querier := r.querier(ctx)

	insertSQL := `
		INSERT INTO reg_stock_balances (medicine_id, quantity, last_movement_at, updated_at)
		VALUES ($1, 0, NOW(), NOW())
		ON CONFLICT (medicine_id) DO NOTHING
	`
	if _, err := querier.Exec(ctx, insertSQL, medicineID); err != nil {
		return balance, fmt.Errorf("ensure balance row: %w", err)
	}

	sql := `
		SELECT medicine_id, quantity, last_movement_at, updated_at
		FROM reg_stock_balances
		WHERE medicine_id = $1
		FOR UPDATE
	`
	if err := pgxscan.Get(ctx, querier, &balance, sql, medicineID); err != nil {
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// ApplyBalanceDelta upserts the balance row by delta.
func (r *StockRepo) ApplyBalanceDelta(ctx context.Context, medicineID id.ID, delta types.Quantity, period time.Time) error {
	sql := `
		INSERT INTO reg_stock_balances (medicine_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (medicine_id) DO UPDATE SET
			quantity = reg_stock_balances.quantity + EXCLUDED.quantity,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = NOW()
	`

	if _, err := r.querier(ctx).Exec(ctx, sql, medicineID, delta, period); err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}

	return nil
}

// ListBalances returns balances matching the filter.
func (r *StockRepo) ListBalances(ctx context.Context, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.builder.Select(
		"medicine_id", "quantity", "last_movement_at", "updated_at",
	).From(stockBalancesTable)

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	if len(filter.MedicineIDs) > 0 {
		q = q.Where(squirrel.Eq{"medicine_id": filter.MedicineIDs})
	}

	if filter.MaxQuantity != nil {
		q = q.Where(squirrel.LtOrEq{"quantity": *filter.MaxQuantity})
	}

	q = q.OrderBy("medicine_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.querier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetMovementHistory returns movement history for a medicine.
func (r *StockRepo) GetMovementHistory(ctx context.Context, medicineID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementCols...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"medicine_id": medicineID})

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "line_no DESC")

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

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetTurnover calculates receipt/expense totals and boundary balances for a period.
func (r *StockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	var result stock.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	conditions := "period >= $1 AND period < $2"

	if filter.MedicineID != nil {
		conditions += " AND medicine_id = $3"
		args = append(args, *filter.MedicineID)
		result.MedicineID = *filter.MedicineID
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE 0 END), 0) AS receipt,
			COALESCE(SUM(CASE WHEN record_type = 'expense' THEN quantity ELSE 0 END), 0) AS expense
		FROM reg_stock_movements
		WHERE %s
	`, conditions)

	querier := r.querier(ctx)
	err := querier.QueryRow(ctx, sql, args...).Scan(&result.Receipt, &result.Expense)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}

	openingArgs := []any{filter.FromDate}
	openingConditions := "period < $1"
	if filter.MedicineID != nil {
		openingConditions += " AND medicine_id = $2"
		openingArgs = append(openingArgs, *filter.MedicineID)
	}

	openingSQL := fmt.Sprintf(`
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END),
			0
		)
		FROM reg_stock_movements
		WHERE %s
	`, openingConditions)

	err = querier.QueryRow(ctx, openingSQL, openingArgs...).Scan(&result.OpeningBalance)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}

	result.ClosingBalance = result.OpeningBalance + result.Receipt - result.Expense

	return result, nil
}

// Ensure interface compliance.
var _ stock.Repository = (*StockRepo)(nil)
