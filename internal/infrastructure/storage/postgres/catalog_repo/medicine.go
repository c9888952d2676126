package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"medledger/internal/core/apperror"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/infrastructure/storage/postgres"
)

const medicineTable = "cat_medicines"

// MedicineRepo implements medicine.Repository.
type MedicineRepo struct {
	*BaseCatalogRepo[*medicine.Medicine]
}

// NewMedicineRepo creates a new medicine repository.
func NewMedicineRepo(txManager *postgres.TxManager) *MedicineRepo {
	return &MedicineRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			medicineTable,
			postgres.ExtractDBColumns[medicine.Medicine](),
			func() *medicine.Medicine { return &medicine.Medicine{} },
		),
	}
}

// FindByBarcode retrieves medicine by barcode.
func (r *MedicineRepo) FindByBarcode(ctx context.Context, barcode string) (*medicine.Medicine, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("medicine", barcode)
		}
		return nil, err
	}
	return item, nil
}

// UpdateSettlement persists only the settlement fields, bumping the version.
// Used on payment and purchase order completion paths where the rest of the
// catalog row must stay untouched.
func (r *MedicineRepo) UpdateSettlement(ctx context.Context, med *medicine.Medicine) error {
	q := r.Builder().
		Update(medicineTable).
		Set("paid_amount", med.PaidAmount).
		Set("due_amount", med.DueAmount).
		Set("payment_status", med.PaymentStatus).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": med.ID}).
		Where(squirrel.Eq{"version": med.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update settlement: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update medicine settlement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("medicine", med.ID)
	}

	med.Version++
	return nil
}
