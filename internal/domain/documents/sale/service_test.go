package sale

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/domain/registers/stock"
	"medledger/pkg/numerator"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	docs  map[id.ID]*Sale
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*Sale), lines: make(map[id.ID][]Line)}
}

func (f *fakeRepo) Create(ctx context.Context, doc *Sale) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Sale, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("sale", docID.String())
	}
	return doc, nil
}

func (f *fakeRepo) GetByNumber(ctx context.Context, number string) (*Sale, error) {
	for _, doc := range f.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("sale", number)
}

func (f *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return f.lines[docID], nil
}

func (f *fakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	f.lines[docID] = lines
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return domain.ListResult[*Sale]{}, nil
}

type fakeMedicines struct {
	meds map[id.ID]*medicine.Medicine
}

func (f *fakeMedicines) GetByID(ctx context.Context, medID id.ID) (*medicine.Medicine, error) {
	med, ok := f.meds[medID]
	if !ok {
		return nil, apperror.NewNotFound("medicine", medID.String())
	}
	return med, nil
}

type fakeStockRepo struct {
	balances  map[id.ID]types.Quantity
	movements []entity.StockMovement
}

func (f *fakeStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeStockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	return nil, nil
}

func (f *fakeStockRepo) GetBalance(ctx context.Context, medicineID id.ID) (entity.StockBalance, error) {
	return entity.StockBalance{MedicineID: medicineID, Quantity: f.balances[medicineID]}, nil
}

func (f *fakeStockRepo) GetBalanceForUpdate(ctx context.Context, medicineID id.ID) (entity.StockBalance, error) {
	return entity.StockBalance{MedicineID: medicineID, Quantity: f.balances[medicineID]}, nil
}

func (f *fakeStockRepo) ApplyBalanceDelta(ctx context.Context, medicineID id.ID, delta types.Quantity, period time.Time) error {
	f.balances[medicineID] += delta
	return nil
}

func (f *fakeStockRepo) ListBalances(ctx context.Context, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	return nil, nil
}

func (f *fakeStockRepo) GetMovementHistory(ctx context.Context, medicineID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	return nil, nil
}

func (f *fakeStockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	return stock.Turnover{}, nil
}

type seqRow struct{ val int64 }

func (r seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return seqRow{val: q.n}
}

// --- tests ---

func newTestService(stockRepo *fakeStockRepo, meds *fakeMedicines) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, meds, stock.NewService(stockRepo), numerator.New(&seqQuerier{}), fakeTxManager{})
	return svc, repo
}

func TestRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts stock and prices from catalog", func(t *testing.T) {
		med := medicine.NewMedicine("MED-001", "Paracetamol", 1250)
		stockRepo := &fakeStockRepo{balances: map[id.ID]types.Quantity{med.ID: 10}}
		svc, repo := newTestService(stockRepo, &fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}})

		doc := NewSale(time.Now())
		// client-supplied price is ignored, catalog wins
		doc.AddLine(med.ID, 3, 99)

		if err := svc.Record(ctx, doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if stockRepo.balances[med.ID] != 7 {
			t.Errorf("balance = %d, want 7", stockRepo.balances[med.ID])
		}
		if doc.TotalAmount != 3750 {
			t.Errorf("total = %d, want 3750", doc.TotalAmount)
		}
		if !strings.HasPrefix(doc.Number, "SL-") {
			t.Errorf("number = %q, want SL- prefix", doc.Number)
		}
		if _, ok := repo.docs[doc.ID]; !ok {
			t.Error("document not persisted")
		}
	})

	t.Run("insufficient stock rejects the sale", func(t *testing.T) {
		med := medicine.NewMedicine("MED-002", "Ibuprofen", 800)
		stockRepo := &fakeStockRepo{balances: map[id.ID]types.Quantity{med.ID: 2}}
		svc, _ := newTestService(stockRepo, &fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}})

		doc := NewSale(time.Now())
		doc.AddLine(med.ID, 3, 0)

		err := svc.Record(ctx, doc)
		if !apperror.IsCode(err, apperror.CodeInsufficientStock) {
			t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
		}
		if stockRepo.balances[med.ID] != 2 {
			t.Errorf("balance = %d, want 2", stockRepo.balances[med.ID])
		}
	})

	t.Run("unknown medicine", func(t *testing.T) {
		stockRepo := &fakeStockRepo{balances: map[id.ID]types.Quantity{}}
		svc, _ := newTestService(stockRepo, &fakeMedicines{meds: map[id.ID]*medicine.Medicine{}})

		doc := NewSale(time.Now())
		doc.AddLine(id.New(), 1, 0)

		if err := svc.Record(ctx, doc); !apperror.IsNotFound(err) {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("archived medicine", func(t *testing.T) {
		med := medicine.NewMedicine("MED-003", "Expired line", 100)
		med.MarkDeleted()
		stockRepo := &fakeStockRepo{balances: map[id.ID]types.Quantity{med.ID: 5}}
		svc, _ := newTestService(stockRepo, &fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}})

		doc := NewSale(time.Now())
		doc.AddLine(med.ID, 1, 0)

		if err := svc.Record(ctx, doc); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})

	t.Run("payment info is carried", func(t *testing.T) {
		med := medicine.NewMedicine("MED-004", "Loratadine", 700)
		stockRepo := &fakeStockRepo{balances: map[id.ID]types.Quantity{med.ID: 5}}
		svc, repo := newTestService(stockRepo, &fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}})

		doc := NewSale(time.Now())
		doc.PaymentMethod = PaymentMethodCard
		doc.Paid = false
		doc.AddLine(med.ID, 1, 0)

		if err := svc.Record(ctx, doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saved := repo.docs[doc.ID]
		if saved.PaymentMethod != PaymentMethodCard {
			t.Errorf("payment method = %q, want card", saved.PaymentMethod)
		}
		if saved.Paid {
			t.Error("paid flag not carried")
		}
	})

	t.Run("unknown payment method", func(t *testing.T) {
		med := medicine.NewMedicine("MED-005", "Omeprazole", 900)
		stockRepo := &fakeStockRepo{balances: map[id.ID]types.Quantity{med.ID: 5}}
		svc, _ := newTestService(stockRepo, &fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}})

		doc := NewSale(time.Now())
		doc.PaymentMethod = "cheque"
		doc.AddLine(med.ID, 1, 0)

		if err := svc.Record(ctx, doc); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})

	t.Run("empty sale", func(t *testing.T) {
		stockRepo := &fakeStockRepo{balances: map[id.ID]types.Quantity{}}
		svc, _ := newTestService(stockRepo, &fakeMedicines{meds: map[id.ID]*medicine.Medicine{}})

		doc := NewSale(time.Now())
		if err := svc.Record(ctx, doc); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}

func TestSaleTotals(t *testing.T) {
	doc := NewSale(time.Now())
	if doc.PaymentMethod != PaymentMethodCash || !doc.Paid {
		t.Errorf("defaults = %q/%v, want cash/paid", doc.PaymentMethod, doc.Paid)
	}
	a, b := id.New(), id.New()
	doc.AddLine(a, 2, 500)
	doc.AddLine(b, 1, 300)

	if doc.TotalQuantity != 3 {
		t.Errorf("total quantity = %d, want 3", doc.TotalQuantity)
	}
	if doc.TotalAmount != 1300 {
		t.Errorf("total amount = %d, want 1300", doc.TotalAmount)
	}
}
