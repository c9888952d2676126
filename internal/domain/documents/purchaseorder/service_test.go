package purchaseorder

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
	docs  map[id.ID]*PurchaseOrder
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*PurchaseOrder), lines: make(map[id.ID][]Line)}
}

func (f *fakeRepo) Create(ctx context.Context, doc *PurchaseOrder) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase_order", docID.String())
	}
	return doc, nil
}

func (f *fakeRepo) GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error) {
	for _, doc := range f.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("purchase_order", number)
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	return f.GetByID(ctx, docID)
}

func (f *fakeRepo) Update(ctx context.Context, doc *PurchaseOrder) error {
	if _, ok := f.docs[doc.ID]; !ok {
		return apperror.NewNotFound("purchase_order", doc.ID.String())
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return f.lines[docID], nil
}

func (f *fakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	f.lines[docID] = lines
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return domain.ListResult[*PurchaseOrder]{}, nil
}

type fakeVendors struct{ ids map[id.ID]bool }

func (f *fakeVendors) Exists(ctx context.Context, vendorID id.ID) (bool, error) {
	return f.ids[vendorID], nil
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

func (f *fakeMedicines) GetForUpdate(ctx context.Context, medID id.ID) (*medicine.Medicine, error) {
	return f.GetByID(ctx, medID)
}

func (f *fakeMedicines) UpdateSettlement(ctx context.Context, med *medicine.Medicine) error {
	f.meds[med.ID] = med
	return nil
}

type fakeStockRepo struct {
	balances map[id.ID]types.Quantity
}

func (f *fakeStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
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

// seqQuerier mimics the sys_sequences UPSERT: bumps by the increment
// passed (range size for the cached strategy, 1 otherwise).
type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	var increment int64 = 1
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	q.n += increment
	return seqRow{val: q.n}
}

// --- helpers ---

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	stockRepo *fakeStockRepo
	meds      *fakeMedicines
	vendorID  id.ID
	medA      *medicine.Medicine
	medB      *medicine.Medicine
}

func newFixture() *fixture {
	vendorID := id.New()
	medA := medicine.NewMedicine("MED-A", "Amoxicillin", 3000)
	medB := medicine.NewMedicine("MED-B", "Cetirizine", 1500)

	repo := newFakeRepo()
	stockRepo := &fakeStockRepo{balances: make(map[id.ID]types.Quantity)}
	meds := &fakeMedicines{meds: map[id.ID]*medicine.Medicine{medA.ID: medA, medB.ID: medB}}

	svc := NewService(
		repo,
		&fakeVendors{ids: map[id.ID]bool{vendorID: true}},
		meds,
		stock.NewService(stockRepo),
		numerator.New(&seqQuerier{}),
		fakeTxManager{},
	)

	return &fixture{svc: svc, repo: repo, stockRepo: stockRepo, meds: meds, vendorID: vendorID, medA: medA, medB: medB}
}

func (f *fixture) recordOrder(t *testing.T, initialPaid types.MinorUnits) *PurchaseOrder {
	t.Helper()
	doc := NewPurchaseOrder(f.vendorID, time.Now())
	doc.AddLine(f.medA.ID, 5, 20)
	doc.AddLine(f.medB.ID, 2, 50)
	if err := f.svc.Record(context.Background(), doc, initialPaid); err != nil {
		t.Fatalf("record order: %v", err)
	}
	return doc
}

// --- tests ---

func TestRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("totals and settlement", func(t *testing.T) {
		f := newFixture()
		doc := f.recordOrder(t, 0)

		if doc.TotalAmount != 200 {
			t.Errorf("total = %d, want 200", doc.TotalAmount)
		}
		if doc.Status != StatusPending {
			t.Errorf("status = %s, want pending", doc.Status)
		}
		if doc.DueAmount != 200 || doc.PaymentStatus != entity.PaymentStatusDue {
			t.Errorf("settlement = %d/%s, want 200/DUE", doc.DueAmount, doc.PaymentStatus)
		}
		if !strings.HasPrefix(doc.Number, "PO-") {
			t.Errorf("number = %q, want PO- prefix", doc.Number)
		}
		// stock untouched until completion
		if f.stockRepo.balances[f.medA.ID] != 0 {
			t.Errorf("stock credited before completion")
		}
	})

	t.Run("initial paid above total rejected", func(t *testing.T) {
		f := newFixture()
		doc := NewPurchaseOrder(f.vendorID, time.Now())
		doc.AddLine(f.medA.ID, 1, 100)

		err := f.svc.Record(ctx, doc, 101)
		if !apperror.IsCode(err, apperror.CodeOverpaymentRejected) {
			t.Errorf("expected OVERPAYMENT_REJECTED, got %v", err)
		}
	})

	t.Run("unknown vendor", func(t *testing.T) {
		f := newFixture()
		doc := NewPurchaseOrder(id.New(), time.Now())
		doc.AddLine(f.medA.ID, 1, 100)

		if err := f.svc.Record(ctx, doc, 0); !apperror.IsNotFound(err) {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("credits stock and accrues medicine liability", func(t *testing.T) {
		f := newFixture()
		doc := f.recordOrder(t, 0)

		if err := f.svc.Complete(ctx, doc.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if f.stockRepo.balances[f.medA.ID] != 5 {
			t.Errorf("medA stock = %d, want 5", f.stockRepo.balances[f.medA.ID])
		}
		if f.stockRepo.balances[f.medB.ID] != 2 {
			t.Errorf("medB stock = %d, want 2", f.stockRepo.balances[f.medB.ID])
		}

		got, _ := f.repo.GetByID(ctx, doc.ID)
		if got.Status != StatusReceived {
			t.Errorf("status = %s, want received", got.Status)
		}
		if got.ReceivedAt == nil {
			t.Error("receivedAt not stamped")
		}

		if f.meds.meds[f.medA.ID].DueAmount != 100 {
			t.Errorf("medA due = %d, want 100", f.meds.meds[f.medA.ID].DueAmount)
		}
		if f.meds.meds[f.medB.ID].DueAmount != 100 {
			t.Errorf("medB due = %d, want 100", f.meds.meds[f.medB.ID].DueAmount)
		}
	})

	t.Run("double completion rejected", func(t *testing.T) {
		f := newFixture()
		doc := f.recordOrder(t, 0)

		if err := f.svc.Complete(ctx, doc.ID); err != nil {
			t.Fatalf("first complete: %v", err)
		}
		err := f.svc.Complete(ctx, doc.ID)
		if !apperror.IsCode(err, apperror.CodeInvalidTransition) {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})

	t.Run("completing cancelled order rejected", func(t *testing.T) {
		f := newFixture()
		doc := f.recordOrder(t, 0)

		if err := f.svc.Cancel(ctx, doc.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		err := f.svc.Complete(ctx, doc.ID)
		if !apperror.IsCode(err, apperror.CodeInvalidTransition) {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order cancels without side effects", func(t *testing.T) {
		f := newFixture()
		doc := f.recordOrder(t, 0)

		if err := f.svc.Cancel(ctx, doc.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, _ := f.repo.GetByID(ctx, doc.ID)
		if got.Status != StatusCancelled {
			t.Errorf("status = %s, want cancelled", got.Status)
		}
		if f.stockRepo.balances[f.medA.ID] != 0 {
			t.Error("stock mutated by cancellation")
		}
	})

	t.Run("received order cannot be cancelled", func(t *testing.T) {
		f := newFixture()
		doc := f.recordOrder(t, 0)

		if err := f.svc.Complete(ctx, doc.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
		err := f.svc.Cancel(ctx, doc.ID)
		if !apperror.IsCode(err, apperror.CodeInvalidTransition) {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})

	t.Run("order with payments cannot be cancelled", func(t *testing.T) {
		f := newFixture()
		doc := f.recordOrder(t, 50)

		err := f.svc.Cancel(ctx, doc.ID)
		if !apperror.IsCode(err, apperror.CodeConflict) {
			t.Errorf("expected CONFLICT, got %v", err)
		}
	})
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusReceived, true},
		{StatusPending, StatusCancelled, true},
		{StatusReceived, StatusCancelled, false},
		{StatusReceived, StatusReceived, false},
		{StatusCancelled, StatusReceived, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}
