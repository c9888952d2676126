package stock

import (
	"context"
	"sync"
	"testing"
	"time"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/core/types"
)

// fakeRepo keeps movements and balances in memory.
type fakeRepo struct {
	balances  map[id.ID]types.Quantity
	movements []entity.StockMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balances: make(map[id.ID]types.Quantity)}
}

func (f *fakeRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetBalance(ctx context.Context, medicineID id.ID) (entity.StockBalance, error) {
	qty, ok := f.balances[medicineID]
	if !ok {
		return entity.StockBalance{}, apperror.NewNotFound("stock_balance", medicineID.String())
	}
	return entity.StockBalance{MedicineID: medicineID, Quantity: qty}, nil
}

func (f *fakeRepo) GetBalanceForUpdate(ctx context.Context, medicineID id.ID) (entity.StockBalance, error) {
	return entity.StockBalance{MedicineID: medicineID, Quantity: f.balances[medicineID]}, nil
}

func (f *fakeRepo) ApplyBalanceDelta(ctx context.Context, medicineID id.ID, delta types.Quantity, period time.Time) error {
	f.balances[medicineID] += delta
	return nil
}

func (f *fakeRepo) ListBalances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for mid, qty := range f.balances {
		out = append(out, entity.StockBalance{MedicineID: mid, Quantity: qty})
	}
	return out, nil
}

func (f *fakeRepo) GetMovementHistory(ctx context.Context, medicineID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if m.MedicineID == medicineID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return Turnover{}, nil
}

var period = time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

func TestDeduct(t *testing.T) {
	ctx := context.Background()

	t.Run("reduces balance and records movement", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		med := id.New()
		repo.balances[med] = 10

		saleID := id.New()
		err := svc.Deduct(ctx, "sale", saleID, period, []Line{{MedicineID: med, Quantity: 3}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if repo.balances[med] != 7 {
			t.Errorf("balance = %d, want 7", repo.balances[med])
		}
		movements, _ := repo.GetMovementsByRecorder(ctx, saleID)
		if len(movements) != 1 {
			t.Fatalf("expected 1 movement, got %d", len(movements))
		}
		if movements[0].RecordType != entity.RecordTypeExpense {
			t.Errorf("record type = %s, want expense", movements[0].RecordType)
		}
		if movements[0].SignedQuantity() != -3 {
			t.Errorf("signed quantity = %d, want -3", movements[0].SignedQuantity())
		}
	})

	t.Run("insufficient stock rejects whole document", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		medA, medB := id.New(), id.New()
		repo.balances[medA] = 10
		repo.balances[medB] = 1

		err := svc.Deduct(ctx, "sale", id.New(), period, []Line{
			{MedicineID: medA, Quantity: 5},
			{MedicineID: medB, Quantity: 2},
		})
		if !apperror.IsCode(err, apperror.CodeInsufficientStock) {
			t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
		}

		// no partial effects
		if repo.balances[medA] != 10 || repo.balances[medB] != 1 {
			t.Errorf("balances mutated: a=%d b=%d", repo.balances[medA], repo.balances[medB])
		}
		if len(repo.movements) != 0 {
			t.Errorf("expected no movements, got %d", len(repo.movements))
		}
	})

	t.Run("second oversized deduct rejected after first wins", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		med := id.New()
		repo.balances[med] = 10

		if err := svc.Deduct(ctx, "sale", id.New(), period, []Line{{MedicineID: med, Quantity: 6}}); err != nil {
			t.Fatalf("first deduct: %v", err)
		}
		err := svc.Deduct(ctx, "sale", id.New(), period, []Line{{MedicineID: med, Quantity: 6}})
		if !apperror.IsCode(err, apperror.CodeInsufficientStock) {
			t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
		}
		if repo.balances[med] != 4 {
			t.Errorf("balance = %d, want 4", repo.balances[med])
		}
	})

	t.Run("concurrent oversized deducts, exactly one wins", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		med := id.New()
		repo.balances[med] = 10

		// Emulates the row lock held for the transaction: each deduct
		// runs check-then-write under mutual exclusion, as
		// GetBalanceForUpdate guarantees against a real database.
		var rowLock sync.Mutex
		deduct := func() error {
			rowLock.Lock()
			defer rowLock.Unlock()
			return svc.Deduct(ctx, "sale", id.New(), period, []Line{{MedicineID: med, Quantity: 6}})
		}

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- deduct()
			}()
		}
		wg.Wait()
		close(errs)

		var succeeded, rejected int
		for err := range errs {
			switch {
			case err == nil:
				succeeded++
			case apperror.IsCode(err, apperror.CodeInsufficientStock):
				rejected++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if succeeded != 1 || rejected != 1 {
			t.Fatalf("succeeded=%d rejected=%d, want exactly one of each", succeeded, rejected)
		}
		if repo.balances[med] != 4 {
			t.Errorf("balance = %d, want 4", repo.balances[med])
		}
		if len(repo.movements) != 1 {
			t.Errorf("expected 1 movement, got %d", len(repo.movements))
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		med := id.New()

		cases := []struct {
			name  string
			lines []Line
		}{
			{"empty lines", nil},
			{"zero quantity", []Line{{MedicineID: med, Quantity: 0}}},
			{"negative quantity", []Line{{MedicineID: med, Quantity: -1}}},
			{"nil medicine", []Line{{Quantity: 1}}},
			{"duplicate medicine", []Line{{MedicineID: med, Quantity: 1}, {MedicineID: med, Quantity: 2}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := svc.Deduct(ctx, "sale", id.New(), period, tc.lines)
				if !apperror.IsCode(err, apperror.CodeValidation) {
					t.Errorf("expected VALIDATION_ERROR, got %v", err)
				}
			})
		}
	})
}

func TestCredit(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)
	medA, medB := id.New(), id.New()
	repo.balances[medA] = 2

	poID := id.New()
	err := svc.Credit(ctx, "purchase_order", poID, period, []Line{
		{MedicineID: medA, Quantity: 5},
		{MedicineID: medB, Quantity: 20},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.balances[medA] != 7 {
		t.Errorf("medA balance = %d, want 7", repo.balances[medA])
	}
	if repo.balances[medB] != 20 {
		t.Errorf("medB balance = %d, want 20", repo.balances[medB])
	}

	movements, _ := repo.GetMovementsByRecorder(ctx, poID)
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	for _, m := range movements {
		if m.RecordType != entity.RecordTypeReceipt {
			t.Errorf("record type = %s, want receipt", m.RecordType)
		}
	}
}

func TestGetAvailability(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	// unknown medicine reads as zero stock
	qty, err := svc.GetAvailability(ctx, id.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qty != 0 {
		t.Errorf("availability = %d, want 0", qty)
	}

	med := id.New()
	repo.balances[med] = 12
	qty, err = svc.GetAvailability(ctx, med)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qty != 12 {
		t.Errorf("availability = %d, want 12", qty)
	}
}
