package settlement

import (
	"context"
	"testing"
	"time"

	"medledger/internal/core/apperror"
	"medledger/internal/core/entity"
	"medledger/internal/core/id"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/domain/documents/purchaseorder"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	payments []Payment
}

func (f *fakeRepo) CreatePayment(ctx context.Context, payment Payment) error {
	f.payments = append(f.payments, payment)
	return nil
}

func (f *fakeRepo) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	return f.payments, nil
}

func (f *fakeRepo) GetTotals(ctx context.Context, filter TotalsFilter) ([]KindTotal, error) {
	totals := make(map[EntityKind]*KindTotal)
	for _, p := range f.payments {
		t, ok := totals[p.EntityKind]
		if !ok {
			t = &KindTotal{EntityKind: p.EntityKind}
			totals[p.EntityKind] = t
		}
		t.PaymentCount++
		t.TotalAmount += p.Amount
	}
	var out []KindTotal
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

type fakeMedicines struct {
	meds map[id.ID]*medicine.Medicine
}

func (f *fakeMedicines) GetForUpdate(ctx context.Context, medID id.ID) (*medicine.Medicine, error) {
	med, ok := f.meds[medID]
	if !ok {
		return nil, apperror.NewNotFound("medicine", medID.String())
	}
	return med, nil
}

func (f *fakeMedicines) UpdateSettlement(ctx context.Context, med *medicine.Medicine) error {
	f.meds[med.ID] = med
	return nil
}

type fakeOrders struct {
	orders map[id.ID]*purchaseorder.PurchaseOrder
}

func (f *fakeOrders) GetForUpdate(ctx context.Context, docID id.ID) (*purchaseorder.PurchaseOrder, error) {
	doc, ok := f.orders[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase_order", docID.String())
	}
	return doc, nil
}

func (f *fakeOrders) Update(ctx context.Context, doc *purchaseorder.PurchaseOrder) error {
	f.orders[doc.ID] = doc
	return nil
}

// --- tests ---

var paymentDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestService(meds *fakeMedicines, orders *fakeOrders) (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	return NewService(repo, meds, orders, fakeTxManager{}), repo
}

func TestApplyToMedicine(t *testing.T) {
	ctx := context.Background()

	t.Run("exact payoff then overpayment", func(t *testing.T) {
		med := medicine.NewMedicine("MED-X", "Omeprazole", 900)
		s, _ := entity.InitializeSettlement("medicine", 500, 0)
		med.Settlement = s

		meds := &fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}}
		svc, repo := newTestService(meds, &fakeOrders{orders: map[id.ID]*purchaseorder.PurchaseOrder{}})

		got, err := svc.ApplyToMedicine(ctx, med.ID, 500, paymentDate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PaymentStatus != entity.PaymentStatusPaid || got.DueAmount != 0 {
			t.Errorf("settlement = %s/%d, want PAID/0", got.PaymentStatus, got.DueAmount)
		}
		if len(repo.payments) != 1 {
			t.Fatalf("expected 1 payment, got %d", len(repo.payments))
		}
		if repo.payments[0].EntityKind != KindMedicine || repo.payments[0].Amount != 500 {
			t.Errorf("payment = %s/%d, want medicine/500", repo.payments[0].EntityKind, repo.payments[0].Amount)
		}

		_, err = svc.ApplyToMedicine(ctx, med.ID, 1, paymentDate)
		if !apperror.IsCode(err, apperror.CodeOverpaymentRejected) {
			t.Errorf("expected OVERPAYMENT_REJECTED, got %v", err)
		}
		if len(repo.payments) != 1 {
			t.Errorf("rejected payment was recorded")
		}
	})

	t.Run("archived medicine rejects payment", func(t *testing.T) {
		med := medicine.NewMedicine("MED-A", "Aspirin", 300)
		s, _ := entity.InitializeSettlement("medicine", 500, 100)
		med.Settlement = s
		med.DeletionMark = true

		svc, repo := newTestService(
			&fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}},
			&fakeOrders{orders: map[id.ID]*purchaseorder.PurchaseOrder{}},
		)
		if _, err := svc.ApplyToMedicine(ctx, med.ID, 100, paymentDate); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
		if len(repo.payments) != 0 {
			t.Errorf("rejected payment was recorded")
		}
		if med.PaidAmount != 100 {
			t.Errorf("settlement mutated: paid = %d, want 100", med.PaidAmount)
		}
	})

	t.Run("unknown medicine", func(t *testing.T) {
		svc, _ := newTestService(
			&fakeMedicines{meds: map[id.ID]*medicine.Medicine{}},
			&fakeOrders{orders: map[id.ID]*purchaseorder.PurchaseOrder{}},
		)
		if _, err := svc.ApplyToMedicine(ctx, id.New(), 100, paymentDate); !apperror.IsNotFound(err) {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		med := medicine.NewMedicine("MED-Y", "Loratadine", 700)
		s, _ := entity.InitializeSettlement("medicine", 1000, 0)
		med.Settlement = s

		svc, repo := newTestService(
			&fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}},
			&fakeOrders{orders: map[id.ID]*purchaseorder.PurchaseOrder{}},
		)
		if _, err := svc.ApplyToMedicine(ctx, med.ID, 0, paymentDate); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
		if len(repo.payments) != 0 {
			t.Errorf("rejected payment was recorded")
		}
	})
}

func TestApplyToPurchaseOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("partial then full settlement", func(t *testing.T) {
		doc := purchaseorder.NewPurchaseOrder(id.New(), paymentDate)
		s, _ := entity.InitializeSettlement("purchase_order", 10000, 0)
		doc.Settlement = s

		orders := &fakeOrders{orders: map[id.ID]*purchaseorder.PurchaseOrder{doc.ID: doc}}
		svc, repo := newTestService(&fakeMedicines{meds: map[id.ID]*medicine.Medicine{}}, orders)

		got, err := svc.ApplyToPurchaseOrder(ctx, doc.ID, 4000, paymentDate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PaymentStatus != entity.PaymentStatusPartial {
			t.Errorf("status = %s, want PARTIAL", got.PaymentStatus)
		}

		got, err = svc.ApplyToPurchaseOrder(ctx, doc.ID, 6000, paymentDate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PaymentStatus != entity.PaymentStatusPaid {
			t.Errorf("status = %s, want PAID", got.PaymentStatus)
		}
		if len(repo.payments) != 2 {
			t.Errorf("expected 2 payments, got %d", len(repo.payments))
		}
	})

	t.Run("cancelled order rejects payment", func(t *testing.T) {
		doc := purchaseorder.NewPurchaseOrder(id.New(), paymentDate)
		s, _ := entity.InitializeSettlement("purchase_order", 5000, 0)
		doc.Settlement = s
		doc.Status = purchaseorder.StatusCancelled

		orders := &fakeOrders{orders: map[id.ID]*purchaseorder.PurchaseOrder{doc.ID: doc}}
		svc, repo := newTestService(&fakeMedicines{meds: map[id.ID]*medicine.Medicine{}}, orders)

		if _, err := svc.ApplyToPurchaseOrder(ctx, doc.ID, 100, paymentDate); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
		if len(repo.payments) != 0 {
			t.Errorf("rejected payment was recorded")
		}
	})
}

func TestTotals(t *testing.T) {
	ctx := context.Background()

	med := medicine.NewMedicine("MED-Z", "Vitamin D", 100)
	s, _ := entity.InitializeSettlement("medicine", 1000, 0)
	med.Settlement = s

	doc := purchaseorder.NewPurchaseOrder(id.New(), paymentDate)
	ps, _ := entity.InitializeSettlement("purchase_order", 2000, 0)
	doc.Settlement = ps

	svc, _ := newTestService(
		&fakeMedicines{meds: map[id.ID]*medicine.Medicine{med.ID: med}},
		&fakeOrders{orders: map[id.ID]*purchaseorder.PurchaseOrder{doc.ID: doc}},
	)

	if _, err := svc.ApplyToMedicine(ctx, med.ID, 300, paymentDate); err != nil {
		t.Fatalf("apply to medicine: %v", err)
	}
	if _, err := svc.ApplyToPurchaseOrder(ctx, doc.ID, 1500, paymentDate); err != nil {
		t.Fatalf("apply to order: %v", err)
	}

	totals, err := svc.Totals(ctx, TotalsFilter{})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	byKind := make(map[EntityKind]KindTotal)
	for _, t2 := range totals {
		byKind[t2.EntityKind] = t2
	}
	if byKind[KindMedicine].TotalAmount != 300 {
		t.Errorf("medicine total = %d, want 300", byKind[KindMedicine].TotalAmount)
	}
	if byKind[KindPurchaseOrder].TotalAmount != 1500 {
		t.Errorf("order total = %d, want 1500", byKind[KindPurchaseOrder].TotalAmount)
	}
}
