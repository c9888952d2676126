package report_repo

import (
	"testing"

	"medledger/internal/core/id"
)

func stockRow(name string, quantity, price int64) stockSummaryRow {
	return stockSummaryRow{
		MedicineID:   id.New().String(),
		MedicineName: name,
		Code:         "MED-" + name,
		Quantity:     quantity,
		UnitPrice:    price,
		StockValue:   quantity * price,
	}
}

func TestBuildStockSummary(t *testing.T) {
	rows := []stockSummaryRow{
		stockRow("Paracetamol", 120, 450),
		stockRow("Ibuprofen", 9, 600),
		stockRow("Amoxicillin", 10, 1200),
		stockRow("Loratadine", 0, 700),
	}

	summary, err := buildStockSummary(rows, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalItems != 4 {
		t.Errorf("total items = %d, want 4", summary.TotalItems)
	}
	if summary.TotalQuantity != 139 {
		t.Errorf("total quantity = %d, want 139", summary.TotalQuantity)
	}

	// Strictly below the threshold: 9 and 0 qualify, 10 does not.
	if summary.LowStockCount != 2 {
		t.Errorf("low stock count = %d, want 2", summary.LowStockCount)
	}
	if summary.OutOfStockCount != 1 {
		t.Errorf("out of stock count = %d, want 1", summary.OutOfStockCount)
	}

	flags := make(map[string][2]bool)
	for _, item := range summary.Items {
		flags[item.MedicineName] = [2]bool{item.LowStock, item.OutOfStock}
	}
	if got := flags["Amoxicillin"]; got[0] || got[1] {
		t.Errorf("quantity at threshold flagged low/out: %v", got)
	}
	if got := flags["Ibuprofen"]; !got[0] || got[1] {
		t.Errorf("quantity below threshold flags = %v, want low only", got)
	}
	if got := flags["Loratadine"]; !got[0] || !got[1] {
		t.Errorf("zero quantity flags = %v, want low and out", got)
	}
}

func TestBuildStockSummaryBadID(t *testing.T) {
	rows := []stockSummaryRow{{MedicineID: "not-a-uuid", MedicineName: "X"}}
	if _, err := buildStockSummary(rows, 10); err == nil {
		t.Fatal("expected error for malformed medicine id")
	}
}
