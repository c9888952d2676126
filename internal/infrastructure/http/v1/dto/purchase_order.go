package dto

import (
	"time"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/documents/purchaseorder"
)

// --- Request DTOs ---

// RecordPurchaseOrderRequest for recording a purchase order.
// Amounts are in minor currency units.
type RecordPurchaseOrderRequest struct {
	VendorID    string                           `json:"vendorId" binding:"required"`
	Date        *time.Time                       `json:"date"`
	InitialPaid int64                            `json:"initialPaid" binding:"min=0"`
	Lines       []RecordPurchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RecordPurchaseOrderLineRequest is one order line.
type RecordPurchaseOrderLineRequest struct {
	MedicineID string `json:"medicineId" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required,min=1"`
	UnitCost   int64  `json:"unitCost" binding:"min=0"`
}

// ToPurchaseOrder converts the request into a domain purchase order.
func (r *RecordPurchaseOrderRequest) ToPurchaseOrder() (*purchaseorder.PurchaseOrder, error) {
	vendorID, err := id.Parse(r.VendorID)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if r.Date != nil {
		date = *r.Date
	}

	doc := purchaseorder.NewPurchaseOrder(vendorID, date)
	for _, line := range r.Lines {
		medID, err := id.Parse(line.MedicineID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(medID, types.Quantity(line.Quantity), types.MinorUnits(line.UnitCost))
	}
	return doc, nil
}

// --- Response DTOs ---

// PurchaseOrderLineResponse is one order line in API responses.
type PurchaseOrderLineResponse struct {
	LineID     string `json:"lineId"`
	LineNo     int    `json:"lineNo"`
	MedicineID string `json:"medicineId"`
	Quantity   int64  `json:"quantity"`
	UnitCost   int64  `json:"unitCost"`
	Amount     int64  `json:"amount"`
}

// PurchaseOrderResponse represents a purchase order in API responses.
type PurchaseOrderResponse struct {
	DocumentResponse
	VendorID      string                      `json:"vendorId"`
	Status        string                      `json:"status"`
	ReceivedAt    *time.Time                  `json:"receivedAt,omitempty"`
	CancelledAt   *time.Time                  `json:"cancelledAt,omitempty"`
	TotalQuantity int64                       `json:"totalQuantity"`
	TotalAmount   int64                       `json:"totalAmount"`
	Settlement    SettlementResponse          `json:"settlement"`
	Lines         []PurchaseOrderLineResponse `json:"lines"`
}

// FromPurchaseOrder converts entity to response DTO.
func FromPurchaseOrder(p *purchaseorder.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = PurchaseOrderLineResponse{
			LineID:     l.LineID.String(),
			LineNo:     l.LineNo,
			MedicineID: l.MedicineID.String(),
			Quantity:   l.Quantity.Int64(),
			UnitCost:   int64(l.UnitCost),
			Amount:     int64(l.Amount),
		}
	}

	return PurchaseOrderResponse{
		DocumentResponse: FromDocument(p.Document),
		VendorID:         p.VendorID.String(),
		Status:           string(p.Status),
		ReceivedAt:       p.ReceivedAt,
		CancelledAt:      p.CancelledAt,
		TotalQuantity:    p.TotalQuantity.Int64(),
		TotalAmount:      int64(p.TotalAmount),
		Settlement:       FromSettlement(p.Settlement),
		Lines:            lines,
	}
}
