package dto

import (
	"time"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/documents/sale"
)

// --- Request DTOs ---

// RecordSaleRequest for recording a sale. Unit prices are not accepted:
// lines are priced from the medicine catalog at record time.
type RecordSaleRequest struct {
	Date          *time.Time              `json:"date"`
	CustomerName  *string                 `json:"customerName"`
	PaymentMethod string                  `json:"paymentMethod" binding:"omitempty,oneof=cash card"`
	Paid          *bool                   `json:"paid"`
	Lines         []RecordSaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RecordSaleLineRequest is one sale line.
type RecordSaleLineRequest struct {
	MedicineID string `json:"medicineId" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required,min=1"`
}

// ToSale converts the request into a domain sale.
func (r *RecordSaleRequest) ToSale() (*sale.Sale, error) {
	date := time.Now().UTC()
	if r.Date != nil {
		date = *r.Date
	}

	doc := sale.NewSale(date)
	doc.CustomerName = r.CustomerName
	if r.PaymentMethod != "" {
		doc.PaymentMethod = r.PaymentMethod
	}
	if r.Paid != nil {
		doc.Paid = *r.Paid
	}

	for _, line := range r.Lines {
		medID, err := id.Parse(line.MedicineID)
		if err != nil {
			return nil, err
		}
		// Price is zero here; the service prices lines from the catalog.
		doc.AddLine(medID, types.Quantity(line.Quantity), 0)
	}
	return doc, nil
}

// --- Response DTOs ---

// SaleLineResponse is one sale line in API responses.
type SaleLineResponse struct {
	LineID     string `json:"lineId"`
	LineNo     int    `json:"lineNo"`
	MedicineID string `json:"medicineId"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  int64  `json:"unitPrice"`
	Amount     int64  `json:"amount"`
}

// SaleResponse represents a sale in API responses.
type SaleResponse struct {
	DocumentResponse
	CustomerName  *string            `json:"customerName,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	Paid          bool               `json:"paid"`
	TotalQuantity int64              `json:"totalQuantity"`
	TotalAmount   int64              `json:"totalAmount"`
	Lines         []SaleLineResponse `json:"lines"`
}

// FromSale converts entity to response DTO.
func FromSale(s *sale.Sale) SaleResponse {
	lines := make([]SaleLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = SaleLineResponse{
			LineID:     l.LineID.String(),
			LineNo:     l.LineNo,
			MedicineID: l.MedicineID.String(),
			Quantity:   l.Quantity.Int64(),
			UnitPrice:  int64(l.UnitPrice),
			Amount:     int64(l.Amount),
		}
	}

	return SaleResponse{
		DocumentResponse: FromDocument(s.Document),
		CustomerName:     s.CustomerName,
		PaymentMethod:    s.PaymentMethod,
		Paid:             s.Paid,
		TotalQuantity:    s.TotalQuantity.Int64(),
		TotalAmount:      int64(s.TotalAmount),
		Lines:            lines,
	}
}
