package dto

import (
	"time"

	"medledger/internal/domain/registers/settlement"
)

// --- Request DTOs ---

// ApplyPaymentRequest for applying a payment against a medicine liability
// or a purchase order. Amount is in minor currency units.
type ApplyPaymentRequest struct {
	EntityKind string     `json:"entityKind" binding:"required,oneof=medicine purchase_order"`
	EntityID   string     `json:"entityId" binding:"required"`
	Amount     int64      `json:"amount" binding:"required,min=1"`
	Period     *time.Time `json:"period"`
}

// --- Response DTOs ---

// PaymentResponse represents an applied payment in API responses.
type PaymentResponse struct {
	ID         string    `json:"id"`
	EntityKind string    `json:"entityKind"`
	EntityID   string    `json:"entityId"`
	Amount     int64     `json:"amount"`
	Period     time.Time `json:"period"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy,omitempty"`
}

// FromPayment converts entity to response DTO.
func FromPayment(p settlement.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID.String(),
		EntityKind: string(p.EntityKind),
		EntityID:   p.EntityID.String(),
		Amount:     int64(p.Amount),
		Period:     p.Period,
		CreatedAt:  p.CreatedAt,
		CreatedBy:  p.CreatedBy,
	}
}

// ApplyPaymentResponse returns the payment target's settlement state
// after the payment was applied.
type ApplyPaymentResponse struct {
	EntityKind string             `json:"entityKind"`
	EntityID   string             `json:"entityId"`
	Settlement SettlementResponse `json:"settlement"`
}

// PaymentListResponse represents payment history.
type PaymentListResponse struct {
	Items []PaymentResponse `json:"items"`
}

// KindTotalResponse aggregates payments for one entity kind.
type KindTotalResponse struct {
	EntityKind   string `json:"entityKind"`
	PaymentCount int64  `json:"paymentCount"`
	TotalAmount  int64  `json:"totalAmount"`
}

// PaymentTotalsResponse represents payment totals per entity kind.
type PaymentTotalsResponse struct {
	Items []KindTotalResponse `json:"items"`
}

// FromKindTotals converts aggregates to response DTO.
func FromKindTotals(totals []settlement.KindTotal) PaymentTotalsResponse {
	items := make([]KindTotalResponse, len(totals))
	for i, t := range totals {
		items[i] = KindTotalResponse{
			EntityKind:   string(t.EntityKind),
			PaymentCount: t.PaymentCount,
			TotalAmount:  int64(t.TotalAmount),
		}
	}
	return PaymentTotalsResponse{Items: items}
}
