package dto

import (
	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/catalogs/medicine"
)

// --- Request DTOs ---

// CreateMedicineRequest for registering a medicine with its opening state.
// Amounts are in minor currency units, quantities in whole units.
type CreateMedicineRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Price       int64   `json:"price" binding:"min=0"`
	VendorID    *string `json:"vendorId"`
	Barcode     *string `json:"barcode"`
	Description *string `json:"description"`

	// Opening state
	Quantity    int64 `json:"quantity" binding:"min=0"`
	TotalCost   int64 `json:"totalCost" binding:"min=0"`
	InitialPaid int64 `json:"initialPaid" binding:"min=0"`
}

// ToMedicine converts the request into a domain medicine.
func (r *CreateMedicineRequest) ToMedicine() (*medicine.Medicine, error) {
	med := medicine.NewMedicine(r.Code, r.Name, types.MinorUnits(r.Price))
	med.Barcode = r.Barcode
	med.Description = r.Description

	if r.VendorID != nil && *r.VendorID != "" {
		vendorID, err := id.Parse(*r.VendorID)
		if err != nil {
			return nil, err
		}
		med.VendorID = &vendorID
	}
	return med, nil
}

// Opening extracts the opening stock and settlement state.
func (r *CreateMedicineRequest) Opening() medicine.Opening {
	return medicine.Opening{
		Quantity:    types.Quantity(r.Quantity),
		TotalCost:   types.MinorUnits(r.TotalCost),
		InitialPaid: types.MinorUnits(r.InitialPaid),
	}
}

// UpdateMedicineRequest for updating catalog fields.
// Settlement state is never edited directly; it changes only via payments
// and purchase orders.
type UpdateMedicineRequest struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price"`
	VendorID    *string `json:"vendorId"`
	Barcode     *string `json:"barcode"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply maps the update request onto an existing medicine.
func (r *UpdateMedicineRequest) Apply(med *medicine.Medicine) (*medicine.Medicine, error) {
	if r.Name != nil {
		med.Name = *r.Name
	}
	if r.Price != nil {
		med.Price = types.MinorUnits(*r.Price)
	}
	if r.VendorID != nil {
		if *r.VendorID == "" {
			med.VendorID = nil
		} else {
			vendorID, err := id.Parse(*r.VendorID)
			if err != nil {
				return nil, err
			}
			med.VendorID = &vendorID
		}
	}
	if r.Barcode != nil {
		med.Barcode = r.Barcode
	}
	if r.Description != nil {
		med.Description = r.Description
	}
	med.Version = r.Version
	return med, nil
}

// --- Response DTOs ---

// MedicineResponse represents a medicine in API responses.
type MedicineResponse struct {
	CatalogResponse
	Price       int64              `json:"price"`
	VendorID    *string            `json:"vendorId,omitempty"`
	Barcode     *string            `json:"barcode,omitempty"`
	Description *string            `json:"description,omitempty"`
	Settlement  SettlementResponse `json:"settlement"`
}

// FromMedicine converts entity to response DTO.
func FromMedicine(m *medicine.Medicine) MedicineResponse {
	resp := MedicineResponse{
		CatalogResponse: FromCatalog(m.Catalog),
		Price:           int64(m.Price),
		Barcode:         m.Barcode,
		Description:     m.Description,
		Settlement:      FromSettlement(m.Settlement),
	}
	if m.VendorID != nil {
		s := m.VendorID.String()
		resp.VendorID = &s
	}
	return resp
}
