package dto

import (
	"medledger/internal/domain/catalogs/vendor"
)

// CreateVendorRequest for creating vendors.
type CreateVendorRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
}

// ToVendor converts the request into a domain vendor.
func (r *CreateVendorRequest) ToVendor() *vendor.Vendor {
	v := vendor.NewVendor(r.Code, r.Name)
	v.ContactName = r.ContactName
	v.Phone = r.Phone
	v.Email = r.Email
	v.Address = r.Address
	return v
}

// UpdateVendorRequest for updating vendors.
type UpdateVendorRequest struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply maps the update request onto an existing vendor.
func (r *UpdateVendorRequest) Apply(v *vendor.Vendor) *vendor.Vendor {
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.ContactName != nil {
		v.ContactName = r.ContactName
	}
	if r.Phone != nil {
		v.Phone = r.Phone
	}
	if r.Email != nil {
		v.Email = r.Email
	}
	if r.Address != nil {
		v.Address = r.Address
	}
	v.Version = r.Version
	return v
}

// VendorResponse represents a vendor in API responses.
type VendorResponse struct {
	CatalogResponse
	ContactName *string `json:"contactName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// FromVendor converts entity to response DTO.
func FromVendor(v *vendor.Vendor) VendorResponse {
	return VendorResponse{
		CatalogResponse: FromCatalog(v.Catalog),
		ContactName:     v.ContactName,
		Phone:           v.Phone,
		Email:           v.Email,
		Address:         v.Address,
	}
}
