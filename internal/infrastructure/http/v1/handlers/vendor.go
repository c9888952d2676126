package handlers

import (
	"medledger/internal/domain/catalogs/vendor"
	"medledger/internal/infrastructure/http/v1/dto"
)

// VendorHandler handles HTTP requests for the Vendor catalog.
type VendorHandler struct {
	*CatalogHandler[*vendor.Vendor, dto.CreateVendorRequest, dto.UpdateVendorRequest]
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(base *BaseHandler, service *vendor.Service) *VendorHandler {
	catalogHandler := NewCatalogHandler(base, CatalogHandlerConfig[*vendor.Vendor, dto.CreateVendorRequest, dto.UpdateVendorRequest]{
		Service:    service.CatalogService,
		EntityName: "vendor",
		MapCreateDTO: func(req dto.CreateVendorRequest) (*vendor.Vendor, error) {
			return req.ToVendor(), nil
		},
		MapUpdateDTO: func(req dto.UpdateVendorRequest, existing *vendor.Vendor) (*vendor.Vendor, error) {
			return req.Apply(existing), nil
		},
		MapToDTO: func(v *vendor.Vendor) any {
			return dto.FromVendor(v)
		},
	})

	return &VendorHandler{CatalogHandler: catalogHandler}
}
