package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medledger/internal/core/apperror"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/infrastructure/http/v1/dto"
)

// MedicineHandler handles HTTP requests for the Medicine catalog.
// Creation is not plain catalog CRUD: a medicine is registered together
// with its opening stock and settlement state in one transaction.
type MedicineHandler struct {
	*CatalogHandler[*medicine.Medicine, dto.CreateMedicineRequest, dto.UpdateMedicineRequest]
	service *medicine.Service
}

// NewMedicineHandler creates a new medicine handler.
func NewMedicineHandler(base *BaseHandler, service *medicine.Service) *MedicineHandler {
	catalogHandler := NewCatalogHandler(base, CatalogHandlerConfig[*medicine.Medicine, dto.CreateMedicineRequest, dto.UpdateMedicineRequest]{
		Service:    service.CatalogService,
		EntityName: "medicine",
		MapCreateDTO: func(req dto.CreateMedicineRequest) (*medicine.Medicine, error) {
			return req.ToMedicine()
		},
		MapUpdateDTO: func(req dto.UpdateMedicineRequest, existing *medicine.Medicine) (*medicine.Medicine, error) {
			return req.Apply(existing)
		},
		MapToDTO: func(med *medicine.Medicine) any {
			return dto.FromMedicine(med)
		},
	})

	return &MedicineHandler{
		CatalogHandler: catalogHandler,
		service:        service,
	}
}

// Create handles POST /catalogs/medicines
// Overrides the generic catalog create to register the opening stock
// and vendor liability atomically with the catalog row.
func (h *MedicineHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMedicineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	med, err := req.ToMedicine()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid vendorId format"))
		return
	}

	if err := h.service.CreateWithOpening(ctx, med, req.Opening()); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMedicine(med))
}

// FindByBarcode handles GET /catalogs/medicines/barcode/:barcode
func (h *MedicineHandler) FindByBarcode(c *gin.Context) {
	ctx := c.Request.Context()

	barcode := c.Param("barcode")
	if barcode == "" {
		h.Error(c, apperror.NewValidation("barcode is required"))
		return
	}

	med, err := h.service.FindByBarcode(ctx, barcode)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMedicine(med))
}
