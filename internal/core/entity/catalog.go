package entity

import (
	"context"

	"medledger/internal/core/apperror"
)

// Catalog contains common fields for all catalog entities
// (medicines, vendors). Catalogs are master data referenced by documents.
type Catalog struct {
	BaseCatalog

	// Code is a unique human-readable identifier within the catalog
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate checks base catalog invariants.
// Code can be auto-generated, so it is optional at creation.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// CatalogEntity is the interface all catalog models implement.
type CatalogEntity interface {
	GetID() string
	GetCode() string
	GetName() string
	IsDeleted() bool
}

// GetID returns the entity ID as string.
func (c *Catalog) GetID() string {
	return c.ID.String()
}

// GetCode returns the catalog code.
func (c *Catalog) GetCode() string {
	return c.Code
}

// GetName returns the catalog name.
func (c *Catalog) GetName() string {
	return c.Name
}

// IsDeleted reports whether the entity is soft-deleted.
func (c *Catalog) IsDeleted() bool {
	return c.DeletionMark
}
