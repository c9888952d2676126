package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medledger/internal/core/entity"
	"medledger/internal/core/types"
)

type mockCatalog struct {
	entity.Catalog
	Price types.MinorUnits `db:"price" json:"price"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{"id", "deletion_mark", "version", "code", "name", "price"}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		Catalog: entity.NewCatalog("MED-00001", "Paracetamol 500mg"),
		Price:   types.MinorUnits(1250),
	}
	cat.DeletionMark = true
	cat.Version = 5

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "MED-00001", m["code"])
	assert.Equal(t, "Paracetamol 500mg", m["name"])
	assert.Equal(t, types.MinorUnits(1250), m["price"])
}
