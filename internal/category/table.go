package category

import (
	"github.com/mmynk/splitwiser-import/internal/models"
)

// FallbackID is the category ID of payment rows and of canonical keys that
// are missing from the category table.
const FallbackID int64 = 1

// Table maps lowercase category names to category IDs. It is built once
// per import run from the categories known to the store.
type Table struct {
	ids map[string]int64
}

// NewTable indexes categories by lowercase name.
func NewTable(categories []models.Category) *Table {
	ids := make(map[string]int64, len(categories))
	for _, c := range categories {
		ids[normalize(c.Name)] = c.ID
	}
	return &Table{ids: ids}
}

// ID returns the category ID of a canonical key.
func (t *Table) ID(canonical string) int64 {
	if canonical == Payment {
		return FallbackID
	}
	if id, ok := t.ids[canonical]; ok {
		return id
	}
	return FallbackID
}
