// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitwiser-import/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the import service.
type Store interface {
	// ListCategories returns every known category.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// SaveLedger persists a whole import run atomically: the group,
	// then participants, expenses and allocations. Either everything is
	// written or nothing is.
	SaveLedger(ctx context.Context, ledger *models.Ledger) error

	// GetLedger loads a previously imported group with all its records,
	// in import order. Returns ErrNotFound for an unknown group.
	GetLedger(ctx context.Context, groupID string) (*models.Ledger, error)

	// ListGroups returns all imported groups, newest first.
	ListGroups(ctx context.Context) ([]models.Group, error)

	// Close releases any resources held by the store.
	Close() error
}
