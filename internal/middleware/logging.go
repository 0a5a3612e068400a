// Package middleware wraps a storage.Store with cross-cutting behavior.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/splitwiser-import/internal/models"
	"github.com/mmynk/splitwiser-import/internal/storage"
)

// loggingStore logs every store call with its duration and error.
type loggingStore struct {
	next storage.Store
}

// LoggingStore returns a storage.Store that logs every call made to next.
func LoggingStore(next storage.Store) storage.Store {
	return &loggingStore{next: next}
}

func (s *loggingStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	start := time.Now()
	categories, err := s.next.ListCategories(ctx)
	logCall("ListCategories", start, err, "count", len(categories))
	return categories, err
}

func (s *loggingStore) SaveLedger(ctx context.Context, l *models.Ledger) error {
	start := time.Now()
	err := s.next.SaveLedger(ctx, l)
	logCall("SaveLedger", start, err,
		"group_id", l.Group.ID,
		"expenses", len(l.Expenses),
		"allocations", len(l.Allocations),
	)
	return err
}

func (s *loggingStore) GetLedger(ctx context.Context, groupID string) (*models.Ledger, error) {
	start := time.Now()
	l, err := s.next.GetLedger(ctx, groupID)
	logCall("GetLedger", start, err, "group_id", groupID)
	return l, err
}

func (s *loggingStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	start := time.Now()
	groups, err := s.next.ListGroups(ctx)
	logCall("ListGroups", start, err, "count", len(groups))
	return groups, err
}

func (s *loggingStore) Close() error {
	return s.next.Close()
}

func logCall(op string, start time.Time, err error, attrs ...any) {
	args := append([]any{"op", op, "duration_ms", time.Since(start).Milliseconds()}, attrs...)
	if err != nil {
		slog.Error("Store error", append(args, "error", err)...)
		return
	}
	slog.Debug("Store ok", args...)
}
