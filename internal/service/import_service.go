package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitwiser-import/internal/calculator"
	"github.com/mmynk/splitwiser-import/internal/category"
	"github.com/mmynk/splitwiser-import/internal/ledger"
	"github.com/mmynk/splitwiser-import/internal/metrics"
	"github.com/mmynk/splitwiser-import/internal/models"
	"github.com/mmynk/splitwiser-import/internal/storage"
)

// ImportRequest describes one import run.
type ImportRequest struct {
	GroupName string
	Currency  string
	Source    io.Reader
}

// SkippedRow is a row that produced no expense because nobody paid.
type SkippedRow struct {
	Line        int
	Description string
}

// ImportResult is the outcome of an import run.
type ImportResult struct {
	Ledger *models.Ledger

	// Skipped lists rows without a positive share.
	Skipped []SkippedRow

	// ByAmount counts expenses that carry explicit shares.
	ByAmount int

	// Persisted is false for dry runs.
	Persisted bool
}

// ImportService turns ledger exports into groups, expenses and allocations.
type ImportService struct {
	store    storage.Store
	resolver *category.Resolver
	metrics  *metrics.ImportMetrics
	newID    func() string
	now      func() time.Time
}

// Option configures an ImportService.
type Option func(*ImportService)

// WithMetrics records run counters on m.
func WithMetrics(m *metrics.ImportMetrics) Option {
	return func(s *ImportService) { s.metrics = m }
}

// WithIDGenerator replaces UUID generation, for deterministic tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *ImportService) { s.newID = newID }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ImportService) { s.now = now }
}

// NewImportService creates an ImportService writing to store and resolving
// categories with resolver.
func NewImportService(store storage.Store, resolver *category.Resolver, opts ...Option) *ImportService {
	s := &ImportService{
		store:    store,
		resolver: resolver,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewImportMetrics()
	}
	return s
}

// Import builds the ledger from req.Source and persists it in one batch.
// Nothing is written if any row fails.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	result, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Info("Persisting ledger",
		"group_id", result.Ledger.Group.ID,
		"participants", len(result.Ledger.Participants),
		"expenses", len(result.Ledger.Expenses),
		"allocations", len(result.Ledger.Allocations),
	)
	if err := s.store.SaveLedger(ctx, result.Ledger); err != nil {
		s.metrics.Failures.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	result.Persisted = true
	s.metrics.LastSuccess.SetToCurrentTime()
	slog.Info("Import complete", "group_id", result.Ledger.Group.ID)
	return result, nil
}

// Plan builds the ledger from req.Source without writing it. The category
// table is still read from the store.
func (s *ImportService) Plan(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	export, err := ledger.Read(req.Source)
	if err != nil {
		s.metrics.Failures.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.metrics.Failures.WithLabelValues("categories").Inc()
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	result, err := s.Build(req.GroupName, req.Currency, export, category.NewTable(categories))
	if err != nil {
		s.metrics.Failures.WithLabelValues("build").Inc()
		return nil, err
	}
	return result, nil
}

// Build assembles the in-memory ledger from an export. It fails on the
// first row whose category cannot be resolved or that has more than one
// payer.
func (s *ImportService) Build(groupName, currency string, export *ledger.Export, table *category.Table) (*ImportResult, error) {
	now := s.now()
	slog.Info("Import started",
		"group", groupName,
		"participants", len(export.Participants),
		"rows", len(export.Rows),
	)

	l := &models.Ledger{
		Group: models.Group{
			ID:        s.newID(),
			Name:      groupName,
			Currency:  currency,
			CreatedAt: now.Unix(),
		},
		Participants: make([]models.Participant, len(export.Participants)),
	}

	participantIDs := make([]string, len(export.Participants))
	for i, name := range export.Participants {
		participantIDs[i] = s.newID()
		l.Participants[i] = models.Participant{
			ID:      participantIDs[i],
			GroupID: l.Group.ID,
			Name:    name,
		}
	}

	result := &ImportResult{Ledger: l}

	for _, row := range export.Rows {
		s.metrics.RowsRead.Inc()

		canonical, err := s.resolver.Resolve(row.Category)
		if err != nil {
			return nil, &ledger.RowError{Line: row.Line, Column: "Category", Err: err}
		}
		payment := canonical == category.Payment

		c := calculator.Classify(row.Cost, row.Shares, payment)
		if !c.HasPayer() {
			slog.Warn("Row skipped: no participant paid",
				"line", row.Line,
				"description", row.Description,
			)
			result.Skipped = append(result.Skipped, SkippedRow{Line: row.Line, Description: row.Description})
			s.metrics.RowsSkipped.Inc()
			continue
		}

		if c.PayerCount > 1 {
			return nil, &ledger.RowError{
				Line:   row.Line,
				Column: export.Participants[c.PayerIndex],
				Err:    fmt.Errorf("%w: %d participants paid", ledger.ErrMalformedRow, c.PayerCount),
			}
		}

		expense := models.Expense{
			ID:              s.newID(),
			GroupID:         l.Group.ID,
			Title:           row.Description,
			Amount:          row.Cost,
			ExpenseDate:     row.Date,
			CategoryID:      table.ID(canonical),
			IsReimbursement: payment,
			PaidByID:        participantIDs[c.PayerIndex],
			SplitMode:       c.SplitMode,
			CreatedAt:       now.Unix(),
		}
		allocs := calculator.BuildAllocations(expense.ID, participantIDs, c)

		if c.SplitMode == models.SplitModeByAmount {
			result.ByAmount++
			slog.Debug("Explicit shares",
				"line", row.Line,
				"cost", row.Cost,
				"shares", row.Shares,
				"allocations", len(allocs),
			)
		}

		l.Expenses = append(l.Expenses, expense)
		l.Allocations = append(l.Allocations, allocs...)

		s.metrics.ExpensesCreated.Inc()
		s.metrics.AllocationsCreated.Add(float64(len(allocs)))
		s.metrics.SplitModes.WithLabelValues(string(c.SplitMode)).Inc()
	}

	slog.Info("Ledger built",
		"group_id", l.Group.ID,
		"expenses", len(l.Expenses),
		"allocations", len(l.Allocations),
		"skipped", len(result.Skipped),
		"by_amount", result.ByAmount,
	)

	return result, nil
}
