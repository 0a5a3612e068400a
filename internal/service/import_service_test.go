package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitwiser-import/internal/category"
	"github.com/mmynk/splitwiser-import/internal/ledger"
	"github.com/mmynk/splitwiser-import/internal/metrics"
	"github.com/mmynk/splitwiser-import/internal/models"
	"github.com/mmynk/splitwiser-import/internal/storage"
)

const testExport = `Date,Description,Category,Cost,Currency,Alice,Bob,Charlie
2024-01-02,Dinner,Restaurants,10.00,EUR,5.00,-5.00,0.00
2024-01-03,Groceries,Épicerie - autre,10.01,EUR,-5.01,5.01,0.00
2024-01-04,Broken row,Général,12.00,EUR,0.00,0.00,0.00
2024-01-05,Settle up,Paiement,4.99,EUR,4.99,-4.99,0.00
2024-01-06,Trip,Transport - autre,30.00,EUR,20.00,-10.00,-10.00

,Total balance, , ,EUR,24.98,-14.98,-10.00
`

// memStore is an in-memory storage.Store recording every SaveLedger call.
type memStore struct {
	categories []models.Category
	saved      []*models.Ledger
	saveErr    error
}

func newMemStore() *memStore {
	return &memStore{categories: []models.Category{
		{ID: 0, Name: "General"},
		{ID: 1, Name: "Payment"},
		{ID: 8, Name: "Dining Out"},
		{ID: 9, Name: "Groceries"},
		{ID: 28, Name: "Transportation"},
	}}
}

func (m *memStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return m.categories, nil
}

func (m *memStore) SaveLedger(ctx context.Context, l *models.Ledger) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, l)
	return nil
}

func (m *memStore) GetLedger(ctx context.Context, groupID string) (*models.Ledger, error) {
	for _, l := range m.saved {
		if l.Group.ID == groupID {
			return l, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	for _, l := range m.saved {
		groups = append(groups, l.Group)
	}
	return groups, nil
}

func (m *memStore) Close() error { return nil }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestImportService(t *testing.T, store storage.Store, opts ...Option) *ImportService {
	t.Helper()

	translations, err := category.DefaultTranslations()
	require.NoError(t, err)

	opts = append([]Option{
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	}, opts...)
	return NewImportService(store, category.NewResolver(translations), opts...)
}

func importString(t *testing.T, svc *ImportService, data string) (*ImportResult, error) {
	t.Helper()
	return svc.Import(context.Background(), ImportRequest{
		GroupName: "Splitwise",
		Currency:  "EUR",
		Source:    strings.NewReader(data),
	})
}

func TestImport(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	result, err := importString(t, svc, testExport)
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.True(t, result.Persisted)

	l := store.saved[0]
	assert.Same(t, result.Ledger, l)

	assert.Equal(t, models.Group{ID: "id-1", Name: "Splitwise", Currency: "EUR", CreatedAt: 1700000000}, l.Group)
	assert.Equal(t, []models.Participant{
		{ID: "id-2", GroupID: "id-1", Name: "Alice"},
		{ID: "id-3", GroupID: "id-1", Name: "Bob"},
		{ID: "id-4", GroupID: "id-1", Name: "Charlie"},
	}, l.Participants)

	require.Len(t, l.Expenses, 4)
	var titles []string
	for _, e := range l.Expenses {
		titles = append(titles, e.Title)
		assert.Equal(t, "id-1", e.GroupID)
	}
	assert.Equal(t, []string{"Dinner", "Groceries", "Settle up", "Trip"}, titles)

	assert.Equal(t, []SkippedRow{{Line: 4, Description: "Broken row"}}, result.Skipped)
	assert.Equal(t, 2, result.ByAmount)
	assert.Len(t, l.Allocations, 8)
}

func TestImport_EvenSplit(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	_, err := importString(t, svc, testExport)
	require.NoError(t, err)
	l := store.saved[0]

	dinner := l.Expenses[0]
	assert.Equal(t, "id-5", dinner.ID)
	assert.Equal(t, int64(1000), dinner.Amount)
	assert.Equal(t, models.SplitModeEvenly, dinner.SplitMode)
	assert.Equal(t, "id-2", dinner.PaidByID)
	assert.Equal(t, int64(8), dinner.CategoryID)
	assert.False(t, dinner.IsReimbursement)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), dinner.ExpenseDate)

	assert.Equal(t, []models.Allocation{
		{ExpenseID: "id-5", ParticipantID: "id-2"},
		{ExpenseID: "id-5", ParticipantID: "id-3"},
	}, l.AllocationsFor(dinner.ID))
}

func TestImport_OddCentSplit(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	_, err := importString(t, svc, testExport)
	require.NoError(t, err)
	l := store.saved[0]

	groceries := l.Expenses[1]
	assert.Equal(t, int64(1001), groceries.Amount)
	assert.Equal(t, models.SplitModeByAmount, groceries.SplitMode)
	assert.Equal(t, "id-3", groceries.PaidByID)
	assert.Equal(t, int64(9), groceries.CategoryID)

	allocs := l.AllocationsFor(groceries.ID)
	require.Len(t, allocs, 2)
	assert.Equal(t, "id-2", allocs[0].ParticipantID)
	assert.Equal(t, int64(501), *allocs[0].Shares)
	assert.Equal(t, "id-3", allocs[1].ParticipantID)
	assert.Equal(t, int64(500), *allocs[1].Shares)
}

func TestImport_ByAmountSharesSumToAmount(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	_, err := importString(t, svc, testExport)
	require.NoError(t, err)
	l := store.saved[0]

	for _, e := range l.Expenses {
		if e.SplitMode != models.SplitModeByAmount {
			continue
		}
		var sum int64
		for _, a := range l.AllocationsFor(e.ID) {
			require.NotNil(t, a.Shares)
			sum += *a.Shares
		}
		assert.Equal(t, e.Amount, sum, "expense %q", e.Title)
	}
}

func TestImport_Payment(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	_, err := importString(t, svc, testExport)
	require.NoError(t, err)
	l := store.saved[0]

	payment := l.Expenses[2]
	assert.True(t, payment.IsReimbursement)
	assert.Equal(t, category.FallbackID, payment.CategoryID)
	assert.Equal(t, models.SplitModeEvenly, payment.SplitMode)
	assert.Equal(t, "id-2", payment.PaidByID)
	assert.Equal(t, int64(499), payment.Amount)

	assert.Equal(t, []models.Allocation{
		{ExpenseID: payment.ID, ParticipantID: "id-3"},
	}, l.AllocationsFor(payment.ID))
}

func TestImport_UnknownCategoryWritesNothing(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	data := testExport + "2024-01-07,Rocket,Espace - autre,5.00,EUR,2.50,-2.50,0.00\n"
	_, err := importString(t, svc, data)

	require.Error(t, err)
	assert.True(t, errors.Is(err, category.ErrUnknownCategory))

	var rowErr *ledger.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 8, rowErr.Line)

	assert.Empty(t, store.saved)
}

func TestImport_MalformedRowWritesNothing(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	data := strings.Replace(testExport, "10.01,EUR", "ten,EUR", 1)
	_, err := importString(t, svc, data)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrMalformedRow))
	assert.Empty(t, store.saved)
}

func TestImport_SeveralPayersWritesNothing(t *testing.T) {
	store := newMemStore()
	m := metrics.NewImportMetrics()
	svc := newTestImportService(t, store, WithMetrics(m))

	data := testExport + "2024-01-07,Gift,Général,30.00,EUR,5.00,5.00,-10.00\n"
	_, err := importString(t, svc, data)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrMalformedRow))

	var rowErr *ledger.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 8, rowErr.Line)
	assert.Equal(t, "Bob", rowErr.Column)

	assert.Empty(t, store.saved)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("build")))
}

func TestImport_SaveError(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	m := metrics.NewImportMetrics()
	svc := newTestImportService(t, store, WithMetrics(m))

	_, err := importString(t, svc, testExport)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("persist")))
}

func TestImport_Metrics(t *testing.T) {
	store := newMemStore()
	m := metrics.NewImportMetrics()
	svc := newTestImportService(t, store, WithMetrics(m))

	_, err := importString(t, svc, testExport)
	require.NoError(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.RowsRead))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsSkipped))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ExpensesCreated))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.AllocationsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SplitModes.WithLabelValues("BY_AMOUNT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SplitModes.WithLabelValues("EVENLY")))
}

func TestPlan_DoesNotPersist(t *testing.T) {
	store := newMemStore()
	svc := newTestImportService(t, store)

	result, err := svc.Plan(context.Background(), ImportRequest{
		GroupName: "Dry run",
		Currency:  "EUR",
		Source:    strings.NewReader(testExport),
	})
	require.NoError(t, err)

	assert.False(t, result.Persisted)
	assert.Len(t, result.Ledger.Expenses, 4)
	assert.Empty(t, store.saved)
}

func TestImport_UUIDs(t *testing.T) {
	translations, err := category.DefaultTranslations()
	require.NoError(t, err)
	store := newMemStore()
	svc := NewImportService(store, category.NewResolver(translations))

	result, err := importString(t, svc, testExport)
	require.NoError(t, err)

	seen := map[string]bool{result.Ledger.Group.ID: true}
	for _, p := range result.Ledger.Participants {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
	for _, e := range result.Ledger.Expenses {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
		assert.Len(t, e.ID, 36)
	}
}
