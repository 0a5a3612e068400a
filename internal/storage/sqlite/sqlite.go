// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitwiser-import/internal/models"
	"github.com/mmynk/splitwiser-import/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

const dateLayout = "2006-01-02"

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection setting, so they go in the DSN.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListCategories returns all categories ordered by ID.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// SaveLedger writes a whole import run in one transaction.
func (s *SQLiteStore) SaveLedger(ctx context.Context, ledger *models.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	g := ledger.Group
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, currency, created_at) VALUES (?, ?, ?, ?)",
		g.ID, g.Name, g.Currency, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i, p := range ledger.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (id, group_id, name, position) VALUES (?, ?, ?, ?)",
			p.ID, p.GroupID, p.Name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant %q: %w", p.Name, err)
		}
	}

	for i, e := range ledger.Expenses {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, title, amount, expense_date, category_id,
			 is_reimbursement, paid_by_id, split_mode, created_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.GroupID, e.Title, e.Amount, e.ExpenseDate.Format(dateLayout), e.CategoryID,
			e.IsReimbursement, e.PaidByID, string(e.SplitMode), e.CreatedAt, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense %q: %w", e.Title, err)
		}
	}

	for i, a := range ledger.Allocations {
		var shares sql.NullInt64
		if a.Shares != nil {
			shares = sql.NullInt64{Int64: *a.Shares, Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_allocations (expense_id, participant_id, shares, position) VALUES (?, ?, ?, ?)",
			a.ExpenseID, a.ParticipantID, shares, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLedger retrieves a group with its participants, expenses and allocations.
func (s *SQLiteStore) GetLedger(ctx context.Context, groupID string) (*models.Ledger, error) {
	ledger := &models.Ledger{}

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, currency, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&ledger.Group.ID, &ledger.Group.Name, &ledger.Group.Currency, &ledger.Group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if ledger.Participants, err = s.listParticipants(ctx, groupID); err != nil {
		return nil, err
	}
	if ledger.Expenses, err = s.listExpenses(ctx, groupID); err != nil {
		return nil, err
	}
	if ledger.Allocations, err = s.listAllocations(ctx, groupID); err != nil {
		return nil, err
	}

	return ledger, nil
}

// ListGroups returns all groups, newest first.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, currency, created_at FROM groups ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Currency, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

func (s *SQLiteStore) listParticipants(ctx context.Context, groupID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, name FROM participants WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

func (s *SQLiteStore) listExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, title, amount, expense_date, category_id,
		 is_reimbursement, paid_by_id, split_mode, created_at
		 FROM expenses WHERE group_id = ? ORDER BY position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var date, splitMode string
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Title, &e.Amount, &date, &e.CategoryID,
			&e.IsReimbursement, &e.PaidByID, &splitMode, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.ExpenseDate, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("expense %s: invalid date %q: %w", e.ID, date, err)
		}
		e.SplitMode = models.SplitMode(splitMode)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

func (s *SQLiteStore) listAllocations(ctx context.Context, groupID string) ([]models.Allocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.expense_id, a.participant_id, a.shares
		 FROM expense_allocations a
		 JOIN expenses e ON e.id = a.expense_id
		 WHERE e.group_id = ?
		 ORDER BY a.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get allocations: %w", err)
	}
	defer rows.Close()

	var allocations []models.Allocation
	for rows.Next() {
		var a models.Allocation
		var shares sql.NullInt64
		if err := rows.Scan(&a.ExpenseID, &a.ParticipantID, &shares); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		if shares.Valid {
			v := shares.Int64
			a.Shares = &v
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}

	return allocations, nil
}
