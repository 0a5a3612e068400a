package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitwiser-import/internal/calculator"
	"github.com/mmynk/splitwiser-import/internal/models"
	"github.com/mmynk/splitwiser-import/internal/storage"
)

// GroupService reads back imported groups.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// GroupBalances is a ledger together with the balances it implies.
type GroupBalances struct {
	Ledger  *models.Ledger
	Members []calculator.MemberBalance
	Debts   []calculator.DebtEdge
}

// ListGroups retrieves all imported groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, err
	}

	slog.Debug("ListGroups successful", "count", len(groups))
	return groups, nil
}

// GetGroup retrieves a group with all its records.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Ledger, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group_id required")
	}

	l, err := s.store.GetLedger(ctx, groupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Debug("GetGroup successful", "group_id", groupID, "name", l.Group.Name)
	return l, nil
}

// GetGroupBalances calculates balances across all expenses of a group.
func (s *GroupService) GetGroupBalances(ctx context.Context, groupID string) (*GroupBalances, error) {
	l, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, debts, err := calculator.CalculateLedgerBalances(l)
	if err != nil {
		slog.Error("GetGroupBalances failed - calculation error", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to calculate balances: %w", err)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses_count", len(l.Expenses),
		"members_count", len(members),
		"debts_count", len(debts),
	)

	return &GroupBalances{Ledger: l, Members: members, Debts: debts}, nil
}
