package tracking

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

type AssignmentManager struct {
	base
	assignments store.Assignments
	items       store.Items
	users       store.Users
}

func NewAssignmentManager(assignments store.Assignments, items store.Items, users store.Users, audit store.Audit, deps Deps) *AssignmentManager {
	return &AssignmentManager{
		base:        newBase("assignments", audit, deps),
		assignments: assignments,
		items:       items,
		users:       users,
	}
}

// CreateAssignment links a user to an item. Pair uniqueness is left to the
// store's unique index.
func (m *AssignmentManager) CreateAssignment(ctx context.Context, itemID, userID string, actor Actor) (*models.ItemAssignment, error) {
	if err := RequireRole(actor, models.RoleEncoder); err != nil {
		return nil, err
	}
	itemID, userID = strings.TrimSpace(itemID), strings.TrimSpace(userID)
	if itemID == "" || userID == "" {
		return nil, invalid("item and user are required")
	}
	item, err := m.items.FindItem(ctx, itemID)
	if err != nil {
		return nil, m.storeErr("load item", "item", "", err)
	}
	user, err := m.users.FindUser(ctx, userID)
	if err != nil {
		return nil, m.storeErr("load user", "user", "", err)
	}

	a := &models.ItemAssignment{
		ID:         uuid.NewString(),
		ItemID:     item.ID,
		UserID:     user.ID,
		AssignedAt: m.now(),
	}
	if err := m.assignments.CreateAssignment(ctx, a); err != nil {
		return nil, m.storeErr("create assignment", "item or user", KindDuplicateAssignment, err)
	}
	m.record(ctx, actor, "assignment", a.ID, "create", "assigned "+user.Email+" to "+item.ItemNumber)
	m.touched(ctx)
	return a, nil
}

func (m *AssignmentManager) RemoveAssignment(ctx context.Context, id string, actor Actor) error {
	if err := RequireRole(actor, models.RoleEncoder); err != nil {
		return err
	}
	if err := m.assignments.DeleteAssignment(ctx, id); err != nil {
		return m.storeErr("remove assignment", "assignment", "", err)
	}
	m.record(ctx, actor, "assignment", id, "delete", "removed assignment")
	m.touched(ctx)
	return nil
}

func (m *AssignmentManager) AssignmentStats(ctx context.Context, actor Actor) (store.AssignmentStats, error) {
	if err := RequireRole(actor, models.RoleEncoder, models.RoleAdmin); err != nil {
		return store.AssignmentStats{}, err
	}
	stats, err := m.assignments.AssignmentStats(ctx)
	if err != nil {
		return store.AssignmentStats{}, m.storeErr("count assignments", "assignment", "", err)
	}
	return stats, nil
}

func (m *AssignmentManager) ListAssignments(ctx context.Context, actor Actor) ([]store.AssignmentView, error) {
	if err := RequireRole(actor, models.RoleEncoder, models.RoleAdmin); err != nil {
		return nil, err
	}
	views, err := m.assignments.ListAssignments(ctx)
	if err != nil {
		return nil, m.storeErr("list assignments", "assignment", "", err)
	}
	return views, nil
}

// MyItems lists the actor's items, each carrying only the actor's processes.
func (m *AssignmentManager) MyItems(ctx context.Context, actor Actor) ([]ItemView, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	items, err := m.assignments.ItemsForUser(ctx, actor.UserID)
	if err != nil {
		return nil, m.storeErr("list assigned items", "item", "", err)
	}
	return viewsOf(items), nil
}
