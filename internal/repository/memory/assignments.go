package memory

import (
	"context"
	"time"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

func (s *Store) CreateAssignment(_ context.Context, a *models.ItemAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[a.ItemID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.users[a.UserID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range s.assignments {
		if existing.ItemID == a.ItemID && existing.UserID == a.UserID {
			return store.ErrDuplicate
		}
	}

	stamp(&a.AssignedAt, s.now())
	row := *a
	row.Item = nil
	row.User = nil
	s.assignments[a.ID] = row
	s.track(a.ID)
	return nil
}

func (s *Store) DeleteAssignment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.assignments, id)
	return nil
}

func (s *Store) ListAssignments(_ context.Context) ([]store.AssignmentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.assignments))
	for id := range s.assignments {
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time { return s.assignments[id].AssignedAt })

	views := make([]store.AssignmentView, 0, len(ids))
	for _, id := range ids {
		a := s.assignments[id]
		item, okItem := s.items[a.ItemID]
		user, okUser := s.users[a.UserID]
		if !okItem || !okUser {
			continue
		}
		view := store.AssignmentView{
			ID:         a.ID,
			AssignedAt: a.AssignedAt,
			Item: store.AssignmentItem{
				ID:         item.ID,
				ItemNumber: item.ItemNumber,
				Name:       item.Name,
				Status:     item.Status,
			},
			User: store.AssignmentUser{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
				Role:  user.Role,
			},
		}
		if d := s.department(item.DepartmentID); d != nil {
			view.Item.DepartmentName = d.Name
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Store) AssignmentStats(_ context.Context) (store.AssignmentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assigned := map[string]bool{}
	for _, a := range s.assignments {
		assigned[a.ItemID] = true
	}
	stats := store.AssignmentStats{
		TotalItems:       int64(len(s.items)),
		TotalAssignments: int64(len(s.assignments)),
		AssignedItems:    int64(len(assigned)),
	}
	stats.UnassignedItems = stats.TotalItems - stats.AssignedItems
	return stats, nil
}

func (s *Store) ItemsForUser(_ context.Context, userID string) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, a := range s.assignments {
		if a.UserID == userID {
			if _, ok := s.items[a.ItemID]; ok {
				ids = append(ids, a.ItemID)
			}
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.items[id].CreatedAt })

	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		item := s.items[id]
		item.Department = s.department(item.DepartmentID)
		item.Processes = s.itemProcesses(id, func(p models.Process) bool {
			return p.AssignedToID != nil && *p.AssignedToID == userID
		})
		items = append(items, item)
	}
	return items, nil
}
