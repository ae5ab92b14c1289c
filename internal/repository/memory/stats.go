package memory

import (
	"context"
	"sort"
	"time"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

func (s *Store) ItemCounts(_ context.Context, now time.Time) (store.ItemCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := store.ItemCounts{ByStatus: map[models.ItemStatus]int64{}}
	for _, item := range s.items {
		counts.Total++
		counts.ByStatus[item.Status]++
		if item.Deadline.Before(now) && item.Status != models.ItemCompleted {
			counts.Overdue++
		}
	}
	return counts, nil
}

func (s *Store) ItemsByDepartment(_ context.Context) ([]store.DepartmentCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perDept := map[string]int64{}
	for _, item := range s.items {
		perDept[item.DepartmentID]++
	}
	out := make([]store.DepartmentCount, 0, len(s.departments))
	for id, d := range s.departments {
		out = append(out, store.DepartmentCount{DepartmentID: id, Name: d.Name, Items: perDept[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) RecentItems(_ context.Context, limit int, byUpdated bool) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time {
		if byUpdated {
			return s.items[id].UpdatedAt
		}
		return s.items[id].CreatedAt
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		item := s.items[id]
		item.Department = s.department(item.DepartmentID)
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) EmployeeCounts(_ context.Context, userID string) (store.EmployeeCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts store.EmployeeCounts
	for _, a := range s.assignments {
		if a.UserID == userID {
			counts.AssignedItems++
		}
	}
	for _, p := range s.processes {
		if p.AssignedToID == nil || *p.AssignedToID != userID {
			continue
		}
		switch p.Status {
		case models.ProcessNotStarted, models.ProcessInProgress:
			counts.ActiveProcesses++
		case models.ProcessCompleted:
			counts.CompletedProcesses++
		}
	}
	return counts, nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) CountDepartments(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.departments)), nil
}
