package memory

import (
	"context"
	"sort"
	"time"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

func (s *Store) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ItemNumber == item.ItemNumber {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.departments[item.DepartmentID]; !ok {
		return store.ErrNotFound
	}

	now := s.now()
	stamp(&item.CreatedAt, now)
	stamp(&item.UpdatedAt, now)
	s.items[item.ID] = bareItem(*item)
	s.track(item.ID)
	return nil
}

func bareItem(item models.Item) models.Item {
	item.Department = nil
	item.Processes = nil
	item.Assignments = nil
	item.Notes = nil
	return item
}

func (s *Store) FindItem(_ context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *Store) itemProcesses(itemID string, keep func(models.Process) bool) []models.Process {
	var out []models.Process
	for _, p := range s.processes {
		if p.ItemID != itemID || (keep != nil && !keep(p)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *Store) ItemDetail(_ context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	item.Department = s.department(item.DepartmentID)

	for _, p := range s.itemProcesses(id, nil) {
		if p.MachineID != nil {
			if m, ok := s.machines[*p.MachineID]; ok {
				p.Machine = &m
			}
		}
		if p.AssignedToID != nil {
			p.AssignedTo = s.userRef(*p.AssignedToID)
		}
		item.Processes = append(item.Processes, p)
	}

	var assignmentIDs []string
	for aid, a := range s.assignments {
		if a.ItemID == id {
			assignmentIDs = append(assignmentIDs, aid)
		}
	}
	s.newestFirst(assignmentIDs, func(aid string) time.Time { return s.assignments[aid].AssignedAt })
	for _, aid := range assignmentIDs {
		a := s.assignments[aid]
		a.User = s.userRef(a.UserID)
		item.Assignments = append(item.Assignments, a)
	}

	for i := len(s.notes) - 1; i >= 0; i-- {
		n := s.notes[i]
		if n.ItemID == id {
			n.User = s.authorRef(n.UserID)
			item.Notes = append(item.Notes, n)
		}
	}
	return &item, nil
}

func (s *Store) ListItems(_ context.Context, filter store.ItemFilter) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, item := range s.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.DepartmentID != "" && item.DepartmentID != filter.DepartmentID {
			continue
		}
		ids = append(ids, id)
	}
	s.newestFirst(ids, func(id string) time.Time { return s.items[id].CreatedAt })

	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		item := s.items[id]
		item.Department = s.department(item.DepartmentID)
		item.Processes = s.itemProcesses(id, nil)
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) updateItem(id string, fn func(*models.Item)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&item)
	item.UpdatedAt = s.now()
	s.items[id] = item
	return nil
}

func (s *Store) SetItemStatus(_ context.Context, id string, status models.ItemStatus) error {
	return s.updateItem(id, func(item *models.Item) { item.Status = status })
}

func (s *Store) SetItemOutput(_ context.Context, id string, output int) error {
	return s.updateItem(id, func(item *models.Item) { item.CurrentOutput = output })
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}

	owned := map[string]bool{}
	for pid, p := range s.processes {
		if p.ItemID == id {
			owned[pid] = true
			delete(s.processes, pid)
		}
	}
	s.updates = keepOnly(s.updates, func(u models.ProcessUpdate) bool { return !owned[u.ProcessID] })
	s.delays = keepOnly(s.delays, func(d models.DelayReason) bool { return !owned[d.ProcessID] })
	s.notes = keepOnly(s.notes, func(n models.Note) bool { return n.ItemID != id })
	for aid, a := range s.assignments {
		if a.ItemID == id {
			delete(s.assignments, aid)
		}
	}
	delete(s.items, id)
	return nil
}

func (s *Store) CreateNote(_ context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[note.ItemID]; !ok {
		return store.ErrNotFound
	}
	if note.UserID != nil {
		if _, ok := s.users[*note.UserID]; !ok {
			return store.ErrNotFound
		}
	}
	stamp(&note.CreatedAt, s.now())
	n := *note
	n.User = nil
	s.notes = append(s.notes, n)
	return nil
}

func keepOnly[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
