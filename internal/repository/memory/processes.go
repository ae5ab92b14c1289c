package memory

import (
	"context"
	"sort"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

func (s *Store) CreateProcess(_ context.Context, p *models.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[p.ItemID]; !ok {
		return store.ErrNotFound
	}
	last := 0
	for _, existing := range s.processes {
		if existing.ItemID == p.ItemID && existing.Order > last {
			last = existing.Order
		}
	}
	p.Order = last + 1

	now := s.now()
	stamp(&p.CreatedAt, now)
	stamp(&p.UpdatedAt, now)
	s.processes[p.ID] = bareProcess(*p)
	s.track(p.ID)
	return nil
}

func bareProcess(p models.Process) models.Process {
	p.Item = nil
	p.Machine = nil
	p.AssignedTo = nil
	p.Updates = nil
	p.DelayReasons = nil
	return p
}

func (s *Store) FindProcess(_ context.Context, id string) (*models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.processes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) MutateProcess(_ context.Context, id string, fn store.ProcessMutator) (*models.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.processes[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	p := current
	change, err := fn(&p)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p.UpdatedAt = now
	p = bareProcess(p)
	s.processes[id] = p

	if change.Delay != nil {
		stamp(&change.Delay.CreatedAt, now)
		s.delays = append(s.delays, *change.Delay)
	}
	if change.Update != nil {
		stamp(&change.Update.CreatedAt, now)
		u := *change.Update
		u.User = nil
		s.updates = append(s.updates, u)
	}
	return &p, nil
}

func (s *Store) AppendProcessUpdate(_ context.Context, u *models.ProcessUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processes[u.ProcessID]; !ok {
		return store.ErrNotFound
	}
	stamp(&u.CreatedAt, s.now())
	row := *u
	row.User = nil
	s.updates = append(s.updates, row)
	return nil
}

func (s *Store) SetProcessAssignee(_ context.Context, id string, userID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.processes[id]
	if !ok {
		return store.ErrNotFound
	}
	if userID != nil {
		if _, ok := s.users[*userID]; !ok {
			return store.ErrNotFound
		}
		v := *userID
		p.AssignedToID = &v
	} else {
		p.AssignedToID = nil
	}
	p.UpdatedAt = s.now()
	s.processes[id] = p
	return nil
}

func (s *Store) ProcessUpdates(_ context.Context, processID string) ([]models.ProcessUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ProcessUpdate
	for i := len(s.updates) - 1; i >= 0; i-- {
		u := s.updates[i]
		if u.ProcessID == processID {
			u.User = s.authorRef(u.UserID)
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) DelayReasons(_ context.Context, processID string) ([]models.DelayReason, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.DelayReason
	for i := len(s.delays) - 1; i >= 0; i-- {
		if s.delays[i].ProcessID == processID {
			out = append(out, s.delays[i])
		}
	}
	return out, nil
}

func (s *Store) ProcessesForUser(_ context.Context, userID string) ([]models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Process
	for _, p := range s.processes {
		if p.AssignedToID == nil || *p.AssignedToID != userID {
			continue
		}
		if item, ok := s.items[p.ItemID]; ok {
			item.Department = s.department(item.DepartmentID)
			p.Item = &item
		}
		if p.MachineID != nil {
			if m, ok := s.machines[*p.MachineID]; ok {
				p.Machine = &m
			}
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out, nil
}
