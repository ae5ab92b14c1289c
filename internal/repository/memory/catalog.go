package memory

import (
	"context"
	"sort"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

// SaveDepartment inserts d unless a department with the same id exists.
func (s *Store) SaveDepartment(_ context.Context, d *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[d.ID]; !ok {
		s.departments[d.ID] = *d
	}
	return nil
}

// SaveMachine inserts m unless a machine with the same id exists.
func (s *Store) SaveMachine(_ context.Context, m *models.Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[m.DepartmentID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.machines[m.ID]; !ok {
		row := *m
		row.Department = nil
		s.machines[m.ID] = row
	}
	return nil
}

func (s *Store) ListDepartments(_ context.Context) ([]models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) FindDepartment(_ context.Context, id string) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d := s.department(id); d != nil {
		return d, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListMachines(_ context.Context, departmentID string) ([]models.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Machine
	for _, m := range s.machines {
		if departmentID != "" && m.DepartmentID != departmentID {
			continue
		}
		m.Department = s.department(m.DepartmentID)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartmentID != out[j].DepartmentID {
			return out[i].DepartmentID < out[j].DepartmentID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) FindMachine(_ context.Context, id string) (*models.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.machines[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}
