package memory

import (
	"context"
	"sort"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, u := range s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(u.Email, "") {
		return store.ErrDuplicate
	}
	now := s.now()
	stamp(&u.CreatedAt, now)
	stamp(&u.UpdatedAt, now)
	row := *u
	row.Department = nil
	s.users[u.ID] = row
	s.track(u.ID)
	return nil
}

func (s *Store) withDepartment(u models.User) *models.User {
	if u.DepartmentID != nil {
		u.Department = s.department(*u.DepartmentID)
	}
	return &u
}

func (s *Store) FindUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withDepartment(u), nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return s.withDepartment(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *s.withDepartment(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *Store) updateUser(id string, fn func(*models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *Store) UpdateUser(_ context.Context, id string, name string, role models.UserRole, departmentID *string) error {
	return s.updateUser(id, func(u *models.User) error {
		u.Name = name
		u.Role = role
		u.DepartmentID = departmentID
		return nil
	})
}

func (s *Store) UpdateProfile(_ context.Context, id, name, email string) error {
	return s.updateUser(id, func(u *models.User) error {
		if s.emailTaken(email, id) {
			return store.ErrDuplicate
		}
		u.Name = name
		u.Email = email
		return nil
	})
}

func (s *Store) SetPasswordHash(_ context.Context, id, hash string) error {
	return s.updateUser(id, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	for pid, p := range s.processes {
		if p.AssignedToID != nil && *p.AssignedToID == id {
			p.AssignedToID = nil
			s.processes[pid] = p
		}
	}
	for aid, a := range s.assignments {
		if a.UserID == id {
			delete(s.assignments, aid)
		}
	}
	// history rows stay, detached from the deleted author
	for i := range s.updates {
		s.updates[i].UserID = detach(s.updates[i].UserID, id)
	}
	for i := range s.notes {
		s.notes[i].UserID = detach(s.notes[i].UserID, id)
	}
	for i := range s.audit {
		s.audit[i].UserID = detach(s.audit[i].UserID, id)
	}
	delete(s.users, id)
	return nil
}

func detach(author *string, id string) *string {
	if author != nil && *author == id {
		return nil
	}
	return author
}
