// Package memory provides an in-memory implementation of store.Store used by
// tests and by the STORAGE=memory demo mode. It mirrors the unique
// constraints and cascades of the postgres schema.
package memory

import (
	"sort"
	"sync"
	"time"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq int64

	users       map[string]models.User
	departments map[string]models.Department
	machines    map[string]models.Machine
	items       map[string]models.Item
	processes   map[string]models.Process
	assignments map[string]models.ItemAssignment
	updates     []models.ProcessUpdate
	delays      []models.DelayReason
	notes       []models.Note
	audit       []models.AuditLog

	// insertion order, used to break timestamp ties
	order map[string]int64
}

func New() *Store {
	return &Store{
		now:         time.Now,
		users:       map[string]models.User{},
		departments: map[string]models.Department{},
		machines:    map[string]models.Machine{},
		items:       map[string]models.Item{},
		processes:   map[string]models.Process{},
		assignments: map[string]models.ItemAssignment{},
		order:       map[string]int64{},
	}
}

// SetClock overrides the timestamp source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) track(id string) {
	s.seq++
	s.order[id] = s.seq
}

// newestFirst sorts ids by timestamp descending, then by insertion order.
func (s *Store) newestFirst(ids []string, ts func(id string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ti, tj := ts(ids[i]), ts(ids[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return s.order[ids[i]] > s.order[ids[j]]
	})
}

func stamp(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
	}
}

func (s *Store) department(id string) *models.Department {
	d, ok := s.departments[id]
	if !ok {
		return nil
	}
	return &d
}

// authorRef resolves a nullable history author.
func (s *Store) authorRef(id *string) *models.User {
	if id == nil {
		return nil
	}
	return s.userRef(*id)
}

func (s *Store) userRef(id string) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &u
}
