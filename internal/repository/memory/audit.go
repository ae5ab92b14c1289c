package memory

import (
	"context"

	"prodtrack/internal/models"
)

func (s *Store) CreateAuditLog(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&entry.CreatedAt, s.now())
	row := *entry
	row.User = nil
	s.audit = append(s.audit, row)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, limit int) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuditLog
	for i := len(s.audit) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		entry := s.audit[i]
		entry.User = s.authorRef(entry.UserID)
		out = append(out, entry)
	}
	return out, nil
}
