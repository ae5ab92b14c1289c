// Package tracking holds the production-tracking rules: who may do what to
// items, processes, assignments and users, and what each change records.
// Managers only talk to persistence through the store interfaces.
package tracking

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prodtrack/internal/cache"
	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

// Snapshot cache keys. Every successful write drops all of them.
const (
	KeyAdminOverview   = "dashboard:admin"
	KeyEncoderOverview = "dashboard:encoder"
	KeyAnalytics       = "dashboard:analytics"
	KeyAssignmentBoard = "dashboard:assignments"
)

var snapshotKeys = []string{KeyAdminOverview, KeyEncoderOverview, KeyAnalytics, KeyAssignmentBoard}

// Deps are shared by every manager. Nil fields get safe defaults.
type Deps struct {
	Log   *zap.Logger
	Cache cache.Cache
	Clock func() time.Time

	writes *atomic.Uint64
}

// withWrites gives the managers built from d one shared write counter.
func (d Deps) withWrites() Deps {
	if d.writes == nil {
		d.writes = new(atomic.Uint64)
	}
	return d
}

type base struct {
	log   *zap.Logger
	cache cache.Cache
	audit store.Audit
	now   func() time.Time
	// writes counts successful writes; snapshot loads compare it to drop
	// results that raced a write.
	writes *atomic.Uint64
}

func newBase(name string, audit store.Audit, deps Deps) base {
	deps = deps.withWrites()
	b := base{log: deps.Log, cache: deps.Cache, audit: audit, now: deps.Clock, writes: deps.writes}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	b.log = b.log.Named(name)
	if b.cache == nil {
		b.cache = cache.Nop{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// storeErr maps a persistence error onto the tracking taxonomy. entity names
// the missing record for ErrNotFound; dup is the kind reported for
// ErrDuplicate and may be empty when no unique constraint applies.
func (b *base) storeErr(op, entity string, dup Kind, err error) error {
	var te *Error
	switch {
	case errors.As(err, &te):
		return te
	case errors.Is(err, store.ErrNotFound):
		return notFound(entity)
	case dup != "" && errors.Is(err, store.ErrDuplicate):
		return &Error{Kind: dup, Message: duplicateMessages[dup], Err: err}
	}
	b.log.Error("persistence failure", zap.String("op", op), zap.Error(err))
	return &Error{Kind: KindPersistence, Message: "failed to " + op, Err: err}
}

var duplicateMessages = map[Kind]string{
	KindDuplicateItemNumber: "item number already exists",
	KindDuplicateAssignment: "user is already assigned to this item",
	KindDuplicateEmail:      "email already exists",
}

// touched drops the cached snapshots after a write. A cache failure never
// fails the write.
func (b *base) touched(ctx context.Context) {
	b.writes.Add(1)
	if err := b.cache.Invalidate(ctx, snapshotKeys...); err != nil {
		b.log.Warn("snapshot invalidation failed", zap.Error(err))
	}
}

func (b *base) record(ctx context.Context, actor Actor, entity, entityID, action, details string) {
	if b.audit == nil {
		return
	}
	entry := &models.AuditLog{
		ID:        uuid.NewString(),
		CreatedAt: b.now(),
		UserID:    models.AuthorID(actor.UserID),
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Details:   details,
	}
	if err := b.audit.CreateAuditLog(ctx, entry); err != nil {
		b.log.Warn("audit write failed",
			zap.String("entity", entity),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// Managers bundles every manager over one store.
type Managers struct {
	Items       *ItemManager
	Processes   *ProcessManager
	Assignments *AssignmentManager
	Users       *UserManager
	Dashboard   *Dashboard
}

func New(st store.Store, deps Deps) *Managers {
	deps = deps.withWrites()
	return &Managers{
		Items:       NewItemManager(st, st, st, deps),
		Processes:   NewProcessManager(st, st, st, st, deps),
		Assignments: NewAssignmentManager(st, st, st, st, deps),
		Users:       NewUserManager(st, st, st, deps),
		Dashboard:   NewDashboard(st, st, st, deps),
	}
}
