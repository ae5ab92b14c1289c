package tracking

import (
	"context"

	"go.uber.org/zap"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

const (
	adminRecentItems     = 5
	encoderRecentItems   = 8
	analyticsRecentItems = 10
	defaultAuditLimit    = 100
)

type AdminOverview struct {
	TotalItems  int64         `json:"total_items"`
	InProgress  int64         `json:"in_progress"`
	Completed   int64         `json:"completed"`
	Overdue     int64         `json:"overdue"`
	RecentItems []models.Item `json:"recent_items"`
}

type EncoderOverview struct {
	TotalItems  int64         `json:"total_items"`
	Pending     int64         `json:"pending"`
	InProgress  int64         `json:"in_progress"`
	Departments int64         `json:"departments"`
	RecentItems []models.Item `json:"recent_items"`
}

type EmployeeOverview struct {
	store.EmployeeCounts
	Items []ItemView `json:"items"`
}

type Analytics struct {
	TotalItems     int64                       `json:"total_items"`
	Completed      int64                       `json:"completed"`
	InProgress     int64                       `json:"in_progress"`
	Overdue        int64                       `json:"overdue"`
	Users          int64                       `json:"users"`
	Departments    int64                       `json:"departments"`
	CompletionRate int                         `json:"completion_rate"`
	ByStatus       map[models.ItemStatus]int64 `json:"by_status"`
	ByDepartment   []store.DepartmentCount     `json:"by_department"`
	RecentActivity []models.Item               `json:"recent_activity"`
}

type AssignmentBoard struct {
	Stats       store.AssignmentStats  `json:"stats"`
	Assignments []store.AssignmentView `json:"assignments"`
}

// Dashboard serves the read-only overviews. Shared snapshots go through the
// cache; per-user views are always computed.
type Dashboard struct {
	base
	stats       store.Stats
	assignments store.Assignments
}

func NewDashboard(stats store.Stats, assignments store.Assignments, audit store.Audit, deps Deps) *Dashboard {
	return &Dashboard{base: newBase("dashboard", audit, deps), stats: stats, assignments: assignments}
}

// cached fills dst from the snapshot under key, or runs load and stores the
// result. Cache failures degrade to a direct load. A load that overlaps a
// write in this process is returned but not kept. Writes made by other
// processes sharing the cache are bounded by the cache TTL.
func (d *Dashboard) cached(ctx context.Context, key string, dst interface{}, load func() error) error {
	hit, err := d.cache.Get(ctx, key, dst)
	if err != nil {
		d.log.Warn("snapshot read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return nil
	}

	gen := d.writes.Load()
	if err := load(); err != nil {
		return err
	}
	if d.writes.Load() != gen {
		return nil
	}
	if err := d.cache.Set(ctx, key, dst); err != nil {
		d.log.Warn("snapshot write failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	// a write that landed between the check and Set may have invalidated
	// before Set ran
	if d.writes.Load() != gen {
		if err := d.cache.Invalidate(ctx, key); err != nil {
			d.log.Warn("snapshot invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (d *Dashboard) AdminOverview(ctx context.Context, actor Actor) (*AdminOverview, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	out := &AdminOverview{}
	err := d.cached(ctx, KeyAdminOverview, out, func() error {
		counts, err := d.stats.ItemCounts(ctx, d.now())
		if err != nil {
			return d.storeErr("count items", "item", "", err)
		}
		recent, err := d.stats.RecentItems(ctx, adminRecentItems, false)
		if err != nil {
			return d.storeErr("load recent items", "item", "", err)
		}
		*out = AdminOverview{
			TotalItems:  counts.Total,
			InProgress:  counts.ByStatus[models.ItemInProgress],
			Completed:   counts.ByStatus[models.ItemCompleted],
			Overdue:     counts.Overdue,
			RecentItems: recent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dashboard) EncoderOverview(ctx context.Context, actor Actor) (*EncoderOverview, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	out := &EncoderOverview{}
	err := d.cached(ctx, KeyEncoderOverview, out, func() error {
		counts, err := d.stats.ItemCounts(ctx, d.now())
		if err != nil {
			return d.storeErr("count items", "item", "", err)
		}
		depts, err := d.stats.CountDepartments(ctx)
		if err != nil {
			return d.storeErr("count departments", "department", "", err)
		}
		recent, err := d.stats.RecentItems(ctx, encoderRecentItems, false)
		if err != nil {
			return d.storeErr("load recent items", "item", "", err)
		}
		*out = EncoderOverview{
			TotalItems:  counts.Total,
			Pending:     counts.ByStatus[models.ItemPending],
			InProgress:  counts.ByStatus[models.ItemInProgress],
			Departments: depts,
			RecentItems: recent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dashboard) EmployeeOverview(ctx context.Context, actor Actor) (*EmployeeOverview, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	counts, err := d.stats.EmployeeCounts(ctx, actor.UserID)
	if err != nil {
		return nil, d.storeErr("count assigned work", "user", "", err)
	}
	items, err := d.assignments.ItemsForUser(ctx, actor.UserID)
	if err != nil {
		return nil, d.storeErr("list assigned items", "item", "", err)
	}
	return &EmployeeOverview{EmployeeCounts: counts, Items: viewsOf(items)}, nil
}

func (d *Dashboard) Analytics(ctx context.Context, actor Actor) (*Analytics, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	out := &Analytics{}
	err := d.cached(ctx, KeyAnalytics, out, func() error {
		counts, err := d.stats.ItemCounts(ctx, d.now())
		if err != nil {
			return d.storeErr("count items", "item", "", err)
		}
		byDept, err := d.stats.ItemsByDepartment(ctx)
		if err != nil {
			return d.storeErr("count items by department", "department", "", err)
		}
		users, err := d.stats.CountUsers(ctx)
		if err != nil {
			return d.storeErr("count users", "user", "", err)
		}
		depts, err := d.stats.CountDepartments(ctx)
		if err != nil {
			return d.storeErr("count departments", "department", "", err)
		}
		recent, err := d.stats.RecentItems(ctx, analyticsRecentItems, true)
		if err != nil {
			return d.storeErr("load recent activity", "item", "", err)
		}
		completed := counts.ByStatus[models.ItemCompleted]
		*out = Analytics{
			TotalItems:     counts.Total,
			Completed:      completed,
			InProgress:     counts.ByStatus[models.ItemInProgress],
			Overdue:        counts.Overdue,
			Users:          users,
			Departments:    depts,
			CompletionRate: models.Percent(int(completed), int(counts.Total)),
			ByStatus:       counts.ByStatus,
			ByDepartment:   byDept,
			RecentActivity: recent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Dashboard) AssignmentBoard(ctx context.Context, actor Actor) (*AssignmentBoard, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	out := &AssignmentBoard{}
	err := d.cached(ctx, KeyAssignmentBoard, out, func() error {
		stats, err := d.assignments.AssignmentStats(ctx)
		if err != nil {
			return d.storeErr("count assignments", "assignment", "", err)
		}
		list, err := d.assignments.ListAssignments(ctx)
		if err != nil {
			return d.storeErr("list assignments", "assignment", "", err)
		}
		*out = AssignmentBoard{Stats: stats, Assignments: list}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AuditTrail returns the newest audit rows. A non-positive limit uses the default.
func (d *Dashboard) AuditTrail(ctx context.Context, limit int, actor Actor) ([]models.AuditLog, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	logs, err := d.audit.ListAuditLogs(ctx, limit)
	if err != nil {
		return nil, d.storeErr("list audit log", "audit log", "", err)
	}
	return logs, nil
}
