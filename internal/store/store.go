// Package store declares the persistence contracts used by the tracking
// managers. Implementations live in internal/repository (postgres) and
// internal/repository/memory.
package store

import (
	"context"
	"errors"
	"time"

	"prodtrack/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ProcessChange is what a process mutation persists next to the updated row.
// Nil fields are skipped.
type ProcessChange struct {
	Update *models.ProcessUpdate
	Delay  *models.DelayReason
}

// ProcessMutator mutates the locked process in place.
type ProcessMutator func(p *models.Process) (ProcessChange, error)

type ItemFilter struct {
	Status       models.ItemStatus
	DepartmentID string
}

type Items interface {
	CreateItem(ctx context.Context, item *models.Item) error
	FindItem(ctx context.Context, id string) (*models.Item, error)
	// ItemDetail loads department, processes ordered by order, assignments with users and notes.
	ItemDetail(ctx context.Context, id string) (*models.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error)
	SetItemStatus(ctx context.Context, id string, status models.ItemStatus) error
	SetItemOutput(ctx context.Context, id string, output int) error
	// DeleteItem removes the item together with everything it owns.
	DeleteItem(ctx context.Context, id string) error
	CreateNote(ctx context.Context, note *models.Note) error
}

type Processes interface {
	// CreateProcess appends p after the item's last process.
	CreateProcess(ctx context.Context, p *models.Process) error
	FindProcess(ctx context.Context, id string) (*models.Process, error)
	// MutateProcess runs fn on the locked row and persists the row and the
	// change atomically.
	MutateProcess(ctx context.Context, id string, fn ProcessMutator) (*models.Process, error)
	AppendProcessUpdate(ctx context.Context, u *models.ProcessUpdate) error
	SetProcessAssignee(ctx context.Context, id string, userID *string) error
	ProcessUpdates(ctx context.Context, processID string) ([]models.ProcessUpdate, error)
	DelayReasons(ctx context.Context, processID string) ([]models.DelayReason, error)
	ProcessesForUser(ctx context.Context, userID string) ([]models.Process, error)
}

type Assignments interface {
	CreateAssignment(ctx context.Context, a *models.ItemAssignment) error
	DeleteAssignment(ctx context.Context, id string) error
	ListAssignments(ctx context.Context) ([]AssignmentView, error)
	AssignmentStats(ctx context.Context) (AssignmentStats, error)
	// ItemsForUser returns items assigned to userID with only the processes
	// assigned to that user.
	ItemsForUser(ctx context.Context, userID string) ([]models.Item, error)
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, name string, role models.UserRole, departmentID *string) error
	UpdateProfile(ctx context.Context, id, name, email string) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

type Catalog interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
	ListMachines(ctx context.Context, departmentID string) ([]models.Machine, error)
	FindMachine(ctx context.Context, id string) (*models.Machine, error)
}

type Audit interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type Stats interface {
	ItemCounts(ctx context.Context, now time.Time) (ItemCounts, error)
	ItemsByDepartment(ctx context.Context) ([]DepartmentCount, error)
	RecentItems(ctx context.Context, limit int, byUpdated bool) ([]models.Item, error)
	EmployeeCounts(ctx context.Context, userID string) (EmployeeCounts, error)
	CountUsers(ctx context.Context) (int64, error)
	CountDepartments(ctx context.Context) (int64, error)
}

// Store is the full persistence surface.
type Store interface {
	Items
	Processes
	Assignments
	Users
	Catalog
	Audit
	Stats
}
