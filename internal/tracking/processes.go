package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

type CreateProcessInput struct {
	Name       string `json:"name" form:"name"`
	MachineID  string `json:"machine_id" form:"machine_id"`
	AssigneeID string `json:"assigned_to_id" form:"assigned_to_id"`
}

// ProcessHistory holds a process with its audit trail, newest first.
type ProcessHistory struct {
	Process *models.Process        `json:"process"`
	Updates []models.ProcessUpdate `json:"updates"`
	Delays  []models.DelayReason   `json:"delays"`
}

// MyProcesses is the employee task list with per-status counts.
type MyProcesses struct {
	Processes []models.Process             `json:"processes"`
	Counts    map[models.ProcessStatus]int `json:"counts"`
}

type ProcessManager struct {
	base
	processes store.Processes
	catalog   store.Catalog
	users     store.Users
}

func NewProcessManager(processes store.Processes, catalog store.Catalog, users store.Users, audit store.Audit, deps Deps) *ProcessManager {
	return &ProcessManager{
		base:      newBase("processes", audit, deps),
		processes: processes,
		catalog:   catalog,
		users:     users,
	}
}

// UpdateProcessStatus moves a process to status. Every call appends exactly
// one ProcessUpdate, including a move to the current status.
func (m *ProcessManager) UpdateProcessStatus(ctx context.Context, id string, status models.ProcessStatus, actor Actor) (*models.Process, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("unknown process status %q", status)
	}

	now := m.now()
	p, err := m.processes.MutateProcess(ctx, id, func(p *models.Process) (store.ProcessChange, error) {
		old := p.Status
		if !CanTransitionProcess(old, status) {
			return store.ProcessChange{}, invalid("process cannot move from %s to %s", old, status)
		}
		*p = NextProcessState(*p, status, now)
		return store.ProcessChange{
			Update: &models.ProcessUpdate{
				ID:        uuid.NewString(),
				ProcessID: p.ID,
				UserID:    models.AuthorID(actor.UserID),
				OldStatus: old,
				NewStatus: status,
				CreatedAt: now,
			},
		}, nil
	})
	if err != nil {
		return nil, m.storeErr("update process status", "process", "", err)
	}

	m.touched(ctx)
	m.log.Debug("process status changed",
		zap.String("process_id", id),
		zap.String("status", string(status)),
		zap.String("user_id", actor.UserID))
	return p, nil
}

// AddProcessNote appends a comment-only update; the status is unchanged.
func (m *ProcessManager) AddProcessNote(ctx context.Context, id, comment string, actor Actor) (*models.ProcessUpdate, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, invalid("comment is required")
	}
	p, err := m.processes.FindProcess(ctx, id)
	if err != nil {
		return nil, m.storeErr("load process", "process", "", err)
	}
	u := &models.ProcessUpdate{
		ID:        uuid.NewString(),
		ProcessID: p.ID,
		UserID:    models.AuthorID(actor.UserID),
		OldStatus: p.Status,
		NewStatus: p.Status,
		Comment:   &comment,
	}
	if err := m.processes.AppendProcessUpdate(ctx, u); err != nil {
		return nil, m.storeErr("add process note", "process", "", err)
	}
	return u, nil
}

// ReportDelay records a delay reason and forces the process into DELAYED,
// logging the move like any other status change.
func (m *ProcessManager) ReportDelay(ctx context.Context, id string, category models.DelayCategory, details string, actor Actor) (*models.Process, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, invalid("unknown delay category %q", category)
	}
	details = strings.TrimSpace(details)

	now := m.now()
	p, err := m.processes.MutateProcess(ctx, id, func(p *models.Process) (store.ProcessChange, error) {
		old := p.Status
		*p = NextProcessState(*p, models.ProcessDelayed, now)
		comment := fmt.Sprintf("delay reported: %s: %s", category, details)
		return store.ProcessChange{
			Delay: &models.DelayReason{
				ID:        uuid.NewString(),
				ProcessID: p.ID,
				Category:  category,
				Details:   details,
				CreatedAt: now,
			},
			Update: &models.ProcessUpdate{
				ID:        uuid.NewString(),
				ProcessID: p.ID,
				UserID:    models.AuthorID(actor.UserID),
				OldStatus: old,
				NewStatus: models.ProcessDelayed,
				Comment:   &comment,
				CreatedAt: now,
			},
		}, nil
	})
	if err != nil {
		return nil, m.storeErr("report delay", "process", "", err)
	}

	m.touched(ctx)
	m.log.Info("delay reported",
		zap.String("process_id", id),
		zap.String("category", string(category)),
		zap.String("user_id", actor.UserID))
	return p, nil
}

func (m *ProcessManager) CreateProcess(ctx context.Context, itemID string, in CreateProcessInput, actor Actor) (*models.Process, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("process name is required")
	}

	p := &models.Process{
		ID:     uuid.NewString(),
		Name:   name,
		Status: models.ProcessNotStarted,
		ItemID: itemID,
	}
	if machineID := strings.TrimSpace(in.MachineID); machineID != "" {
		if _, err := m.catalog.FindMachine(ctx, machineID); errors.Is(err, store.ErrNotFound) {
			return nil, invalid("machine %q does not exist", machineID)
		} else if err != nil {
			return nil, m.storeErr("load machine", "machine", "", err)
		}
		p.MachineID = &machineID
	}
	if assigneeID := strings.TrimSpace(in.AssigneeID); assigneeID != "" {
		if _, err := m.users.FindUser(ctx, assigneeID); errors.Is(err, store.ErrNotFound) {
			return nil, invalid("user %q does not exist", assigneeID)
		} else if err != nil {
			return nil, m.storeErr("load user", "user", "", err)
		}
		p.AssignedToID = &assigneeID
	}

	if err := m.processes.CreateProcess(ctx, p); err != nil {
		return nil, m.storeErr("create process", "item", "", err)
	}
	m.record(ctx, actor, "process", p.ID, "create", fmt.Sprintf("added step %d %q to item %s", p.Order, p.Name, itemID))
	m.touched(ctx)
	return p, nil
}

// AssignProcess sets the process assignee; an empty userID clears it.
func (m *ProcessManager) AssignProcess(ctx context.Context, id, userID string, actor Actor) (*models.Process, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	var assignee *string
	if userID = strings.TrimSpace(userID); userID != "" {
		if _, err := m.users.FindUser(ctx, userID); errors.Is(err, store.ErrNotFound) {
			return nil, invalid("user %q does not exist", userID)
		} else if err != nil {
			return nil, m.storeErr("load user", "user", "", err)
		}
		assignee = &userID
	}
	if err := m.processes.SetProcessAssignee(ctx, id, assignee); err != nil {
		return nil, m.storeErr("assign process", "process", "", err)
	}
	p, err := m.processes.FindProcess(ctx, id)
	if err != nil {
		return nil, m.storeErr("load process", "process", "", err)
	}
	details := "unassigned"
	if assignee != nil {
		details = "assigned to " + userID
	}
	m.record(ctx, actor, "process", id, "assign", details)
	m.touched(ctx)
	return p, nil
}

func (m *ProcessManager) ProcessHistory(ctx context.Context, id string, actor Actor) (*ProcessHistory, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	p, err := m.processes.FindProcess(ctx, id)
	if err != nil {
		return nil, m.storeErr("load process", "process", "", err)
	}
	updates, err := m.processes.ProcessUpdates(ctx, id)
	if err != nil {
		return nil, m.storeErr("load process updates", "process", "", err)
	}
	delays, err := m.processes.DelayReasons(ctx, id)
	if err != nil {
		return nil, m.storeErr("load delay reasons", "process", "", err)
	}
	return &ProcessHistory{Process: p, Updates: updates, Delays: delays}, nil
}

func (m *ProcessManager) MyProcesses(ctx context.Context, actor Actor) (*MyProcesses, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	procs, err := m.processes.ProcessesForUser(ctx, actor.UserID)
	if err != nil {
		return nil, m.storeErr("list processes", "process", "", err)
	}
	out := &MyProcesses{Processes: procs, Counts: map[models.ProcessStatus]int{}}
	for _, s := range models.ProcessStatuses {
		out.Counts[s] = 0
	}
	for _, p := range procs {
		out.Counts[p.Status]++
	}
	return out, nil
}
