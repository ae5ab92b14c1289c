package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prodtrack/internal/auth"
	"prodtrack/internal/models"
	"prodtrack/internal/store"
	"prodtrack/internal/tracking"
)

// SeedTarget is implemented by both the postgres repository and the memory store.
type SeedTarget interface {
	store.Users
	store.Items
	store.Processes
	store.Assignments
	SaveDepartment(ctx context.Context, d *models.Department) error
	SaveMachine(ctx context.Context, m *models.Machine) error
}

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	Demo          bool
}

const demoPassword = "password123"

var departments = []models.Department{
	{ID: "dept-cardboard", Name: "Cardboard Department", Type: models.DepartmentCardboard},
	{ID: "dept-manual", Name: "Manual Department", Type: models.DepartmentManual},
	{ID: "dept-label", Name: "Label Department", Type: models.DepartmentLabel},
	{ID: "dept-bookbind", Name: "Bookbind Department", Type: models.DepartmentBookbind},
	{ID: "dept-other", Name: "Other Items", Type: models.DepartmentOtherItems},
}

var machines = []struct{ name, kind, dept string }{
	{"TW102", "Printing Press", "dept-cardboard"},
	{"M1", "Cutting Machine", "dept-cardboard"},
	{"M2", "Folding Machine", "dept-cardboard"},
	{"M3", "Gluing Machine", "dept-cardboard"},
	{"M1", "Stitching Machine", "dept-manual"},
	{"M2", "Manual Press", "dept-manual"},
	{"M1", "Label Printer", "dept-label"},
	{"M2", "Label Cutter", "dept-label"},
	{"M1", "Binding Machine", "dept-bookbind"},
	{"M2", "Perfect Binder", "dept-bookbind"},
}

func machineID(dept, name string) string {
	return "machine-" + dept + "-" + name
}

// Seed creates reference data and the admin account, then demo data when
// asked. Every step is idempotent.
func Seed(ctx context.Context, target SeedTarget, opts SeedOptions, log *zap.Logger) error {
	for i := range departments {
		d := departments[i]
		if err := target.SaveDepartment(ctx, &d); err != nil {
			return fmt.Errorf("seed department %s: %w", d.ID, err)
		}
	}
	for _, m := range machines {
		row := &models.Machine{ID: machineID(m.dept, m.name), Name: m.name, Type: m.kind, DepartmentID: m.dept}
		if err := target.SaveMachine(ctx, row); err != nil {
			return fmt.Errorf("seed machine %s: %w", row.ID, err)
		}
	}

	if _, err := ensureUser(ctx, target, seedUser{
		name:     "Administrator",
		email:    opts.AdminEmail,
		password: opts.AdminPassword,
		role:     models.RoleAdmin,
	}, log); err != nil {
		return err
	}

	if opts.Demo {
		if err := seedDemo(ctx, target, log); err != nil {
			return err
		}
	}
	return nil
}

type seedUser struct {
	name, email, password string
	role                  models.UserRole
	dept                  string
}

// ensureUser returns the id of the user with u.email, creating it if missing.
func ensureUser(ctx context.Context, target SeedTarget, u seedUser, log *zap.Logger) (string, error) {
	email := strings.ToLower(strings.TrimSpace(u.email))
	existing, err := target.FindUserByEmail(ctx, email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("check seed user %s: %w", email, err)
	}

	hash, err := auth.HashPassword(u.password)
	if err != nil {
		return "", fmt.Errorf("hash password for %s: %w", email, err)
	}
	row := &models.User{
		ID:           uuid.NewString(),
		Name:         u.name,
		Email:        email,
		PasswordHash: hash,
		Role:         u.role,
	}
	if u.dept != "" {
		dept := u.dept
		row.DepartmentID = &dept
	}
	if err := target.CreateUser(ctx, row); err != nil {
		return "", fmt.Errorf("create seed user %s: %w", email, err)
	}
	log.Info("created seed user", zap.String("email", email), zap.String("role", string(u.role)))
	return row.ID, nil
}

type demoItem struct {
	number, name, kind, color, customer string
	quantity, target, output            int
	deadline                            string
	status                              models.ItemStatus
	dept                                string
	steps                               []demoStep
	owner                               string
	note                                string
}

type demoStep struct {
	status  models.ProcessStatus
	machine string
}

func seedDemo(ctx context.Context, target SeedTarget, log *zap.Logger) error {
	users := []seedUser{
		{name: "Line Leader", email: "lineleader@cpt.com", role: models.RoleEmployee, dept: "dept-cardboard"},
		{name: "Encoder User", email: "encoder@cpt.com", role: models.RoleEncoder, dept: "dept-cardboard"},
		{name: "John Dela Cruz", email: "employee1@cpt.com", role: models.RoleEmployee, dept: "dept-manual"},
		{name: "Maria Santos", email: "employee2@cpt.com", role: models.RoleEmployee, dept: "dept-label"},
	}
	ids := map[string]string{}
	for _, u := range users {
		u.password = demoPassword
		id, err := ensureUser(ctx, target, u, log)
		if err != nil {
			return err
		}
		ids[u.email] = id
	}

	press := machineID("dept-cardboard", "TW102")
	cutter := machineID("dept-cardboard", "M1")
	items := []demoItem{
		{
			number: "#ITEM1001", name: "Premium Box Package", kind: "FOLDED", color: "White",
			customer: "ABC Corporation", quantity: 10000, target: 10500, output: 243,
			deadline: "2026-01-15", status: models.ItemInProgress, dept: "dept-cardboard",
			steps: []demoStep{
				{models.ProcessCompleted, press},
				{models.ProcessDelayed, press},
				{models.ProcessCompleted, cutter},
				{models.ProcessDelayed, cutter},
				{models.ProcessDelayed, cutter},
			},
			owner: "lineleader@cpt.com",
			note:  "Production started on schedule. Machine TW102 operating normally.",
		},
		{
			number: "#ITEM2001", name: "Product Labels", kind: "SHEETED", color: "Multi-color",
			customer: "XYZ Inc", quantity: 5000, target: 5000, output: 1200,
			deadline: "2026-02-10", status: models.ItemInProgress, dept: "dept-label",
			steps: []demoStep{
				{models.ProcessCompleted, ""},
				{models.ProcessCompleted, ""},
				{models.ProcessInProgress, ""},
				{models.ProcessInProgress, ""},
			},
			owner: "employee2@cpt.com",
			note:  "Material quality check passed. Proceeding to next process.",
		},
		{
			number: "#ITEM3001", name: "Manual Booklet", kind: "STITCHED", color: "Black & White",
			customer: "Tech Solutions", quantity: 2000, target: 2000,
			deadline: "2026-02-20", status: models.ItemPending, dept: "dept-manual",
		},
	}

	for _, d := range items {
		if err := seedItem(ctx, target, d, ids, log); err != nil {
			return err
		}
	}
	return nil
}

func seedItem(ctx context.Context, target SeedTarget, d demoItem, users map[string]string, log *zap.Logger) error {
	deadline, err := time.Parse("2006-01-02", d.deadline)
	if err != nil {
		return err
	}
	color := d.color
	item := &models.Item{
		ID:            uuid.NewString(),
		ItemNumber:    d.number,
		Name:          d.name,
		Type:          d.kind,
		Customer:      d.customer,
		Quantity:      d.quantity,
		TargetOutput:  d.target,
		CurrentOutput: d.output,
		Deadline:      deadline,
		Status:        d.status,
		DepartmentID:  d.dept,
	}
	if color != "" {
		item.Color = &color
	}
	err = target.CreateItem(ctx, item)
	if errors.Is(err, store.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed item %s: %w", d.number, err)
	}

	owner := users[d.owner]
	now := time.Now()
	for i, step := range d.steps {
		p := &models.Process{
			ID:     uuid.NewString(),
			Name:   fmt.Sprintf("P%d", i+1),
			Status: models.ProcessNotStarted,
			ItemID: item.ID,
		}
		if step.machine != "" {
			m := step.machine
			p.MachineID = &m
		}
		if owner != "" {
			o := owner
			p.AssignedToID = &o
		}
		if err := target.CreateProcess(ctx, p); err != nil {
			return fmt.Errorf("seed process %s/%s: %w", d.number, p.Name, err)
		}
		status := step.status
		_, err := target.MutateProcess(ctx, p.ID, func(p *models.Process) (store.ProcessChange, error) {
			if status == models.ProcessCompleted || status == models.ProcessDelayed {
				*p = tracking.NextProcessState(*p, models.ProcessInProgress, now)
			}
			*p = tracking.NextProcessState(*p, status, now)
			return store.ProcessChange{}, nil
		})
		if err != nil {
			return fmt.Errorf("seed process status %s/%s: %w", d.number, p.Name, err)
		}
	}

	if owner != "" {
		a := &models.ItemAssignment{ID: uuid.NewString(), ItemID: item.ID, UserID: owner, AssignedAt: now}
		if err := target.CreateAssignment(ctx, a); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("seed assignment %s: %w", d.number, err)
		}
		if d.note != "" {
			note := &models.Note{ID: uuid.NewString(), ItemID: item.ID, UserID: models.AuthorID(owner), Content: d.note}
			if err := target.CreateNote(ctx, note); err != nil {
				return fmt.Errorf("seed note %s: %w", d.number, err)
			}
		}
	}
	log.Info("created demo item", zap.String("item_number", d.number), zap.Int("processes", len(d.steps)))
	return nil
}
