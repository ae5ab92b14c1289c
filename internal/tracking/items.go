package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"prodtrack/internal/models"
	"prodtrack/internal/report"
	"prodtrack/internal/store"
)

// CreateItemInput binds both JSON bodies and HTML form posts.
type CreateItemInput struct {
	ItemNumber   string `json:"item_number" form:"item_number"`
	Name         string `json:"name" form:"name"`
	Type         string `json:"type" form:"type"`
	Customer     string `json:"customer" form:"customer"`
	Color        string `json:"color" form:"color"`
	Quantity     int    `json:"quantity" form:"quantity"`
	TargetOutput int    `json:"target_output" form:"target_output"`
	Deadline     string `json:"deadline" form:"deadline"`
	DepartmentID string `json:"department_id" form:"department_id"`
}

// ItemView is an item with its computed progress.
type ItemView struct {
	models.Item
	OutputProgress     int `json:"output_progress"`
	ProcessProgress    int `json:"process_progress"`
	CompletedProcesses int `json:"completed_processes"`
	TotalProcesses     int `json:"total_processes"`
}

func viewOf(item models.Item) ItemView {
	return ItemView{
		Item:               item,
		OutputProgress:     item.OutputProgress(),
		ProcessProgress:    item.ProcessProgress(),
		CompletedProcesses: item.CompletedProcesses(),
		TotalProcesses:     len(item.Processes),
	}
}

func viewsOf(items []models.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, viewOf(item))
	}
	return out
}

// OutputResult reports an output update. ExceedsTarget flags overshoot,
// which is accepted.
type OutputResult struct {
	Item          *models.Item `json:"item"`
	ExceedsTarget bool         `json:"exceeds_target"`
}

type ItemManager struct {
	base
	items   store.Items
	catalog store.Catalog
}

func NewItemManager(items store.Items, catalog store.Catalog, audit store.Audit, deps Deps) *ItemManager {
	return &ItemManager{base: newBase("items", audit, deps), items: items, catalog: catalog}
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDeadline(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (in CreateItemInput) validate() (time.Time, error) {
	required := []struct{ field, value string }{
		{"item number", in.ItemNumber},
		{"name", in.Name},
		{"type", in.Type},
		{"customer", in.Customer},
		{"department", in.DepartmentID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return time.Time{}, invalid("%s is required", r.field)
		}
	}
	if in.Quantity <= 0 {
		return time.Time{}, invalid("quantity must be greater than zero")
	}
	if in.TargetOutput <= 0 {
		return time.Time{}, invalid("target output must be greater than zero")
	}
	deadline, ok := parseDeadline(in.Deadline)
	if !ok {
		return time.Time{}, invalid("deadline must be a date (YYYY-MM-DD) or RFC3339 timestamp")
	}
	return deadline, nil
}

func (m *ItemManager) CreateItem(ctx context.Context, in CreateItemInput, actor Actor) (*models.Item, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	deadline, err := in.validate()
	if err != nil {
		return nil, err
	}

	deptID := strings.TrimSpace(in.DepartmentID)
	if _, err := m.catalog.FindDepartment(ctx, deptID); errors.Is(err, store.ErrNotFound) {
		return nil, invalid("department %q does not exist", deptID)
	} else if err != nil {
		return nil, m.storeErr("load department", "department", "", err)
	}

	item := &models.Item{
		ID:            uuid.NewString(),
		ItemNumber:    strings.TrimSpace(in.ItemNumber),
		Name:          strings.TrimSpace(in.Name),
		Type:          strings.TrimSpace(in.Type),
		Customer:      strings.TrimSpace(in.Customer),
		Quantity:      in.Quantity,
		TargetOutput:  in.TargetOutput,
		CurrentOutput: 0,
		Deadline:      deadline,
		Status:        models.ItemPending,
		DepartmentID:  deptID,
	}
	if color := strings.TrimSpace(in.Color); color != "" {
		item.Color = &color
	}

	if err := m.items.CreateItem(ctx, item); err != nil {
		return nil, m.storeErr("create item", "department", KindDuplicateItemNumber, err)
	}

	m.record(ctx, actor, "item", item.ID, "create", "created item "+item.ItemNumber)
	m.touched(ctx)
	m.log.Info("item created", zap.String("item_id", item.ID), zap.String("item_number", item.ItemNumber))
	return item, nil
}

func (m *ItemManager) UpdateItemStatus(ctx context.Context, id string, status models.ItemStatus, actor Actor) (*models.Item, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("unknown item status %q", status)
	}
	item, err := m.items.FindItem(ctx, id)
	if err != nil {
		return nil, m.storeErr("load item", "item", "", err)
	}
	if !CanTransitionItem(item.Status, status) {
		return nil, invalid("item cannot move from %s to %s", item.Status, status)
	}
	if err := m.items.SetItemStatus(ctx, id, status); err != nil {
		return nil, m.storeErr("update item status", "item", "", err)
	}

	old := item.Status
	item.Status = status
	m.record(ctx, actor, "item", id, "status_change", fmt.Sprintf("%s -> %s", old, status))
	m.touched(ctx)
	return item, nil
}

func (m *ItemManager) UpdateItemOutput(ctx context.Context, id string, output int, actor Actor) (*OutputResult, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	if output < 0 {
		return nil, invalid("current output cannot be negative")
	}
	item, err := m.items.FindItem(ctx, id)
	if err != nil {
		return nil, m.storeErr("load item", "item", "", err)
	}
	if err := m.items.SetItemOutput(ctx, id, output); err != nil {
		return nil, m.storeErr("update item output", "item", "", err)
	}

	item.CurrentOutput = output
	res := &OutputResult{Item: item, ExceedsTarget: output > item.TargetOutput}
	if res.ExceedsTarget {
		m.log.Warn("output exceeds target",
			zap.String("item_id", id),
			zap.Int("current_output", output),
			zap.Int("target_output", item.TargetOutput))
	}
	m.touched(ctx)
	return res, nil
}

func (m *ItemManager) DeleteItem(ctx context.Context, id string, actor Actor) error {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if err := m.items.DeleteItem(ctx, id); err != nil {
		return m.storeErr("delete item", "item", "", err)
	}
	m.record(ctx, actor, "item", id, "delete", "deleted item and its processes")
	m.touched(ctx)
	return nil
}

func (m *ItemManager) AddItemNote(ctx context.Context, itemID, content string, actor Actor) (*models.Note, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("note content is required")
	}
	note := &models.Note{
		ID:      uuid.NewString(),
		ItemID:  itemID,
		UserID:  models.AuthorID(actor.UserID),
		Content: content,
	}
	if err := m.items.CreateNote(ctx, note); err != nil {
		return nil, m.storeErr("add note", "item", "", err)
	}
	return note, nil
}

func (m *ItemManager) ListItems(ctx context.Context, filter store.ItemFilter, actor Actor) ([]ItemView, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown item status %q", filter.Status)
	}
	items, err := m.items.ListItems(ctx, filter)
	if err != nil {
		return nil, m.storeErr("list items", "item", "", err)
	}
	return viewsOf(items), nil
}

func (m *ItemManager) GetItemDetail(ctx context.Context, id string, actor Actor) (*ItemView, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	item, err := m.items.ItemDetail(ctx, id)
	if err != nil {
		return nil, m.storeErr("load item", "item", "", err)
	}
	v := viewOf(*item)
	return &v, nil
}

// ExportItems renders the filtered item list as a workbook. The caller closes it.
func (m *ItemManager) ExportItems(ctx context.Context, filter store.ItemFilter, actor Actor) (*excelize.File, error) {
	if err := RequireRole(actor, models.RoleAdmin, models.RoleEncoder); err != nil {
		return nil, err
	}
	items, err := m.items.ListItems(ctx, filter)
	if err != nil {
		return nil, m.storeErr("list items", "item", "", err)
	}
	f, err := report.ItemsWorkbook(items, m.now())
	if err != nil {
		m.log.Error("export failed", zap.Error(err))
		return nil, &Error{Kind: KindPersistence, Message: "failed to build export", Err: err}
	}
	return f, nil
}

func (m *ItemManager) Departments(ctx context.Context, actor Actor) ([]models.Department, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	depts, err := m.catalog.ListDepartments(ctx)
	if err != nil {
		return nil, m.storeErr("list departments", "department", "", err)
	}
	return depts, nil
}

// Machines lists machines, optionally for one department.
func (m *ItemManager) Machines(ctx context.Context, departmentID string, actor Actor) ([]models.Machine, error) {
	if err := RequireAuth(actor); err != nil {
		return nil, err
	}
	machines, err := m.catalog.ListMachines(ctx, departmentID)
	if err != nil {
		return nil, m.storeErr("list machines", "machine", "", err)
	}
	return machines, nil
}
