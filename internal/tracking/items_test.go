package tracking

import (
	"context"
	"errors"
	"testing"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

func TestCreateItem(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ITM-100")

	if item.Status != models.ItemPending {
		t.Errorf("expected PENDING, got %s", item.Status)
	}
	if item.CurrentOutput != 0 {
		t.Errorf("expected currentOutput 0, got %d", item.CurrentOutput)
	}
	if item.Deadline.Year() != 2026 || item.Deadline.Month() != 1 {
		t.Errorf("unexpected deadline %v", item.Deadline)
	}

	stored, err := f.st.FindItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if stored.ItemNumber != "ITM-100" {
		t.Errorf("unexpected item number %q", stored.ItemNumber)
	}
	if f.cache.invalidations() != 1 {
		t.Errorf("expected one snapshot invalidation, got %d", f.cache.invalidations())
	}

	logs, _ := f.st.ListAuditLogs(context.Background(), 10)
	if len(logs) != 1 || logs[0].Action != "create" || !authoredBy(logs[0].UserID, f.encoder) {
		t.Errorf("expected a create audit row by the encoder, got %+v", logs)
	}
}

func TestCreateItemDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createItem(t, "ITM-100")

	_, err := f.m.Items.CreateItem(ctx, f.itemInput("ITM-100"), f.admin)
	expectKind(t, err, KindDuplicateItemNumber)

	items, _ := f.st.ListItems(ctx, store.ItemFilter{})
	if len(items) != 1 {
		t.Errorf("duplicate must not create a row, have %d items", len(items))
	}
}

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateItemInput)
		kind   Kind
	}{
		{"blank number", func(in *CreateItemInput) { in.ItemNumber = "  " }, KindValidation},
		{"blank customer", func(in *CreateItemInput) { in.Customer = "" }, KindValidation},
		{"zero quantity", func(in *CreateItemInput) { in.Quantity = 0 }, KindValidation},
		{"negative target", func(in *CreateItemInput) { in.TargetOutput = -5 }, KindValidation},
		{"bad deadline", func(in *CreateItemInput) { in.Deadline = "next week" }, KindValidation},
		{"unknown department", func(in *CreateItemInput) { in.DepartmentID = "dept-nope" }, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.itemInput("ITM-200")
			tt.mutate(&in)
			_, err := f.m.Items.CreateItem(ctx, in, f.encoder)
			expectKind(t, err, tt.kind)
		})
	}

	in := f.itemInput("ITM-201")
	in.Deadline = "2026-02-15"
	if _, err := f.m.Items.CreateItem(ctx, in, f.encoder); err != nil {
		t.Fatalf("date-only deadline should parse: %v", err)
	}
}

func TestCreateItemRequiresRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.Items.CreateItem(ctx, f.itemInput("ITM-1"), f.employee)
	expectKind(t, err, KindUnauthorized)

	_, err = f.m.Items.CreateItem(ctx, f.itemInput("ITM-1"), Actor{})
	expectKind(t, err, KindUnauthorized)
}

func TestUpdateItemOutputOvershoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "ITM-100")

	res, err := f.m.Items.UpdateItemOutput(ctx, item.ID, 1500, f.employee)
	if err != nil {
		t.Fatalf("UpdateItemOutput: %v", err)
	}
	if !res.ExceedsTarget {
		t.Error("expected overshoot to be flagged")
	}
	if res.Item.CurrentOutput != 1500 {
		t.Errorf("expected 1500, got %d", res.Item.CurrentOutput)
	}
	stored, _ := f.st.FindItem(ctx, item.ID)
	if stored.CurrentOutput != 1500 {
		t.Errorf("stored output %d, want 1500", stored.CurrentOutput)
	}

	_, err = f.m.Items.UpdateItemOutput(ctx, item.ID, -1, f.employee)
	expectKind(t, err, KindValidation)

	_, err = f.m.Items.UpdateItemOutput(ctx, "missing", 10, f.employee)
	expectKind(t, err, KindNotFound)
}

func TestUpdateItemStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "ITM-100")

	updated, err := f.m.Items.UpdateItemStatus(ctx, item.ID, models.ItemCancelled, f.admin)
	if err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}
	if updated.Status != models.ItemCancelled {
		t.Errorf("expected CANCELLED, got %s", updated.Status)
	}

	_, err = f.m.Items.UpdateItemStatus(ctx, item.ID, "SHIPPED", f.admin)
	expectKind(t, err, KindValidation)

	_, err = f.m.Items.UpdateItemStatus(ctx, "missing", models.ItemPending, f.admin)
	expectKind(t, err, KindNotFound)

	_, err = f.m.Items.UpdateItemStatus(ctx, item.ID, models.ItemPending, f.employee)
	expectKind(t, err, KindUnauthorized)
}

func TestDeleteItemCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "ITM-100")
	p := f.createProcess(t, item.ID, "Cutting")
	if _, err := f.m.Processes.UpdateProcessStatus(ctx, p.ID, models.ProcessInProgress, f.employee); err != nil {
		t.Fatalf("UpdateProcessStatus: %v", err)
	}
	if _, err := f.m.Assignments.CreateAssignment(ctx, item.ID, f.employee.UserID, f.encoder); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if _, err := f.m.Items.AddItemNote(ctx, item.ID, "rush order", f.encoder); err != nil {
		t.Fatalf("AddItemNote: %v", err)
	}

	err := f.m.Items.DeleteItem(ctx, item.ID, f.encoder)
	expectKind(t, err, KindUnauthorized)

	if err := f.m.Items.DeleteItem(ctx, item.ID, f.admin); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := f.st.FindProcess(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("process should be gone, got %v", err)
	}
	if updates, _ := f.st.ProcessUpdates(ctx, p.ID); len(updates) != 0 {
		t.Errorf("process updates should be gone, have %d", len(updates))
	}
	if stats, _ := f.st.AssignmentStats(ctx); stats.TotalAssignments != 0 {
		t.Errorf("assignments should be gone, have %d", stats.TotalAssignments)
	}

	err = f.m.Items.DeleteItem(ctx, item.ID, f.admin)
	expectKind(t, err, KindNotFound)
}

func TestItemDetailProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "ITM-100")
	first := f.createProcess(t, item.ID, "Printing")
	f.createProcess(t, item.ID, "Cutting")
	f.createProcess(t, item.ID, "Gluing")

	if _, err := f.m.Processes.UpdateProcessStatus(ctx, first.ID, models.ProcessCompleted, f.employee); err != nil {
		t.Fatalf("UpdateProcessStatus: %v", err)
	}
	if _, err := f.m.Items.UpdateItemOutput(ctx, item.ID, 333, f.employee); err != nil {
		t.Fatalf("UpdateItemOutput: %v", err)
	}

	v, err := f.m.Items.GetItemDetail(ctx, item.ID, f.employee)
	if err != nil {
		t.Fatalf("GetItemDetail: %v", err)
	}
	if v.OutputProgress != 33 {
		t.Errorf("output progress %d, want 33", v.OutputProgress)
	}
	if v.ProcessProgress != 33 || v.CompletedProcesses != 1 || v.TotalProcesses != 3 {
		t.Errorf("unexpected process progress %+v", v)
	}
	for i, p := range v.Processes {
		if p.Order != i+1 {
			t.Errorf("process %d has order %d", i, p.Order)
		}
	}
	if v.Department == nil || v.Department.Name != "Cardboard" {
		t.Errorf("department not loaded: %+v", v.Department)
	}

	_, err = f.m.Items.GetItemDetail(ctx, "missing", f.employee)
	expectKind(t, err, KindNotFound)
}

func TestAddItemNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "ITM-100")

	_, err := f.m.Items.AddItemNote(ctx, item.ID, "   ", f.employee)
	expectKind(t, err, KindValidation)

	_, err = f.m.Items.AddItemNote(ctx, "missing", "hello", f.employee)
	expectKind(t, err, KindNotFound)

	note, err := f.m.Items.AddItemNote(ctx, item.ID, " check glue ", f.employee)
	if err != nil {
		t.Fatalf("AddItemNote: %v", err)
	}
	if note.Content != "check glue" || !authoredBy(note.UserID, f.employee) {
		t.Errorf("unexpected note %+v", note)
	}
}

func TestListItemsFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createItem(t, "ITM-1")
	f.createItem(t, "ITM-2")
	if _, err := f.m.Items.UpdateItemStatus(ctx, a.ID, models.ItemCompleted, f.encoder); err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}

	all, err := f.m.Items.ListItems(ctx, store.ItemFilter{}, f.encoder)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}

	done, err := f.m.Items.ListItems(ctx, store.ItemFilter{Status: models.ItemCompleted}, f.encoder)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(done) != 1 || done[0].ID != a.ID {
		t.Errorf("expected only %s, got %+v", a.ID, done)
	}

	_, err = f.m.Items.ListItems(ctx, store.ItemFilter{Status: "NOPE"}, f.encoder)
	expectKind(t, err, KindValidation)

	_, err = f.m.Items.ListItems(ctx, store.ItemFilter{}, f.employee)
	expectKind(t, err, KindUnauthorized)
}

func TestExportItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createItem(t, "ITM-1")

	wb, err := f.m.Items.ExportItems(ctx, store.ItemFilter{}, f.admin)
	if err != nil {
		t.Fatalf("ExportItems: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows("Items")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "ITM-1" {
		t.Errorf("unexpected rows %v", rows)
	}

	_, err = f.m.Items.ExportItems(ctx, store.ItemFilter{}, f.employee)
	expectKind(t, err, KindUnauthorized)
}
