package tracking

import (
	"context"
	"errors"
	"testing"

	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := CreateUserInput{
		Name:         "Maria",
		Email:        "  Maria@CPT.com ",
		Password:     "hunter22",
		Role:         models.RoleEmployee,
		DepartmentID: f.dept,
	}
	u, err := f.m.Users.CreateUser(ctx, in, f.admin)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "maria@cpt.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == in.Password {
		t.Error("password must be stored hashed")
	}

	_, err = f.m.Users.CreateUser(ctx, in, f.admin)
	expectKind(t, err, KindDuplicateEmail)

	tests := []struct {
		name   string
		mutate func(*CreateUserInput)
	}{
		{"short password", func(in *CreateUserInput) { in.Password = "abc" }},
		{"bad role", func(in *CreateUserInput) { in.Role = "OWNER" }},
		{"bad email", func(in *CreateUserInput) { in.Email = "not-an-email" }},
		{"blank name", func(in *CreateUserInput) { in.Name = " " }},
		{"unknown department", func(in *CreateUserInput) { in.DepartmentID = "dept-x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := in
			bad.Email = "other@cpt.com"
			tt.mutate(&bad)
			_, err := f.m.Users.CreateUser(ctx, bad, f.admin)
			expectKind(t, err, KindValidation)
		})
	}

	_, err = f.m.Users.CreateUser(ctx, in, f.encoder)
	expectKind(t, err, KindUnauthorized)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.m.Users.Authenticate(ctx, "U-Encoder@cpt.com", testPassword)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != f.encoder.UserID {
		t.Errorf("authenticated %s, want %s", u.ID, f.encoder.UserID)
	}

	_, wrongPass := f.m.Users.Authenticate(ctx, "u-encoder@cpt.com", "nope")
	_, unknown := f.m.Users.Authenticate(ctx, "ghost@cpt.com", testPassword)
	expectKind(t, wrongPass, KindUnauthorized)
	expectKind(t, unknown, KindUnauthorized)
	if wrongPass.Error() != unknown.Error() {
		t.Errorf("credential errors should be uniform: %q vs %q", wrongPass, unknown)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "ITM-100")
	p := f.createProcess(t, item.ID, "Printing")
	if _, err := f.m.Processes.AssignProcess(ctx, p.ID, f.employee.UserID, f.encoder); err != nil {
		t.Fatalf("AssignProcess: %v", err)
	}
	if _, err := f.m.Assignments.CreateAssignment(ctx, item.ID, f.employee.UserID, f.encoder); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	expectKind(t, f.m.Users.DeleteUser(ctx, f.admin.UserID, f.admin), KindValidation)
	expectKind(t, f.m.Users.DeleteUser(ctx, f.employee.UserID, f.encoder), KindUnauthorized)

	if err := f.m.Users.DeleteUser(ctx, f.employee.UserID, f.admin); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := f.st.FindUser(ctx, f.employee.UserID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user should be gone, got %v", err)
	}
	stored, _ := f.st.FindProcess(ctx, p.ID)
	if stored.AssignedToID != nil {
		t.Errorf("process assignee should be cleared")
	}
	if stats, _ := f.st.AssignmentStats(ctx); stats.TotalAssignments != 0 {
		t.Errorf("assignments should cascade, have %d", stats.TotalAssignments)
	}

	expectKind(t, f.m.Users.DeleteUser(ctx, f.employee.UserID, f.admin), KindNotFound)
}

func TestDeleteUserKeepsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "ITM-100")
	p := f.createProcess(t, item.ID, "Printing")

	if _, err := f.m.Processes.UpdateProcessStatus(ctx, p.ID, models.ProcessInProgress, f.employee); err != nil {
		t.Fatalf("UpdateProcessStatus: %v", err)
	}
	if _, err := f.m.Items.AddItemNote(ctx, item.ID, "started early", f.employee); err != nil {
		t.Fatalf("AddItemNote: %v", err)
	}

	for _, gone := range []Actor{f.employee, f.encoder} {
		if err := f.m.Users.DeleteUser(ctx, gone.UserID, f.admin); err != nil {
			t.Fatalf("DeleteUser(%s): %v", gone.UserID, err)
		}
	}

	hist, err := f.m.Processes.ProcessHistory(ctx, p.ID, f.admin)
	if err != nil {
		t.Fatalf("ProcessHistory: %v", err)
	}
	if len(hist.Updates) != 1 {
		t.Fatalf("expected the status change to survive, got %d updates", len(hist.Updates))
	}
	if u := hist.Updates[0]; u.NewStatus != models.ProcessInProgress || u.UserID != nil || u.User != nil {
		t.Errorf("expected a detached IN_PROGRESS update, got %+v", u)
	}

	detail, err := f.m.Items.GetItemDetail(ctx, item.ID, f.admin)
	if err != nil {
		t.Fatalf("GetItemDetail: %v", err)
	}
	if len(detail.Notes) != 1 || detail.Notes[0].UserID != nil {
		t.Errorf("expected one detached note, got %+v", detail.Notes)
	}

	logs, err := f.m.Dashboard.AuditTrail(ctx, 0, f.admin)
	if err != nil {
		t.Fatalf("AuditTrail: %v", err)
	}
	var created bool
	for _, entry := range logs {
		if entry.Entity == "item" && entry.Action == "create" {
			created = entry.UserID == nil
		}
	}
	if !created {
		t.Error("the item creation audit row should survive its author")
	}
}

func TestUpdateUserAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.m.Users.UpdateUser(ctx, f.employee.UserID, UpdateUserInput{
		Name:         "Promoted",
		Role:         models.RoleEncoder,
		DepartmentID: f.dept,
	}, f.admin)
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.Role != models.RoleEncoder || u.DepartmentID == nil || *u.DepartmentID != f.dept {
		t.Errorf("unexpected user %+v", u)
	}

	_, err = f.m.Users.UpdateUser(ctx, "missing", UpdateUserInput{Name: "x", Role: models.RoleAdmin}, f.admin)
	expectKind(t, err, KindNotFound)

	me, err := f.m.Users.UpdateProfile(ctx, "New Name", "fresh@cpt.com", f.encoder)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if me.Name != "New Name" || me.Email != "fresh@cpt.com" {
		t.Errorf("unexpected profile %+v", me)
	}

	_, err = f.m.Users.UpdateProfile(ctx, "Clash", "u-admin@cpt.com", f.encoder)
	expectKind(t, err, KindDuplicateEmail)
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.m.Users.UpdatePassword(ctx, PasswordInput{Current: testPassword, New: "abcdef", Confirm: "abcdeg"}, f.employee)
	expectKind(t, err, KindValidation)

	err = f.m.Users.UpdatePassword(ctx, PasswordInput{Current: "wrong", New: "abcdef", Confirm: "abcdef"}, f.employee)
	expectKind(t, err, KindValidation)

	if err := f.m.Users.UpdatePassword(ctx, PasswordInput{Current: testPassword, New: "abcdef", Confirm: "abcdef"}, f.employee); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := f.m.Users.Authenticate(ctx, "u-employee@cpt.com", "abcdef"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestAssignableListsEmployees(t *testing.T) {
	f := newFixture(t)
	users, err := f.m.Users.Assignable(context.Background(), f.encoder)
	if err != nil {
		t.Fatalf("Assignable: %v", err)
	}
	if len(users) != 1 || users[0].ID != f.employee.UserID {
		t.Errorf("unexpected assignable users %+v", users)
	}
}
