package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"prodtrack/internal/auth"
	"prodtrack/internal/models"
	"prodtrack/internal/repository/memory"
)

func init() {
	auth.Cost = 4
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingCache counts invalidations and keeps snapshots in memory.
type recordingCache struct {
	mu          sync.Mutex
	data        map[string]interface{}
	invalidated int
}

func (c *recordingCache) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *AdminOverview:
		*d = *(v.(*AdminOverview))
	case *EncoderOverview:
		*d = *(v.(*EncoderOverview))
	case *Analytics:
		*d = *(v.(*Analytics))
	case *AssignmentBoard:
		*d = *(v.(*AssignmentBoard))
	default:
		return false, nil
	}
	return true, nil
}

func (c *recordingCache) Set(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case *AdminOverview:
		cp := *v
		c.data[key] = &cp
	case *EncoderOverview:
		cp := *v
		c.data[key] = &cp
	case *Analytics:
		cp := *v
		c.data[key] = &cp
	case *AssignmentBoard:
		cp := *v
		c.data[key] = &cp
	}
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.invalidated++
	return nil
}

func (c *recordingCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type fixture struct {
	st    *memory.Store
	m     *Managers
	clock *testClock
	cache *recordingCache

	admin    Actor
	encoder  Actor
	employee Actor
	dept     string
	machine  string
}

const testPassword = "secret123"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	clock := &testClock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	st := memory.New()
	st.SetClock(clock.Now)
	rc := &recordingCache{data: map[string]interface{}{}}

	f := &fixture{
		st:    st,
		clock: clock,
		cache: rc,
		m:     New(st, Deps{Cache: rc, Clock: clock.Now}),
		dept:  "dept-cardboard",
	}

	if err := st.SaveDepartment(ctx, &models.Department{ID: f.dept, Name: "Cardboard", Type: models.DepartmentCardboard}); err != nil {
		t.Fatalf("save department: %v", err)
	}
	f.machine = "machine-cutter"
	if err := st.SaveMachine(ctx, &models.Machine{ID: f.machine, Name: "Cutter", Type: "cutting", DepartmentID: f.dept}); err != nil {
		t.Fatalf("save machine: %v", err)
	}

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	for _, u := range []struct {
		id   string
		role models.UserRole
		dst  *Actor
	}{
		{"u-admin", models.RoleAdmin, &f.admin},
		{"u-encoder", models.RoleEncoder, &f.encoder},
		{"u-employee", models.RoleEmployee, &f.employee},
	} {
		user := &models.User{
			ID:           u.id,
			Name:         string(u.role),
			Email:        u.id + "@cpt.com",
			PasswordHash: hash,
			Role:         u.role,
		}
		if err := st.CreateUser(ctx, user); err != nil {
			t.Fatalf("create user %s: %v", u.id, err)
		}
		*u.dst = Actor{UserID: u.id, Role: u.role}
	}
	return f
}

func (f *fixture) itemInput(number string) CreateItemInput {
	return CreateItemInput{
		ItemNumber:   number,
		Name:         "Box",
		Type:         "Box",
		Customer:     "Acme",
		DepartmentID: f.dept,
		Quantity:     1000,
		TargetOutput: 1000,
		Deadline:     "2026-01-01T00:00:00Z",
	}
}

func (f *fixture) createItem(t *testing.T, number string) *models.Item {
	t.Helper()
	item, err := f.m.Items.CreateItem(context.Background(), f.itemInput(number), f.encoder)
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", number, err)
	}
	return item
}

func (f *fixture) createProcess(t *testing.T, itemID, name string) *models.Process {
	t.Helper()
	p, err := f.m.Processes.CreateProcess(context.Background(), itemID, CreateProcessInput{Name: name}, f.encoder)
	if err != nil {
		t.Fatalf("CreateProcess(%s): %v", name, err)
	}
	return p
}

func expectKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}

func authoredBy(author *string, a Actor) bool {
	return author != nil && *author == a.UserID
}
