package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"prodtrack/internal/database"
	"prodtrack/internal/models"
	"prodtrack/internal/store"
)

// setupRepo opens TEST_DB_DSN in a throwaway schema, migrates it and seeds
// the demo data. The schema is dropped when the test ends.
func setupRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	schema := fmt.Sprintf("prodtrack_test_%d", time.Now().UnixNano()%1000000)
	setup, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := setup.Exec("CREATE SCHEMA " + schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn+" search_path="+schema), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("connect to schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		setup.Exec("DROP SCHEMA " + schema + " CASCADE")
		if sqlSetup, err := setup.DB(); err == nil {
			sqlSetup.Close()
		}
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := New(db)
	opts := database.SeedOptions{AdminEmail: "admin@cpt.com", AdminPassword: "password123", Demo: true}
	if err := database.Seed(context.Background(), repo, opts, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func demoItem(t *testing.T, repo *Repository, number string) *models.Item {
	t.Helper()
	items, err := repo.ListItems(context.Background(), store.ItemFilter{})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	for i := range items {
		if items[i].ItemNumber == number {
			return &items[i]
		}
	}
	t.Fatalf("demo item %s missing", number)
	return nil
}

func TestDuplicatesMapToSentinel(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	existing := demoItem(t, repo, "#ITEM1001")

	dup := &models.Item{
		ID: uuid.NewString(), ItemNumber: existing.ItemNumber, Name: "Copy", Type: "Box", Customer: "Acme",
		Quantity: 1, TargetOutput: 1, Deadline: time.Now(), Status: models.ItemPending, DepartmentID: existing.DepartmentID,
	}
	if err := repo.CreateItem(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for item number, got %v", err)
	}

	owner, err := repo.ItemsForUser(ctx, *existing.Processes[0].AssignedToID)
	if err != nil || len(owner) == 0 {
		t.Fatalf("items for owner: %v", err)
	}
	a := &models.ItemAssignment{ID: uuid.NewString(), ItemID: existing.ID, UserID: *existing.Processes[0].AssignedToID, AssignedAt: time.Now()}
	if err := repo.CreateAssignment(ctx, a); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for assignment, got %v", err)
	}

	if _, err := repo.FindItem(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProcessNumbersSequentially(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	item := demoItem(t, repo, "#ITEM3001")

	for want := 1; want <= 3; want++ {
		p := &models.Process{ID: uuid.NewString(), Name: fmt.Sprintf("Step %d", want), Status: models.ProcessNotStarted, ItemID: item.ID}
		if err := repo.CreateProcess(ctx, p); err != nil {
			t.Fatalf("create process: %v", err)
		}
		if p.Order != want {
			t.Errorf("expected order %d, got %d", want, p.Order)
		}
	}
}

func TestMutateProcessWritesUpdateAndDelay(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	item := demoItem(t, repo, "#ITEM2001")
	p := item.Processes[0]
	actor := *p.AssignedToID

	got, err := repo.MutateProcess(ctx, p.ID, func(p *models.Process) (store.ProcessChange, error) {
		old := p.Status
		p.Status = models.ProcessDelayed
		p.CompletedAt = nil
		return store.ProcessChange{
			Update: &models.ProcessUpdate{ID: uuid.NewString(), ProcessID: p.ID, UserID: models.AuthorID(actor), OldStatus: old, NewStatus: models.ProcessDelayed},
			Delay:  &models.DelayReason{ID: uuid.NewString(), ProcessID: p.ID, Category: models.DelayOther, Details: "test"},
		}, nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if got.Status != models.ProcessDelayed || got.CompletedAt != nil {
		t.Errorf("unexpected process %+v", got)
	}

	updates, _ := repo.ProcessUpdates(ctx, p.ID)
	delays, _ := repo.DelayReasons(ctx, p.ID)
	if len(updates) != 1 || len(delays) != 1 {
		t.Errorf("expected 1 update and 1 delay, got %d and %d", len(updates), len(delays))
	}

	// a failing mutator leaves nothing behind
	boom := errors.New("boom")
	if _, err := repo.MutateProcess(ctx, p.ID, func(p *models.Process) (store.ProcessChange, error) {
		p.Status = models.ProcessCompleted
		return store.ProcessChange{}, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	if after, _ := repo.FindProcess(ctx, p.ID); after.Status != models.ProcessDelayed {
		t.Errorf("failed mutation was persisted: %s", after.Status)
	}
}

func TestDeleteUserReleasesProcesses(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	item := demoItem(t, repo, "#ITEM2001")
	owner := *item.Processes[0].AssignedToID

	if err := repo.DeleteUser(ctx, owner); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	after := demoItem(t, repo, "#ITEM2001")
	for _, p := range after.Processes {
		if p.AssignedToID != nil {
			t.Errorf("process %s still assigned to %s", p.ID, *p.AssignedToID)
		}
	}
	detail, err := repo.ItemDetail(ctx, after.ID)
	if err != nil {
		t.Fatalf("item detail: %v", err)
	}
	if len(detail.Notes) != 1 || detail.Notes[0].UserID != nil {
		t.Errorf("expected the owner's note to survive detached, got %+v", detail.Notes)
	}
	if err := repo.DeleteUser(ctx, owner); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteItemCascades(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	item := demoItem(t, repo, "#ITEM1001")

	if err := repo.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	if _, err := repo.FindProcess(ctx, item.Processes[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected process to be gone, got %v", err)
	}
	stats, err := repo.AssignmentStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalItems != 2 || stats.TotalAssignments != 1 {
		t.Errorf("unexpected stats after delete %+v", stats)
	}
}

func TestItemsForUserHonoursContext(t *testing.T) {
	repo := setupRepo(t)
	owner, err := repo.FindUserByEmail(context.Background(), "employee2@cpt.com")
	if err != nil {
		t.Fatalf("find owner: %v", err)
	}

	items, err := repo.ItemsForUser(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("items for user: %v", err)
	}
	if len(items) != 1 || items[0].ItemNumber != "#ITEM2001" {
		t.Fatalf("unexpected items %+v", items)
	}
	for _, p := range items[0].Processes {
		if p.AssignedToID == nil || *p.AssignedToID != owner.ID {
			t.Errorf("process %s is not the owner's", p.ID)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.ItemsForUser(ctx, owner.ID); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
