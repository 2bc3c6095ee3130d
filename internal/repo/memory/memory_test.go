package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/repo/memory"
)

func TestUsersRepo_DuplicateEmail(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	first := user.User{ID: "u1", Name: "Sam", Email: "sam@example.com", PasswordHash: "h1"}
	if _, err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := user.User{ID: "u2", Name: "Other", Email: " SAM@example.com ", PasswordHash: "h2"}
	if _, err := repo.Create(ctx, dup); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}

	got, err := repo.GetByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.ID != "u1" || got.Name != "Sam" || got.PasswordHash != "h1" {
		t.Fatalf("first account changed: %+v", got)
	}
}

func TestUsersRepo_Update(t *testing.T) {
	repo := memory.NewUsersRepo()
	ctx := context.Background()

	if _, err := repo.Update(ctx, user.User{ID: "missing"}); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	u, _ := repo.Create(ctx, user.User{ID: "u1", Name: "Sam", Email: "sam@example.com"})
	u.Name = "Samantha"
	u.Email = "changed@example.com"

	updated, err := repo.Update(ctx, u)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "Samantha" || updated.Email != "sam@example.com" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestPlansRepo_ListNewestFirstAndDelete(t *testing.T) {
	repo := memory.NewPlansRepo()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"p1", "p2", "p3"} {
		p := plan.WeeklyPlan{ID: id, UserID: "alice", Mood: plan.MoodHappy, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	_, _ = repo.Create(ctx, plan.WeeklyPlan{ID: "other", UserID: "bob", CreatedAt: base.Add(time.Hour)})

	plans, err := repo.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(plans) != 3 || plans[0].ID != "p3" || plans[2].ID != "p1" {
		t.Fatalf("unexpected order: %+v", plans)
	}

	recent, _ := repo.ListRecentByUser(ctx, "alice", 2)
	if len(recent) != 2 || recent[0].ID != "p3" {
		t.Fatalf("unexpected recent: %+v", recent)
	}

	if err := repo.Delete(ctx, "p2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, "p2"); !errors.Is(err, plan.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, "p2"); !errors.Is(err, plan.ErrNotFound) {
		t.Fatalf("second delete got %v, want ErrNotFound", err)
	}

	plans, _ = repo.ListByUser(ctx, "alice")
	if len(plans) != 2 {
		t.Fatalf("got %d plans after delete, want 2", len(plans))
	}
}
