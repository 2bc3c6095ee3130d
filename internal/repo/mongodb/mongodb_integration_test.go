package mongodb_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/repo/mongodb"
	"github.com/google/uuid"
)

func TestMongoRepos(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()

	store, err := mongodb.Connect(ctx, uri, "mealmood_test_"+uuid.NewString()[:8], nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	users := store.Users()
	plans := store.Plans()

	u := user.NewFromRegisterRequest(user.RegisterRequest{Name: "Ana", Email: "ana@example.com"}, "hash")
	if _, err := users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := user.NewFromRegisterRequest(user.RegisterRequest{Name: "Ana 2", Email: "ANA@example.com"}, "hash")
	if _, err := users.Create(ctx, dup); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}

	content := plan.Content{
		Groceries: []plan.Grocery{{Item: "Lentils", Quantity: "500 g"}},
		Recipes: []plan.Recipe{{
			Title:        "Dal",
			Ingredients:  []plan.Ingredient{{Name: "Lentils", Quantity: "1 cup"}},
			Instructions: "Boil and temper.",
			MealType:     plan.MealDinner,
		}},
	}

	first := plan.New(u.ID, plan.MoodBusy, content, time.Now().Add(-time.Minute))
	second := plan.New(u.ID, plan.MoodStressed, content, time.Now())

	for _, p := range []plan.WeeklyPlan{first, second} {
		if _, err := plans.Create(ctx, p); err != nil {
			t.Fatalf("create plan: %v", err)
		}
	}

	list, err := plans.ListByUser(ctx, u.ID)
	if err != nil || len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("unexpected list %v: %+v", err, list)
	}

	if err := plans.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := plans.Delete(ctx, first.ID); !errors.Is(err, plan.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
