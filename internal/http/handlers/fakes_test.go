package handlers_test

import (
	"context"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

type fakeUsers struct {
	createFn     func(ctx context.Context, u user.User) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id string) (user.User, error)
	updateFn     func(ctx context.Context, u user.User) (user.User, error)
}

func (f *fakeUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) Update(ctx context.Context, u user.User) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, u)
	}
	return u, nil
}

type fakePlans struct {
	createFn     func(ctx context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error)
	getFn        func(ctx context.Context, id string) (plan.WeeklyPlan, error)
	listFn       func(ctx context.Context, userID string) ([]plan.WeeklyPlan, error)
	listRecentFn func(ctx context.Context, userID string, limit int) ([]plan.WeeklyPlan, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakePlans) Create(ctx context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return p, nil
}

func (f *fakePlans) GetByID(ctx context.Context, id string) (plan.WeeklyPlan, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return plan.WeeklyPlan{}, plan.ErrNotFound
}

func (f *fakePlans) ListByUser(ctx context.Context, userID string) ([]plan.WeeklyPlan, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakePlans) ListRecentByUser(ctx context.Context, userID string, limit int) ([]plan.WeeklyPlan, error) {
	if f.listRecentFn != nil {
		return f.listRecentFn(ctx, userID, limit)
	}
	return nil, nil
}

func (f *fakePlans) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeGenerator struct {
	generateFn func(ctx context.Context, mood string, prefs user.Preferences) (plan.Content, error)
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, mood string, prefs user.Preferences) (plan.Content, error) {
	if f.generateFn != nil {
		return f.generateFn(ctx, mood, prefs)
	}
	return sampleContent(), nil
}

type fakeTokens struct {
	err error
}

func (f *fakeTokens) GenerateAccessToken(userID, email string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "token-for-" + userID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func sampleContent() plan.Content {
	return plan.Content{
		Groceries: []plan.Grocery{{Item: "Oats", Quantity: "1 kg"}},
		Recipes: []plan.Recipe{{
			Title:        "Porridge",
			Ingredients:  []plan.Ingredient{{Name: "Oats", Quantity: "80 g"}},
			Instructions: "Cook with milk.",
			MealType:     plan.MealBreakfast,
		}},
	}
}

// asUser stands in for the auth middleware.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, userID)
		c.Next()
	}
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, append(mw, h)...)

	return r
}
