package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/mealmood/internal/domain/plan"
)

type PlansRepo struct {
	mu    sync.RWMutex
	items map[string]plan.WeeklyPlan
}

func NewPlansRepo() *PlansRepo {
	return &PlansRepo{
		items: make(map[string]plan.WeeklyPlan),
	}
}

func (r *PlansRepo) Create(_ context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error) {
	r.mu.Lock()
	r.items[p.ID] = clonePlan(p)
	r.mu.Unlock()

	return clonePlan(p), nil
}

func (r *PlansRepo) GetByID(_ context.Context, id string) (plan.WeeklyPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return plan.WeeklyPlan{}, plan.ErrNotFound
	}

	return clonePlan(p), nil
}

// ListByUser returns the user's plans newest first.
func (r *PlansRepo) ListByUser(ctx context.Context, userID string) ([]plan.WeeklyPlan, error) {
	return r.ListRecentByUser(ctx, userID, 0)
}

// ListRecentByUser returns at most limit plans newest first; limit <= 0 means all.
func (r *PlansRepo) ListRecentByUser(_ context.Context, userID string, limit int) ([]plan.WeeklyPlan, error) {
	r.mu.RLock()
	out := make([]plan.WeeklyPlan, 0)
	for _, p := range r.items {
		if p.UserID == userID {
			out = append(out, clonePlan(p))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *PlansRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return plan.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func clonePlan(p plan.WeeklyPlan) plan.WeeklyPlan {
	p.Groceries = append([]plan.Grocery(nil), p.Groceries...)

	recipes := make([]plan.Recipe, len(p.Recipes))
	for i, rc := range p.Recipes {
		rc.Ingredients = append([]plan.Ingredient(nil), rc.Ingredients...)
		recipes[i] = rc
	}
	p.Recipes = recipes

	return p
}
