package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/mealmood/internal/cache"
	"github.com/geocoder89/mealmood/internal/domain/dashboard"
	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/http/handlers"
)

func TestDashboardStatsHandler_ComputesAndCaches(t *testing.T) {
	userID := newUUID()
	now := time.Now().UTC()

	plans := []plan.WeeklyPlan{
		plan.New(userID, plan.MoodHappy, sampleContent(), now.Add(-3*time.Hour)),
		plan.New(userID, plan.MoodHappy, sampleContent(), now.Add(-2*time.Hour)),
		plan.New(userID, plan.MoodTired, sampleContent(), now.Add(-1*time.Hour)),
	}

	listCalls := 0
	store := &fakePlans{listRecentFn: func(ctx context.Context, id string, limit int) ([]plan.WeeklyPlan, error) {
		listCalls++
		return plans, nil
	}}
	users := &fakeUsers{getByIDFn: func(ctx context.Context, id string) (user.User, error) {
		return user.User{ID: id, CreatedAt: now.Add(-10 * 24 * time.Hour)}, nil
	}}

	h := handlers.NewDashboardHandler(store, users, cache.NewMemory(time.Minute), nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/stats", h.Stats, asUser(userID))

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodGet, "/api/dashboard/stats", "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		var stats dashboard.Stats
		if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
			t.Fatalf("decode: %v", err)
		}

		if stats.TotalPlans != 3 || stats.TotalRecipes != 3 || stats.MostUsedMood != plan.MoodHappy || stats.AccountAge != 10 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
		if stats.LastPlanDate == nil || !stats.LastPlanDate.Equal(plans[2].CreatedAt) {
			t.Fatalf("unexpected lastPlanDate: %v", stats.LastPlanDate)
		}
	}

	if listCalls != 1 {
		t.Fatalf("second request should be served from cache, store called %d times", listCalls)
	}
}

func TestDashboardStatsHandler_SkipsCacheWhenPlansChangeDuringRead(t *testing.T) {
	userID := newUUID()
	now := time.Now().UTC()
	c := cache.NewMemory(time.Minute)

	listCalls := 0
	store := &fakePlans{listRecentFn: func(ctx context.Context, id string, limit int) ([]plan.WeeklyPlan, error) {
		listCalls++
		if listCalls == 1 {
			// a plan is generated while this read is in flight
			if err := cache.Invalidate(ctx, c, userID); err != nil {
				t.Fatalf("invalidate: %v", err)
			}
		}
		return []plan.WeeklyPlan{plan.New(userID, plan.MoodStressed, sampleContent(), now)}, nil
	}}
	users := &fakeUsers{getByIDFn: func(ctx context.Context, id string) (user.User, error) {
		return user.User{ID: id, CreatedAt: now}, nil
	}}

	h := handlers.NewDashboardHandler(store, users, c, nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/stats", h.Stats, asUser(userID))

	if w := doJSON(t, r, http.MethodGet, "/api/dashboard/stats", ""); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if _, ok, _ := c.Get(context.Background(), cache.StatsKey(userID)); ok {
		t.Fatalf("stats read before the invalidation must not be cached")
	}

	if w := doJSON(t, r, http.MethodGet, "/api/dashboard/stats", ""); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if _, ok, _ := c.Get(context.Background(), cache.StatsKey(userID)); !ok {
		t.Fatalf("an undisturbed read should be cached")
	}
	if listCalls != 2 {
		t.Fatalf("got %d store reads, want 2", listCalls)
	}
}

func TestDashboardStatsHandler_NoPlans(t *testing.T) {
	userID := newUUID()
	users := &fakeUsers{getByIDFn: func(ctx context.Context, id string) (user.User, error) {
		return user.User{ID: id, CreatedAt: time.Now()}, nil
	}}

	h := handlers.NewDashboardHandler(&fakePlans{}, users, nil, nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/stats", h.Stats, asUser(userID))

	w := doJSON(t, r, http.MethodGet, "/api/dashboard/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var raw map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &raw)

	if raw["lastPlanDate"] != nil || raw["mostUsedMood"] != "" || raw["totalPlans"].(float64) != 0 {
		t.Fatalf("unexpected body %v", raw)
	}
}

func TestDashboardRecentHandler(t *testing.T) {
	userID := newUUID()
	now := time.Now().UTC()

	var gotLimit int
	store := &fakePlans{listRecentFn: func(ctx context.Context, id string, limit int) ([]plan.WeeklyPlan, error) {
		gotLimit = limit
		return []plan.WeeklyPlan{
			plan.New(userID, plan.MoodBusy, sampleContent(), now),
			plan.New(userID, plan.MoodTired, sampleContent(), now.Add(-time.Hour)),
		}, nil
	}}

	h := handlers.NewDashboardHandler(store, &fakeUsers{}, nil, nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/recent", h.Recent, asUser(userID))

	w := doJSON(t, r, http.MethodGet, "/api/dashboard/recent", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var recent []dashboard.PlanSummary
	if err := json.Unmarshal(w.Body.Bytes(), &recent); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if gotLimit != dashboard.DefaultRecentLimit {
		t.Fatalf("got limit %d, want %d", gotLimit, dashboard.DefaultRecentLimit)
	}
	if len(recent) != 2 || recent[0].Mood != plan.MoodBusy || recent[0].RecipesCount != 1 {
		t.Fatalf("unexpected recent: %+v", recent)
	}
}

func TestDashboardTipHandler(t *testing.T) {
	h := handlers.NewDashboardHandler(&fakePlans{}, &fakeUsers{}, nil, nil)
	r := setupRouter(http.MethodGet, "/api/dashboard/tip", h.Tip)

	w1 := doJSON(t, r, http.MethodGet, "/api/dashboard/tip", "")
	w2 := doJSON(t, r, http.MethodGet, "/api/dashboard/tip", "")

	if w1.Code != http.StatusOK || w1.Body.String() != w2.Body.String() {
		t.Fatalf("tip should be stable within a day: %s vs %s", w1.Body.String(), w2.Body.String())
	}

	var resp struct {
		Tip string `json:"tip"`
	}
	_ = json.Unmarshal(w1.Body.Bytes(), &resp)

	if resp.Tip != dashboard.TipFor(time.Now().UTC()) {
		t.Fatalf("got tip %q", resp.Tip)
	}
}
