package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/mealmood/internal/cache"
	"github.com/geocoder89/mealmood/internal/domain/dashboard"
	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/http/middlewares"
	"github.com/geocoder89/mealmood/internal/observability"
	"github.com/gin-gonic/gin"
)

type RecentPlanLister interface {
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]plan.WeeklyPlan, error)
}

type DashboardHandler struct {
	plans RecentPlanLister
	users UserGetter
	cache cache.Store
	prom  *observability.Prom
	now   func() time.Time
}

func NewDashboardHandler(plans RecentPlanLister, users UserGetter, c cache.Store, prom *observability.Prom) *DashboardHandler {
	return &DashboardHandler{
		plans: plans,
		users: users,
		cache: c,
		prom:  prom,
		now:   time.Now,
	}
}

func (h *DashboardHandler) Stats(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	key := cache.StatsKey(userID)
	if stats, hit := cached[dashboard.Stats](cctx, h, "stats", key); hit {
		ctx.JSON(http.StatusOK, stats)
		return
	}

	version, versionOK := h.version(cctx, userID)

	u, err := h.users.GetByID(cctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "unauthorized", "Account no longer exists")
			return
		}

		slog.ErrorContext(cctx, "load user failed", "err", err)
		RespondInternal(ctx, "Could not compute stats")
		return
	}

	plans, err := h.plans.ListRecentByUser(cctx, userID, 0)
	if err != nil {
		slog.ErrorContext(cctx, "list plans failed", "err", err)
		RespondInternal(ctx, "Could not compute stats")
		return
	}

	stats := dashboard.Compute(plans, u.CreatedAt, h.now().UTC())
	if versionOK {
		h.store(cctx, userID, version, key, stats)
	}

	ctx.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Recent(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	key := cache.RecentKey(userID)
	if recent, hit := cached[[]dashboard.PlanSummary](cctx, h, "recent", key); hit {
		ctx.JSON(http.StatusOK, recent)
		return
	}

	version, versionOK := h.version(cctx, userID)

	plans, err := h.plans.ListRecentByUser(cctx, userID, dashboard.DefaultRecentLimit)
	if err != nil {
		slog.ErrorContext(cctx, "list recent plans failed", "err", err)
		RespondInternal(ctx, "Could not load recent plans")
		return
	}

	recent := dashboard.Recent(plans, dashboard.DefaultRecentLimit)
	if versionOK {
		h.store(cctx, userID, version, key, recent)
	}

	ctx.JSON(http.StatusOK, recent)
}

// Tip is identical for every caller on a given UTC calendar day.
func (h *DashboardHandler) Tip(ctx *gin.Context) {
	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"tip": dashboard.TipFor(h.now().UTC())})
}

func cached[T any](ctx context.Context, h *DashboardHandler, kind, key string) (T, bool) {
	var zero T
	if h.cache == nil {
		return zero, false
	}

	v, hit, err := cache.GetJSON[T](ctx, h.cache, key)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "dashboard cache read failed", "key", key, "err", err)
		h.prom.CacheLookup(kind, "error")
		return zero, false
	case !hit:
		h.prom.CacheLookup(kind, "miss")
		return zero, false
	default:
		h.prom.CacheLookup(kind, "hit")
		return v, true
	}
}

// version reads the user's cache version before plans are loaded. Without
// it a result cannot be written back safely.
func (h *DashboardHandler) version(ctx context.Context, userID string) (string, bool) {
	if h.cache == nil {
		return "", false
	}

	v, err := cache.Version(ctx, h.cache, userID)
	if err != nil {
		slog.WarnContext(ctx, "dashboard cache version read failed", "user_id", userID, "err", err)
		return "", false
	}
	return v, true
}

// store skips the write when a plan was created or deleted after version
// was read.
func (h *DashboardHandler) store(ctx context.Context, userID, version, key string, val any) {
	written, err := cache.SetJSONAtVersion(ctx, h.cache, userID, version, key, val)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "dashboard cache write failed", "key", key, "err", err)
	case !written:
		slog.DebugContext(ctx, "dashboard cache write skipped after invalidation", "key", key)
	}
}
