package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/mealmood/internal/cache"
	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/generator"
	"github.com/geocoder89/mealmood/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type PlanStore interface {
	Create(ctx context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error)
	GetByID(ctx context.Context, id string) (plan.WeeklyPlan, error)
	ListByUser(ctx context.Context, userID string) ([]plan.WeeklyPlan, error)
	Delete(ctx context.Context, id string) error
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type PlansHandler struct {
	plans      PlanStore
	users      UserGetter
	gen        generator.Generator
	cache      cache.Store
	genTimeout time.Duration
	now        func() time.Time
}

func NewPlansHandler(plans PlanStore, users UserGetter, gen generator.Generator, c cache.Store, genTimeout time.Duration) *PlansHandler {
	if genTimeout <= 0 {
		genTimeout = 90 * time.Second
	}

	return &PlansHandler{
		plans:      plans,
		users:      users,
		gen:        gen,
		cache:      c,
		genTimeout: genTimeout,
		now:        time.Now,
	}
}

func (h *PlansHandler) Generate(ctx *gin.Context) {
	var req plan.GenerateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	prefs, ok := h.preferencesFor(ctx, userID, req.Preferences)
	if !ok {
		return
	}

	gctx, cancel := context.WithTimeout(ctx.Request.Context(), h.genTimeout)
	defer cancel()

	content, err := h.gen.Generate(gctx, req.Mood, prefs)
	if errors.Is(err, generator.ErrCircuitOpen) {
		retryAfter := 30 * time.Second
		var open *generator.OpenCircuitError
		if errors.As(err, &open) {
			retryAfter = open.RetryAfter
		}
		RespondUnavailable(ctx, "generation_unavailable", "Plan generation is temporarily unavailable. Please try again shortly.", retryAfter)
		return
	}
	if err != nil {
		slog.WarnContext(gctx, "plan generation failed",
			"provider", h.gen.Name(),
			"mood", req.Mood,
			"err", err,
		)
		RespondBadGateway(ctx, "generation_failed", "Could not generate a plan. Please try again.")
		return
	}

	cctx, cancelStore := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancelStore()

	created, err := h.plans.Create(cctx, plan.New(userID, req.Mood, content, h.now()))
	if err != nil {
		slog.ErrorContext(cctx, "store plan failed", "err", err)
		RespondInternal(ctx, "Could not save plan")
		return
	}

	h.invalidate(cctx, userID)

	ctx.JSON(http.StatusCreated, created)
}

func (h *PlansHandler) ListMine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	plans, err := h.plans.ListByUser(cctx, userID)
	if err != nil {
		slog.ErrorContext(cctx, "list plans failed", "err", err)
		RespondInternal(ctx, "Could not list plans")
		return
	}

	if plans == nil {
		plans = []plan.WeeklyPlan{}
	}

	ctx.JSON(http.StatusOK, plans)
}

func (h *PlansHandler) GetByID(ctx *gin.Context) {
	p, ok := h.loadOwned(ctx)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *PlansHandler) Delete(ctx *gin.Context) {
	p, ok := h.loadOwned(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.plans.Delete(cctx, p.ID); err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			RespondNotFound(ctx, "Plan not found")
			return
		}

		slog.ErrorContext(cctx, "delete plan failed", "plan_id", p.ID, "err", err)
		RespondInternal(ctx, "Could not delete plan")
		return
	}

	h.invalidate(cctx, p.UserID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Plan removed", "id": p.ID})
}

// loadOwned resolves :id for the caller. Existence is checked before ownership,
// so another user's plan yields 403 and an unknown id yields 404.
func (h *PlansHandler) loadOwned(ctx *gin.Context) (plan.WeeklyPlan, bool) {
	planID := ctx.Param("id")

	if !isUUID(planID) {
		RespondInvalidID(ctx, "plan id must be a valid UUID")
		return plan.WeeklyPlan{}, false
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return plan.WeeklyPlan{}, false
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.plans.GetByID(cctx, planID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			RespondNotFound(ctx, "Plan not found")
			return plan.WeeklyPlan{}, false
		}

		slog.ErrorContext(cctx, "load plan failed", "plan_id", planID, "err", err)
		RespondInternal(ctx, "Could not load plan")
		return plan.WeeklyPlan{}, false
	}

	if err := p.CheckOwner(userID); err != nil {
		RespondForbidden(ctx, "Not authorized to access this plan")
		return plan.WeeklyPlan{}, false
	}

	return p, true
}

// preferencesFor falls back to the caller's stored preferences when the
// request carries none.
func (h *PlansHandler) preferencesFor(ctx *gin.Context, userID string, requested *user.Preferences) (user.Preferences, bool) {
	if requested != nil {
		return requested.WithDefaults(), true
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "unauthorized", "Account no longer exists")
			return user.Preferences{}, false
		}

		slog.ErrorContext(cctx, "load preferences failed", "err", err)
		RespondInternal(ctx, "Could not load preferences")
		return user.Preferences{}, false
	}

	return u.Preferences.WithDefaults(), true
}

func (h *PlansHandler) invalidate(ctx context.Context, userID string) {
	if h.cache == nil {
		return
	}

	if err := cache.Invalidate(ctx, h.cache, userID); err != nil {
		slog.WarnContext(ctx, "dashboard cache invalidation failed", "user_id", userID, "err", err)
	}
}
