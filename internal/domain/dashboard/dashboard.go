package dashboard

import (
	"sort"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
)

const (
	day = 24 * time.Hour

	DefaultRecentLimit = 3
)

type Stats struct {
	TotalPlans   int        `json:"totalPlans"`
	LastPlanDate *time.Time `json:"lastPlanDate"`
	AccountAge   int        `json:"accountAge"`
	MostUsedMood string     `json:"mostUsedMood"`
	TotalRecipes int        `json:"totalRecipes"`
}

type PlanSummary struct {
	ID           string    `json:"id"`
	Mood         string    `json:"mood"`
	RecipesCount int       `json:"recipesCount"`
	Date         time.Time `json:"date"`
}

// Compute aggregates the statistics for one user's plans. The plans slice may be in any order.
func Compute(plans []plan.WeeklyPlan, accountCreatedAt, now time.Time) Stats {
	s := Stats{
		TotalPlans:   len(plans),
		AccountAge:   AccountAgeDays(accountCreatedAt, now),
		MostUsedMood: MostUsedMood(plans),
	}

	for i := range plans {
		s.TotalRecipes += len(plans[i].Recipes)

		created := plans[i].CreatedAt
		if s.LastPlanDate == nil || created.After(*s.LastPlanDate) {
			s.LastPlanDate = &created
		}
	}

	return s
}

// AccountAgeDays is the number of whole days elapsed since createdAt.
func AccountAgeDays(createdAt, now time.Time) int {
	if createdAt.IsZero() || now.Before(createdAt) {
		return 0
	}
	return int(now.Sub(createdAt) / day)
}

// MostUsedMood returns the mood with the highest count, or "" when there are no plans.
// Ties go to the mood that was used first (earliest createdAt, then id).
func MostUsedMood(plans []plan.WeeklyPlan) string {
	if len(plans) == 0 {
		return ""
	}

	ordered := sortedOldestFirst(plans)

	counts := make(map[string]int)
	firstSeen := make([]string, 0, len(plan.Moods))

	for _, p := range ordered {
		if _, ok := counts[p.Mood]; !ok {
			firstSeen = append(firstSeen, p.Mood)
		}
		counts[p.Mood]++
	}

	best, bestCount := "", 0
	for _, mood := range firstSeen {
		if counts[mood] > bestCount {
			best, bestCount = mood, counts[mood]
		}
	}

	return best
}

// Recent returns up to limit plans, newest first, projected to summaries.
func Recent(plans []plan.WeeklyPlan, limit int) []PlanSummary {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	ordered := sortedOldestFirst(plans)

	out := make([]PlanSummary, 0, limit)
	for i := len(ordered) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, Summarize(ordered[i]))
	}

	return out
}

func Summarize(p plan.WeeklyPlan) PlanSummary {
	return PlanSummary{
		ID:           p.ID,
		Mood:         p.Mood,
		RecipesCount: len(p.Recipes),
		Date:         p.CreatedAt,
	}
}

func sortedOldestFirst(plans []plan.WeeklyPlan) []plan.WeeklyPlan {
	out := make([]plan.WeeklyPlan, len(plans))
	copy(out, plans)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}
