package plan

import (
	"errors"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/google/uuid"
)

const (
	MoodTired    = "Tired"
	MoodHappy    = "Happy"
	MoodStressed = "Stressed"
	MoodBusy     = "Busy"
)

// Moods lists the accepted mood labels in display order.
var Moods = []string{MoodTired, MoodHappy, MoodStressed, MoodBusy}

var (
	ErrNotFound  = errors.New("plan not found")
	ErrForbidden = errors.New("plan belongs to another user")
)

func IsMood(s string) bool {
	for _, m := range Moods {
		if m == s {
			return true
		}
	}
	return false
}

type WeeklyPlan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Mood      string    `json:"mood"`
	Groceries []Grocery `json:"groceries"`
	Recipes   []Recipe  `json:"recipes"`
	WeekStart time.Time `json:"weekStart"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New builds a plan owned by userID. weekStart is the generation time,
// kept at millisecond precision so every store round-trips it unchanged.
func New(userID, mood string, content Content, now time.Time) WeeklyPlan {
	now = now.UTC().Truncate(time.Millisecond)

	return WeeklyPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mood:      mood,
		Groceries: content.Groceries,
		Recipes:   content.Recipes,
		WeekStart: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CheckOwner returns ErrForbidden unless userID owns the plan.
func (p WeeklyPlan) CheckOwner(userID string) error {
	if userID == "" || p.UserID != userID {
		return ErrForbidden
	}
	return nil
}

type GenerateRequest struct {
	Mood        string            `json:"mood" binding:"required,oneof=Tired Happy Stressed Busy"`
	Preferences *user.Preferences `json:"preferences"`
}
