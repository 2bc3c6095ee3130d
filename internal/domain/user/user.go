package user

import (
	"errors"
	"strings"
	"time"
)

const (
	DietMixed  = "mixed"
	DietVeg    = "veg"
	DietVegan  = "vegan"
	DietNonVeg = "non-veg"

	DefaultServings = 2
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Preferences struct {
	Diet            string   `json:"diet" bson:"diet" binding:"omitempty,oneof=mixed veg vegan non-veg"`
	Allergies       []string `json:"allergies" bson:"allergies" binding:"omitempty,max=30,dive,max=60"`
	DefaultServings int      `json:"defaultServings" bson:"default_servings" binding:"omitempty,min=1,max=20"`
}

// WithDefaults fills the zero values the way a freshly registered account sees them.
func (p Preferences) WithDefaults() Preferences {
	if p.Diet == "" {
		p.Diet = DietMixed
	}

	allergies := make([]string, 0, len(p.Allergies))
	for _, a := range p.Allergies {
		a = strings.TrimSpace(a)
		if a != "" {
			allergies = append(allergies, a)
		}
	}
	p.Allergies = allergies

	if p.DefaultServings <= 0 {
		p.DefaultServings = DefaultServings
	}

	return p
}

type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // never expose hash in JSON
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Profile is the public projection returned by the identity endpoints.
type Profile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterRequest struct {
	Name        string       `json:"name" binding:"required,min=1,max=80"`
	Email       string       `json:"email" binding:"required,email"`
	Password    string       `json:"password" binding:"required,min=8,max=72"`
	Preferences *Preferences `json:"preferences"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateRequest is a partial update: nil fields are left untouched.
type UpdateRequest struct {
	Name        *string      `json:"name" binding:"omitempty,min=1,max=80"`
	Password    *string      `json:"password" binding:"omitempty,min=8,max=72"`
	Preferences *Preferences `json:"preferences"`
}
