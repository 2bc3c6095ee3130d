package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromRegisterRequest(req RegisterRequest, passwordHash string) User {
	now := time.Now().UTC().Truncate(time.Millisecond)

	var prefs Preferences
	if req.Preferences != nil {
		prefs = *req.Preferences
	}

	return User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Preferences:  prefs.WithDefaults(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
