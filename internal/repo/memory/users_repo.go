package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/mealmood/internal/domain/user"
)

type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // id -> user
	byEmail map[string]string    // normalized email -> id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	u.Email = user.NormalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.ID] = cloneUser(u)
	r.byEmail[u.Email] = u.ID

	return cloneUser(u), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return cloneUser(r.items[id]), nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return cloneUser(u), nil
}

// Update replaces name, password hash and preferences. Email is immutable.
func (r *UsersRepo) Update(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	existing.Name = u.Name
	existing.PasswordHash = u.PasswordHash
	existing.Preferences = u.Preferences
	existing.UpdatedAt = u.UpdatedAt

	r.items[u.ID] = cloneUser(existing)

	return cloneUser(existing), nil
}

func cloneUser(u user.User) user.User {
	u.Preferences.Allergies = append([]string(nil), u.Preferences.Allergies...)
	return u
}
