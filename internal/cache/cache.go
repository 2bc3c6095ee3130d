// Package cache holds short-lived dashboard aggregates keyed per user.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store is satisfied by the in-process Memory cache and the Redis cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

func StatsKey(userID string) string {
	return "dashboard:stats:" + userID
}

func RecentKey(userID string) string {
	return "dashboard:recent:" + userID
}

// VersionKey holds a token that changes on every invalidation of the
// user's entries.
func VersionKey(userID string) string {
	return "dashboard:version:" + userID
}

// UserKeys lists every entry derived from the user's plans.
func UserKeys(userID string) []string {
	return []string{StatsKey(userID), RecentKey(userID)}
}

// Invalidate drops the user's entries and moves their version on, so a
// value computed from plans read before this call is never written back.
func Invalidate(ctx context.Context, s Store, userID string) error {
	bump := s.Set(ctx, VersionKey(userID), []byte(uuid.NewString()))
	return errors.Join(bump, s.Delete(ctx, UserKeys(userID)...))
}

// Version returns the user's current version token, "" when none is held.
func Version(ctx context.Context, s Store, userID string) (string, error) {
	raw, _, err := s.Get(ctx, VersionKey(userID))
	return string(raw), err
}

// SetJSONAtVersion writes val only while the user's version is still seen.
// It reports whether the value was written.
func SetJSONAtVersion(ctx context.Context, s Store, userID, seen, key string, val any) (bool, error) {
	current, err := Version(ctx, s, userID)
	if err != nil {
		return false, err
	}
	if current != seen {
		return false, nil
	}

	return true, SetJSON(ctx, s, key, val)
}

func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T

	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("decode cached %s: %w", key, err)
	}

	return out, true, nil
}

func SetJSON(ctx context.Context, s Store, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return s.Set(ctx, key, raw)
}
