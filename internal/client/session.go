package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrNoSession      = errors.New("not logged in")
)

// Session is the caller's token and profile. It is passed explicitly to the
// client; expiry is the only thing that invalidates it.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Profile   user.Profile `json:"profile"`
}

// NewSession reads the expiry from the token's exp claim. The signature is
// not checked here; the server does that on every request.
func NewSession(token string, profile user.Profile) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return nil, errors.New("token has no expiry")
	}

	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		Profile:   profile,
	}, nil
}

func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// SessionStore persists one session as JSON on disk.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is <user config dir>/mealmood/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mealmood", "session.json"), nil
}

func (s *SessionStore) Path() string { return s.path }

func (s *SessionStore) Load() (*Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", s.path, err)
	}

	return &sess, nil
}

func (s *SessionStore) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, raw, 0o600)
}

// Clear removes the stored session; missing files are not an error.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
