package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/geocoder89/mealmood/internal/auth"
	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, ttl time.Duration) (string, time.Time) {
	t.Helper()
	tok, exp, err := auth.NewManager("client-test-secret", ttl).GenerateAccessToken("u-1", "ada@example.com")
	require.NoError(t, err)
	return tok, exp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewSession_ReadsExpiry(t *testing.T) {
	tok, exp := issueToken(t, time.Hour)

	sess, err := NewSession(tok, user.Profile{ID: "u-1"})
	require.NoError(t, err)

	assert.WithinDuration(t, exp, sess.ExpiresAt, time.Second)
	assert.True(t, sess.Valid(time.Now()))
	assert.False(t, sess.Valid(exp.Add(time.Minute)))
}

func TestNewSession_RejectsGarbage(t *testing.T) {
	_, err := NewSession("not-a-jwt", user.Profile{})
	assert.Error(t, err)
}

func TestLogin_AdoptsSession(t *testing.T) {
	tok, _ := issueToken(t, time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])

		writeJSON(w, http.StatusOK, map[string]any{
			"id": "u-1", "name": "Ada", "email": "ada@example.com", "token": tok,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	sess, err := c.Login(context.Background(), "ada@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, tok, sess.Token)
	assert.Equal(t, "Ada", sess.Profile.Name)
	assert.Same(t, sess, c.Session())
}

func TestAuthedCalls_SendBearer(t *testing.T) {
	tok, _ := issueToken(t, time.Hour)
	sess, err := NewSession(tok, user.Profile{ID: "u-1"})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+tok, r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/api/dashboard/tip":
			writeJSON(w, http.StatusOK, map[string]string{"tip": "Drink water."})
		case "/api/plans/my":
			writeJSON(w, http.StatusOK, []plan.WeeklyPlan{{ID: "p-2"}, {ID: "p-1"}})
		case "/api/plans/p-1":
			assert.Equal(t, http.MethodDelete, r.Method)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Plan removed", "id": "p-1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, sess)
	ctx := context.Background()

	tip, err := c.DailyTip(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", tip)

	plans, err := c.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "p-2", plans[0].ID)

	require.NoError(t, c.DeletePlan(ctx, "p-1"))
}

func TestAPIError_DecodesEnvelope(t *testing.T) {
	tok, _ := issueToken(t, time.Hour)
	sess, err := NewSession(tok, user.Profile{})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]string{"code": "forbidden", "message": "not your plan", "requestId": "rid-1"},
		})
	}))
	defer srv.Close()

	_, err = New(srv.URL, sess).GetPlan(context.Background(), "p-9")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "forbidden", apiErr.Code)
	assert.Equal(t, "rid-1", apiErr.RequestID)
}

func TestExpiredSession_FailsLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	tok, exp := issueToken(t, time.Hour)
	sess, err := NewSession(tok, user.Profile{})
	require.NoError(t, err)

	c := New(srv.URL, sess, WithClock(func() time.Time { return exp.Add(time.Second) }))

	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, called)

	_, err = New(srv.URL, nil).Me(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestGeneratePlan_RejectsUnknownMood(t *testing.T) {
	_, err := New("http://127.0.0.1:0", nil).GeneratePlan(context.Background(), "Sleepy", nil)
	assert.Error(t, err)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	tok, _ := issueToken(t, time.Hour)
	sess, err := NewSession(tok, user.Profile{ID: "u-1", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.Save(sess))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
	assert.Equal(t, "ada@example.com", got.Profile.Email)
	assert.True(t, got.ExpiresAt.Equal(sess.ExpiresAt))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}
