// Package client is a typed HTTP client for the mealmood API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/dashboard"
	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
)

// APIError is a decoded error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	now     func() time.Time
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
		session: session,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Session returns the session the client currently authenticates with.
func (c *Client) Session() *Session { return c.session }

type RegisterInput struct {
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Password    string            `json:"password"`
	Preferences *user.Preferences `json:"preferences,omitempty"`
}

type authResponse struct {
	user.Profile
	Token string `json:"token"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, errors.New("name, email and password are required")
	}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/register", in, &resp, false); err != nil {
		return nil, err
	}

	return c.adopt(resp)
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", body, &resp, false); err != nil {
		return nil, err
	}

	return c.adopt(resp)
}

func (c *Client) Me(ctx context.Context) (user.Profile, error) {
	var p user.Profile
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &p, true)
	return p, err
}

func (c *Client) GeneratePlan(ctx context.Context, mood string, prefs *user.Preferences) (plan.WeeklyPlan, error) {
	if !plan.IsMood(mood) {
		return plan.WeeklyPlan{}, fmt.Errorf("mood must be one of %s", strings.Join(plan.Moods, ", "))
	}

	body := plan.GenerateRequest{Mood: mood, Preferences: prefs}

	var p plan.WeeklyPlan
	err := c.do(ctx, http.MethodPost, "/api/plans/generate", body, &p, true)
	return p, err
}

func (c *Client) ListPlans(ctx context.Context) ([]plan.WeeklyPlan, error) {
	var plans []plan.WeeklyPlan
	err := c.do(ctx, http.MethodGet, "/api/plans/my", nil, &plans, true)
	return plans, err
}

func (c *Client) GetPlan(ctx context.Context, id string) (plan.WeeklyPlan, error) {
	var p plan.WeeklyPlan
	err := c.do(ctx, http.MethodGet, "/api/plans/"+url.PathEscape(id), nil, &p, true)
	return p, err
}

func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/plans/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) DashboardStats(ctx context.Context) (dashboard.Stats, error) {
	var s dashboard.Stats
	err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &s, true)
	return s, err
}

func (c *Client) RecentPlans(ctx context.Context) ([]dashboard.PlanSummary, error) {
	var out []dashboard.PlanSummary
	err := c.do(ctx, http.MethodGet, "/api/dashboard/recent", nil, &out, true)
	return out, err
}

func (c *Client) DailyTip(ctx context.Context) (string, error) {
	var resp struct {
		Tip string `json:"tip"`
	}
	err := c.do(ctx, http.MethodGet, "/api/dashboard/tip", nil, &resp, true)
	return resp.Tip, err
}

func (c *Client) adopt(resp authResponse) (*Session, error) {
	sess, err := NewSession(resp.Token, resp.Profile)
	if err != nil {
		return nil, err
	}
	c.session = sess
	return sess, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	if authed {
		if c.session == nil || c.session.Token == "" {
			return ErrNoSession
		}
		if !c.session.Valid(c.now()) {
			return ErrSessionExpired
		}
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var env struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}

	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.RequestID = env.Error.RequestID
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
