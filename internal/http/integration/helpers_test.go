package integration__test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/mealmood/internal/auth"
	"github.com/geocoder89/mealmood/internal/cache"
	"github.com/geocoder89/mealmood/internal/generator"
	apphttp "github.com/geocoder89/mealmood/internal/http"
	"github.com/geocoder89/mealmood/internal/http/handlers"
	"github.com/geocoder89/mealmood/internal/observability"
	"github.com/geocoder89/mealmood/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type testApp struct {
	router http.Handler
	users  *memory.UsersRepo
	plans  *memory.PlansRepo
	cache  *cache.Memory
}

func setupTestRouter(t *testing.T, gen generator.Generator) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if gen == nil {
		gen = generator.NewStatic()
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	app := &testApp{
		users: memory.NewUsersRepo(),
		plans: memory.NewPlansRepo(),
		cache: cache.NewMemory(time.Minute),
	}

	app.router = apphttp.NewRouter(apphttp.Deps{
		Env:               "test",
		ClientURLs:        []string{"http://localhost:5173"},
		MaxBodyBytes:      1 << 20,
		GenTimeout:        5 * time.Second,
		Users:             app.users,
		Plans:             app.plans,
		Generator:         generator.WithMetrics(gen, prom),
		Cache:             app.cache,
		Tokens:            auth.NewManager("test-secret-key", time.Hour),
		Prom:              prom,
		Gatherer:          reg,
		Checks:            map[string]handlers.Check{"cache": app.cache.Ping},
		AuthRateLimit:     1000,
		GenerateRateLimit: 1000,
	})

	return app
}

// function that runs a request and returns the recorder

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type authResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func register(t *testing.T, app *testApp, name, email string) authResponse {
	t.Helper()

	body := `{"name":"` + name + `","email":"` + email + `","password":"password123"}`
	w := doRequest(app.router, http.MethodPost, "/api/users/register", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp authResponse
	mustReadJSON(t, w, &resp)
	return resp
}
