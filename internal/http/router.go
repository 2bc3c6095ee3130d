package http

import (
	"net/http"
	"time"

	"github.com/geocoder89/mealmood/internal/cache"
	"github.com/geocoder89/mealmood/internal/generator"
	"github.com/geocoder89/mealmood/internal/http/handlers"
	"github.com/geocoder89/mealmood/internal/http/middlewares"
	"github.com/geocoder89/mealmood/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "mealmood-api"

// PlanRepository is what the plan and dashboard handlers need from storage.
type PlanRepository interface {
	handlers.PlanStore
	handlers.RecentPlanLister
}

type Deps struct {
	Env            string
	ClientURLs     []string
	MaxBodyBytes   int64
	GenTimeout     time.Duration
	TracingEnabled bool

	Users     handlers.UserStore
	Plans     PlanRepository
	Generator generator.Generator
	Cache     cache.Store
	Tokens    interface {
		handlers.TokenIssuer
		middlewares.TokenVerifier
	}

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Checks   map[string]handlers.Check
	Draining func() bool

	// per-minute request budgets; zero picks the defaults
	AuthRateLimit     int
	GenerateRateLimit int
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if d.TracingEnabled {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(d.Env))
	r.Use(middlewares.CORSMiddleware(d.ClientURLs))
	r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))

	// health, metrics, docs
	health := handlers.NewHealthHandler(d.Checks, d.Draining)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// wire up handlers
	usersHandler := handlers.NewUsersHandler(d.Users, d.Tokens)
	plansHandler := handlers.NewPlansHandler(d.Plans, d.Users, d.Generator, d.Cache, d.GenTimeout)
	dashboardHandler := handlers.NewDashboardHandler(d.Plans, d.Users, d.Cache, d.Prom)

	authMW := middlewares.NewAuthMiddleware(d.Tokens)
	authLimiter := middlewares.NewRateLimiter(orDefault(d.AuthRateLimit, 10), time.Minute)
	generateLimiter := middlewares.NewRateLimiter(orDefault(d.GenerateRateLimit, 5), time.Minute)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	users := api.Group("/users")
	users.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Register)
	users.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Login)

	me := users.Group("/me", authMW.RequireAuth())
	me.GET("", usersHandler.Me)
	me.PATCH("", usersHandler.UpdateMe)

	plans := api.Group("/plans", authMW.RequireAuth())
	plans.POST("/generate", generateLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP), plansHandler.Generate)
	plans.GET("/my", plansHandler.ListMine)
	plans.GET("/:id", plansHandler.GetByID)
	plans.DELETE("/:id", plansHandler.Delete)

	dash := api.Group("/dashboard", authMW.RequireAuth())
	dash.GET("/stats", dashboardHandler.Stats)
	dash.GET("/recent", dashboardHandler.Recent)
	dash.GET("/tip", dashboardHandler.Tip)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
