package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"

	GeneratorGemini = "gemini"
	GeneratorStatic = "static"

	devJWTSecret = "dev-only-insecure-secret"
)

type Config struct {
	Env  string
	Port int

	StoreDriver string
	DBURL       string
	DBMaxConns  int32
	MongoURI    string
	MongoDB     string

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	DashboardCacheTTL time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	Generator         string
	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration
	BreakerThreshold  int
	BreakerCooldown   time.Duration

	ClientURLs   []string
	OTLPEndpoint string
	TraceSample  float64
	MaxBodyBytes int64
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	return FromEnv()
}

func FromEnv() (Config, error) {
	var errs []error

	env := getEnv("APP_ENV", "dev")

	cfg := Config{
		Env:               env,
		Port:              getEnvInt("PORT", 8080, &errs),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DBURL:             getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10, &errs)),
		MongoURI:          getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:           getEnv("MONGO_DB", "mealmood"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0, &errs),
		DashboardCacheTTL: time.Duration(getEnvInt("DASHBOARD_CACHE_TTL_SECONDS", 30, &errs)) * time.Second,
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour, &errs),
		Generator:         strings.ToLower(getEnv("GENERATOR", GeneratorGemini)),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GenerationTimeout: time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 90, &errs)) * time.Second,
		BreakerThreshold:  getEnvInt("GENERATION_BREAKER_THRESHOLD", 5, &errs),
		BreakerCooldown:   getEnvDuration("GENERATION_BREAKER_COOLDOWN", 30*time.Second, &errs),
		ClientURLs:        splitList(getEnv("CLIENT_URL", "http://localhost:5173")),
		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSample:       getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1, &errs),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1<<20, &errs)),
	}

	if cfg.JWTSecret == "" {
		if env == "dev" || env == "test" {
			cfg.JWTSecret = devJWTSecret
		} else {
			errs = append(errs, errors.New("JWT_SECRET must be set"))
		}
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of postgres, mongo, memory", cfg.StoreDriver))
	}

	switch cfg.Generator {
	case GeneratorGemini:
		if cfg.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY must be set when GENERATOR=gemini"))
		}
	case GeneratorStatic:
	default:
		errs = append(errs, fmt.Errorf("GENERATOR %q is not one of gemini, static", cfg.Generator))
	}

	if cfg.TraceSample < 0 || cfg.TraceSample > 1 {
		errs = append(errs, errors.New("OTEL_TRACES_SAMPLE_RATIO must be between 0 and 1"))
	}

	if cfg.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}

	return cfg, errors.Join(errs...)
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "mealmood")
	pass := getEnv("DB_PASSWORD", "mealmood")
	name := getEnv("DB_NAME", "mealmood")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	num, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}

	return num
}

func getEnvFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}

	return f
}

// getEnvDuration accepts Go durations ("36h") and whole days ("7d").
func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	d, err := ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}

	return d
}

func ParseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
