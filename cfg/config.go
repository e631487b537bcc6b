package cfg

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type IdentityConfig struct {
	BaseURL        string
	APIKey         string
	JWTSecret      string
	HealthSchedule string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type OAuth2Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type ObservabilityConfig struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string
}

type Config struct {
	AppEnv                   string
	HTTPAddr                 string
	NodeID                   int64
	SessionTTLMinutes        int
	PasswordResetRedirectURL string
	Identity                 IdentityConfig
	Redis                    RedisConfig
	OAuth2                   OAuth2Config
	Observability            ObservabilityConfig
}

func Load() (*Config, error) {
	var errs []error

	// A missing .env is fine in container deployments; values come from the
	// real environment there.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	httpAddr := mustEnv("HTTP_ADDR", &errs)

	identityBaseURL := mustEnv("IDENTITY_BASE_URL", &errs)
	identityAPIKey := mustEnv("IDENTITY_API_KEY", &errs)
	identityJWTSecret := mustEnv("IDENTITY_JWT_SECRET", &errs)
	healthSchedule := envOrDefault("IDENTITY_HEALTH_SCHEDULE", "@every 30s")

	resetRedirectURL := mustEnv("PASSWORD_RESET_REDIRECT_URL", &errs)

	redisHost := mustEnv("REDIS_HOST", &errs)
	redisPort := mustEnv("REDIS_PORT", &errs)
	redisPassword := mustEnv("REDIS_PASSWORD", &errs)

	sessionTTLMinutes := mustEnv("SESSION_TTL_MINUTES", &errs)
	sessionTTLMinutesInt, err := strconv.Atoi(sessionTTLMinutes)
	if err != nil {
		errs = append(errs, errors.New("conversion failed env: "+"SESSION_TTL_MINUTES"))
	}

	nodeID := envOrDefault("SNOWFLAKE_NODE_ID", "1")
	nodeIDInt, err := strconv.ParseInt(nodeID, 10, 64)
	if err != nil {
		errs = append(errs, errors.New("conversion failed env: "+"SNOWFLAKE_NODE_ID"))
	}

	otlpEndpoint := mustEnv("OTLP_ENDPOINT", &errs)
	serviceName := envOrDefault("SERVICE_NAME", "himood-auth")

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:                   appEnv,
		HTTPAddr:                 httpAddr,
		NodeID:                   nodeIDInt,
		SessionTTLMinutes:        sessionTTLMinutesInt,
		PasswordResetRedirectURL: resetRedirectURL,
		Identity: IdentityConfig{
			BaseURL:        identityBaseURL,
			APIKey:         identityAPIKey,
			JWTSecret:      identityJWTSecret,
			HealthSchedule: healthSchedule,
		},
		Redis: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		OAuth2: OAuth2Config{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
		Observability: ObservabilityConfig{
			ServiceName:  serviceName,
			Environment:  appEnv,
			OTLPEndpoint: otlpEndpoint,
		},
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func envOrDefault(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}
