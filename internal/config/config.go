package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the full application configuration. Everything is loaded from
// the environment (plus an optional .env file) and passed into constructors;
// nothing reads env vars at call sites.
type Config struct {
	AppEnv    string `env:"APP_ENV" env-default:"development"`
	Logger    LoggerConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AI        AIConfig
	Image     ImageConfig
	RateLimit RateLimitConfig
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level    string `env:"LOG_LEVEL" env-default:"info"`
	Encoding string `env:"LOG_ENCODING" env-default:"json"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `env:"SERVER_PORT" env-default:"8080"`
	BasePath        string        `env:"SERVER_BASE_PATH" env-default:"/api"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	// Generation requests hold the connection through AI retries, so the
	// write window has to cover the whole pipeline.
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"10m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            int           `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD" env-default:"postgres"`
	Name            string        `env:"DB_NAME" env-default:"parallel_lives"`
	SSLMode         string        `env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns        int           `env:"DB_MAX_CONNECTIONS" env-default:"10"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" env-default:"5m"`
	MigrateOnStart  bool          `env:"DB_MIGRATE_ON_START" env-default:"true"`
}

// RedisConfig holds Redis settings (rate limiting).
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// JWTConfig holds token issuance settings.
type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL time.Duration `env:"JWT_TOKEN_TTL" env-default:"168h"` // 7 days
	Issuer   string        `env:"JWT_ISSUER" env-default:"parallel-lives"`
}

// AIConfig holds text generation settings.
type AIConfig struct {
	APIKey      string        `env:"AI_API_KEY" env-default:""`
	BaseURL     string        `env:"AI_BASE_URL" env-default:"https://ark.cn-beijing.volces.com/api/v3"`
	Model       string        `env:"AI_MODEL" env-default:"deepseek-r1"`
	Timeout     time.Duration `env:"AI_TIMEOUT" env-default:"120s"`
	MaxAttempts int           `env:"AI_MAX_ATTEMPTS" env-default:"3"`
	RetryDelay  time.Duration `env:"AI_RETRY_DELAY" env-default:"1s"`
	MaxTokens   int           `env:"AI_MAX_TOKENS" env-default:"4000"`
	Temperature float32       `env:"AI_TEMPERATURE" env-default:"0.8"`
	TopP        float32       `env:"AI_TOP_P" env-default:"0.9"`
}

// ImageConfig holds image generation settings.
type ImageConfig struct {
	APIKey        string        `env:"IMAGE_API_KEY" env-default:""`
	URL           string        `env:"IMAGE_API_URL" env-default:"https://ark.cn-beijing.volces.com/api/v3/images/generations"`
	Model         string        `env:"IMAGE_MODEL" env-default:"doubao-seedream-3-0-t2i"`
	Size          string        `env:"IMAGE_DEFAULT_SIZE" env-default:"1024x1024"`
	GuidanceScale float64       `env:"IMAGE_GUIDANCE_SCALE" env-default:"2.5"`
	Watermark     bool          `env:"IMAGE_WATERMARK" env-default:"true"`
	Timeout       time.Duration `env:"IMAGE_TIMEOUT" env-default:"60s"`
	MaxAttempts   int           `env:"IMAGE_MAX_ATTEMPTS" env-default:"3"` // 1 initial try + 2 retries
	RetryDelay    time.Duration `env:"IMAGE_RETRY_DELAY" env-default:"1s"`
	Parallelism   int           `env:"IMAGE_PARALLELISM" env-default:"1"`
	StyleSuffix   string        `env:"IMAGE_STYLE_SUFFIX" env-default:"warm and healing, soft palette, minimal modern, emotionally rich, high quality, 4K, professional photography, aesthetic composition"`
}

// RateLimitConfig holds fixed-window rate limiter settings.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	AuthWindow     time.Duration `env:"RATE_LIMIT_AUTH_WINDOW" env-default:"15m"`
	AuthMax        int           `env:"RATE_LIMIT_AUTH_MAX" env-default:"5"`
	GenerateWindow time.Duration `env:"RATE_LIMIT_GENERATE_WINDOW" env-default:"1h"`
	GenerateMax    int           `env:"RATE_LIMIT_GENERATE_MAX" env-default:"10"`
}

// Load reads the configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	// Missing .env is fine, real deployments use the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &cfg, nil
}
