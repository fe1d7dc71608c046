package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	//App
	Env     string // dev / staging / prod
	Version string
	//HTTP
	HTTPAddr string

	// Infrastructure
	DBAddr        string
	DBDebug       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string
	MailQueue     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration

	// Verification codes
	VerifyCodeTTL      time.Duration
	VerifyCodeCooldown time.Duration
	VerifyMaxAttempts  int

	// Security
	BcryptCost int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

func Load() (*Config, error) {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("ENV", "dev"),
		Version:       getEnv("SERVICE_VERSION", "1.0.0"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		MailQueue:     getEnv("RABBIT_MAIL_QUEUE", "mail"),
		OTLPEndpoint:  os.Getenv("OTLP_ENDPOINT"),
	}

	// Infrastructure dependencies.
	// Fail fast here to avoid starting in a broken or partially-initialized state.
	// dev may run without postgres (in-memory accounts).
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" && !cfg.IsDev() {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	if cfg.DBAddr != "" &&
		!strings.HasPrefix(cfg.DBAddr, "postgres://") &&
		!strings.HasPrefix(cfg.DBAddr, "postgresql://") {
		return nil, fmt.Errorf("DB_ADDR must be a postgres:// URL")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("missing required env var: REDIS_ADDR")
	}

	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	if cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing required env var: RABBIT_URL")
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.VerifyMaxAttempts, err = getInt("VERIFY_CODE_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = getBool("TRACING_ENABLED", false); err != nil {
		return nil, err
	}

	if cfg.VerifyCodeTTL, err = getDuration("VERIFY_CODE_TTL", 3*time.Minute); err != nil {
		return nil, err
	}
	if cfg.VerifyCodeCooldown, err = getDuration("VERIFY_CODE_COOLDOWN", 60*time.Second); err != nil {
		return nil, err
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q: must be positive", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}
