package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/audit"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/tracing"
	http_handlers "github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerFromConfig builds the production server around an already loaded config.
func NewServerFromConfig(cfg *config.Config) (*http.Server, func(), error) {
	if cfg == nil {
		return nil, nil, errNilDeps
	}
	deps := defaultDeps()
	deps.LoadConfig = func() (*config.Config, error) { return cfg, nil }
	return newServer(deps)
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	// Optional. nil skips redis and uses the in-memory stores.
	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL, queue string) (account.MailPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)

	// Optional. nil disables tracing.
	InitTracing func(ctx context.Context, cfg tracing.Config) (*tracing.TracerProvider, error)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	if err := deps.validate(); err != nil {
		return nil, nil, err
	}

	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) tracing
	var tracingMW func(http.Handler) http.Handler
	if deps.InitTracing != nil {
		tp, err := deps.InitTracing(context.Background(), tracing.Config{
			ServiceVersion: cfg.Version,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			Enabled:        cfg.TracingEnabled,
		})
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("tracing init failed; spans disabled")
		} else {
			cleanupFns = append(cleanupFns, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(ctx)
			})
			if tp.Enabled() {
				tracingMW = middleware.Tracing(tracing.ServiceName)
			}
		}
	}

	// 2) security
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	// 3) account repo
	var accounts account.AccountRepo
	var pinger http_handlers.Pinger

	if cfg.DBAddr == "" {
		logger.Logger.Warn().Msg("DB_ADDR empty; using in-memory account repo")
		mem := memory.NewAccountRepo()
		postgres.SeedAccounts(context.Background(), mem, hasher)
		accounts = mem
	} else {
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = postgres.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}

		repo := postgres.NewAccountRepo(db)
		if cfg.IsDev() {
			postgres.SeedAccounts(context.Background(), repo, hasher)
		}
		accounts = repo
		pinger = db
	}

	// 4) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory code store")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 5) code store + cooldown + wrong-guess counter
	var codes account.CodeStore
	var cooldown account.Cooldown
	var attempts account.AttemptCounter
	if redisCli != nil {
		limiter := redis.NewFixedWindowLimiter(redisCli)
		codes = redis.NewCodeStore(redisCli)
		cooldown = limiter
		attempts = limiter
	} else {
		codes = memory.NewCodeStore()
		cooldown = memory.NewCooldown()
		attempts = memory.NewAttemptCounter()
	}

	// 6) publisher
	pub, err := deps.NewPublisher(cfg.RabbitURL, cfg.MailQueue)
	if err != nil {
		if cfg.IsDev() {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher()
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 7) service
	svc := account.NewService(
		accounts,
		hasher,
		codes,
		cooldown,
		pub,
		account.Config{
			CodeTTL:  cfg.VerifyCodeTTL,
			Cooldown: cfg.VerifyCodeCooldown,
		},
	).WithAudit(audit.New(logger.Logger)).
		WithAttemptLimit(attempts, cfg.VerifyMaxAttempts)

	// 8) handlers
	authorizeH := http_handlers.NewAuthorizeHandler(svc)
	healthH := http_handlers.NewHealthHandler(pinger)

	// 9) router
	mux, err := deps.NewRouter(router.Deps{
		Health:       healthH,
		Authorize:    authorizeH,
		RequestIDMW:  middleware.RequestID,
		TracingMW:    tracingMW,
		MaxBodyBytes: middleware.DefaultMaxBodyBytes,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 10) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() { runCleanup(cleanupFns) })
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis: func(addr, password string, db int) *redis.Client {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url, queue string) (account.MailPublisher, error) {
			p, err := rabbitmq_pub.NewPublisher(url, queue)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		NewRouter:   router.New,
		InitTracing: tracing.InitTracing,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

var errNilDeps = errors.New("bootstrap: missing required dependency")

func (d Deps) validate() error {
	if d.LoadConfig == nil || d.NewDB == nil || d.NewPublisher == nil || d.NewRouter == nil {
		return errNilDeps
	}
	return nil
}
