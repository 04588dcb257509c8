// Package app wires configuration, storage, auth, and the web UI into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/linkpg/linkpg"
	"github.com/linkpg/linkpg/auth"
	"github.com/linkpg/linkpg/driver/pgxv5"
	"github.com/linkpg/linkpg/hooks"
	"github.com/linkpg/linkpg/internal/config"
	"github.com/linkpg/linkpg/internal/logger"
	"github.com/linkpg/linkpg/migrations"
	"github.com/linkpg/linkpg/ui"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	pool        *pgxpool.Pool
	redisClient *goredis.Client
	client      *linkpg.Client[pgx.Tx]
	mgr         *auth.Manager
	server      *http.Server
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	if cfg.Migrate {
		log.Info("running migrations")
		if err := migrations.Up(cfg.DatabaseURL); err != nil && !errors.Is(err, migrations.ErrNoChange) {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info("postgres connected")

	// Fetch and state-transition observations go to the structured log.
	registry := hooks.NewRegistry()
	registry.OnStateChange(func(identity, from, to string) {
		log.Debug("sync state change",
			logger.String("identity", identity),
			logger.String("from", from),
			logger.String("to", to))
	})
	registry.OnFetchDone(func(identity string, seq uint64, count int, err error) {
		if err != nil {
			log.Warn("fetch failed",
				logger.String("identity", identity),
				logger.Uint64("seq", seq),
				logger.Error(err))
			return
		}
		log.Debug("fetch done",
			logger.String("identity", identity),
			logger.Uint64("seq", seq),
			logger.Int("count", count))
	})

	client, err := linkpg.NewClient(pgxv5.New(pool), &linkpg.ClientConfig{
		OnError: func(err error) {
			log.Warn("sync error", logger.Error(err))
		},
		Hooks: registry,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}

	// Session store: Redis when configured, otherwise in-memory.
	var sessionStore auth.SessionStore
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		sessionStore = auth.NewRedisStore(redisClient)
		log.Info("redis session store connected", logger.String("addr", cfg.RedisAddr))
	} else {
		sessionStore = auth.NewMemoryStore()
		log.Info("using in-memory session store")
	}

	google, err := auth.NewOAuth2Provider(auth.GoogleConfig(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.OAuthRedirectURL,
	))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure google provider: %w", err)
	}

	mgr, err := auth.NewManager(&auth.ManagerConfig{
		Providers:  []auth.Provider{google},
		Store:      sessionStore,
		Tokens:     auth.NewTokenProvider([]byte(cfg.SessionSecret), "linkpg", cfg.SessionTTLDuration()),
		SessionTTL: cfg.SessionTTLDuration(),
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create auth manager: %w", err)
	}

	uiCfg := &ui.Config{
		BasePath:     cfg.BasePath,
		ReadOnly:     cfg.ReadOnly,
		CookieSecure: cfg.CookieSecure,
		Logger:       &uiLogger{log: log},
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	uiPath := cfg.BasePath
	if uiPath == "" {
		uiPath = "/"
	}
	r.Mount(cfg.BasePath+"/api", ui.APIHandler(client, mgr, uiCfg))
	r.Mount(uiPath, ui.UIHandler(client, mgr, uiCfg))

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	return &App{
		cfg:         cfg,
		logger:      log,
		pool:        pool,
		redisClient: redisClient,
		client:      client,
		mgr:         mgr,
		server:      server,
	}, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.client.Start(ctx); err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	a.logger.Info("change listener started")

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", logger.String("addr", a.cfg.ListenAddr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeoutDuration())
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", logger.Error(err))
	}
	if err := a.client.Stop(shutdownCtx); err != nil {
		a.logger.Warn("client stop", logger.Error(err))
	}
	a.pool.Close()
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("redis close", logger.Error(err))
		}
	}

	a.logger.Info("stopped cleanly")
	return nil
}

// uiLogger adapts the zap-backed logger to the ui package's key-value
// logging interface.
type uiLogger struct {
	log logger.Logger
}

func (l *uiLogger) Debug(msg string, args ...any) { l.log.Debug(msg, kvFields(args)...) }
func (l *uiLogger) Info(msg string, args ...any)  { l.log.Info(msg, kvFields(args)...) }
func (l *uiLogger) Warn(msg string, args ...any)  { l.log.Warn(msg, kvFields(args)...) }
func (l *uiLogger) Error(msg string, args ...any) { l.log.Error(msg, kvFields(args)...) }

func kvFields(args []any) []logger.Field {
	fields := make([]logger.Field, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, logger.Any(key, args[i+1]))
	}
	return fields
}
