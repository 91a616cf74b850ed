// Package server assembles goaccount-server: account store, Redis event
// sink and mail queue, engine and HTTP router.
package server

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/eventbus/redisbus"
	"github.com/MrEthical07/goAccount/httpapi"
	"github.com/MrEthical07/goAccount/internal/serverconfig"
	"github.com/MrEthical07/goAccount/logging"
	"github.com/MrEthical07/goAccount/metrics/export/prometheus"
	"github.com/MrEthical07/goAccount/notify"
	"github.com/MrEthical07/goAccount/store/memstore"
	"github.com/MrEthical07/goAccount/store/sqlstore"
)

// App owns every long-lived resource of the server.
type App struct {
	config  *serverconfig.Config
	logger  logging.Logger
	engine  *goAccount.Engine
	handler http.Handler

	redis     redis.UniversalClient
	mailQueue *notify.RedisQueue
	mailer    notify.Mailer
	closers   []func() error
}

// NewApp wires the server from cfg. Close releases what it opened.
func NewApp(ctx context.Context, cfg *serverconfig.Config, logger logging.Logger) (_ *App, err error) {
	if logger == nil {
		logger = logging.Nop()
	}
	app := &App{config: cfg, logger: logger, mailer: notify.NewLogMailer(logger, false)}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	engineCfg, err := app.engineConfig()
	if err != nil {
		return nil, err
	}

	renderer, err := notify.NewRenderer(notify.WithGlobals(map[string]any{"base_url": cfg.BaseURL}))
	if err != nil {
		return nil, fmt.Errorf("mail templates: %w", err)
	}

	var mailer notify.Mailer = app.mailer
	builder := goAccount.New().
		WithConfig(engineCfg).
		WithAccountStore(store).
		WithLogger(logger)

	if cfg.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		app.closers = append(app.closers, app.redis.Close)
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		app.mailQueue = notify.NewRedisQueue(app.redis, "")
		mailer = app.mailQueue
		builder = builder.WithEventSink(redisbus.NewSink(app.redis, "", logger))
	}

	notifier, err := notify.NewNotifier(renderer, mailer, cfg.MailFrom)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	app.engine, err = builder.WithNotifier(notifier).Build()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	app.closers = append(app.closers, func() error {
		app.engine.Close()
		return nil
	})

	app.handler = httpapi.NewRouter(app.engine,
		httpapi.WithLogger(logger),
		httpapi.WithMetricsHandler(prometheus.NewExporter(app.engine).Handler()),
		httpapi.WithTrustProxy(cfg.TrustProxy),
	)
	return app, nil
}

func (app *App) openStore(ctx context.Context) (goAccount.AccountStore, error) {
	var dialect sqlstore.Dialect
	switch app.config.StoreDriver {
	case serverconfig.StoreMemory:
		app.logger.Warn(ctx, "using in-memory account store; accounts are lost on restart")
		return memstore.New(), nil
	case serverconfig.StoreSQLite:
		dialect = sqlstore.SQLite
	case serverconfig.StorePostgres:
		dialect = sqlstore.Postgres
	default:
		return nil, fmt.Errorf("unknown store driver %q", app.config.StoreDriver)
	}

	s, err := sqlstore.Open(ctx, dialect, app.config.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, s.Close)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (app *App) engineConfig() (goAccount.Config, error) {
	cfg := goAccount.DefaultConfig()
	cfg.Token.SigningMethod = app.config.SigningMethod
	cfg.PasswordReset.TokenTTL = app.config.ResetTokenTTL
	cfg.PasswordReset.SingleUse = app.config.SingleUseReset
	cfg.Metrics.EnableLatencyHistograms = true

	switch app.config.SigningMethod {
	case "hs256":
		cfg.Token.PrivateKey = []byte(app.config.SecretKey)
	default:
		if app.config.PrivateKeyFile == "" {
			app.logger.Warn(context.Background(), "no signing key configured; generated an ephemeral ed25519 key")
			pub, priv, err := ed25519.GenerateKey(nil)
			if err != nil {
				return cfg, fmt.Errorf("generate key: %w", err)
			}
			cfg.Token.PrivateKey, cfg.Token.PublicKey = priv, pub
			break
		}
		priv, err := os.ReadFile(app.config.PrivateKeyFile)
		if err != nil {
			return cfg, fmt.Errorf("read private key: %w", err)
		}
		pub, err := os.ReadFile(app.config.PublicKeyFile)
		if err != nil {
			return cfg, fmt.Errorf("read public key: %w", err)
		}
		cfg.Token.PrivateKey, cfg.Token.PublicKey = priv, pub
	}
	return cfg, nil
}

// Handler returns the HTTP handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

// Engine returns the account engine.
func (app *App) Engine() *goAccount.Engine {
	return app.engine
}

// Run serves HTTP on the configured address, and drains the Redis mail
// queue when one is configured, until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              app.config.Addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		cancel()
	}

	if app.mailQueue != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.consumeMail(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.logger.Info(ctx, "listening", "addr", app.config.Addr, "config", app.config.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail(fmt.Errorf("http server: %w", err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown", "error", err)
	}
	wg.Wait()
	return firstErr
}

// consumeMail delivers queued mail, backing off after a failed delivery.
func (app *App) consumeMail(ctx context.Context) {
	for {
		err := app.mailQueue.Consume(ctx, app.mailer, time.Second)
		if err == nil || ctx.Err() != nil {
			return
		}
		app.logger.Warn(ctx, "mail delivery failed", "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// Close shuts the engine down, then closes Redis and the database.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
