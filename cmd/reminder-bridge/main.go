// cmd/reminder-bridge/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"task-reminder-bridge/internal/common/audit"
	awsclient "task-reminder-bridge/internal/common/aws"
	"task-reminder-bridge/internal/common/config"
	"task-reminder-bridge/internal/common/database"
	httpclient "task-reminder-bridge/internal/common/http"
	"task-reminder-bridge/internal/common/ledger"
	"task-reminder-bridge/internal/common/logger"
	"task-reminder-bridge/internal/common/observability"
	"task-reminder-bridge/internal/common/session"
	"task-reminder-bridge/internal/common/todoapi"
	"task-reminder-bridge/internal/server"
	es "task-reminder-bridge/internal/workers/communication/email-send"
	eb "task-reminder-bridge/internal/workers/reminders/email-bridge"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting reminder bridge...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	pingers := map[string]database.Pinger{}

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	if cfg.UsesRedis() {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		pingers["redis"] = redis
		zapLog.Info("Redis connected successfully")
	}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	if cfg.UsesPostgres() {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		pingers["postgres"] = pg
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch with retry ---
	var recorder audit.Recorder = audit.Nop{}
	if cfg.Audit.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		pingers["elasticsearch"] = esClient
		recorder = audit.NewElasticsearchRecorder(esClient.Client, cfg.Audit.Index)
		zapLog.Info("Elasticsearch connected successfully")
	}

	ledgerStore, err := newLedgerStore(ctx, cfg, redis, pg)
	if err != nil {
		zapLog.Fatal("ledger store init failed", zap.Error(err))
	}
	sessionStore := newSessionStore(cfg, redis)

	// --- Init email delivery ---
	emailDeps := es.ServiceDependencies{Logger: log}
	switch cfg.Email.Provider {
	case es.ProviderSES, es.ProviderSNS:
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		emailDeps.SES = awsclient.NewSESClientFromConfig(awsCfg)
		emailDeps.SNS = awsclient.NewSNSClientFromConfig(awsCfg)
	}
	emailService, err := es.NewService(emailDeps, es.FromAppConfig(cfg))
	if err != nil {
		zapLog.Fatal("email service init failed", zap.Error(err))
	}
	if err := emailService.TestConnection(ctx); err != nil {
		zapLog.Warn("email provider not reachable yet", zap.Error(err))
	}
	zapLog.Info("Email delivery ready", zap.String("provider", emailService.Provider()))

	// --- Init to-do API client ---
	api := todoapi.NewClient(httpclient.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   config.GetDuration(cfg.API.Timeout),
		UserAgent: cfg.API.UserAgent,
	}, log)

	manager := eb.NewManager(eb.FromAppConfig(cfg), eb.Dependencies{
		Source:        api,
		Sender:        emailService,
		Ledger:        ledgerStore,
		Audit:         recorder,
		Logger:        log,
		Observability: obs,
	}, sessionStore, api)

	if cfg.Bridge.RestoreSessions {
		n, err := manager.Restore(ctx)
		if err != nil {
			zapLog.Error("session restore failed", zap.Error(err))
		} else {
			zapLog.Info("Sessions restored", zap.Int("count", n))
		}
	}

	srv := server.New(cfg.Server, manager, pingers, log)
	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("control server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping bridges...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping control server", zap.Error(err))
	}
	manager.Shutdown()

	zapLog.Info("Reminder bridge stopped gracefully")
}

func newLedgerStore(ctx context.Context, cfg *config.Config, redis *database.RedisClient, pg *database.PostgresClient) (ledger.Store, error) {
	switch cfg.Ledger.Backend {
	case "redis":
		return ledger.NewRedisStore(redis.Client, cfg.Ledger.KeyPrefix), nil
	case "postgres":
		store := ledger.NewPostgresStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return ledger.NewMemoryStore(), nil
	}
}

func newSessionStore(cfg *config.Config, redis *database.RedisClient) session.Store {
	if cfg.Session.Backend == "redis" {
		return session.NewRedisStore(redis.Client, cfg.Session.KeyPrefix)
	}
	return session.NewMemoryStore()
}
