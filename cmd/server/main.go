package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/govledger/internal/adapter/http"
	"github.com/iho/govledger/internal/adapter/http/handler"
	"github.com/iho/govledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/govledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/govledger/internal/adapter/repository/redis"
	"github.com/iho/govledger/internal/governance"
	"github.com/iho/govledger/internal/infrastructure/auth"
	"github.com/iho/govledger/internal/infrastructure/config"
	"github.com/iho/govledger/internal/infrastructure/eventpublisher"
	"github.com/iho/govledger/internal/infrastructure/logger"
	"github.com/iho/govledger/internal/infrastructure/metrics"
	"github.com/iho/govledger/internal/infrastructure/postgres"
	"github.com/iho/govledger/internal/infrastructure/redis"
	"github.com/iho/govledger/internal/signals"
	"github.com/iho/govledger/internal/usecase"
)

const limiterIdle = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	vaultCfg, err := cfg.Vault()
	if err != nil {
		return fmt.Errorf("invalid vault configuration: %w", err)
	}

	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	entityRepo := postgresRepo.NewEntityRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	vaultRepo := postgresRepo.NewVaultRepository(pool)
	escrowRepo := postgresRepo.NewEscrowRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(postgresRepo.RetrierConfig{MaxRetries: cfg.DatabaseRetries}, log)

	cache := redisRepo.NewCache(redisClient, cfg.RedisNamespace)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient, cfg.RedisNamespace)

	// Initialize use cases
	vaultUC := usecase.NewVaultUseCase(txManager, vaultRepo, outboxRepo, idGen, vaultCfg, m, log)

	chain := governance.New(cfg.Governance(), vaultUC)
	stress := signals.DefaultStressConfig()
	stress.Iterations = cfg.StressIterations
	stress.Seed = cfg.StressSeed
	provider := signals.NewComposite(
		signals.NewStressSimulator(stress),
		signals.NewSovereigntyCalculator(signals.DefaultSovereigntyConfig()),
		signals.NewIntelligenceScanner(signals.DefaultIntelligenceConfig()),
		cfg.SignalTimeout,
		log,
	)

	postingUC := usecase.NewPostingUseCase(txManager, ledgerRepo, accountRepo, journalRepo, outboxRepo, idGen, log,
		usecase.WithRetrier(retrier),
		usecase.WithBalanceCache(cache),
		usecase.WithRecorder(m),
		usecase.WithAuthorizations(vaultRepo),
	)
	governanceUC := usecase.NewGovernanceUseCase(chain, provider, postingUC, txManager,
		entityRepo, ledgerRepo, accountRepo, outboxRepo, idGen, m, log)
	escrowUC := usecase.NewEscrowUseCase(txManager, escrowRepo, ledgerRepo, accountRepo, outboxRepo,
		governanceUC, idGen, m, log)
	ledgerUC := usecase.NewLedgerUseCase(txManager, entityRepo, ledgerRepo, accountRepo, journalRepo,
		outboxRepo, idGen, cache, log)
	entityUC := usecase.NewEntityUseCase(entityRepo, idGen)
	accountUC := usecase.NewAccountUseCase(accountRepo, entityRepo, idGen)

	// Journal stream
	publisher, closePublisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Stats:      m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	routerCfg := httpAdapter.RouterConfig{
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		EntityHandler:     handler.NewEntityHandler(entityUC, ledgerUC),
		AccountHandler:    handler.NewAccountHandler(accountUC, ledgerUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		JournalHandler:    handler.NewJournalHandler(postingUC, ledgerUC),
		GovernanceHandler: handler.NewGovernanceHandler(governanceUC),
		VaultHandler:      handler.NewVaultHandler(vaultUC),
		EscrowHandler:     handler.NewEscrowHandler(escrowUC),
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		Metrics:           m,
		MetricsHandler:    promhttp.Handler(),
		Logger:            log,
	}

	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			return errors.New("AUTH_ENABLED requires JWT_SECRET")
		}
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("operator authentication enabled")
	} else {
		log.Warn().Msg("operator authentication disabled, requests run as system admin")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHits(m.RateLimitHits)
		routerCfg.RateLimiter = limiter
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := relay.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(limiterIdle)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := limiter.CleanupLimiters(limiterIdle); n > 0 {
						log.Debug().Int("removed", n).Msg("pruned idle rate limiters")
					}
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newPublisher returns the NATS journal stream when NATS_URL is set and a
// log publisher otherwise. The returned func releases the connection.
func newPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if cfg.NATSURL == "" {
		return eventpublisher.NewLogPublisher(log), func() {}, nil
	}

	conn, err := eventpublisher.Connect(cfg.NATSURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Info().Str("url", conn.ConnectedUrl()).Msg("connected to nats")

	return eventpublisher.NewNATSPublisher(conn), func() { drain(conn, log) }, nil
}

func drain(conn *nats.Conn, log zerolog.Logger) {
	if err := conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("failed to drain nats connection")
	}
}
