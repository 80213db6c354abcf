package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/config"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/kafka"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/lock"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/metrics"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/persistence/memory"
	pgrepo "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/persistence/postgres"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/scheduler"
	grpcpresentation "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/presentation/grpc"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/presentation/rest"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/auth"
	pkgkafka "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/kafka"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/observability"
	pkgpostgres "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/postgres"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/tlsutil"
)

const (
	jobRefreshOverdue = "refresh-overdue"
	jobSweepDefaults  = "sweep-defaults"
)

func main() {
	cfg := config.Load()
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrateCommand(cfg, os.Args[2:]); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migration complete")
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("mlmsd exited with error", "error", err)
		os.Exit(1)
	}
}

// migrateCommand handles "mlmsd migrate [up|down]".
func migrateCommand(cfg config.Config, args []string) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	dsn := pgConfig(cfg).DSN()
	switch direction {
	case "up":
		return pkgpostgres.RunMigrations(dsn, cfg.DB.MigrationsPath)
	case "down":
		return pkgpostgres.RunMigrationsDown(dsn, cfg.DB.MigrationsPath)
	default:
		return fmt.Errorf("unknown migrate direction %q (want up or down)", direction)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting mlmsd",
		"storage", cfg.StorageDriver,
		"http_addr", cfg.HTTPAddr(),
		"grpc_addr", cfg.GRPCAddr(),
		"kafka", cfg.Kafka.Enabled,
		"redis", cfg.Redis.Enabled,
		"auth", cfg.Auth.Enabled,
	)

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	recorder, err := metrics.NewRecorder(meterProvider)
	if err != nil {
		return err
	}

	checks := map[string]rest.ReadinessCheck{}

	// Storage.
	deps := usecase.Dependencies{Metrics: recorder, Logger: logger}
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		deps.Clients, deps.Loans, deps.Snapshots = store.Clients(), store.Loans(), store
		checks["storage"] = store.Ping
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pkgpostgres.NewPool(dbCtx, pgConfig(cfg))
		dbCancel()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := pkgpostgres.RunMigrations(pgConfig(cfg).DSN(), cfg.DB.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		deps.Clients = pgrepo.NewClientRepo(pool)
		deps.Loans = pgrepo.NewLoanRepo(pool)
		deps.Snapshots = pgrepo.NewSnapshotReader(pool)
		checks["postgres"] = func(ctx context.Context) error {
			return pkgpostgres.HealthCheck(ctx, pool, time.Second)
		}
		logger.Info("connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)
	}

	// Events.
	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(pkgkafka.Config{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.ServiceName,
			TLS:           cfg.Kafka.TLS,
			SASLEnabled:   cfg.Kafka.SASLMechanism != "",
			SASLMechanism: cfg.Kafka.SASLMechanism,
			SASLUsername:  cfg.Kafka.SASLUsername,
			SASLPassword:  cfg.Kafka.SASLPassword,
		})
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }() //nolint:errcheck // flush on exit
		deps.Publisher = kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger)
	} else {
		deps.Publisher = kafka.NewLoggingPublisher(logger)
	}

	// Job locks.
	var locker port.JobLocker
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }() //nolint:errcheck // shutdown
		locker = lock.NewRedisLocker(rdb, logger)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		locker = lock.NewLocalLocker()
	}

	engine := usecase.NewEngine(deps)

	// Scheduled jobs.
	sched := scheduler.New(locker, cfg.Scheduler.LockTTL, logger)
	if err := sched.Register(jobRefreshOverdue, cfg.Scheduler.OverdueSpec, func(ctx context.Context) error {
		_, err := engine.RefreshOverdue.Execute(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Register(jobSweepDefaults, cfg.Scheduler.DefaultSweepSpec, func(ctx context.Context) error {
		_, err := engine.SweepDefaults.Execute(ctx)
		return err
	}); err != nil {
		return err
	}

	// Auth.
	var jwtSvc *auth.JWTService
	if cfg.Auth.Enabled {
		jwtCfg := auth.JWTConfig{Issuer: cfg.Auth.Issuer, Secret: cfg.Auth.Secret}
		if cfg.Auth.PublicKeyPath != "" {
			pem, err := auth.LoadKeyFromFile(cfg.Auth.PublicKeyPath)
			if err != nil {
				return err
			}
			jwtCfg.PublicKeyPEM = pem
		}
		if jwtSvc, err = auth.NewJWTService(jwtCfg); err != nil {
			return fmt.Errorf("init jwt: %w", err)
		}
	}

	// gRPC.
	grpcOpts := grpcpresentation.ServerOptions{JWT: jwtSvc}
	if cfg.TLS.Enabled() {
		creds, err := tlsutil.GRPCServerCredentials(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return err
		}
		grpcOpts.Creds = creds
	}
	grpcServer := grpcpresentation.NewServer(grpcpresentation.NewEngineHandler(engine, logger), logger, grpcOpts)

	// HTTP.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Engine:       engine,
			Health:       rest.NewHealthHandler(cfg.ServiceName, checks, logger),
			Metrics:      metricsHandler,
			JWT:          jwtSvc,
			RateLimitRPS: cfg.RateLimitRPS,
			Logger:       logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.TLS.Enabled() {
		tlsCfg, err := tlsutil.ServerConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return err
		}
		httpServer.TLSConfig = tlsCfg
	}

	// Start.
	errCh := make(chan error, 2)
	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr(), "tls", cfg.TLS.Enabled())
		var err error
		if cfg.TLS.Enabled() {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	sched.Start()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", "error", err)
	}

	logger.Info("mlmsd stopped")
	return runErr
}

func pgConfig(cfg config.Config) pkgpostgres.Config {
	return pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
	}
}
