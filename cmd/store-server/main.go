package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/database"
	handler "supermarket-inventory/internal/handler/http"
	"supermarket-inventory/internal/logger"
	middleware_grpc "supermarket-inventory/internal/middleware/grpc"
	middleware_http "supermarket-inventory/internal/middleware/http"
	"supermarket-inventory/internal/repository"
	"supermarket-inventory/internal/service"
	"supermarket-inventory/internal/tracer"
	"supermarket-inventory/internal/version"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const healthInterval = 5 * time.Second

// openRepository connects the configured backend and returns the repository
// with a function releasing the connection.
func openRepository(ctx context.Context, cfg *config.Config) (repository.ProductRepository, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite, config.DriverPostgres:
		dsn := cfg.SQLitePath
		if cfg.StoreDriver == config.DriverPostgres {
			cfg.Require("POSTGRES_DSN")
			dsn = cfg.PostgresDSN
		}
		db, err := database.OpenGorm(cfg.StoreDriver, dsn)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewGormProductRepository(db)
		if err := repo.Migrate(); err != nil {
			return nil, nil, err
		}
		return repo, func(context.Context) error { return database.CloseGorm(db) }, nil
	default:
		cfg.Require("MONGO_URI", "MONGO_DB_NAME")
		m, err := database.MongoInstance(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongoProductRepository(m.Client, m.Database), m.Close, nil
	}
}

// watchHealth mirrors the database ping into the gRPC health status.
func watchHealth(ctx context.Context, hs *health.Server, ping service.CheckFunc) {
	update := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		status := healthpb.HealthCheckResponse_SERVING
		if err := ping(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			logger.Warn(ctx, "Database ping failed", slog.String("error", err.Error()))
		}
		hs.SetServingStatus("", status)
	}

	update()
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

func main() {
	globalCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	cfg := config.Instance()
	if cfg.AppPort == "" {
		cfg.AppPort = "3001"
	}

	logger.Info(globalCtx, cfg.AppName,
		slog.String("role", "store"),
		slog.String("driver", cfg.StoreDriver),
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
		slog.Bool("production", cfg.IsProduction()),
	)

	// Initialize telemetry (OpenTelemetry + Pyroscope)
	shutdownTracer, err := tracer.Instance(globalCtx)
	if err != nil {
		logger.Warn(globalCtx, "Tracing disabled", slog.String("error", err.Error()))
	}

	repo, closeRepo, err := openRepository(globalCtx, cfg)
	if err != nil {
		logger.Error(globalCtx, "Failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wiring
	productService := service.NewProductService(repo)
	storeHandler := handler.NewStoreHandler(productService)
	healthHandler := handler.NewHealthHandler(service.NewHealthService(map[string]service.CheckFunc{
		"database": repo.Ping,
	}))

	mux := http.NewServeMux()
	storeHandler.Register(mux)
	healthHandler.Register(mux)

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           middleware_http.TraceMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health endpoint
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware_grpc.UnaryTracingInterceptor()),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.StoreGRPCPort)
	if err != nil {
		logger.Error(globalCtx, "Failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go watchHealth(globalCtx, healthServer, repo.Ping)

	go func() {
		logger.Info(globalCtx, "gRPC health server running", slog.String("port", cfg.StoreGRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error(globalCtx, "Failed to serve gRPC", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	go func() {
		logger.Info(globalCtx, "HTTP server running", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(globalCtx, "Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		time.Duration(cfg.ShutdownTimeoutMs)*time.Millisecond,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return httpServer.Shutdown(ctx)
			},
			"grpc-server": func(ctx context.Context) error {
				stopWatch()
				healthServer.Shutdown()
				grpcServer.GracefulStop()
				return nil
			},
			"database": func(ctx context.Context) error {
				return closeRepo(ctx)
			},
			"tracer": func(ctx context.Context) error {
				return shutdownTracer(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info(context.Background(), "Store exited", slog.Int("code", exitCode))
	os.Exit(exitCode)
}
