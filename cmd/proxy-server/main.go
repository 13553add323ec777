package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"supermarket-inventory/internal/client"
	"supermarket-inventory/internal/config"
	handler "supermarket-inventory/internal/handler/http"
	"supermarket-inventory/internal/logger"
	middleware_http "supermarket-inventory/internal/middleware/http"
	"supermarket-inventory/internal/service"
	"supermarket-inventory/internal/tracer"
	"supermarket-inventory/internal/version"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	globalCtx := context.Background()
	cfg := config.Instance()
	if cfg.AppPort == "" {
		cfg.AppPort = "3000"
	}

	logger.Info(globalCtx, cfg.AppName,
		slog.String("role", "proxy"),
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

	// Wiring
	storeClient := client.NewHTTPClient(cfg.StoreHTTP, time.Duration(cfg.StoreTimeoutMs)*time.Millisecond)
	gateway := service.NewStoreGateway(storeClient)
	productHandler := handler.NewProductHandler(gateway)
	healthHandler := handler.NewHealthHandler(service.NewHealthService(map[string]service.CheckFunc{
		"store": gateway.Ping,
	}))

	// Routing
	mux := http.NewServeMux()
	productHandler.Register(mux)
	healthHandler.Register(mux)

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           middleware_http.TraceMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(globalCtx, "HTTP server running",
			slog.String("addr", server.Addr),
			slog.String("store", cfg.StoreHTTP),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(globalCtx, "Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		globalCtx,
		time.Duration(cfg.ShutdownTimeoutMs)*time.Millisecond,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info(ctx, "Shutting down HTTP server")
				return server.Shutdown(ctx)
			},
			"tracer": func(ctx context.Context) error {
				return shutdownTracer(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info(globalCtx, "Proxy exited", slog.Int("code", exitCode))
	os.Exit(exitCode)
}
