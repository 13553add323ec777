package tracer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/logger"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// ShutdownFunc flushes pending spans and stops the profiler.
type ShutdownFunc func(ctx context.Context) error

var (
	once         sync.Once
	shutdownFunc ShutdownFunc = func(context.Context) error { return nil }
	initErr      error
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}()

// newExporter picks the span exporter: OTLP when a collector is configured,
// stdout when TRACE_STDOUT is set, none otherwise.
func newExporter(globalCtx context.Context, cfg *config.Config) (trace.SpanExporter, error) {
	switch {
	case cfg.RemoteTraceRpcURI != "":
		return otlptracegrpc.New(globalCtx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.RemoteTraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
		)
	case cfg.TraceStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, nil
	}
}

// Instance installs the global tracer provider and propagators once.
// Profiling starts only when REMOTE_PROFILING_HTTP_URI is set.
func Instance(globalCtx context.Context) (ShutdownFunc, error) {
	once.Do(func() {
		cfg := config.Instance()
		log := logger.Instance()

		exp, err := newExporter(globalCtx, cfg)
		if err != nil {
			log.Error("Failed to create span exporter", slog.String("error", err.Error()))
			initErr = err
			return
		}

		res, err := resource.New(globalCtx,
			resource.WithAttributes(
				semconv.ServiceNameKey.String(cfg.AppName),
				attribute.String("env", cfg.Env),
			),
		)
		if err != nil {
			log.Error("Failed to create resource", slog.String("error", err.Error()))
			initErr = err
			return
		}

		opts := []trace.TracerProviderOption{trace.WithResource(res)}
		if exp != nil {
			opts = append(opts, trace.WithBatcher(exp))
		}
		tp := trace.NewTracerProvider(opts...)

		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

		var profiler *pyroscope.Profiler
		if cfg.RemoteProfilingHttpURI != "" {
			profiler, err = pyroscope.Start(pyroscope.Config{
				ApplicationName: cfg.AppName,
				ServerAddress:   cfg.RemoteProfilingHttpURI,
				Logger:          pyroLogrus,
			})
			if err != nil {
				log.Error("Pyroscope failed to start", slog.String("error", err.Error()))
			} else {
				log.Info("Pyroscope started successfully")
			}
		}

		if profiler != nil {
			// span ids are attached to profiles only when profiling runs
			otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
		} else {
			otel.SetTracerProvider(tp)
		}

		log.Info("OpenTelemetry Tracer initialized", slog.Bool("exporting", exp != nil))

		shutdownFunc = func(ctx context.Context) error {
			var errs []error
			if err := tp.Shutdown(ctx); err != nil {
				log.Error("Error shutting down tracer provider", slog.String("error", err.Error()))
				errs = append(errs, err)
			}
			if profiler != nil {
				if err := profiler.Stop(); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		}
	})

	return shutdownFunc, initErr
}
