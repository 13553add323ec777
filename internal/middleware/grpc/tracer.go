package middleware_grpc

import (
	"context"
	"log/slog"
	"time"

	"supermarket-inventory/internal/logger"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var tracer = otel.Tracer("GrpcMiddleware")

// MetadataCarrier adapts gRPC metadata to the OpenTelemetry TextMapCarrier.
type MetadataCarrier metadata.MD

func (c MetadataCarrier) Get(key string) string {
	v := metadata.MD(c).Get(key)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (c MetadataCarrier) Set(key string, value string) {
	metadata.MD(c).Set(key, value)
}

func (c MetadataCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}

// UnaryTracingInterceptor continues the caller's trace and logs each call
// and its outcome.
func UnaryTracingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		ctx = otel.GetTextMapPropagator().Extract(ctx, MetadataCarrier(md.Copy()))

		ctx, span := tracer.Start(ctx, info.FullMethod)
		defer span.End()

		var remoteAddr string
		if p, ok := peer.FromContext(ctx); ok {
			remoteAddr = p.Addr.String()
		}

		logger.Info(ctx, "GRPC", logger.LogGRPCRequest(info.FullMethod, remoteAddr, md, req, "incoming::request")...)

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, code.String())
		}

		attrs := logger.LogGRPCResponse(info.FullMethod, code, resp, time.Since(start), "incoming::response")
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		logger.Info(ctx, "GRPC", attrs...)

		return resp, err
	}
}

// UnaryClientInterceptor injects the trace context into outgoing metadata.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx, span := tracer.Start(ctx, method)
		defer span.End()

		md, ok := metadata.FromOutgoingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}
		otel.GetTextMapPropagator().Inject(ctx, MetadataCarrier(md))
		ctx = metadata.NewOutgoingContext(ctx, md)

		logger.Debug(ctx, "GRPC", logger.LogGRPCRequest(method, cc.Target(), md, req, "outgoing::request")...)

		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, status.Code(err).String())
		}
		logger.Debug(ctx, "GRPC", logger.LogGRPCResponse(method, status.Code(err), reply, time.Since(start), "outgoing::response")...)
		return err
	}
}
