package logger

import (
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var compactJSON = protojson.MarshalOptions{EmitUnpopulated: true}

func messageAttrs(prefix string, m any) []slog.Attr {
	switch msg := m.(type) {
	case nil:
		return nil
	case *healthpb.HealthCheckRequest:
		// an empty service name asks about the server as a whole
		service := msg.GetService()
		if service == "" {
			service = "(server)"
		}
		return []slog.Attr{slog.String(prefix+".service", service)}
	case *healthpb.HealthCheckResponse:
		return []slog.Attr{slog.String(prefix+".status", msg.GetStatus().String())}
	case proto.Message:
		if b, err := compactJSON.Marshal(msg); err == nil {
			return jsonAttrs(prefix, b)
		}
	}
	return []slog.Attr{slog.String(prefix, redact(fmt.Sprint(m)))}
}

// LogGRPCRequest describes a unary call. fullMethod has the form
// "/package.Service/Method".
func LogGRPCRequest(fullMethod, remote string, md metadata.MD, req any, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("grpc.direction", direction),
		slog.String("grpc.method", fullMethod),
		slog.String("grpc.remote", remote),
	}
	attrs = append(attrs, pickKeys("grpc.metadata.", md)...)
	return append(attrs, messageAttrs("grpc.request", req)...)
}

func LogGRPCResponse(fullMethod string, code codes.Code, resp any, duration time.Duration, direction string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("grpc.direction", direction),
		slog.String("grpc.method", fullMethod),
		slog.String("grpc.code", code.String()),
		slog.Int64("grpc.duration_ms", duration.Milliseconds()),
	}
	return append(attrs, messageAttrs("grpc.response", resp)...)
}
