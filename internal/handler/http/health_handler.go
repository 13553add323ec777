package http

import (
	"log/slog"
	"net/http"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/service"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var HttpHealthHandlerTracer = otel.Tracer("HttpHealthHandler")

// HealthBody is the /healthz answer: the overall status plus one entry per
// dependency, e.g. {"status":"UP","data":{"store":"UP"}}.
type HealthBody struct {
	Status string            `json:"status"`
	Data   map[string]string `json:"data"`
}

// HealthHandler serves the liveness probe of the proxy and of the record store.
type HealthHandler struct {
	service *service.HealthService
}

func NewHealthHandler(svc *service.HealthService) *HealthHandler {
	return &HealthHandler{service: svc}
}

func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Check)
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpHealthHandlerTracer.Start(r.Context(), "HttpHealthHandler.Check")
	defer span.End()

	result := h.service.Check(ctx)
	span.SetAttributes(attribute.String("health.status", result.Status))
	attrs := make([]slog.Attr, 0, len(result.Components))
	for name, st := range result.Components {
		span.SetAttributes(attribute.String("health.component."+name, st))
		attrs = append(attrs, slog.String("health."+name, st))
	}

	code := http.StatusOK
	if result.Status != service.StatusUp {
		code = http.StatusInternalServerError
		logger.Warn(ctx, "Health check failing", attrs...)
	}
	writeJSON(w, code, HealthBody{Status: result.Status, Data: result.Components})
}
