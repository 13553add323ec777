package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/service"

	"go.opentelemetry.io/otel"
)

// ProductHandler is the proxy in front of the record store. It exposes
// /api/products and translates store outcomes into the client contract.
type ProductHandler struct {
	gateway *service.StoreGateway
}

var HttpProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(gateway *service.StoreGateway) *ProductHandler {
	return &ProductHandler{
		gateway: gateway,
	}
}

func (h *ProductHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.List)
	mux.HandleFunc("POST /api/products", h.Create)
	mux.HandleFunc("GET /api/products/{id}", h.GetByID)
	mux.HandleFunc("PUT /api/products/{id}", h.Replace)
	mux.HandleFunc("DELETE /api/products/{id}", h.Delete)
}

// List relays the store's list response verbatim, status included.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.List")
	defer span.End()
	logger.Debug(ctx, "HttpProductHandler")

	resp, err := h.gateway.List(ctx)
	if err != nil || !json.Valid(resp.RawBody) {
		logger.Error(ctx, "Failed to fetch products", errAttr(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	writeRaw(w, resp.StatusCode, resp.RawBody)
}

// Create forwards the payload unchanged and relays the store's answer.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Create")
	defer span.End()
	logger.Debug(ctx, "HttpProductHandler")

	raw, _, err := readObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.gateway.Create(ctx, raw)
	if err != nil || !json.Valid(resp.RawBody) {
		logger.Error(ctx, "Failed to create product", errAttr(err))
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	writeRaw(w, resp.StatusCode, resp.RawBody)
}

// GetByID collapses every store failure into 404.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.GetByID")
	defer span.End()
	logger.Debug(ctx, "HttpProductHandler")

	id := r.PathValue("id")
	resp, err := h.gateway.Get(ctx, id)
	if err != nil {
		logger.Error(ctx, "Failed to fetch product", slog.String("id", id), errAttr(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	if !resp.IsSuccess() {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if !json.Valid(resp.RawBody) {
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	writeRaw(w, http.StatusOK, resp.RawBody)
}

// Replace sends a full record to the store. The path id overrides any id
// carried in the payload.
func (h *ProductHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Replace")
	defer span.End()
	logger.Debug(ctx, "HttpProductHandler")

	id := r.PathValue("id")
	_, fields, err := readObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	fields["id"] = id

	resp, err := h.gateway.Replace(ctx, id, fields)
	if err != nil {
		logger.Error(ctx, "Failed to update product", slog.String("id", id), errAttr(err))
		writeError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	if !resp.IsSuccess() {
		writeError(w, resp.StatusCode, "Failed to update product")
		return
	}
	if !json.Valid(resp.RawBody) {
		writeError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	writeRaw(w, http.StatusOK, resp.RawBody)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Delete")
	defer span.End()
	logger.Debug(ctx, "HttpProductHandler")

	id := r.PathValue("id")
	resp, err := h.gateway.Delete(ctx, id)
	if err != nil {
		logger.Error(ctx, "Failed to delete product", slog.String("id", id), errAttr(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if !resp.IsSuccess() {
		writeError(w, resp.StatusCode, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func errAttr(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "invalid upstream body")
	}
	return slog.String("error", err.Error())
}
