package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"supermarket-inventory/internal/logger"
	"supermarket-inventory/internal/model"
	"supermarket-inventory/internal/repository"
	"supermarket-inventory/internal/service"

	"go.opentelemetry.io/otel"
)

// StoreHandler serves the record store's /products collection with
// json-server semantics.
type StoreHandler struct {
	service *service.ProductService
}

var HttpStoreHandlerTracer = otel.Tracer("HttpStoreHandler")

func NewStoreHandler(service *service.ProductService) *StoreHandler {
	return &StoreHandler{
		service: service,
	}
}

func (h *StoreHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.GetAll)
	mux.HandleFunc("POST /products", h.Create)
	mux.HandleFunc("GET /products/{id}", h.GetByID)
	mux.HandleFunc("PUT /products/{id}", h.Replace)
	mux.HandleFunc("DELETE /products/{id}", h.Delete)
}

func (h *StoreHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, struct{}{})
	case errors.Is(err, service.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(r.Context(), "Store operation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeProduct(r *http.Request) (*model.Product, error) {
	raw, _, err := readObject(r)
	if err != nil {
		return nil, err
	}
	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (h *StoreHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpStoreHandlerTracer.Start(r.Context(), "HttpStoreHandler.GetAll")
	defer span.End()

	products, err := h.service.GetAll(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpStoreHandlerTracer.Start(r.Context(), "HttpStoreHandler.Create")
	defer span.End()

	p, err := decodeProduct(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.service.Create(ctx, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *StoreHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpStoreHandlerTracer.Start(r.Context(), "HttpStoreHandler.GetByID")
	defer span.End()

	product, err := h.service.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *StoreHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpStoreHandlerTracer.Start(r.Context(), "HttpStoreHandler.Replace")
	defer span.End()

	p, err := decodeProduct(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := h.service.Replace(ctx, r.PathValue("id"), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpStoreHandlerTracer.Start(r.Context(), "HttpStoreHandler.Delete")
	defer span.End()

	if err := h.service.Delete(ctx, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
