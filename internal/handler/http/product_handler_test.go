package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supermarket-inventory/internal/client"
	"supermarket-inventory/internal/model"
	"supermarket-inventory/internal/repository"
	"supermarket-inventory/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newStoreServer runs the record store over an in-memory SQLite database.
func newStoreServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewGormProductRepository(db)
	require.NoError(t, repo.Migrate())

	mux := http.NewServeMux()
	NewStoreHandler(service.NewProductService(repo)).Register(mux)
	NewHealthHandler(service.NewHealthService(map[string]service.CheckFunc{
		"database": repo.Ping,
	})).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProxy(storeURL string) http.Handler {
	gateway := service.NewStoreGateway(client.NewHTTPClient(storeURL, 0))
	mux := http.NewServeMux()
	NewProductHandler(gateway).Register(mux)
	NewHealthHandler(service.NewHealthService(map[string]service.CheckFunc{
		"store": gateway.Ping,
	})).Register(mux)
	return mux
}

func closedServerURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProductBody(t *testing.T, rec *httptest.ResponseRecorder) model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

const applesPayload = `{"name":"Fresh Apples","price":2.99,"quantity":150,"category":"Fruits","imageUrl":"/placeholder.svg?height=60&width=60"}`

func TestProductHandler_CreateThenGetRoundTrip(t *testing.T) {
	proxy := newProxy(newStoreServer(t).URL)

	created := doRequest(t, proxy, http.MethodPost, "/api/products", applesPayload)
	require.Equal(t, http.StatusCreated, created.Code)
	p := decodeProductBody(t, created)
	require.NotEmpty(t, p.ID)

	got := doRequest(t, proxy, http.MethodGet, "/api/products/"+p.ID, "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, model.Product{
		ID:       p.ID,
		Name:     "Fresh Apples",
		Price:    2.99,
		Quantity: 150,
		Category: "Fruits",
		ImageURL: "/placeholder.svg?height=60&width=60",
	}, decodeProductBody(t, got))
}

func TestProductHandler_ListKeepsStoreOrder(t *testing.T) {
	proxy := newProxy(newStoreServer(t).URL)

	empty := doRequest(t, proxy, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())

	for _, name := range []string{"Milk", "Bread", "Eggs"} {
		rec := doRequest(t, proxy, http.MethodPost, "/api/products",
			`{"name":"`+name+`","price":1,"quantity":10,"category":"Dairy","imageUrl":"x"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, proxy, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 3)
	assert.Equal(t, "Milk", products[0].Name)
	assert.Equal(t, "Bread", products[1].Name)
	assert.Equal(t, "Eggs", products[2].Name)
}

func TestProductHandler_GetMissingIsNotFound(t *testing.T) {
	proxy := newProxy(newStoreServer(t).URL)

	rec := doRequest(t, proxy, http.MethodGet, "/api/products/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())
}

func TestProductHandler_GetCollapsesStoreErrorsToNotFound(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	}))
	defer store.Close()

	rec := doRequest(t, newProxy(store.URL), http.MethodGet, "/api/products/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())
}

func TestProductHandler_StoreUnreachable(t *testing.T) {
	proxy := newProxy(closedServerURL())

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		message string
	}{
		{"list", http.MethodGet, "/api/products", "", "Failed to fetch products"},
		{"create", http.MethodPost, "/api/products", applesPayload, "Failed to create product"},
		{"get", http.MethodGet, "/api/products/1", "", "Failed to fetch product"},
		{"replace", http.MethodPut, "/api/products/1", applesPayload, "Failed to update product"},
		{"delete", http.MethodDelete, "/api/products/1", "", "Failed to delete product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, proxy, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.message+`"}`, rec.Body.String())
		})
	}
}

func TestProductHandler_ReplacePathIDWins(t *testing.T) {
	proxy := newProxy(newStoreServer(t).URL)

	created := decodeProductBody(t, doRequest(t, proxy, http.MethodPost, "/api/products", applesPayload))

	rec := doRequest(t, proxy, http.MethodPut, "/api/products/"+created.ID,
		`{"id":"something-else","name":"Green Apples","price":3.49,"quantity":80,"category":"Fruits","imageUrl":"/a.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeProductBody(t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Green Apples", updated.Name)

	got := decodeProductBody(t, doRequest(t, proxy, http.MethodGet, "/api/products/"+created.ID, ""))
	assert.Equal(t, updated, got)
}

func TestProductHandler_ReplaceMissingRelaysStoreStatus(t *testing.T) {
	proxy := newProxy(newStoreServer(t).URL)

	rec := doRequest(t, proxy, http.MethodPut, "/api/products/999", applesPayload)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to update product"}`, rec.Body.String())
}

func TestProductHandler_DeleteThenGet(t *testing.T) {
	proxy := newProxy(newStoreServer(t).URL)

	created := decodeProductBody(t, doRequest(t, proxy, http.MethodPost, "/api/products", applesPayload))

	rec := doRequest(t, proxy, http.MethodDelete, "/api/products/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = doRequest(t, proxy, http.MethodGet, "/api/products/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, proxy, http.MethodDelete, "/api/products/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to delete product"}`, rec.Body.String())
}

func TestProductHandler_InvalidPayload(t *testing.T) {
	var hits int
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer store.Close()
	proxy := newProxy(store.URL)

	for _, body := range []string{`[1,2]`, `null`, `not json`, `"text"`} {
		rec := doRequest(t, proxy, http.MethodPost, "/api/products", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Invalid request payload"}`, rec.Body.String())

		rec = doRequest(t, proxy, http.MethodPut, "/api/products/1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Zero(t, hits)
}

func TestProductHandler_RelaysListAndCreateVerbatim(t *testing.T) {
	var cacheControl []string
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheControl = append(cacheControl, r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"message":"maintenance"}`))
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write(body)
		}
	}))
	defer store.Close()
	proxy := newProxy(store.URL)

	rec := doRequest(t, proxy, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"message":"maintenance"}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = doRequest(t, proxy, http.MethodPost, "/api/products", `{"name":"Echo","extra":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"name":"Echo","extra":true}`, rec.Body.String())

	assert.Equal(t, []string{"no-store", "no-store"}, cacheControl)
}

func TestProductHandler_ListInvalidStoreBody(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer store.Close()

	rec := doRequest(t, newProxy(store.URL), http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch products"}`, rec.Body.String())
}

func TestHealthHandler(t *testing.T) {
	up := doRequest(t, newProxy(newStoreServer(t).URL), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, up.Code)
	assert.JSONEq(t, `{"status":"UP","data":{"store":"UP"}}`, up.Body.String())

	down := doRequest(t, newProxy(closedServerURL()), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusInternalServerError, down.Code)
	assert.JSONEq(t, `{"status":"DOWN","data":{"store":"DOWN"}}`, down.Body.String())
}

func TestStoreHandler_Semantics(t *testing.T) {
	store := newStoreServer(t)
	ctx := context.Background()
	c := client.NewHTTPClient(store.URL, 0)

	resp, err := c.PostWithResponse("/products", `{"name":"Bad","price":-1,"quantity":1}`, client.RequestOptions{Context: ctx})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = c.PostWithResponse("/products", `[]`, client.RequestOptions{Context: ctx})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// categories are a form concern; the store keeps whatever it is given
	resp, err = c.PostWithResponse("/products", `{"name":"Soap","price":1,"quantity":1,"category":"Household","imageUrl":"x"}`, client.RequestOptions{Context: ctx})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = c.PostWithResponse("/products", `{"name":"Zero stock","price":0,"quantity":0,"category":"Snacks","imageUrl":"x"}`, client.RequestOptions{Context: ctx})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := resp.Data.(map[string]interface{})["id"].(string)

	resp, err = c.DeleteWithResponse("/products/"+id, client.RequestOptions{Context: ctx})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, string(resp.RawBody))

	resp, err = c.GetWithResponse("/products/"+id, client.RequestOptions{Context: ctx})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = c.GetWithResponse("/healthz", client.RequestOptions{Context: ctx})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"UP","data":{"database":"UP"}}`, string(resp.RawBody))
}
