package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"supermarket-inventory/internal/dashboard"
	"supermarket-inventory/internal/notify"
	"supermarket-inventory/internal/sdk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is written by the command and by the toast printer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func fakeProxy(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"1","name":"Fresh Apples","price":2,"quantity":3,"category":"Fruits","imageUrl":"/a.png"},
			{"id":"2","name":"Whole Milk","price":5,"quantity":100,"category":"Dairy","imageUrl":"/m.png"}
		]`))
	})
	mux.HandleFunc("DELETE /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Failed to delete product"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_List(t *testing.T) {
	proxy := fakeProxy(t)
	out, errOut := &syncBuffer{}, &syncBuffer{}

	code := run([]string{"-proxy", proxy.URL, "list"}, out, errOut)

	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Manage your 2 products efficiently")
	assert.Contains(t, out.String(), "Total value: $506.00")
	assert.Contains(t, out.String(), "Low stock: 1")
	assert.Contains(t, out.String(), "Fresh Apples")
	assert.Contains(t, out.String(), "$2.00")
}

func TestRun_ListStoreDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	out, errOut := &syncBuffer{}, &syncBuffer{}

	code := run([]string{"-proxy", srv.URL, "list"}, out, errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Failed to load products. Please make sure the record store is running")
}

func TestRun_AddValidation(t *testing.T) {
	proxy := fakeProxy(t)
	out, errOut := &syncBuffer{}, &syncBuffer{}

	code := run([]string{"-proxy", proxy.URL, "add", "-name", "Milk", "-price", "0"}, out, errOut)

	assert.Equal(t, 2, code)
	assert.Contains(t, out.String(), "price: Valid price is required")
	assert.Contains(t, out.String(), "category: Category is required")
	assert.NotContains(t, out.String(), "name:")
}

func TestRun_Delete(t *testing.T) {
	proxy := fakeProxy(t)
	out, errOut := &syncBuffer{}, &syncBuffer{}

	code := run([]string{"-proxy", proxy.URL, "delete", "-id", "1"}, out, errOut)

	require.Equal(t, 0, code, errOut.String())
	text := out.String()
	toast := strings.Index(text, "✔ Fresh Apples has been deleted successfully")
	table := strings.Index(text, "Manage your 1 products efficiently")
	require.NotEqual(t, -1, toast, text)
	require.NotEqual(t, -1, table, text)
	assert.Less(t, toast, table, "toast is printed before the redrawn dashboard")
}

func TestRun_DeleteFailure(t *testing.T) {
	proxy := fakeProxy(t)
	out, errOut := &syncBuffer{}, &syncBuffer{}

	code := run([]string{"-proxy", proxy.URL, "delete", "-id", "9"}, out, errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Failed to delete product. Please try again.")
}

func TestRun_Usage(t *testing.T) {
	out, errOut := &syncBuffer{}, &syncBuffer{}

	assert.Equal(t, 2, run(nil, out, errOut))
	assert.Equal(t, 2, run([]string{"bogus"}, out, errOut))
	assert.Contains(t, errOut.String(), "Usage: dashboard")
}

func TestRender_FailedRefreshKeepsProducts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to fetch products"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"1","name":"Fresh Apples","price":2,"quantity":3,"category":"Fruits","imageUrl":"/a.png"}]`))
	}))
	defer srv.Close()

	out := &syncBuffer{}
	a := &app{api: sdk.New(srv.URL, 0), center: notify.NewCenter(), out: out}
	a.toasts = a.center.Subscribe(8)
	defer a.closeToasts()

	ctx := context.Background()
	ctrl, table := a.newDashboard()
	ctrl.Mount(ctx)
	require.Error(t, ctrl.FetchProducts(ctx))

	a.render(ctrl, table)

	text := out.String()
	assert.Contains(t, text, "Connection Error: "+dashboard.LoadErrorMessage)
	assert.Contains(t, text, "Products: 1")
	assert.Contains(t, text, "Manage your 1 products efficiently")
	assert.Contains(t, text, "Fresh Apples")
	assert.NotContains(t, text, "No products yet")
}

func TestRender_EmptyInventory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	out, errOut := &syncBuffer{}, &syncBuffer{}
	code := run([]string{"-proxy", srv.URL, "list"}, out, errOut)

	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "No products found. Add your first product to get started!")
	assert.Contains(t, out.String(), "No products yet")
	assert.NotContains(t, out.String(), "Connection Error")
}
