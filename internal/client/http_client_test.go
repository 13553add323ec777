package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_PostWithResponse(t *testing.T) {
	var gotHeader http.Header
	var gotBody, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid request payload"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", 0)
	c.SetDefaultHeader("Cache-Control", "no-store")

	resp, err := c.PostWithResponse("/products", map[string]any{"name": "Milk"}, RequestOptions{
		Context: context.Background(),
		Headers: map[string]string{"X-Extra": "1"},
		Query:   url.Values{"q": {"x"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, map[string]interface{}{"error": "Invalid request payload"}, resp.Data)

	assert.Equal(t, "no-store", gotHeader.Get("Cache-Control"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "1", gotHeader.Get("X-Extra"))
	assert.NotEmpty(t, gotHeader.Get("X-Trace-ID"))
	assert.JSONEq(t, `{"name":"Milk"}`, gotBody)
	assert.Equal(t, "q=x", gotQuery)
}

func TestHTTPClient_RawBytesAreSentVerbatim(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	payload := []byte(`{ "price" : 2.50 }`)
	_, err := NewHTTPClient(srv.URL, 0).PostWithResponse("/products", payload)
	require.NoError(t, err)
	assert.Equal(t, string(payload), gotBody)
}

func TestHTTPClient_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL, 0).GetWithResponse("/")
	require.NoError(t, err)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "plain text", string(resp.RawBody))

	_, err = Decode[map[string]any](resp)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode(t *testing.T) {
	resp := &Response[interface{}]{StatusCode: 200, RawBody: []byte(`{"id":"7","quantity":3}`)}

	out, err := Decode[struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}](resp)
	require.NoError(t, err)
	assert.Equal(t, "7", out.ID)
	assert.Equal(t, 3, out.Quantity)
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	_, err := NewHTTPClient(target, 0).DeleteWithResponse("/products/1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDecode))
}

func TestHTTPClient_AbsoluteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"` + r.URL.Path + `"`))
	}))
	defer srv.Close()

	resp, err := NewHTTPClient("http://unused.invalid", 0).GetWithResponse(srv.URL + "/direct")
	require.NoError(t, err)
	assert.Equal(t, "/direct", resp.Data)
}
