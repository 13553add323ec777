package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxPayloadBytes = 1 << 20

var errNotObject = errors.New("payload is not a JSON object")

// ErrorBody is the failure envelope shared by the proxy and the store.
type ErrorBody struct {
	Error string `json:"error"`
}

func setNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	setNoStore(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw relays a JSON body that was already encoded upstream.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	setNoStore(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorBody{Error: msg})
}

// readObject reads the request body and requires a JSON object.
// It returns the raw bytes alongside the decoded fields.
func readObject(r *http.Request) ([]byte, map[string]interface{}, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return nil, nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, err
	}
	if fields == nil {
		return nil, nil, errNotObject
	}
	return raw, fields, nil
}
