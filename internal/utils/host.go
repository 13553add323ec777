package utils

import (
	"encoding/json"
	"os"
	"sync"
)

// Hostname is resolved once per process and tags every trace-correlated log line.
var Hostname = sync.OnceValue(func() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "unknown"
	}
	return h
})

// ToJSONString renders v on one line for terminal output. Values that cannot
// be marshalled print as their error.
func ToJSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}
