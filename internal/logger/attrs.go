package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

const redacted = "***"

// loggedKeys lists the HTTP headers and gRPC metadata keys worth keeping.
// A true value means the key is kept but its value is masked.
var loggedKeys = map[string]bool{
	"content-type":   false,
	"content-length": false,
	"cache-control":  false,
	"user-agent":     false,
	"x-trace-id":     false,
	"traceparent":    false,
	"authorization":  true,
	"set-cookie":     true,
	"cookie":         true,
}

// pickKeys filters a header-like map through loggedKeys. Output is sorted so
// two entries for the same request diff cleanly.
func pickKeys(prefix string, src map[string][]string) []slog.Attr {
	names := make([]string, 0, len(src))
	values := make(map[string]string, len(src))
	for k, vs := range src {
		lower := strings.ToLower(k)
		mask, ok := loggedKeys[lower]
		if !ok || len(vs) == 0 {
			continue
		}
		v := strings.Join(vs, ", ")
		if mask {
			v = redacted
		}
		names = append(names, lower)
		values[lower] = v
	}
	sort.Strings(names)

	attrs := make([]slog.Attr, 0, len(names))
	for _, n := range names {
		attrs = append(attrs, slog.String(prefix+n, values[n]))
	}
	return attrs
}

func jsonAttrs(prefix string, b []byte) []slog.Attr {
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return []slog.Attr{slog.String(prefix, redact(string(b)))}
	}
	attrs := make([]slog.Attr, 0, 8)
	flattenJSON(prefix, data, &attrs)
	return attrs
}

// flattenJSON keeps arrays short: their length plus first and last element.
// A product listing can be long and only its shape matters in logs.
func flattenJSON(prefix string, v any, dst *[]slog.Attr) {
	switch t := v.(type) {
	case map[string]any:
		for k, v2 := range t {
			flattenJSON(prefix+"."+k, v2, dst)
		}
	case []any:
		n := len(t)
		*dst = append(*dst, slog.Int(prefix+".length", n))
		if n >= 1 {
			flattenJSON(prefix+".0", t[0], dst)
		}
		if n > 1 {
			flattenJSON(prefix+"."+strconv.Itoa(n-1), t[n-1], dst)
		}
	case string:
		*dst = append(*dst, slog.String(prefix, redact(t)))
	case float64:
		*dst = append(*dst, slog.Float64(prefix, t))
	case bool:
		*dst = append(*dst, slog.Bool(prefix, t))
	case nil:
	default:
		*dst = append(*dst, slog.String(prefix, fmt.Sprint(t)))
	}
}

func redact(s string) string {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
		return redacted
	}
	return s
}
