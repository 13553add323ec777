package logger

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// MaxBodyLogged caps how much of a body is read for logging. Product
// payloads are far smaller; anything beyond 1 MiB is truncated.
const MaxBodyLogged = 1 << 20

// binarySample is how many bytes of a non-text body end up in the log.
const binarySample = 256

// captureBody reads up to MaxBodyLogged bytes and puts a fresh reader back so
// the handler still sees the full payload.
func captureBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyLogged))
	if err != nil {
		return nil
	}
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), rest), rest}
	return body
}

func bodyAttrs(contentType string, body []byte) []slog.Attr {
	if len(body) == 0 {
		return nil
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return jsonAttrs("http.body", body)
	case mediaType == "application/x-www-form-urlencoded":
		return queryAttrs("http.body.", body)
	case strings.HasPrefix(mediaType, "text/"):
		return []slog.Attr{slog.String("http.body", redact(string(body)))}
	case len(body) <= binarySample:
		return []slog.Attr{slog.String("http.body.base64", base64.StdEncoding.EncodeToString(body))}
	default:
		return []slog.Attr{
			slog.Int("http.body.size_bytes", len(body)),
			slog.String("http.body.sample_base64", base64.StdEncoding.EncodeToString(body[:binarySample])),
		}
	}
}

func queryAttrs(prefix string, raw []byte) []slog.Attr {
	vals, err := url.ParseQuery(string(raw))
	if err != nil {
		return []slog.Attr{slog.String(prefix+"error", err.Error())}
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(prefix+k, redact(strings.Join(vals[k], ","))))
	}
	return attrs
}

func requestLine(direction string, r *http.Request) []slog.Attr {
	return []slog.Attr{
		slog.String("http.direction", direction),
		slog.String("http.remote_addr", r.RemoteAddr),
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
	}
}

// LogHTTPRequest describes an incoming request. The body is read and restored.
func LogHTTPRequest(r *http.Request, direction string) []slog.Attr {
	attrs := requestLine(direction, r)
	attrs = append(attrs, pickKeys("http.header.", r.Header)...)
	if r.URL.RawQuery != "" {
		attrs = append(attrs, queryAttrs("http.query.", []byte(r.URL.RawQuery))...)
	}
	return append(attrs, bodyAttrs(r.Header.Get("Content-Type"), captureBody(r))...)
}

// LogHTTPResponse describes the response written for req. body holds what the
// middleware buffered.
func LogHTTPResponse(req *http.Request, header http.Header, status int, body io.Reader, duration time.Duration, direction string) []slog.Attr {
	attrs := append(requestLine(direction, req),
		slog.Int("http.status", status),
		slog.Int64("duration_ms", duration.Milliseconds()),
	)
	attrs = append(attrs, pickKeys("http.header.", header)...)
	if body != nil {
		if b, err := io.ReadAll(body); err == nil {
			attrs = append(attrs, bodyAttrs(header.Get("Content-Type"), b)...)
		}
	}
	return attrs
}

// LogUpstreamResponse describes a reply received from the record store or proxy.
func LogUpstreamResponse(method, target string, status int, body []byte, contentType string, duration time.Duration) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("http.direction", "outgoing::response"),
		slog.String("http.method", method),
		slog.String("http.url", target),
		slog.Int("http.status", status),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}
	return append(attrs, bodyAttrs(contentType, body)...)
}
