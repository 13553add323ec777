package logger

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"
)

const defaultJob = "supermarket-inventory"

// lokiPush is the body of POST /loki/api/v1/push.
type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Labels map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func newLokiPush(job, level, message string, attrs []slog.Attr, at time.Time) lokiPush {
	if job == "" {
		job = defaultJob
	}
	return lokiPush{Streams: []lokiStream{{
		Labels: map[string]string{"job": job, "level": level},
		Values: [][2]string{{
			strconv.FormatInt(at.UnixNano(), 10),
			lokiLine(level, message, attrs, at),
		}},
	}}}
}

// lokiLine renders one entry the same way the local JSON handler does, so
// queries work against either sink.
func lokiLine(level, message string, attrs []slog.Attr, at time.Time) string {
	fields := make(map[string]any, len(attrs)+3)
	for _, a := range attrs {
		fields[a.Key] = a.Value.Resolve().Any()
	}
	fields["time"] = at.UTC().Format(time.RFC3339Nano)
	fields["level"] = level
	fields["msg"] = message

	b, err := json.Marshal(fields)
	if err != nil {
		return message
	}
	return string(b)
}
