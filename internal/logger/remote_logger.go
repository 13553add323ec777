package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// remoteQueue bounds how many entries wait for the Loki push. When the
// endpoint is slow, further entries are dropped rather than piling up.
const remoteQueue = 256

type remoteEntry struct {
	level   string
	message string
	attrs   []slog.Attr
	at      time.Time
}

type remoteSink struct {
	uri     string
	job     string
	client  *http.Client
	entries chan remoteEntry
}

var (
	remoteMu sync.RWMutex
	remote   *remoteSink
)

// ConfigureRemote enables pushing log entries to a Loki-compatible endpoint.
// An empty uri disables remote logging. Each call starts a new sink; entries
// queued on the previous one are still delivered.
func ConfigureRemote(uri, job string) {
	var sink *remoteSink
	if uri != "" {
		sink = &remoteSink{
			uri:     uri,
			job:     job,
			client:  &http.Client{Timeout: 5 * time.Second},
			entries: make(chan remoteEntry, remoteQueue),
		}
		go sink.run()
	}

	remoteMu.Lock()
	prev := remote
	remote = sink
	remoteMu.Unlock()

	if prev != nil {
		close(prev.entries)
	}
}

// sendLog queues an entry for the remote sink without blocking the caller.
func sendLog(level, message string, attrs []slog.Attr) {
	remoteMu.RLock()
	defer remoteMu.RUnlock()
	if remote == nil {
		return
	}

	select {
	case remote.entries <- remoteEntry{level: level, message: message, attrs: attrs, at: time.Now()}:
	default:
		fmt.Fprintln(os.Stderr, "remote log queue full, dropping entry")
	}
}

func (s *remoteSink) run() {
	for e := range s.entries {
		if err := s.push(e); err != nil {
			fmt.Fprintf(os.Stderr, "remote log: %v\n", err)
		}
	}
}

func (s *remoteSink) push(e remoteEntry) error {
	body, err := json.Marshal(newLokiPush(s.job, e.level, e.message, e.attrs, e.at))
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.uri, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	return nil
}
