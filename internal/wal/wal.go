// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package wal

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/hotlist/postpulse/internal/logging"
	"github.com/hotlist/postpulse/internal/metrics"
)

// Record is one line of the write-ahead log. It is written to disk as a
// wireRecord: post_id, user_id, action, and created_at in milliseconds
// since epoch.
type Record struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"-"`
}

// wireRecord is Record's on-disk shape, with created_at encoded as
// milliseconds since epoch per the fixed wire schema.
type wireRecord struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	CreatedAt int64  `json:"created_at"`
}

// WAL appends Records to a flat append-only file, one JSON object per line.
// Safe for concurrent use by multiple producers.
type WAL struct {
	mu      sync.Mutex
	file    *os.File
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// Open creates or appends to the log file at path. The parent directory
// must already exist; Open does not create it and fails without it.
func Open(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	settings := gobreaker.Settings{
		Name:        "wal-append",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerState(name, to.String())
		},
	}

	return &WAL{
		file:    f,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}, nil
}

// Append writes one record as a JSON line. Failures — including a tripped
// breaker — are logged and swallowed; the caller never observes them. This
// preserves the "ingestion never blocks on persistence" contract: a caller
// that wants to know whether the write actually landed must not use this
// method's return value, since it has none.
func (w *WAL) Append(ctx context.Context, rec Record) {
	_, err := w.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, w.appendLocked(rec)
	})
	if err != nil {
		metrics.WALAppendErrorsTotal.Inc()
		logging.Ctx(ctx).Debug().Err(err).Str("post_id", rec.PostID).Msg("wal append skipped")
	}
}

func (w *WAL) appendLocked(rec Record) error {
	line, err := json.Marshal(wireRecord{
		PostID:    rec.PostID,
		UserID:    rec.UserID,
		Action:    rec.Action,
		CreatedAt: rec.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.file.Write(line)
	return err
}

// Close flushes and closes the underlying file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
