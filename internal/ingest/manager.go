// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/hotlist/postpulse/internal/logging"
	"github.com/hotlist/postpulse/internal/metrics"
	"github.com/hotlist/postpulse/internal/wal"
)

// FlushNotification carries the ranking lists published by the most recent
// flush, handed to an optional callback registered on the manager.
type FlushNotification struct {
	HotPosts   []string
	MostPlayed []string
}

// FlushListener is invoked after each flush publishes a new state. It must
// not block the flush worker for long; the manager does not enforce a
// timeout on it.
type FlushListener func(FlushNotification)

// Config configures a Manager.
type Config struct {
	// DataDir holds wal.log and state.json. Created if absent.
	DataDir string

	// FlushEventCount is the size-based flush trigger and the maximum
	// number of events drained into one batch.
	FlushEventCount int

	// FlushInterval is the time-based flush trigger and the worker's
	// maximum idle wait.
	FlushInterval time.Duration

	// TopK bounds hot_posts and most_played. Zero falls back to
	// ingest.TopK.
	TopK int

	// IngestLimiter, if non-nil, bounds the ingest rate: Ingest calls
	// beyond the configured rate are dropped rather than buffered. Nil
	// (the default) means unbounded, matching the unbounded-buffer
	// baseline behavior.
	IngestLimiter *rate.Limiter

	// OnFlush, if non-nil, is invoked after every completed flush.
	OnFlush FlushListener
}

func (c Config) withDefaults() Config {
	if c.FlushEventCount <= 0 {
		c.FlushEventCount = 500
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	return c
}

// Manager owns the event buffer, the write-ahead log, the aggregate state,
// and the flush worker that folds batches into that state on a size or time
// trigger.
type Manager struct {
	cfg Config

	walPath      string
	snapshotPath string
	wal          *wal.WAL

	queueMu sync.Mutex
	buffer  []Event
	cond    *sync.Cond

	eventCount atomic.Int64
	lastFlush  time.Time

	stateMu sync.RWMutex
	state   *AggregateState

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	snapshotBreaker *gobreaker.CircuitBreaker[struct{}]
}

// NewManager constructs a Manager over cfg.DataDir, creating the directory
// if needed and loading any prior snapshot found there.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	cfg = cfg.withDefaults()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	walPath := filepath.Join(cfg.DataDir, "wal.log")
	snapshotPath := filepath.Join(cfg.DataDir, "state.json")

	w, err := wal.Open(walPath)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:          cfg,
		walPath:      walPath,
		snapshotPath: snapshotPath,
		wal:          w,
		state:        loadPrevState(ctx, snapshotPath),
		lastFlush:    time.Now(),
		snapshotBreaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "snapshot-write",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.RecordCircuitBreakerState(name, to.String())
			},
		}),
	}
	m.cond = sync.NewCond(&m.queueMu)
	return m, nil
}

// Start launches the flush worker and its timer goroutine. Not safe to call
// twice concurrently.
func (m *Manager) Start() {
	m.running.Store(true)
	m.stopCh = make(chan struct{})
	m.wg.Add(2)
	go m.tickerLoop()
	go m.flushLoop()
}

// Stop signals the flush worker to exit, waits for it and the timer to
// finish, then drains and folds any remaining buffered events through one
// final flush.
func (m *Manager) Stop() {
	m.running.Store(false)
	close(m.stopCh)

	m.queueMu.Lock()
	m.cond.Broadcast()
	m.queueMu.Unlock()

	m.wg.Wait()

	final := m.drainBuffer()
	if len(final) > 0 {
		m.flushBatch(context.Background(), final)
	}

	m.wal.Close()
}

// tickerLoop wakes the flush worker at least once per FlushInterval so it
// can re-evaluate the time-based trigger even when no producer ever hits
// the size-based one. This stands in for a timed condition-variable wait,
// which sync.Cond does not support natively.
func (m *Manager) tickerLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.queueMu.Lock()
			m.cond.Broadcast()
			m.queueMu.Unlock()
		}
	}
}

// IngestEvent enqueues evt, appends it to the WAL, and signals the flush
// worker if the size trigger has been reached. It never blocks the caller
// on persistence and never returns an error.
func (m *Manager) IngestEvent(ctx context.Context, evt Event) {
	if m.cfg.IngestLimiter != nil && !m.cfg.IngestLimiter.Allow() {
		metrics.EventsRateLimitedTotal.Inc()
		return
	}
	metrics.EventsIngestedTotal.WithLabelValues(string(evt.Action)).Inc()

	m.queueMu.Lock()
	m.buffer = append(m.buffer, evt)
	shouldSignal := m.eventCount.Add(1) >= int64(m.cfg.FlushEventCount)
	// The WAL append happens while queueMu is still held, so producers can
	// never race between the buffer push and the WAL write: the WAL line
	// order always matches the order events entered the buffer.
	m.wal.Append(ctx, wal.Record{
		PostID:    evt.PostID,
		UserID:    evt.UserID,
		Action:    string(evt.Action),
		CreatedAt: evt.CreatedAt,
	})
	if shouldSignal {
		m.cond.Broadcast()
	}
	m.queueMu.Unlock()
}

// GetCurrentState returns a shared handle to the current aggregate state.
// Readers observe a consistent view between flushes; the handle is never
// mutated in place, only replaced.
func (m *Manager) GetCurrentState() *AggregateState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// flushLoop is the worker: while running, it decides whether to flush on a
// size or time trigger, drains a batch outside the buffer lock, and folds
// it into state under the state lock.
func (m *Manager) flushLoop() {
	defer m.wg.Done()

	for m.running.Load() {
		batch := m.waitForBatch()
		if len(batch) == 0 {
			continue
		}
		m.flushBatch(context.Background(), batch)
	}
}

// waitForBatch blocks on the condition variable until either a size or
// time trigger fires (the ticker goroutine broadcasts at least once per
// FlushInterval, standing in for a timed wait), then drains and returns the
// current buffer contents. Lock ordering: this method never holds stateMu
// while it holds queueMu.
func (m *Manager) waitForBatch() []Event {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()

	for {
		if !m.running.Load() {
			return nil
		}

		sizeTrigger := m.eventCount.Load() >= int64(m.cfg.FlushEventCount)
		timeTrigger := time.Since(m.lastFlush) >= m.cfg.FlushInterval

		if (sizeTrigger || timeTrigger) && len(m.buffer) > 0 {
			return m.drainLocked()
		}

		m.cond.Wait()
	}
}

// drainLocked removes and returns up to FlushEventCount buffered events,
// FIFO. Callers must hold queueMu.
func (m *Manager) drainLocked() []Event {
	n := len(m.buffer)
	if n > m.cfg.FlushEventCount {
		n = m.cfg.FlushEventCount
	}
	batch := m.buffer[:n]
	m.buffer = append([]Event(nil), m.buffer[n:]...)
	m.eventCount.Store(int64(len(m.buffer)))
	m.lastFlush = time.Now()
	return batch
}

// drainBuffer removes and returns the entire remaining buffer, used only by
// Stop's final flush.
func (m *Manager) drainBuffer() []Event {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	batch := m.buffer
	m.buffer = nil
	m.eventCount.Store(0)
	return batch
}

// flushBatch folds batch into the current state under the state lock, then
// persists the result and notifies any registered listener.
func (m *Manager) flushBatch(ctx context.Context, batch []Event) {
	start := time.Now()

	m.stateMu.Lock()
	f := newFolder(batch, m.state, m.cfg.TopK)
	f.tallyWithPrev()
	f.calcCurrentHotPosts()
	m.state = f.currentState
	next := m.state
	m.stateMu.Unlock()

	m.persistSnapshot(ctx, next)

	metrics.RecordFlush(len(batch), time.Since(start))
	metrics.RecordState(m.bufferLen(), len(next.HotPosts), len(next.PostStats))

	if m.cfg.OnFlush != nil {
		m.cfg.OnFlush(FlushNotification{
			HotPosts:   next.HotPosts,
			MostPlayed: next.MostPlayed,
		})
	}
}

// bufferLen returns the current buffer length, for point-in-time gauge
// reporting after a flush.
func (m *Manager) bufferLen() int {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	return len(m.buffer)
}

// persistSnapshot writes next to disk through the snapshot circuit breaker.
// A tripped breaker skips the write entirely without touching disk; the
// next successful flush retries from scratch.
func (m *Manager) persistSnapshot(ctx context.Context, next *AggregateState) {
	_, err := m.snapshotBreaker.Execute(func() (struct{}, error) {
		return struct{}{}, saveStateToFile(m.snapshotPath, next)
	})
	if err != nil {
		metrics.SnapshotWriteErrorsTotal.Inc()
		logging.Ctx(ctx).Debug().Err(err).Msg("snapshot write failed or breaker open")
	}
}
