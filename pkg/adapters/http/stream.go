package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
)

// subscriberBuffer is the number of frames queued per SSE client before
// frames are dropped for it.
const subscriberBuffer = 16

// StreamManager fans snapshot diffs out to SSE subscribers.
// It remembers the last snapshot it published so every frame is a diff.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}

	lastMu sync.Mutex
	last   *domain.Snapshot

	logger *slog.Logger
}

// NewStreamManager creates a stream manager. A nil logger discards logs.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a client. The returned func unregisters it and closes the channel.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, subscriberBuffer)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every subscriber, dropping it for slow clients.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// Publish broadcasts a diff. Empty diffs are ignored.
func (sm *StreamManager) Publish(diff *domain.SnapshotDiff) {
	if diff.Empty() {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: Diff encode failed", "err", err)
		return
	}
	sm.Broadcast(string(data))
}

// Track publishes what changed since the last tracked snapshot.
// Tracking the same snapshot twice publishes nothing the second time.
func (sm *StreamManager) Track(snap domain.Snapshot) {
	sm.lastMu.Lock()
	diff := domain.Diff(sm.last, &snap)
	sm.last = &snap
	sm.lastMu.Unlock()

	sm.Publish(diff)
}

// Hooks feeds the stream from dialog lifecycle events: a busy frame when a
// request starts and a diff when an action settles.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequestStart: func(_ context.Context, _ *domain.RequestEvent) {
			sm.lastMu.Lock()
			if sm.last != nil {
				busy := *sm.last
				busy.Request.Busy = true
				busy.Affordances = []domain.Affordance{}
				sm.last = &busy
			}
			sm.lastMu.Unlock()

			sm.Publish(&domain.SnapshotDiff{Request: &domain.RequestState{Busy: true}})
		},
		OnSettle: func(_ context.Context, e *domain.SettleEvent) {
			sm.Track(e.Snapshot)
		},
	}
}
