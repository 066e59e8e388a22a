package dialog

import (
	"context"
	"sync"
	"time"
)

// Window suppresses repeats of the same text within a fixed interval. The
// check runs before classification and translation, so repeated chatter is
// suppressed regardless of channel.
type Window interface {
	// ShouldSuppress reports whether text was seen inside the window. When it
	// returns false the entry is refreshed with the current time.
	ShouldSuppress(ctx context.Context, text string) bool
}

// MemoryWindow keeps the seen map in process memory.
type MemoryWindow struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryWindow(ttl time.Duration) *MemoryWindow {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &MemoryWindow{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (w *MemoryWindow) ShouldSuppress(_ context.Context, text string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if last, ok := w.seen[text]; ok && now.Sub(last) < w.ttl {
		return true
	}
	w.seen[text] = now
	return false
}

// Sweep evicts entries older than the window so the map stays bounded over
// long sessions. Entries inside the window are never touched, so suppression
// behavior is unchanged.
func (w *MemoryWindow) Sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-w.ttl)
	for text, last := range w.seen {
		if last.Before(cutoff) {
			delete(w.seen, text)
		}
	}
}

// RunSweeper sweeps periodically until ctx is cancelled.
func (w *MemoryWindow) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = w.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}
