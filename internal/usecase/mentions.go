package usecase

import (
	"sync"
	"time"
)

// MentionTracker counts ticker mentions in a sliding time window and hands
// out at most one promotion claim per ticker at a time.
type MentionTracker struct {
	lookback  time.Duration
	threshold int

	mu      sync.Mutex
	windows map[string]*mentionWindow
}

type mentionWindow struct {
	mu        sync.Mutex
	stamps    []time.Time
	head      int
	promoting bool
}

// NewMentionTracker creates a tracker promoting at threshold mentions within lookback.
func NewMentionTracker(lookback time.Duration, threshold int) *MentionTracker {
	return &MentionTracker{
		lookback:  lookback,
		threshold: threshold,
		windows:   make(map[string]*mentionWindow),
	}
}

// Record adds a mention at now, evicts mentions older than the lookback and
// returns the live count. claimed is true when the count reached the
// threshold and no other promotion of ticker is in flight; the caller must
// then call Complete or Release.
func (t *MentionTracker) Record(ticker string, now time.Time) (count int, claimed bool) {
	w := t.window(ticker)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stamps = append(w.stamps, now)
	w.prune(now.Add(-t.lookback))
	count = len(w.stamps) - w.head
	if count >= t.threshold && !w.promoting {
		w.promoting = true
		claimed = true
	}
	return count, claimed
}

// Complete clears the window after a successful promotion.
func (t *MentionTracker) Complete(ticker string) {
	w := t.window(ticker)
	w.mu.Lock()
	w.stamps = nil
	w.head = 0
	w.promoting = false
	w.mu.Unlock()
}

// Release gives the claim back and keeps the window so the next mention retries.
func (t *MentionTracker) Release(ticker string) {
	w := t.window(ticker)
	w.mu.Lock()
	w.promoting = false
	w.mu.Unlock()
}

// Count returns the live mention count of ticker at now.
func (t *MentionTracker) Count(ticker string, now time.Time) int {
	t.mu.Lock()
	w, ok := t.windows[ticker]
	t.mu.Unlock()
	if !ok {
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now.Add(-t.lookback))
	return len(w.stamps) - w.head
}

func (t *MentionTracker) window(ticker string) *mentionWindow {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.windows[ticker]
	if !ok {
		w = &mentionWindow{}
		t.windows[ticker] = w
	}
	return w
}

// prune drops stamps before cutoff. Stamps are appended in arrival order so
// the live range is always a suffix.
func (w *mentionWindow) prune(cutoff time.Time) {
	for w.head < len(w.stamps) && w.stamps[w.head].Before(cutoff) {
		w.head++
	}
	if w.head == len(w.stamps) {
		w.stamps = w.stamps[:0]
		w.head = 0
		return
	}
	if w.head > 0 && w.head*2 >= len(w.stamps) {
		n := copy(w.stamps, w.stamps[w.head:])
		w.stamps = w.stamps[:n]
		w.head = 0
	}
}
