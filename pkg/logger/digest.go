package logger

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Publisher ships a digest report to a topic.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// DigestConfig controls error log aggregation.
type DigestConfig struct {
	Service   string
	Interval  time.Duration // report period
	MaxUnique int           // distinct entries that force an early report
	Topic     string
	Publisher Publisher
}

// DigestEntry is one distinct error with its repeat count.
type DigestEntry struct {
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// DigestReport is the payload published once per window.
type DigestReport struct {
	Service     string        `json:"service"`
	Host        string        `json:"host,omitempty"`
	WindowStart time.Time     `json:"window_start"`
	WindowEnd   time.Time     `json:"window_end"`
	Entries     []DigestEntry `json:"entries"`
}

// Digest folds repeated error logs into counted entries and publishes them
// periodically, so an error storm becomes one message per window.
type Digest struct {
	cfg   DigestConfig
	host  string
	now   func() time.Time
	kick  chan struct{}
	stop  chan struct{}
	done  chan struct{}
	close sync.Once

	mu      sync.Mutex
	entries map[uint64]*DigestEntry
	since   time.Time
}

// NewDigest starts the report loop.
func NewDigest(cfg DigestConfig) *Digest {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxUnique <= 0 {
		cfg.MaxUnique = 100
	}
	host, _ := os.Hostname()
	d := &Digest{
		cfg:     cfg,
		host:    host,
		now:     time.Now,
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		entries: make(map[uint64]*DigestEntry),
		since:   time.Now(),
	}
	go d.loop()
	return d
}

// Add records one occurrence.
func (d *Digest) Add(component, msg, caller string, fields map[string]interface{}) {
	key := fingerprint(component, msg, caller)
	now := d.now()

	d.mu.Lock()
	e, ok := d.entries[key]
	if ok {
		e.Count++
		e.LastSeen = now
	} else {
		d.entries[key] = &DigestEntry{
			Component: component,
			Message:   msg,
			Caller:    caller,
			Fields:    fields,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	full := len(d.entries) >= d.cfg.MaxUnique
	d.mu.Unlock()

	if full {
		select {
		case d.kick <- struct{}{}:
		default:
		}
	}
}

// Pending returns the number of distinct entries in the open window.
func (d *Digest) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Close publishes the open window and stops the loop.
func (d *Digest) Close() {
	d.close.Do(func() { close(d.stop) })
	<-d.done
}

func (d *Digest) loop() {
	defer close(d.done)
	t := time.NewTicker(d.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
		case <-d.kick:
		case <-d.stop:
			d.publish(d.cut())
			return
		}
		d.publish(d.cut())
	}
}

// cut closes the current window and returns its report, or nil if empty.
func (d *Digest) cut() *DigestReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	end := d.now()
	if len(d.entries) == 0 {
		d.since = end
		return nil
	}
	r := &DigestReport{
		Service:     d.cfg.Service,
		Host:        d.host,
		WindowStart: d.since,
		WindowEnd:   end,
		Entries:     make([]DigestEntry, 0, len(d.entries)),
	}
	for _, e := range d.entries {
		r.Entries = append(r.Entries, *e)
	}
	sort.Slice(r.Entries, func(i, j int) bool { return r.Entries[i].Count > r.Entries[j].Count })
	d.entries = make(map[uint64]*DigestEntry)
	d.since = end
	return r
}

func (d *Digest) publish(r *DigestReport) {
	if r == nil || d.cfg.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.cfg.Publisher.PublishMessage(ctx, d.cfg.Topic, r); err != nil {
		// cannot log through the logger that feeds this digest
		fmt.Fprintf(os.Stderr, "log digest: publish %d entries: %v\n", len(r.Entries), err)
	}
}

// fingerprint ignores field values so the same failure with different ids
// folds into one entry.
func fingerprint(component, msg, caller string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join([]string{component, msg, caller}, "\x00")))
	return h.Sum64()
}
