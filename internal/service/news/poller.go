package news

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/pkg/cache"
	xhttp "TradePulse/pkg/http"
	applogger "TradePulse/pkg/logger"
)

// DefaultFeeds are polled when none are configured.
var DefaultFeeds = []string{
	"https://feeds.marketwatch.com/marketwatch/topstories/",
	"https://finance.yahoo.com/rss/topstories",
}

// Submitter accepts text events for routing.
type Submitter interface {
	SubmitText(ctx context.Context, ev models.TextEvent) error
}

// Option configures Poller.
type Option func(*Poller)

// WithFeeds replaces the feed list.
func WithFeeds(feeds ...string) Option {
	return func(p *Poller) {
		if len(feeds) > 0 {
			p.feeds = feeds
		}
	}
}

// WithInterval sets the polling period.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithSeenTTL sets how long a link is remembered.
func WithSeenTTL(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.seenTTL = d
		}
	}
}

// WithHTTPClient replaces the feed client.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(p *Poller) { p.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Poller fetches RSS and Atom feeds periodically and submits unseen items as
// news posts.
type Poller struct {
	feeds    []string
	interval time.Duration
	seenTTL  time.Duration
	client   *xhttp.Client
	seen     cache.Service
	router   Submitter
	metrics  drepo.Metrics
	logger   *applogger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller. seen de-duplicates links across polls and,
// with the Redis implementation, across restarts.
func NewPoller(router Submitter, seen cache.Service, metrics drepo.Metrics, opts ...Option) *Poller {
	p := &Poller{
		feeds:    DefaultFeeds,
		interval: 300 * time.Second,
		seenTTL:  48 * time.Hour,
		client:   xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		seen:     seen,
		router:   router,
		metrics:  metrics,
		logger:   applogger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start polls immediately and then on every interval until Stop.
func (p *Poller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			p.PollOnce(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	p.logger.Info("news poller started",
		applogger.Strings("feeds", p.feeds),
		applogger.Duration("interval", p.interval))
	return nil
}

// Stop ends polling and waits for the current poll.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PollOnce fetches every feed once and returns the number of submitted items.
func (p *Poller) PollOnce(ctx context.Context) int {
	submitted := 0
	for _, feed := range p.feeds {
		n, err := p.pollFeed(ctx, feed)
		if err != nil {
			p.metrics.RecordError("news_feed")
			p.logger.Warn("feed poll failed",
				applogger.String("feed", feed),
				applogger.Error(err))
		}
		submitted += n
	}
	return submitted
}

func (p *Poller) pollFeed(ctx context.Context, feed string) (int, error) {
	var body []byte
	start := time.Now()
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: feed}, &body)
	p.metrics.RecordLatency("news_fetch", time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	items, err := ParseFeed(bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	n := 0
	for _, item := range items {
		fresh, err := p.seen.SetNX(ctx, cache.GenerateKey("news", item.ID()), "1", p.seenTTL)
		if err != nil {
			// without de-duplication every poll would resubmit the feed
			return n, fmt.Errorf("dedup: %w", err)
		}
		if !fresh {
			continue
		}
		ev := models.TextEvent{
			Kind:   models.TextKindNewsPost,
			Source: "rss",
			PostID: item.ID(),
			Text:   item.Text(),
		}
		if err := p.router.SubmitText(ctx, ev); err != nil {
			p.logger.Debug("news item not routed",
				applogger.String("link", item.Link),
				applogger.Error(err))
			continue
		}
		n++
	}
	if n > 0 {
		p.logger.Info("news items submitted", applogger.String("feed", feed), applogger.Int("count", n))
	}
	return n, nil
}
