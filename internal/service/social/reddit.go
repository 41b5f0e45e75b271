// Package social polls community forums for posts that mention tradable
// assets and hands them to the text pipeline.
package social

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/pkg/cache"
	applogger "TradePulse/pkg/logger"
)

// DefaultSubreddits are watched when none are configured.
var DefaultSubreddits = []string{"wallstreetbets", "stocks", "CryptoCurrency"}

// Submitter accepts text events for routing.
type Submitter interface {
	SubmitText(ctx context.Context, ev models.TextEvent) error
}

// Option configures Poller.
type Option func(*Poller)

// WithSubreddits replaces the watched subreddits.
func WithSubreddits(subs ...string) Option {
	return func(p *Poller) {
		if len(subs) > 0 {
			p.subreddits = subs
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

// WithLimit caps how many new posts are requested per poll.
func WithLimit(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.limit = n
		}
	}
}

// WithSeenTTL sets how long a post id is remembered.
func WithSeenTTL(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.seenTTL = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Poller lists the newest posts of a set of subreddits and submits the
// unseen ones as social posts.
type Poller struct {
	client     *reddit.Client
	subreddits []string
	interval   time.Duration
	limit      int
	seenTTL    time.Duration
	seen       cache.Service
	router     Submitter
	metrics    drepo.Metrics
	logger     *applogger.Logger

	// the first poll only marks the backlog as seen
	primed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller over client.
func NewPoller(client *reddit.Client, router Submitter, seen cache.Service, metrics drepo.Metrics, opts ...Option) *Poller {
	p := &Poller{
		client:     client,
		subreddits: DefaultSubreddits,
		interval:   60 * time.Second,
		limit:      100,
		seenTTL:    24 * time.Hour,
		seen:       seen,
		router:     router,
		metrics:    metrics,
		logger:     applogger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewClient builds an authenticated client when credentials are given and a
// read-only one otherwise.
func NewClient(cfg ClientConfig) (*reddit.Client, error) {
	opts := []reddit.Opt{reddit.WithUserAgent(cfg.userAgent())}
	if cfg.BaseURL != "" {
		opts = append(opts, reddit.WithBaseURL(cfg.BaseURL))
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		c, err := reddit.NewReadonlyClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("reddit readonly client: %w", err)
		}
		return c, nil
	}
	c, err := reddit.NewClient(reddit.Credentials{
		ID:       cfg.ClientID,
		Secret:   cfg.ClientSecret,
		Username: cfg.Username,
		Password: cfg.Password,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return c, nil
}

// ClientConfig carries the reddit application credentials.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	BaseURL      string
}

func (c ClientConfig) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return "tradepulse/1.0"
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
	p.logger.Info("social poller started",
		applogger.Strings("subreddits", p.subreddits),
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

// PollOnce lists new posts once and returns the number submitted. The
// very first call records the current listing without submitting it, so a
// restart does not replay the backlog.
func (p *Poller) PollOnce(ctx context.Context) int {
	start := time.Now()
	posts, _, err := p.client.Subreddit.NewPosts(ctx, strings.Join(p.subreddits, "+"), &reddit.ListOptions{Limit: p.limit})
	p.metrics.RecordLatency("reddit_fetch", time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordError("reddit_fetch")
		p.logger.Warn("reddit poll failed", applogger.Error(err))
		return 0
	}

	primed := p.primed
	p.primed = true
	n := 0
	// listings are newest first; submit oldest first
	for i := len(posts) - 1; i >= 0; i-- {
		post := posts[i]
		if post == nil || post.FullID == "" {
			continue
		}
		fresh, err := p.seen.SetNX(ctx, cache.GenerateKey("reddit", post.FullID), "1", p.seenTTL)
		if err != nil {
			p.metrics.RecordError("reddit_dedup")
			p.logger.Warn("reddit dedup failed", applogger.Error(err))
			return n
		}
		if !fresh || !primed {
			continue
		}
		text := postText(post)
		if text == "" {
			continue
		}
		ev := models.TextEvent{
			Kind:   models.TextKindSocialPost,
			Source: "reddit",
			PostID: post.FullID,
			Text:   text,
		}
		if err := p.router.SubmitText(ctx, ev); err != nil {
			p.logger.Debug("reddit post not routed",
				applogger.String("post", post.FullID),
				applogger.String("subreddit", post.SubredditName),
				applogger.Error(err))
			continue
		}
		n++
	}
	if n > 0 {
		p.logger.Info("reddit posts submitted", applogger.Int("count", n))
	}
	return n
}

func postText(post *reddit.Post) string {
	title := strings.TrimSpace(post.Title)
	body := strings.Join(strings.Fields(post.Body), " ")
	switch {
	case body == "":
		return title
	case title == "":
		return body
	default:
		return title + ". " + body
	}
}
