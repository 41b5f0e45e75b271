package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"
	"TradePulse/pkg/cache"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Top stories</title>
<item><title>Nvidia beats estimates</title><link>https://example.com/a</link>
<description><![CDATA[<p>NVDA   rallies after hours</p>]]></description></item>
<item><title>Markets flat</title><guid>https://example.com/b</guid></item>
<item><title></title><description></description></item>
</channel></rss>`

type captureSubmitter struct {
	mu     sync.Mutex
	events []models.TextEvent
	err    error
}

func (c *captureSubmitter) SubmitText(_ context.Context, ev models.TextEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func TestParseFeedRSS(t *testing.T) {
	items, err := ParseFeed(strings.NewReader(feedXML))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Nvidia beats estimates. NVDA rallies after hours", items[0].Text())
	assert.Equal(t, "https://example.com/a", items[0].ID())
	assert.Equal(t, "Markets flat", items[1].Text())
	assert.Equal(t, "https://example.com/b", items[1].ID())
}

func TestParseFeedAtom(t *testing.T) {
	const atom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Wire</title>
<entry><title>Fed holds rates</title><link href="https://example.com/fed"/>
<id>urn:uuid:1</id><updated>2024-05-01T12:00:00Z</updated>
<summary type="html">&lt;b&gt;Powell&lt;/b&gt; signals patience&lt;script&gt;track()&lt;/script&gt;</summary></entry>
</feed>`
	items, err := ParseFeed(strings.NewReader(atom))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "https://example.com/fed", items[0].ID())
	assert.Equal(t, "Fed holds rates. Powell signals patience", items[0].Text())
}

func TestParseFeedLatin1(t *testing.T) {
	latin1 := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<rss version=\"2.0\"><channel><title>Bourse</title>" +
		"<item><title>March\xe9 en hausse</title><link>https://example.com/fr</link></item>" +
		"</channel></rss>"
	items, err := ParseFeed(strings.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Marché en hausse", items[0].Title)
}

func TestParseFeedInvalid(t *testing.T) {
	_, err := ParseFeed(strings.NewReader("not xml"))
	assert.Error(t, err)
}

func newFeedServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(feedXML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPollOnceDeduplicates(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK)
	seen := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer seen.Close()
	sub := &captureSubmitter{}
	p := NewPoller(sub, seen, mocks.NewMetrics(), WithFeeds(srv.URL))

	assert.Equal(t, 2, p.PollOnce(context.Background()))
	assert.Equal(t, 0, p.PollOnce(context.Background()))

	require.Len(t, sub.events, 2)
	assert.Equal(t, models.TextKindNewsPost, sub.events[0].Kind)
	assert.Equal(t, "rss", sub.events[0].Source)
	assert.Equal(t, "https://example.com/a", sub.events[0].PostID)
}

func TestPollOnceFeedFailure(t *testing.T) {
	srv := newFeedServer(t, http.StatusBadGateway)
	metrics := mocks.NewMetrics()
	p := NewPoller(&captureSubmitter{}, cache.NewMemoryCache(cache.WithMemoryCleanup(0)), metrics, WithFeeds(srv.URL))

	assert.Equal(t, 0, p.PollOnce(context.Background()))
	assert.Equal(t, 1, metrics.Errors("news_feed"))
}

func TestPollOnceRouterRejects(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK)
	sub := &captureSubmitter{err: models.ErrQueueFull}
	p := NewPoller(sub, cache.NewMemoryCache(cache.WithMemoryCleanup(0)), mocks.NewMetrics(), WithFeeds(srv.URL))

	assert.Equal(t, 0, p.PollOnce(context.Background()))
	assert.Empty(t, sub.events)
}

func TestStartStop(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK)
	sub := &captureSubmitter{}
	p := NewPoller(sub, cache.NewMemoryCache(cache.WithMemoryCleanup(0)), mocks.NewMetrics(), WithFeeds(srv.URL))

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return len(sub.events) == 2
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, p.Stop(context.Background()))
}
