package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	xhttp "TradePulse/pkg/http"
	applogger "TradePulse/pkg/logger"
)

const (
	DefaultRESTURL = "https://api.kraken.com"

	pathAssetPairs = "/0/public/AssetPairs"
	pathAddOrder   = "/0/private/AddOrder"
)

// legacy base codes used by the REST API
var baseAliases = map[string]string{"XBT": "BTC", "XDG": "DOGE"}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the REST endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithCredentials sets the API key and base64 private key for trading.
func WithCredentials(key, secret string) Option {
	return func(c *Client) {
		c.apiKey = key
		c.secret = secret
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client is the Kraken spot REST API: the pair listing and market orders.
type Client struct {
	baseURL string
	apiKey  string
	secret  string
	http    *xhttp.Client
	logger  *applogger.Logger
	nonce   func() string

	mu       sync.RWMutex
	altnames map[string]string
}

// NewClient creates a REST client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultRESTURL,
		http:     xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		logger:   applogger.Nop(),
		nonce:    func() string { return strconv.FormatInt(time.Now().UnixMilli(), 10) },
		altnames: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope[T any] struct {
	Error  []string `json:"error"`
	Result T        `json:"result"`
}

func (e envelope[T]) err() error {
	if len(e.Error) == 0 {
		return nil
	}
	return fmt.Errorf("kraken: %s", strings.Join(e.Error, "; "))
}

type assetPair struct {
	Altname string `json:"altname"`
	WSName  string `json:"wsname"`
	Status  string `json:"status"`
}

// KnownCryptoPairs lists the online pairs quoted in USD as BASE/USD.
func (c *Client) KnownCryptoPairs(ctx context.Context) ([]string, error) {
	var resp envelope[map[string]assetPair]
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + pathAssetPairs,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("kraken asset pairs: %w", err)
	}
	if err := resp.err(); err != nil {
		return nil, err
	}

	altnames := make(map[string]string, len(resp.Result))
	pairs := make([]string, 0, len(resp.Result))
	for _, p := range resp.Result {
		if p.Status != "" && p.Status != "online" {
			continue
		}
		pair, ok := NormalizePair(p.WSName)
		if !ok {
			continue
		}
		if _, dup := altnames[pair]; dup {
			continue
		}
		altnames[pair] = p.Altname
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)

	c.mu.Lock()
	c.altnames = altnames
	c.mu.Unlock()
	return pairs, nil
}

// NormalizePair maps a Kraken wsname such as XBT/USD to BTC/USD. Pairs not
// quoted in USD are rejected.
func NormalizePair(wsname string) (string, bool) {
	base, quote, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(wsname)), "/")
	if !ok || base == "" || quote != models.QuoteUSD {
		return "", false
	}
	if alias, ok := baseAliases[base]; ok {
		base = alias
	}
	return base + "/" + quote, true
}

type addOrderResult struct {
	Descr struct {
		Order string `json:"order"`
	} `json:"descr"`
	TxID []string `json:"txid"`
}

// Submit places a market order for a crypto intent.
func (c *Client) Submit(ctx context.Context, intent models.OrderIntent) error {
	if intent.Asset.Class != models.AssetClassCrypto {
		return fmt.Errorf("kraken cannot trade %s asset %s", intent.Asset.Class, intent.Asset)
	}
	if c.apiKey == "" || c.secret == "" {
		return fmt.Errorf("kraken credentials not configured")
	}
	qty := intent.QuantityDecimal(8)
	if !qty.IsPositive() {
		return fmt.Errorf("kraken order volume %s not positive", qty)
	}

	form := url.Values{}
	form.Set("nonce", c.nonce())
	form.Set("ordertype", "market")
	form.Set("type", string(intent.Side))
	form.Set("volume", qty.String())
	form.Set("pair", c.restPair(intent.Asset.Symbol))
	if intent.ID != "" {
		form.Set("cl_ord_id", intent.ID)
	}

	sig, err := Sign(pathAddOrder, form, c.secret)
	if err != nil {
		return err
	}
	var resp envelope[addOrderResult]
	err = c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + pathAddOrder,
		Headers: map[string]string{"API-Key": c.apiKey, "API-Sign": sig},
		Body:    form,
	}, &resp)
	if err != nil {
		return fmt.Errorf("kraken add order: %w", err)
	}
	if err := resp.err(); err != nil {
		return err
	}
	c.logger.Info("kraken order placed",
		applogger.String("pair", intent.Asset.Symbol),
		applogger.String("side", string(intent.Side)),
		applogger.String("volume", qty.String()),
		applogger.Strings("txid", resp.Result.TxID))
	return nil
}

func (c *Client) restPair(pair string) string {
	c.mu.RLock()
	alt, ok := c.altnames[pair]
	c.mu.RUnlock()
	if ok && alt != "" {
		return alt
	}
	return strings.ReplaceAll(pair, "/", "")
}

// Sign computes API-Sign: HMAC-SHA512 keyed by the decoded secret over the
// path followed by SHA256(nonce + postdata).
func Sign(path string, form url.Values, secret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("kraken secret: %w", err)
	}
	sum := sha256.Sum256([]byte(form.Get("nonce") + form.Encode()))
	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(path))
	mac.Write(sum[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

var (
	_ drepo.CryptoListing   = (*Client)(nil)
	_ drepo.OrderDispatcher = (*Client)(nil)
)
