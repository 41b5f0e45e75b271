package wsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

var ErrNotConnected = errors.New("websocket not connected")

// Codec adapts the generic stream to one venue protocol.
type Codec interface {
	// Handshake returns the frames sent right after dialing, e.g. auth.
	Handshake() []interface{}
	// SubscribeFrames returns the frames that subscribe symbols.
	SubscribeFrames(symbols []string) []interface{}
	// Decode turns one frame into observations. Control frames yield none;
	// a non-nil error drops the connection.
	Decode(frame []byte) ([]*models.PriceObservation, error)
}

// Config tunes connection keepalive and buffering.
type Config struct {
	URL            string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
	ReadTimeout    time.Duration
	BufferSize     int
}

// Stream is a MarketStream over a websocket. The channels returned by Read
// survive reconnects and are closed by Close.
type Stream struct {
	name   string
	cfg    Config
	codec  Codec
	dialer *websocket.Dialer
	logger *applogger.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	conn    *websocket.Conn
	done    chan struct{} // closed when conn is dropped
	symbols map[string]struct{}

	connected atomic.Bool
	closed    atomic.Bool

	obs     chan *models.PriceObservation
	errs    chan error
	stop    chan struct{}
	readers sync.WaitGroup
	once    sync.Once
}

// New creates a stream. name labels logs.
func New(name string, cfg Config, codec Codec, logger *applogger.Logger) *Stream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * cfg.PingInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Stream{
		name:    name,
		cfg:     cfg,
		codec:   codec,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:  logger.With("ws_" + name),
		symbols: make(map[string]struct{}),
		obs:     make(chan *models.PriceObservation, cfg.BufferSize),
		errs:    make(chan error, 1),
		stop:    make(chan struct{}),
	}
}

// Connect dials the venue, sends the handshake and starts a reader. A live
// connection is closed first, together with its reader and pinger.
func (s *Stream) Connect(ctx context.Context) error {
	if s.closed.Load() {
		return fmt.Errorf("%s: stream closed", s.name)
	}
	_ = s.dropConn()

	conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("%s connect: %w", s.name, err)
	}
	conn.SetReadLimit(1 << 20)

	done := make(chan struct{})
	s.mu.Lock()
	s.conn = conn
	s.done = done
	s.mu.Unlock()

	for _, frame := range s.codec.Handshake() {
		if err := s.write(conn, frame); err != nil {
			_ = s.dropConn()
			return fmt.Errorf("%s handshake: %w", s.name, err)
		}
	}
	s.connected.Store(true)

	s.readers.Add(2)
	go s.readLoop(conn)
	go s.pingLoop(conn, done)
	s.logger.Info("connected", applogger.String("url", s.cfg.URL))
	return nil
}

// Subscribe adds symbols to the subscription and sends them when connected.
func (s *Stream) Subscribe(ctx context.Context, symbols ...string) error {
	if len(symbols) == 0 {
		return nil
	}
	s.mu.Lock()
	for _, sym := range symbols {
		s.symbols[sym] = struct{}{}
	}
	conn := s.conn
	s.mu.Unlock()

	if conn == nil || !s.connected.Load() {
		return ErrNotConnected
	}
	for _, frame := range s.codec.SubscribeFrames(symbols) {
		if err := s.write(conn, frame); err != nil {
			return fmt.Errorf("%s subscribe: %w", s.name, err)
		}
	}
	s.logger.Debug("subscribed", applogger.Strings("symbols", symbols))
	return nil
}

// Symbols returns every symbol requested so far.
func (s *Stream) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Read returns the shared observation and error channels.
func (s *Stream) Read(_ context.Context) (<-chan *models.PriceObservation, <-chan error) {
	return s.obs, s.errs
}

// Reconnect drops the connection, waits the reconnect delay, dials again and
// resubscribes every known symbol.
func (s *Stream) Reconnect(ctx context.Context) error {
	s.dropConn()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stop:
		return fmt.Errorf("%s: stream closed", s.name)
	case <-time.After(s.cfg.ReconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx, s.Symbols()...)
}

// Close stops the readers and closes the channels.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.stop)
		err = s.dropConn()
		s.readers.Wait()
		close(s.obs)
		close(s.errs)
	})
	return err
}

// IsConnected reports whether a connection is live.
func (s *Stream) IsConnected() bool { return s.connected.Load() }

func (s *Stream) dropConn() error {
	s.connected.Store(false)
	s.mu.Lock()
	conn, done := s.conn, s.done
	s.conn, s.done = nil, nil
	s.mu.Unlock()
	if done != nil {
		close(done)
	}
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (s *Stream) write(conn *websocket.Conn, frame interface{}) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Stream) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	defer s.readers.Done()
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *Stream) readLoop(conn *websocket.Conn) {
	defer s.readers.Done()
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			s.fail(conn, fmt.Errorf("%s read: %w", s.name, err))
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		observations, err := s.codec.Decode(frame)
		if err != nil {
			s.fail(conn, fmt.Errorf("%s decode: %w", s.name, err))
			return
		}
		for _, o := range observations {
			select {
			case s.obs <- o:
			case <-s.stop:
				return
			}
		}
	}
}

// fail reports err unless the connection was replaced or closed on purpose.
func (s *Stream) fail(conn *websocket.Conn, err error) {
	s.mu.Lock()
	current := s.conn == conn
	s.mu.Unlock()
	if !current || s.closed.Load() {
		return
	}
	s.connected.Store(false)
	select {
	case s.errs <- err:
	default:
	}
}

var _ drepo.MarketStream = (*Stream)(nil)
