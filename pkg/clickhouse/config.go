package clickhouse

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

// Config describes the connection used for snapshot and audit writes.
// Zero fields take the defaults of withDefaults.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// HTTP switches from the native protocol to the HTTP interface.
	HTTP bool
	// Compression is "lz4", "zstd" or "none".
	Compression string

	// AsyncInsert lets the server buffer the sink's small batches.
	// WaitForAsync makes each insert return only once its buffer is flushed.
	AsyncInsert  bool
	WaitForAsync bool

	DialTimeout      time.Duration
	ReadTimeout      time.Duration
	MaxExecutionTime time.Duration

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 9000
		if c.HTTP {
			c.Port = 8123
		}
	}
	if c.Database == "" {
		c.Database = "default"
	}
	if c.User == "" {
		c.User = "default"
	}
	if c.Compression == "" {
		c.Compression = "lz4"
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	// the async sink writes from a single flusher; a small pool is enough
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 || c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	return c
}

func (c Config) validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if _, err := c.compression(); err != nil {
		errs = append(errs, err)
	}
	if c.WaitForAsync && !c.AsyncInsert {
		errs = append(errs, errors.New("wait_for_async_insert requires async_insert"))
	}
	return errors.Join(errs...)
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) compression() (*ch.Compression, error) {
	switch c.Compression {
	case "none":
		return nil, nil
	case "lz4":
		return &ch.Compression{Method: ch.CompressionLZ4}, nil
	case "zstd":
		return &ch.Compression{Method: ch.CompressionZSTD}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c.Compression)
	}
}

// settings are the per-query server settings sent with every insert.
func (c Config) settings() ch.Settings {
	s := ch.Settings{}
	if c.MaxExecutionTime > 0 {
		s["max_execution_time"] = int(c.MaxExecutionTime.Seconds())
	}
	if c.AsyncInsert {
		s["async_insert"] = 1
		if c.WaitForAsync {
			s["wait_for_async_insert"] = 1
		}
	}
	return s
}

func (c Config) options() *ch.Options {
	protocol := ch.Native
	if c.HTTP {
		protocol = ch.HTTP
	}
	comp, _ := c.compression()
	return &ch.Options{
		Addr:     []string{c.addr()},
		Protocol: protocol,
		Auth: ch.Auth{
			Database: c.Database,
			Username: c.User,
			Password: c.Password,
		},
		Compression:     comp,
		Settings:        c.settings(),
		DialTimeout:     c.DialTimeout,
		ReadTimeout:     c.ReadTimeout,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}
