package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TradePulse/pkg/util"
	"TradePulse/pkg/validate"
)

// Trade modes.
const (
	ModeMock    = "mock"
	ModeLive    = "live"
	ModePublish = "publish"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Service     string `yaml:"service" default:"tradepulse"`
	Logger      struct {
		Level   string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
		Format  string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output  string `yaml:"output" default:"stdout"`
		Collect struct {
			Enabled   bool          `yaml:"enabled"`
			Topic     string        `yaml:"topic" default:"logs"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100"`
		} `yaml:"collect"`
	} `yaml:"logger"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Profiling struct {
		Enabled       bool   `yaml:"enabled"`
		ServerAddress string `yaml:"server_address" default:"http://localhost:4040"`
		AppName       string `yaml:"app_name" default:"tradepulse"`
	} `yaml:"profiling"`
	Pipeline struct {
		MarketLanes int `yaml:"market_lanes" default:"8" validate:"min=1"`
		LaneSize    int `yaml:"lane_size" default:"1024" validate:"min=1"`
		TextWorkers int `yaml:"text_workers" default:"4" validate:"min=1"`
		TextQueue   int `yaml:"text_queue" default:"256" validate:"min=1"`
		MaxRPS      int `yaml:"max_rps" validate:"min=0"`
	} `yaml:"pipeline"`
	Indicators struct {
		HistorySize      int     `yaml:"history_size" default:"200" validate:"min=2"`
		MinHistory       int     `yaml:"min_history" default:"50" validate:"min=1"`
		RSIPeriod        int     `yaml:"rsi_period" default:"14" validate:"min=1"`
		SMAShort         int     `yaml:"sma_short" default:"20" validate:"min=1"`
		SMALong          int     `yaml:"sma_long" default:"50" validate:"min=1"`
		BollingerPeriod  int     `yaml:"bollinger_period" default:"20" validate:"min=2"`
		BollingerK       float64 `yaml:"bollinger_k" default:"2" validate:"gt=0"`
		VolatilityWindow int     `yaml:"volatility_window" default:"20" validate:"min=2"`
	} `yaml:"indicators"`
	Decision struct {
		ConfidenceThreshold float64 `yaml:"confidence_threshold" default:"0.6" validate:"gte=0,lte=1"`
		Oversold            float64 `yaml:"oversold" default:"30" validate:"gte=0,lte=100"`
		Overbought          float64 `yaml:"overbought" default:"70" validate:"gte=0,lte=100"`
	} `yaml:"decision"`
	Risk struct {
		BaseVolumeUSD  float64 `yaml:"base_volume_usd" default:"20" validate:"gt=0"`
		TrendVolumeUSD float64 `yaml:"trend_volume_usd" default:"100" validate:"gt=0"`
	} `yaml:"risk"`
	Discovery struct {
		Lookback          time.Duration `yaml:"lookback" default:"300s"`
		Threshold         int           `yaml:"threshold" default:"10" validate:"min=1"`
		BootstrapAttempts int           `yaml:"bootstrap_attempts" default:"3" validate:"min=1"`
		BootstrapBackoff  time.Duration `yaml:"bootstrap_backoff" default:"2s"`
	} `yaml:"discovery"`
	Assets struct {
		Crypto []string `yaml:"crypto"`
		Stocks []string `yaml:"stocks"`
	} `yaml:"assets"`
	Stream struct {
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"20s"`
		ReadTimeout    time.Duration `yaml:"read_timeout" default:"60s"`
		BufferSize     int           `yaml:"buffer_size" default:"1024" validate:"min=1"`
	} `yaml:"stream"`
	Trading struct {
		Mode        string  `yaml:"mode" default:"mock" validate:"oneof=mock live publish"`
		CryptoVenue string  `yaml:"crypto_venue" default:"kraken" validate:"oneof=kraken binance"`
		PaperCash   float64 `yaml:"paper_cash" default:"10000" validate:"gt=0"`
		Queue       struct {
			Enabled    bool          `yaml:"enabled"`
			Workers    int           `yaml:"workers" default:"4" validate:"min=1"`
			RetryLimit int           `yaml:"retry_limit" default:"3" validate:"min=0"`
			RetryDelay time.Duration `yaml:"retry_delay" default:"5s"`
		} `yaml:"queue"`
	} `yaml:"trading"`
	Kraken struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		RESTURL   string `yaml:"rest_url" default:"https://api.kraken.com"`
		WSURL     string `yaml:"ws_url" default:"wss://ws.kraken.com/v2"`
	} `yaml:"kraken"`
	Binance struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url"`
		Quote     string `yaml:"quote" default:"USDT"`
	} `yaml:"binance"`
	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURL   string `yaml:"base_url" default:"https://paper-api.alpaca.markets"`
		DataURL   string `yaml:"data_url" default:"wss://stream.data.alpaca.markets/v2/iex"`
	} `yaml:"alpaca"`
	Analytics struct {
		BaseURL  string        `yaml:"base_url" default:"http://localhost:8000" validate:"url"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
		Attempts int           `yaml:"attempts" default:"3" validate:"min=1"`
	} `yaml:"analytics"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		ClientID     string   `yaml:"client_id" default:"tradepulse"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=snappy gzip lz4 zstd"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Topics       struct {
			Text    string `yaml:"text" default:"text-events"`
			Market  string `yaml:"market" default:"market-events"`
			Audit   string `yaml:"audit" default:"decision-audit"`
			Intents string `yaml:"intents" default:"order-intents"`
		} `yaml:"topics"`
		Consumer struct {
			GroupID     string        `yaml:"group_id" default:"tradepulse"`
			StartOffset string        `yaml:"start_offset" default:"latest" validate:"oneof=earliest latest"`
			Workers     int           `yaml:"workers" default:"4" validate:"min=1"`
			BufferSize  int           `yaml:"buffer_size" default:"256" validate:"min=1"`
			RetryMax    int           `yaml:"retry_max" default:"3" validate:"min=0"`
			BackoffMin  time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic    string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		Prefix   string `yaml:"prefix" default:"tradepulse"`
	} `yaml:"redis"`
	News struct {
		Enabled  bool          `yaml:"enabled"`
		Feeds    []string      `yaml:"feeds"`
		Interval time.Duration `yaml:"interval" default:"300s"`
		SeenTTL  time.Duration `yaml:"seen_ttl" default:"48h"`
	} `yaml:"news"`
	Social struct {
		Enabled    bool          `yaml:"enabled"`
		Subreddits []string      `yaml:"subreddits"`
		Interval   time.Duration `yaml:"interval" default:"60s"`
		Limit      int           `yaml:"limit" default:"100" validate:"min=1,max=100"`
		SeenTTL    time.Duration `yaml:"seen_ttl" default:"24h"`
		Reddit     struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
			Username     string `yaml:"username"`
			Password     string `yaml:"password"`
			UserAgent    string `yaml:"user_agent" default:"tradepulse/1.0"`
		} `yaml:"reddit"`
	} `yaml:"social"`
	Storage struct {
		Backends      []string      `yaml:"backends" validate:"dive,oneof=clickhouse postgres kafka"`
		QueueSize     int           `yaml:"queue_size" default:"4096" validate:"min=1"`
		BatchSize     int           `yaml:"batch_size" default:"200" validate:"min=1"`
		FlushInterval time.Duration `yaml:"flush_interval" default:"2s"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"tradepulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		Compression      string        `yaml:"compression" default:"lz4" validate:"oneof=lz4 zstd none"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Postgres struct {
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"5432"`
		User     string `yaml:"user" default:"tradepulse"`
		Password string `yaml:"password"`
		Database string `yaml:"database" default:"tradepulse"`
		SSLMode  string `yaml:"ssl_mode" default:"disable"`
	} `yaml:"postgres"`
}

// Load reads and parses a YAML configuration file, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present), then the YAML file, and overrides
// secrets, brokers and the trade mode from the environment.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyEnv(os.Getenv)
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) finish() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	setStr := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setList := func(dst *[]string, key string) {
		if v := getenv(key); v != "" {
			*dst = util.SplitCSV(v)
		}
	}
	setInt := func(dst *int, key string) {
		*dst = util.ParseIntDefault(getenv(key), *dst)
	}
	setFloat := func(dst *float64, key string) {
		*dst = util.ParseFloatDefault(getenv(key), *dst)
	}

	setStr(&c.Environment, "APP_ENV")
	setStr(&c.Logger.Level, "LOG_LEVEL")
	setStr(&c.Trading.Mode, "TRADING_MODE")
	setStr(&c.Trading.CryptoVenue, "CRYPTO_VENUE")
	setStr(&c.Kraken.APIKey, "KRAKEN_API_KEY")
	setStr(&c.Kraken.APISecret, "KRAKEN_API_SECRET")
	setStr(&c.Binance.APIKey, "BINANCE_API_KEY")
	setStr(&c.Binance.APISecret, "BINANCE_API_SECRET")
	setStr(&c.Alpaca.APIKey, "ALPACA_API_KEY")
	setStr(&c.Alpaca.APISecret, "ALPACA_API_SECRET")
	setStr(&c.Analytics.BaseURL, "ANALYTICS_URL")
	setStr(&c.Redis.Host, "REDIS_HOST")
	setStr(&c.Redis.Password, "REDIS_PASSWORD")
	setStr(&c.ClickHouse.Host, "CLICKHOUSE_HOST")
	setStr(&c.ClickHouse.Password, "CLICKHOUSE_PASSWORD")
	setStr(&c.Postgres.DSN, "POSTGRES_DSN")
	setStr(&c.Postgres.Password, "POSTGRES_PASSWORD")
	setStr(&c.Social.Reddit.ClientID, "REDDIT_CLIENT_ID")
	setStr(&c.Social.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET")
	setStr(&c.Social.Reddit.UserAgent, "REDDIT_USER_AGENT")
	setList(&c.Kafka.Brokers, "KAFKA_BROKERS")
	setList(&c.Social.Subreddits, "SUBREDDITS")
	setList(&c.Storage.Backends, "STORAGE_BACKENDS")
	setList(&c.Assets.Crypto, "CRYPTO_PAIRS")
	setList(&c.Assets.Stocks, "STOCK_TICKERS")
	setInt(&c.Server.Port, "HTTP_PORT")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setInt(&c.ClickHouse.Port, "CLICKHOUSE_PORT")
	setInt(&c.Postgres.Port, "POSTGRES_PORT")
	setFloat(&c.Trading.PaperCash, "PAPER_CASH")
	setFloat(&c.Decision.ConfidenceThreshold, "CONFIDENCE_THRESHOLD")

	if v := getenv("KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Kafka.Enabled = b
		}
	}
	if v := getenv("REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Redis.Enabled = b
		}
	}
}

// Validate runs the cross-field checks that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Indicators.SMAShort > c.Indicators.SMALong {
		errs = append(errs, fmt.Errorf("indicators.sma_short (%d) must not exceed sma_long (%d)", c.Indicators.SMAShort, c.Indicators.SMALong))
	}
	if c.Indicators.MinHistory >= c.Indicators.HistorySize {
		errs = append(errs, fmt.Errorf("indicators.min_history must be below history_size"))
	}
	if c.Decision.Oversold >= c.Decision.Overbought {
		errs = append(errs, fmt.Errorf("decision.oversold must be below overbought"))
	}
	if c.Trading.Mode == ModePublish && !c.Kafka.Enabled {
		errs = append(errs, fmt.Errorf("trading.mode publish requires kafka.enabled"))
	}
	if c.Trading.Queue.Enabled && !c.Redis.Enabled {
		errs = append(errs, fmt.Errorf("trading.queue requires redis.enabled"))
	}
	if c.Trading.Mode == ModeLive {
		if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
			errs = append(errs, fmt.Errorf("live mode requires alpaca credentials"))
		}
		switch c.Trading.CryptoVenue {
		case "kraken":
			if c.Kraken.APIKey == "" || c.Kraken.APISecret == "" {
				errs = append(errs, fmt.Errorf("live mode requires kraken credentials"))
			}
		case "binance":
			if c.Binance.APIKey == "" || c.Binance.APISecret == "" {
				errs = append(errs, fmt.Errorf("live mode requires binance credentials"))
			}
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled"))
	}
	if c.Logger.Collect.Enabled && !c.Kafka.Enabled {
		errs = append(errs, fmt.Errorf("logger.collect requires kafka.enabled"))
	}
	for _, b := range c.Storage.Backends {
		if b == "kafka" && !c.Kafka.Enabled {
			errs = append(errs, fmt.Errorf("storage backend kafka requires kafka.enabled"))
		}
	}
	return errors.Join(errs...)
}

// HasBackend reports whether name is a configured storage backend.
func (c *Config) HasBackend(name string) bool {
	for _, b := range c.Storage.Backends {
		if b == name {
			return true
		}
	}
	return false
}
