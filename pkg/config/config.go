package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"MarketPulse/pkg/util"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		Digest struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval"`
			MaxGroups int           `yaml:"max_groups"`
		} `yaml:"digest"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"service_name"`
		Output      string `yaml:"output"`
	} `yaml:"tracing"`
	RateLimit struct {
		Enabled   bool `yaml:"enabled"`
		PerMinute int  `yaml:"per_minute"`
	} `yaml:"ratelimit"`
	LLM struct {
		Provider        string        `yaml:"provider"` // openai or anthropic
		OpenAIKey       string        `yaml:"openai_api_key"`
		OpenAIModel     string        `yaml:"openai_model"`
		OpenAIURL       string        `yaml:"openai_url"`
		AnthropicKey    string        `yaml:"anthropic_api_key"`
		AnthropicModel  string        `yaml:"anthropic_model"`
		Temperature     float64       `yaml:"temperature"`
		MaxTokens       int           `yaml:"max_tokens"`
		Timeout         time.Duration `yaml:"timeout"`
		InsightRowLimit int           `yaml:"insight_row_limit"`
	} `yaml:"llm"`
	Sources struct {
		UserAgent          string        `yaml:"user_agent"`
		EdgarUserAgent     string        `yaml:"edgar_user_agent"`
		Timeout            time.Duration `yaml:"timeout"`
		RequestsPerSecond  float64       `yaml:"requests_per_second"`
		Burst              int           `yaml:"burst"`
		AlphaVantageKey    string        `yaml:"alpha_vantage_api_key"`
		GithubToken        string        `yaml:"github_token"`
		NewsURLs           []string      `yaml:"news_urls"`
		RSSURLs            []string      `yaml:"rss_urls"`
		MaxArticlesPerSeed int           `yaml:"max_articles_per_seed"`
		DefaultCIK         string        `yaml:"default_cik"`
	} `yaml:"sources"`
	Cache struct {
		Enabled     bool          `yaml:"enabled"`
		Prefix      string        `yaml:"prefix"`
		TTL         time.Duration `yaml:"ttl"`
		MemoryItems int           `yaml:"memory_items"`
	} `yaml:"cache"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Queue struct {
		Enabled     bool          `yaml:"enabled"`
		Name        string        `yaml:"name"`
		Workers     int           `yaml:"workers"`
		MaxRetries  int           `yaml:"max_retries"`
		RetryDelay  time.Duration `yaml:"retry_delay"`
		Size        int           `yaml:"size"` // in-memory buffer when redis is off
		JobTTL      time.Duration `yaml:"job_ttl"`
	} `yaml:"queue"`
	Schedule struct {
		Cron    string   `yaml:"cron"`
		Tickers []string `yaml:"tickers"`
	} `yaml:"schedule"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		Topic         string   `yaml:"topic"`
		RequestsTopic string   `yaml:"requests_topic"`
		DigestTopic   string   `yaml:"digest_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present), then the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = util.SplitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.AnthropicKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Sources.AlphaVantageKey = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.Sources.GithubToken = v
	}
	if v := os.Getenv("EDGAR_USER_AGENT"); v != "" {
		c.Sources.EdgarUserAgent = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("SCHEDULE_TICKERS"); v != "" {
		c.Schedule.Tickers = util.SplitList(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 60
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.OpenAIModel == "" {
		c.LLM.OpenAIModel = "gpt-3.5-turbo"
	}
	if c.LLM.OpenAIURL == "" {
		c.LLM.OpenAIURL = "https://api.openai.com/v1/chat/completions"
	}
	if c.LLM.AnthropicModel == "" {
		c.LLM.AnthropicModel = "claude-3-5-haiku-latest"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 256
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	if c.LLM.InsightRowLimit == 0 {
		c.LLM.InsightRowLimit = 10
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "MarketPulse/1.0"
	}
	if c.Sources.EdgarUserAgent == "" {
		c.Sources.EdgarUserAgent = "MarketPulse/1.0 (contact: ops@example.com)"
	}
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = 20 * time.Second
	}
	if c.Sources.RequestsPerSecond == 0 {
		c.Sources.RequestsPerSecond = 5
	}
	if c.Sources.Burst == 0 {
		c.Sources.Burst = 5
	}
	if len(c.Sources.NewsURLs) == 0 {
		c.Sources.NewsURLs = []string{"https://www.reuters.com/markets/us", "https://www.cnbc.com/finance/"}
	}
	if len(c.Sources.RSSURLs) == 0 {
		c.Sources.RSSURLs = []string{
			"https://feeds.reuters.com/reuters/businessNews",
			"https://www.cnbc.com/id/100003114/device/rss/rss.html",
		}
	}
	if c.Sources.MaxArticlesPerSeed == 0 {
		c.Sources.MaxArticlesPerSeed = 10
	}
	if c.Sources.DefaultCIK == "" {
		c.Sources.DefaultCIK = "0000320193"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "marketpulse"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 10 * time.Minute
	}
	if c.Cache.MemoryItems == 0 {
		c.Cache.MemoryItems = 512
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Queue.Name == "" {
		c.Queue.Name = "insights"
	}
	if c.Queue.Workers == 0 {
		c.Queue.Workers = 2
	}
	if c.Queue.MaxRetries == 0 {
		c.Queue.MaxRetries = 2
	}
	if c.Queue.RetryDelay == 0 {
		c.Queue.RetryDelay = 30 * time.Second
	}
	if c.Queue.Size == 0 {
		c.Queue.Size = 100
	}
	if c.Queue.JobTTL == 0 {
		c.Queue.JobTTL = 24 * time.Hour
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "marketpulse.recommendations"
	}
	if c.Kafka.RequestsTopic == "" {
		c.Kafka.RequestsTopic = "marketpulse.insights-requests"
	}
	if c.Kafka.Consumer.GroupID == "" {
		c.Kafka.Consumer.GroupID = "marketpulse"
	}
	if c.Kafka.Consumer.Workers == 0 {
		c.Kafka.Consumer.Workers = 2
	}
	if c.Kafka.Consumer.RetryMax == 0 {
		c.Kafka.Consumer.RetryMax = 3
	}
	if c.Kafka.Consumer.BackoffMin == 0 {
		c.Kafka.Consumer.BackoffMin = 200 * time.Millisecond
	}
	if c.Kafka.Consumer.BackoffMax == 0 {
		c.Kafka.Consumer.BackoffMax = 5 * time.Second
	}
	if c.ClickHouse.Host == "" {
		c.ClickHouse.Host = "localhost"
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "marketpulse"
	}
	if c.ClickHouse.User == "" {
		c.ClickHouse.User = "default"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console', got '%s'", c.Log.Format)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("llm.provider must be 'openai', 'anthropic' or 'none', got '%s'", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}
	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("ratelimit.per_minute cannot be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Schedule.Cron != "" && len(c.Schedule.Tickers) == 0 {
		return fmt.Errorf("schedule.tickers cannot be empty when schedule.cron is set")
	}
	return nil
}

// SummarizerKey returns the credential of the configured provider; empty means no summarizer.
func (c *Config) SummarizerKey() string {
	switch c.LLM.Provider {
	case "openai":
		return c.LLM.OpenAIKey
	case "anthropic":
		return c.LLM.AnthropicKey
	}
	return ""
}
