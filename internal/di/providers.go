package di

import (
	"context"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/internal/handler/api"
	internalrepo "MarketPulse/internal/repository"
	"MarketPulse/internal/service/cached"
	"MarketPulse/internal/service/company"
	"MarketPulse/internal/service/filings"
	"MarketPulse/internal/service/githubapi"
	"MarketPulse/internal/service/llm"
	"MarketPulse/internal/service/macro"
	"MarketPulse/internal/service/marketdata"
	svcmetrics "MarketPulse/internal/service/metrics"
	"MarketPulse/internal/service/news"
	"MarketPulse/internal/service/nlp"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/service/social"
	"MarketPulse/internal/service/startup"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/cache"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/queue"
	"MarketPulse/pkg/server"
	"MarketPulse/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

const initTimeout = 10 * time.Second

var (
	probeMarketRequest = models.MarketDataRequest{Tickers: []string{"AAPL"}, Period: "5d", Interval: "1d"}
	probeSocialRequest = models.SocialSentimentRequest{Subreddits: []string{"stocks"}}
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideTracing installs the global tracer provider. The cleanup flushes pending spans.
func ProvideTracing(cfg *config.Config) (server.Tracing, func(), error) {
	tc := tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Output:      cfg.Tracing.Output,
	}
	if err := tracing.Init(tc); err != nil {
		return server.Tracing{}, nil, fmt.Errorf("tracing: %w", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(ctx)
	}
	return server.Tracing{Enabled: tc.Enabled}, cleanup, nil
}

// ProvideMetrics registers the collectors and returns the pipeline recorder.
func ProvideMetrics() domrepo.Metrics {
	svcmetrics.Register()
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideHTTPClient creates the outbound client shared by every source adapter.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Sources.Timeout),
		xhttp.WithUserAgent(cfg.Sources.UserAgent),
		xhttp.WithRateLimit(cfg.Sources.RequestsPerSecond, cfg.Sources.Burst),
		xhttp.WithRetry(2, 500*time.Millisecond),
	)
}

// ProvideSummarizer returns nil when the configured provider has no key.
func ProvideSummarizer(cfg *config.Config, client *xhttp.Client, m domrepo.Metrics, l *applogger.Logger) domsvc.Summarizer {
	s := llm.New(llm.Settings{
		Provider:       cfg.LLM.Provider,
		OpenAIKey:      cfg.LLM.OpenAIKey,
		OpenAIURL:      cfg.LLM.OpenAIURL,
		OpenAIModel:    cfg.LLM.OpenAIModel,
		AnthropicKey:   cfg.LLM.AnthropicKey,
		AnthropicModel: cfg.LLM.AnthropicModel,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Timeout:        cfg.LLM.Timeout,
	}, client, m)
	if s == nil {
		l.Warn("no summarizer credential, insights fall back to rules", applogger.String("provider", cfg.LLM.Provider))
	}
	return s
}

// ProvideRedis connects to Redis when enabled; nil otherwise.
func ProvideRedis(cfg *config.Config) (*cache.RedisCache, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Cache.Prefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideCache layers an in-process LRU over Redis, or uses the LRU alone.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache) cache.Service {
	mem := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemoryItems),
		cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
	)
	if rc == nil {
		return mem
	}
	return cache.NewLayeredCache(mem, rc, time.Minute)
}

// ProvideSources builds every signal adapter, wrapped by the source cache when enabled.
func ProvideSources(cfg *config.Config, client *xhttp.Client, s domsvc.Summarizer, c cache.Service, l *applogger.Logger) (usecase.Sources, error) {
	gh, err := githubapi.New(cfg.Sources.GithubToken, "")
	if err != nil {
		return usecase.Sources{}, fmt.Errorf("github client: %w", err)
	}

	var (
		market  domsvc.MarketDataSource = marketdata.NewService(marketdata.NewYahoo(client, ""), marketdata.NewAlphaVantage(client, ""), cfg.Sources.AlphaVantageKey, l.With(applogger.String("source", "market_data")))
		newsSrc domsvc.NewsSource       = news.NewService(client, news.NewCrawler(cfg.Sources.UserAgent, cfg.Sources.Timeout, cfg.Sources.MaxArticlesPerSeed, l), s, l.With(applogger.String("source", "news")))
		filing  domsvc.FilingsSource    = filings.NewEDGAR(client, "", cfg.Sources.EdgarUserAgent, s, l.With(applogger.String("source", "sec_filings")))
		soc     domsvc.SocialSource     = social.NewService(client, l.With(applogger.String("source", "social")))
		mac     domsvc.MacroSource      = macro.NewFRED(client, "", l.With(applogger.String("source", "macro")))
		comp    domsvc.CompanySource    = company.NewService(client, gh, l.With(applogger.String("source", "company_events")))
		start   domsvc.StartupSource    = startup.NewService(client, gh, l.With(applogger.String("source", "startup_signals")))
	)

	if cfg.Cache.Enabled {
		ttl := cfg.Cache.TTL
		market = cached.NewMarketData(market, c, ttl)
		newsSrc = cached.NewNews(newsSrc, c, ttl)
		filing = cached.NewFilings(filing, c, ttl)
		soc = cached.NewSocial(soc, c, ttl)
		mac = cached.NewMacro(mac, c, ttl)
		comp = cached.NewCompany(comp, c, ttl)
		start = cached.NewStartup(start, c, ttl)
	}

	return usecase.Sources{
		Market:  market,
		News:    newsSrc,
		Filings: filing,
		Social:  soc,
		Macro:   mac,
		Company: comp,
		Startup: start,
		NLP:     nlp.NewExtractor(),
	}, nil
}

// ProvideDefaults merges configured seeds into the built-in request defaults.
func ProvideDefaults(cfg *config.Config) usecase.Defaults {
	d := usecase.DefaultSettings()
	if len(cfg.Sources.NewsURLs) > 0 {
		d.NewsURLs = cfg.Sources.NewsURLs
	}
	if len(cfg.Sources.RSSURLs) > 0 {
		d.RSSURLs = cfg.Sources.RSSURLs
	}
	if cfg.Sources.DefaultCIK != "" {
		d.CIK = cfg.Sources.DefaultCIK
	}
	return d
}

// ProvideAgents creates the per-source use case.
func ProvideAgents(cfg *config.Config, src usecase.Sources, s domsvc.Summarizer, d usecase.Defaults, l *applogger.Logger) *usecase.AgentUseCase {
	return usecase.NewAgentUseCase(src, usecase.NewInsighter(s, cfg.LLM.InsightRowLimit, l), d, l)
}

// ProvideAggregator creates the ticker scorer.
func ProvideAggregator(cfg *config.Config, s domsvc.Summarizer, m domrepo.Metrics, l *applogger.Logger) *usecase.Aggregator {
	return usecase.NewAggregator(s,
		usecase.WithSummarizerTimeout(cfg.LLM.Timeout),
		usecase.WithAggregatorLogger(l),
		usecase.WithAggregatorMetrics(m),
	)
}

// ProvideClickHouseClient connects to ClickHouse when enabled; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx, pkgch.Config{
		Host:         cfg.ClickHouse.Host,
		Port:         cfg.ClickHouse.Port,
		Database:     cfg.ClickHouse.Database,
		User:         cfg.ClickHouse.User,
		Password:     cfg.ClickHouse.Password,
		DialTimeout:  cfg.ClickHouse.DialTimeout,
		ReadTimeout:  cfg.ClickHouse.ReadTimeout,
		MaxExecTime:  cfg.ClickHouse.MaxExecutionTime,
		UseHTTP:      cfg.ClickHouse.UseHTTP,
		AsyncInsert:  cfg.ClickHouse.AsyncInsert,
		WaitForAsync: cfg.ClickHouse.WaitForAsync,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideRecommendationStore ensures the schema and returns the store, or nil without ClickHouse.
func ProvideRecommendationStore(ch *pkgch.Client, l *applogger.Logger) (domrepo.RecommendationStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHRecommendationStore(ch, l)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a producer when Kafka is enabled; nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	p := cfg.Kafka.Producer
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		RequiredAcks: cfg.Kafka.RequiredAcks,
		Compression:  cfg.Kafka.Compression,
		MaxAttempts:  p.MaxAttempts,
		WriteTimeout: p.WriteTimeout,
		ReadTimeout:  p.ReadTimeout,
		BatchSize:    p.BatchSize,
		BatchBytes:   p.BatchBytes,
		Linger:       p.Linger,
		HashByKey:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvidePublisher returns the recommendations publisher, or nil without a producer.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideHub creates the websocket hub for live runs.
func ProvideHub(cfg *config.Config, l *applogger.Logger) *api.Hub {
	return api.NewHub(l, cfg.Server.AllowedOrigins)
}

// ProvidePipeline wires the stage graph to its sinks. Disabled sinks stay nil.
func ProvidePipeline(
	agents *usecase.AgentUseCase,
	agg *usecase.Aggregator,
	store domrepo.RecommendationStore,
	pub domrepo.Publisher,
	hub *api.Hub,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(agents, agg, usecase.Sinks{
		Store:       store,
		Publisher:   pub,
		Broadcaster: hub,
	}, m, l)
}

// ProvideQueue picks the Redis queue when Redis is up, the in-process queue otherwise.
// A disabled queue yields nil and async submissions are refused.
func ProvideQueue(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) queue.Queue {
	if !cfg.Queue.Enabled {
		return nil
	}
	qc := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.Size,
		RetryLimit: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	ql := l.With(applogger.String("component", "queue"))
	if rc == nil {
		return queue.NewMemoryQueue(ql, qc)
	}
	return queue.NewRedisQueue(ql, qc, rc.Client(), queue.ModeProducerConsumer,
		queue.WithKeyPrefix(cfg.Cache.Prefix+":queue:"+cfg.Queue.Name))
}

// ProvideJobs registers the insights job on the queue and returns the use case.
func ProvideJobs(cfg *config.Config, c cache.Service, q queue.Queue, p *usecase.Pipeline, l *applogger.Logger) *usecase.JobsUseCase {
	uc := usecase.NewJobsUseCase(internalrepo.NewCacheJobStore(c, cfg.Queue.JobTTL), q, p, l)
	if q != nil {
		q.RegisterJob(uc.Job())
	}
	return uc
}

// ProvideScheduler returns nil when no cron expression is configured.
func ProvideScheduler(cfg *config.Config, jobs *usecase.JobsUseCase, c cache.Service, l *applogger.Logger) (*usecase.Scheduler, error) {
	if cfg.Schedule.Cron == "" {
		return nil, nil
	}
	s, err := usecase.NewScheduler(cfg.Schedule.Cron, cfg.Schedule.Tickers, jobs, c, l)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return s, nil
}

// ProvideKafkaConsumer subscribes to insight requests when the consumer is enabled.
func ProvideKafkaConsumer(cfg *config.Config, jobs *usecase.JobsUseCase, m domrepo.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	cc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    cc.GroupID,
		Workers:    cc.Workers,
		RetryMax:   cc.RetryMax,
		BackoffMin: cc.BackoffMin,
		BackoffMax: cc.BackoffMax,
		DLQTopic:   cc.DLQTopic,
		MinBytes:   cc.MinBytes,
		MaxBytes:   cc.MaxBytes,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), pkgkafka.LogHook(l)))
	consumer.RegisterHandler(usecase.NewKafkaRequestsHandler(cfg.Kafka.RequestsTopic, jobs, m))
	return consumer, nil
}

// ProvideHandler assembles the HTTP handler with the optional features that are wired.
func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	agents *usecase.AgentUseCase,
	pipeline *usecase.Pipeline,
	jobs *usecase.JobsUseCase,
	store domrepo.RecommendationStore,
	hub *api.Hub,
	src usecase.Sources,
	rc *cache.RedisCache,
	producer *pkgkafka.Producer,
) *api.InsightsHandler {
	opts := []api.Option{
		api.WithJobs(jobs),
		api.WithHub(hub),
		api.WithProbe("market_data", marketProbe(src.Market)),
		api.WithProbe("reddit_api", redditProbe(src.Social)),
		api.WithProbe("llm_key", func(context.Context) bool { return cfg.SummarizerKey() != "" }),
		api.WithProbe("redis", pingProbe(rc != nil, func(ctx context.Context) error { return rc.Ping(ctx) })),
		api.WithProbe("clickhouse", pingProbe(store != nil, func(ctx context.Context) error { return store.Health(ctx) })),
		api.WithProbe("kafka", pingProbe(producer != nil, func(ctx context.Context) error { return producer.Ping(ctx) })),
	}
	if store != nil {
		opts = append(opts, api.WithHistory(store))
	}
	return api.NewInsightsHandler(l, agents, pipeline, opts...)
}

// ProvideHTTPServer builds the echo server with rate limiting and metrics.
func ProvideHTTPServer(cfg *config.Config, h *api.InsightsHandler, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRequestLimit(ratelimit.New(), cfg.RateLimit.PerMinute))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp collects the long-running parts. It also routes warn/error digests to Kafka when asked.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	_ server.Tracing,
	srv *xhttp.Server,
	pipeline *usecase.Pipeline,
	q queue.Queue,
	sched *usecase.Scheduler,
	consumer *pkgkafka.Consumer,
	hub *api.Hub,
	producer *pkgkafka.Producer,
) *server.App {
	if cfg.Log.Digest.Enabled && producer != nil && cfg.Kafka.DigestTopic != "" {
		l.AttachDigest(&applogger.DigestConfig{
			Interval:  cfg.Log.Digest.Interval,
			MaxGroups: cfg.Log.Digest.MaxGroups,
			Sink:      internalrepo.NewKafkaDigestSink(producer, cfg.Kafka.DigestTopic),
		})
	}

	opts := []server.Option{
		server.WithHTTP(srv),
		server.WithRunner(pipeline),
		server.WithHub(hub),
	}
	if q != nil {
		opts = append(opts, server.WithQueue(q))
	}
	if sched != nil {
		opts = append(opts, server.WithScheduler(sched))
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer))
	}
	return server.New(cfg, l, opts...)
}

func marketProbe(src domsvc.MarketDataSource) api.Probe {
	return func(ctx context.Context) bool {
		rows, err := src.Fetch(ctx, probeMarketRequest)
		return err == nil && len(rows) > 0
	}
}

func redditProbe(src domsvc.SocialSource) api.Probe {
	return func(ctx context.Context) bool {
		_, err := src.Fetch(ctx, probeSocialRequest)
		return err == nil
	}
}

// pingProbe reports false for a backend that is not wired.
func pingProbe(wired bool, ping func(ctx context.Context) error) api.Probe {
	return func(ctx context.Context) bool {
		return wired && ping(ctx) == nil
	}
}
