package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/TrackMint/config"
	tracknumbersapi "github.com/BearBump/TrackMint/internal/api/tracknumbers_api"
	"github.com/BearBump/TrackMint/internal/broker/kafka"
	"github.com/BearBump/TrackMint/internal/cache/rediscache"
	"github.com/BearBump/TrackMint/internal/counter/rediscounter"
	"github.com/BearBump/TrackMint/internal/services/tracknumbers"
	"github.com/BearBump/TrackMint/internal/storage/pgtracknum"
)

type trackMintApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     trackMintOpts
	api      *tracknumbersapi.API
	svc      *tracknumbers.Service
	consumer *kafka.Consumer
	closers  []func()
}

func mustBootstrapTrackMintAPI() *trackMintApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.TrackMint.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.TrackMint.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "trackmint-api"
	}
	topic := cfg.Kafka.TrackingIssuedTopicName
	if topic == "" {
		topic = "product-tracking-id"
	}
	counterKey := cfg.TrackMint.CounterKey
	if counterKey == "" {
		counterKey = "product-tracking-id"
	}
	callTimeout := time.Duration(cfg.TrackMint.AdapterTimeoutSeconds) * time.Second
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	cacheTTL := time.Duration(cfg.TrackMint.CurrentStatusTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	rateLimit := int64(cfg.TrackMint.RateLimitPerMinute)

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)

	var storeOpts []pgtracknum.Option
	if cfg.TrackMint.DestinationSlugUnique {
		storeOpts = append(storeOpts, pgtracknum.WithDestinationSlugUnique())
	}
	st := mustOpenPostgresWithRetry(connString, 60*time.Second, storeOpts...)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	counter := rediscounter.New(redisAddr)
	rc := rediscache.New(redisAddr)

	var rl tracknumbersapi.RateLimiter
	if rateLimit > 0 {
		rl = rediscache.NewRateLimiter(redisAddr)
	}

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)
	consumer := kafka.NewConsumer(brokers, topic, consumerGroup)

	svc := tracknumbers.New(st, counter, producer, rc, tracknumbers.Config{
		CounterKey:  counterKey,
		Topic:       topic,
		CallTimeout: callTimeout,
		CurrentTTL:  cacheTTL,
	})
	api := tracknumbersapi.New(svc, rl, rateLimit)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &trackMintApp{
		ctx:    ctx,
		cancel: cancel,
		opts: trackMintOpts{
			httpAddr:      httpAddr,
			swaggerPath:   swaggerPath,
			topic:         topic,
			consumerGroup: consumerGroup,
		},
		api:      api,
		svc:      svc,
		consumer: consumer,
		closers: []func(){
			st.Close,
			func() { _ = counter.Close() },
			func() { _ = consumer.Close() },
		},
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration, opts ...pgtracknum.Option) *pgtracknum.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgtracknum.New(connString, opts...)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *trackMintApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for _, c := range a.closers {
		c()
	}
}

func (a *trackMintApp) Run() error {
	return runTrackMintAPI(a.ctx, a.opts, a.api, a.svc, a.consumer)
}
