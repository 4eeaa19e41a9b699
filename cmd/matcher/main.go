package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"techconnect-matcher/internal/ai"
	"techconnect-matcher/internal/config"
	"techconnect-matcher/internal/cvparse"
	"techconnect-matcher/internal/extract"
	"techconnect-matcher/internal/fanout"
	"techconnect-matcher/internal/fetch"
	"techconnect-matcher/internal/logger"
	"techconnect-matcher/internal/storage/postgres"
	"techconnect-matcher/internal/storage/redis"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting matcher",
		zap.String("log_level", cfg.LogLevel),
		zap.String("queue_key", cfg.QueueKey),
	)

	log.Info("connecting to PostgreSQL...")
	store, err := postgres.New(cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer store.Close()

	log.Info("PostgreSQL connected successfully")

	log.Info("connecting to Redis...")
	cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer cache.Close()

	log.Info("Redis connected successfully")

	queue := redis.NewQueue(cache, cfg.QueueKey, log)

	aiClient := ai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout, log)
	fetcher := fetch.New(cfg.FetchTimeout, log)
	extractor := extract.Chain{extract.PlainText{}}

	pipeline := cvparse.New(store, fetcher, extractor, aiClient, queue, cvparse.Limits{
		ParseAIDaily:  cfg.ParseAIDailyLimit,
		AnalyzeDaily:  cfg.AnalyzeAIDailyLimit,
		AnalyzeMinute: cfg.AIPerMinuteLimit,
	}, log)

	controller := fanout.New(store, cache, log)
	worker := fanout.NewWorker(queue, controller, pipeline, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("matcher is running...")
	log.Info("press Ctrl+C to stop")

	worker.Start(ctx)

	log.Info("matcher stopped")
}
