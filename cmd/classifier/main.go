// Command classifier runs the classifier-router stage of the docflow
// pipeline: it consumes extracted document text, runs the configured
// detectors, and publishes routing attributes downstream.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docflow/internal/classifier"
	"docflow/internal/classifier/registry"
	"docflow/internal/idempotency"
	"docflow/internal/ops"
	"docflow/internal/platform/config"
	"docflow/internal/platform/httpserver"
	"docflow/internal/platform/kafka/admin"
	"docflow/internal/platform/kafka/consumer"
	"docflow/internal/platform/kafka/producer"
	"docflow/internal/platform/logger"
	"docflow/internal/platform/metrics"
	platformredis "docflow/internal/platform/redis"
	"docflow/internal/stage"
	"docflow/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.App.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("classifier-router exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	// Configuration problems must stop the process before it joins the
	// consumer group.
	reg, err := registry.Load(cfg.App.DetectorConfigPath)
	if err != nil {
		return err
	}
	router, err := classifier.New(reg, classifier.WithLogger(log))
	if err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()
	if err := admin.EnsureTopics(startupCtx, cfg.Kafka.Brokers,
		cfg.Kafka.InputTopic, cfg.Kafka.OutputTopic, cfg.Kafka.DeadLetterTopic); err != nil {
		return err
	}

	cons, err := consumer.New(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer cons.Close()

	prod, err := producer.New(cfg.Kafka)
	if err != nil {
		return err
	}
	defer prod.Close()

	m := metrics.New()
	dlq := stage.NewDeadLetterer(prod, cfg.Kafka.DeadLetterTopic, domain.StageClassifierRouter, log)
	guard := idempotency.NewRedisGuard(redisClient.Client, cfg.App.IdempotencyTTL)
	runner := stage.NewRunner(cons, prod, dlq, guard, router, cfg, m, log)

	opsSrv := httpserver.New(cfg.App.OpsAddr, ops.NewRouter(reg, redisClient))
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops server error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("classifier-router starting",
		"input_topic", cfg.Kafka.InputTopic,
		"output_topic", cfg.Kafka.OutputTopic,
		"consumer_group", cfg.Kafka.ConsumerGroup,
		"detectors", reg.Names(),
	)

	runErr := runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("ops server shutdown failed", "error", err)
	}

	return runErr
}
