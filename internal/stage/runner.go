package stage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"

	"docflow/internal/classifier"
	"docflow/internal/idempotency"
	"docflow/internal/platform/config"
	"docflow/internal/platform/kafka/consumer"
	"docflow/internal/platform/metrics"
	"docflow/pkg/domain"
	"docflow/pkg/stageerr"
)

// Consumer is the inbound transport surface the runner needs.
type Consumer interface {
	Poll(ctx context.Context) ([]*consumer.Message, error)
	Commit(ctx context.Context, msgs ...*consumer.Message) error
}

// Publisher is the outbound transport surface the runner needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Runner drives the stage's message loop: poll a bounded batch, dispatch
// each message to a bounded worker pool, apply the idempotency guard,
// classify, publish downstream, then mark and commit. Classification is
// CPU-bound regex work, so it runs on the pool rather than the polling
// goroutine; one pathological document cannot stall consumption.
//
// Per message the ordering is fixed: check guard, do work, publish, mark,
// commit. Committing before a durable publish would risk silent loss on
// crash; marking before publish would risk silently dropping a document.
// Because a group commit is a per-partition high-water mark, commits are
// routed through an offsetTracker that only advances through contiguous
// finished offsets; a message left open pins its partition's commit until
// redelivery.
type Runner struct {
	consumer    Consumer
	publisher   Publisher
	deadLetter  *DeadLetterer
	guard       idempotency.Guard
	router      *classifier.Router
	outputTypes map[string]string
	offsets     *offsetTracker
	metrics     *metrics.Metrics
	logger      *slog.Logger

	stage           domain.Stage
	outputTopic     string
	maxTextLength   int
	processTimeout  time.Duration
	drainGrace      time.Duration
	workers         int64
	publishRetryMax uint64
}

// NewRunner wires a classifier-router stage runner.
func NewRunner(
	cons Consumer,
	pub Publisher,
	dlq *DeadLetterer,
	guard idempotency.Guard,
	router *classifier.Router,
	cfg config.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		consumer:        cons,
		publisher:       pub,
		deadLetter:      dlq,
		guard:           guard,
		router:          router,
		outputTypes:     router.OutputTypes(),
		offsets:         newOffsetTracker(),
		metrics:         m,
		logger:          logger,
		stage:           domain.StageClassifierRouter,
		outputTopic:     cfg.Kafka.OutputTopic,
		maxTextLength:   cfg.App.MaxTextLength,
		processTimeout:  cfg.App.ProcessTimeout,
		drainGrace:      cfg.App.DrainGrace,
		workers:         int64(cfg.App.Workers),
		publishRetryMax: cfg.Kafka.PublishRetryMax,
	}
}

// Run polls until ctx is canceled, then drains in-flight dispatches for up
// to the configured grace period. Work still in flight after the grace
// period is abandoned uncommitted; redelivery reprocesses it safely under
// the idempotency guard.
func (r *Runner) Run(ctx context.Context) error {
	sem := semaphore.NewWeighted(r.workers)
	var inflight sync.WaitGroup

	// Dispatches run on their own context so canceling ctx starts a drain
	// instead of killing work mid-publish. The cancel fires once drain
	// returns, so workers abandoned after the grace period stop promptly
	// instead of lingering against closed clients.
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	r.logger.Info("stage runner started",
		"stage", r.stage.String(),
		"workers", r.workers,
	)

	for ctx.Err() == nil {
		msgs, err := r.consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("poll failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range msgs {
			r.offsets.deliver(msg)
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			inflight.Add(1)
			go func(msg *consumer.Message) {
				defer sem.Release(1)
				defer inflight.Done()
				r.handle(workCtx, msg)
			}(msg)
		}
	}

	return r.drain(&inflight)
}

// drain waits for in-flight dispatches up to the grace period.
func (r *Runner) drain(inflight *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("stage runner drained")
		return nil
	case <-time.After(r.drainGrace):
		r.logger.Warn("drain grace period elapsed, abandoning in-flight work",
			"grace", r.drainGrace.String(),
		)
		return stageerr.New(stageerr.CodeInternal, "shutdown drain timed out")
	}
}

// handle processes one message end to end on the worker pool. The timeout
// bounds the guard and publish calls; classification itself is linear-scan
// regex work over length-capped text and runs without a context.
func (r *Runner) handle(workCtx context.Context, msg *consumer.Message) {
	ctx, cancel := context.WithTimeout(workCtx, r.processTimeout)
	defer cancel()

	r.metrics.MessagesConsumed.Inc()
	start := time.Now()

	in, err := ParseInbound(msg.Value, r.maxTextLength)
	if err != nil {
		r.reject(ctx, msg, err)
		return
	}

	log := r.logger.With("doc_id", in.DocID, "stage", r.stage.String())

	processed, err := r.guard.HasProcessed(ctx, in.DocID, r.stage)
	if err != nil {
		// Store outage: leave the message uncommitted so the transport
		// redelivers it once the store recovers.
		log.Error("idempotency check failed, leaving message for redelivery",
			"error", err,
			"error_code", string(stageerr.CodeOf(err)),
		)
		return
	}
	if processed {
		r.metrics.IdempotentSkips.Inc()
		log.Info("document already processed, skipping")
		r.finish(ctx, msg, log)
		return
	}

	result, err := r.router.Classify(in.Text)
	if err != nil {
		r.reject(ctx, msg, err)
		return
	}
	r.metrics.DetectorFailures.Add(float64(len(result.Failed)))
	for name, reason := range result.Failed {
		log.Warn("detector failed during classification",
			"detector", name,
			"error_code", string(stageerr.CodeDetector),
			"reason", reason,
		)
	}

	out := BuildOutbound(in, result, r.outputTypes)
	payload, err := json.Marshal(out)
	if err != nil {
		r.reject(ctx, msg, stageerr.Wrap(err, stageerr.CodeInternal, "marshal outbound message"))
		return
	}

	if err := r.publish(ctx, in.DocID, payload); err != nil {
		log.Error("publish retries exhausted",
			"error", err,
			"error_code", string(stageerr.CodeOf(err)),
		)
		r.reject(ctx, msg, err)
		return
	}
	r.metrics.MessagesPublished.Inc()

	// Mark only after the publish is durable. A failed mark means a future
	// redelivery republishes idempotent work, which downstream dedupes by
	// document id; never fail the message for it.
	if err := r.guard.MarkProcessed(ctx, in.DocID, r.stage); err != nil {
		log.Warn("idempotency mark failed after publish", "error", err)
	}

	r.finish(ctx, msg, log)

	elapsed := time.Since(start)
	r.metrics.ProcessingSeconds.Observe(elapsed.Seconds())
	log.Info("message processed",
		"doc_type", stringOrNull(out.DocType),
		"jurisdiction_code", stringOrNull(out.JurisdictionCode),
		"detectors_run", len(result.Succeeded)+len(result.Failed),
		"failed_detectors", len(result.Failed),
		"has_detections", result.HasDetections(),
		"processing_ms", elapsed.Milliseconds(),
	)
}

// publish writes the outbound record with bounded exponential backoff.
func (r *Runner) publish(ctx context.Context, docID string, payload []byte) error {
	op := func() error {
		return r.publisher.Publish(ctx, r.outputTopic, []byte(docID), payload)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.publishRetryMax),
		ctx,
	)
	return backoff.Retry(op, policy)
}

// reject routes a failed message to the dead-letter topic and, when that
// succeeds, commits the original so the loop moves on. A failed dead-letter
// publish leaves the message uncommitted for redelivery; no document is
// silently dropped.
func (r *Runner) reject(ctx context.Context, msg *consumer.Message, cause error) {
	if err := r.deadLetter.Send(ctx, msg, cause); err != nil {
		r.logger.Error("dead-letter publish failed, leaving message for redelivery",
			"source_topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}
	r.metrics.MessagesDeadLetter.Inc()
	r.finish(ctx, msg, r.logger)
}

// finish marks msg done and commits the partition's new contiguous
// high-water mark, if marking msg produced one.
func (r *Runner) finish(ctx context.Context, msg *consumer.Message, log *slog.Logger) {
	r.offsets.finish(msg, func(rec *consumer.Message) {
		if err := r.consumer.Commit(ctx, rec); err != nil {
			// The effects up to rec are already durable; a redelivery will
			// short-circuit at the idempotency check.
			log.Warn("offset commit failed", "error", err)
		}
	})
}

func stringOrNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
