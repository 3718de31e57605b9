package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"docflow/pkg/domain"
	"docflow/pkg/stageerr"
)

var checkDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "docflow_idempotency_check_duration_ms",
	Help:    "Latency of idempotency key checks in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// RedisGuard is the Redis-backed guard shared by all stage instances. The
// key shape is the cross-stage convention "<docId>::<stageName>", with no
// additional prefix, so audit tooling can query by document across stages.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard constructs a Redis-backed idempotency guard with the given
// key TTL.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

// HasProcessed checks for the stage key. An absent or expired key reads as
// not processed; store errors surface so the runner can decide to retry.
func (g *RedisGuard) HasProcessed(ctx context.Context, docID string, stage domain.Stage) (bool, error) {
	start := time.Now()
	defer func() {
		checkDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	_, err := g.client.Get(ctx, domain.IdempotencyKey(docID, stage)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, stageerr.Wrap(err, stageerr.CodeStore, "idempotency check failed")
	}
	return true, nil
}

// MarkProcessed writes the stage key with TTL.
// Stores "1" as a simple marker; key existence is what matters.
func (g *RedisGuard) MarkProcessed(ctx context.Context, docID string, stage domain.Stage) error {
	err := g.client.Set(ctx, domain.IdempotencyKey(docID, stage), "1", g.ttl).Err()
	if err != nil {
		return stageerr.Wrap(err, stageerr.CodeStore, "idempotency mark failed")
	}
	return nil
}
