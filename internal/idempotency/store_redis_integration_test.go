//go:build integration

package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"docflow/internal/idempotency"
	"docflow/pkg/domain"
	"docflow/pkg/testutil/containers"
)

type RedisGuardSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	guard *idempotency.RedisGuard
}

func TestRedisGuardSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisGuardSuite))
}

func (s *RedisGuardSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.guard = idempotency.NewRedisGuard(s.redis.Client, time.Hour)
}

func (s *RedisGuardSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisGuardSuite) TestMarkThenCheck() {
	ctx := context.Background()

	processed, err := s.guard.HasProcessed(ctx, "doc_123", domain.StageClassifierRouter)
	s.Require().NoError(err)
	s.False(processed)

	s.Require().NoError(s.guard.MarkProcessed(ctx, "doc_123", domain.StageClassifierRouter))

	processed, err = s.guard.HasProcessed(ctx, "doc_123", domain.StageClassifierRouter)
	s.Require().NoError(err)
	s.True(processed)
}

func (s *RedisGuardSuite) TestKeyShapeIsCrossStageConvention() {
	ctx := context.Background()
	s.Require().NoError(s.guard.MarkProcessed(ctx, "doc_123", domain.StageClassifierRouter))

	// Other stages and audit tooling query by this exact shape.
	val, err := s.redis.Client.Get(ctx, "doc_123::CLASSIFIER_ROUTER").Result()
	s.Require().NoError(err)
	s.Equal("1", val)
}

func (s *RedisGuardSuite) TestTTLExpiry() {
	ctx := context.Background()
	short := idempotency.NewRedisGuard(s.redis.Client, time.Second)

	s.Require().NoError(short.MarkProcessed(ctx, "doc_ttl", domain.StageClassifierRouter))

	processed, err := short.HasProcessed(ctx, "doc_ttl", domain.StageClassifierRouter)
	s.Require().NoError(err)
	s.True(processed)

	time.Sleep(1500 * time.Millisecond)

	processed, err = short.HasProcessed(ctx, "doc_ttl", domain.StageClassifierRouter)
	s.Require().NoError(err)
	s.False(processed, "marker must expire after TTL")
}

func (s *RedisGuardSuite) TestStagesDoNotCollide() {
	ctx := context.Background()
	s.Require().NoError(s.guard.MarkProcessed(ctx, "doc_123", domain.StageExtractor))

	processed, err := s.guard.HasProcessed(ctx, "doc_123", domain.StageClassifierRouter)
	s.Require().NoError(err)
	s.False(processed)
}
