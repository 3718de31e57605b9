// Package consumer wraps a franz-go consumer group client behind a small
// poll/commit surface. Commits are always explicit: the stage runner decides
// when a message's effect is durable.
package consumer

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"docflow/internal/platform/config"
	"docflow/pkg/stageerr"
)

// Message is one inbound record with enough position information to commit
// it after processing.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte

	record *kgo.Record
}

// Consumer polls bounded batches from the input topic as part of a consumer
// group, with auto-commit disabled.
type Consumer struct {
	client  *kgo.Client
	logger  *slog.Logger
	maxPoll int
}

// New connects a group consumer for the configured input topic. New
// deployments start at the end of the topic; committed groups resume from
// their offsets.
func New(cfg config.KafkaConfig, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.InputTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, stageerr.Wrap(err, stageerr.CodeTransport, "build kafka consumer")
	}
	return &Consumer{
		client:  client,
		logger:  logger,
		maxPoll: cfg.MaxPollRecords,
	}, nil
}

// Poll retrieves at most the configured batch size of records. It blocks
// until records arrive or ctx is done. Partition-level fetch errors are
// logged and the healthy partitions' records still return; a canceled
// context returns its error.
func (c *Consumer) Poll(ctx context.Context) ([]*Message, error) {
	fetches := c.client.PollRecords(ctx, c.maxPoll)
	if fetches.IsClientClosed() {
		return nil, stageerr.New(stageerr.CodeTransport, "kafka client closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, fe := range fetches.Errors() {
		c.logger.Error("fetch error",
			"topic", fe.Topic,
			"partition", fe.Partition,
			"error", fe.Err,
		)
	}

	var msgs []*Message
	fetches.EachRecord(func(rec *kgo.Record) {
		msgs = append(msgs, &Message{
			Topic:     rec.Topic,
			Partition: rec.Partition,
			Offset:    rec.Offset,
			Key:       rec.Key,
			Value:     rec.Value,
			record:    rec,
		})
	})
	return msgs, nil
}

// Commit acknowledges the given messages' offsets. A group commit is a
// per-partition high-water mark: committing a record covers every lower
// offset on its partition. Call only after everything up to the message's
// offset is durable (published downstream or dead-lettered).
func (c *Consumer) Commit(ctx context.Context, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	recs := make([]*kgo.Record, 0, len(msgs))
	for _, m := range msgs {
		recs = append(recs, m.record)
	}
	if err := c.client.CommitRecords(ctx, recs...); err != nil {
		return stageerr.Wrap(err, stageerr.CodeTransport, "commit offsets")
	}
	return nil
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
