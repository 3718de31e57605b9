// Package producer wraps a franz-go producer behind a synchronous publish
// surface. Records are acknowledged by all in-sync replicas before Publish
// returns.
package producer

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"

	"docflow/internal/platform/config"
	"docflow/pkg/stageerr"
)

// Producer publishes records synchronously.
type Producer struct {
	client *kgo.Client
}

// New connects a producer to the configured brokers.
func New(cfg config.KafkaConfig) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, stageerr.Wrap(err, stageerr.CodeTransport, "build kafka producer")
	}
	return &Producer{client: client}, nil
}

// Publish writes one record and waits for broker acknowledgment. Key the
// record by document identifier for partition affinity.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return stageerr.Wrap(err, stageerr.CodeTransport, "produce record")
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
