// Package admin bootstraps the stage's Kafka topics at startup.
package admin

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"docflow/pkg/stageerr"
)

// EnsureTopics creates any of the given topics that do not already exist,
// using broker-default partition and replication settings. Racing with
// another instance creating the same topic is not an error.
func EnsureTopics(ctx context.Context, brokers []string, topics ...string) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return stageerr.Wrap(err, stageerr.CodeTransport, "build kafka admin client")
	}
	defer client.Close()

	adm := kadm.NewClient(client)

	existing, err := adm.ListTopics(ctx, topics...)
	if err != nil {
		return stageerr.Wrap(err, stageerr.CodeTransport, "list topics")
	}

	var missing []string
	for _, topic := range topics {
		if !existing.Has(topic) {
			missing = append(missing, topic)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	resp, err := adm.CreateTopics(ctx, -1, -1, nil, missing...)
	if err != nil {
		return stageerr.Wrap(err, stageerr.CodeTransport, "create topics")
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return stageerr.Wrap(r.Err, stageerr.CodeTransport, "create topic "+r.Topic)
		}
	}
	return nil
}
