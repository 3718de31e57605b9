package stage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docflow/internal/platform/kafka/consumer"
	"docflow/pkg/domain"
	"docflow/pkg/stageerr"
)

// DeadLetterRecord is the side-channel record written for a message this
// stage could not process. The original payload rides along so operators can
// replay after fixing the cause.
type DeadLetterRecord struct {
	ID         string          `json:"id"`
	Stage      string          `json:"stage"`
	Topic      string          `json:"topic"`
	Partition  int32           `json:"partition"`
	Offset     int64           `json:"offset"`
	ErrorCode  string          `json:"errorCode"`
	Reason     string          `json:"reason"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// DeadLetterer publishes unprocessable messages to the stage's dead-letter
// topic.
type DeadLetterer struct {
	publisher Publisher
	topic     string
	stage     domain.Stage
	logger    *slog.Logger
}

// NewDeadLetterer constructs a dead-letter publisher for this stage.
func NewDeadLetterer(publisher Publisher, topic string, stage domain.Stage, logger *slog.Logger) *DeadLetterer {
	return &DeadLetterer{
		publisher: publisher,
		topic:     topic,
		stage:     stage,
		logger:    logger,
	}
}

// Send records the failed message and its error category on the dead-letter
// topic. Payloads that are not valid JSON are dropped from the record rather
// than corrupting it; position fields still identify the original.
func (d *DeadLetterer) Send(ctx context.Context, msg *consumer.Message, cause error) error {
	rec := DeadLetterRecord{
		ID:         uuid.NewString(),
		Stage:      d.stage.String(),
		Topic:      msg.Topic,
		Partition:  msg.Partition,
		Offset:     msg.Offset,
		ErrorCode:  string(stageerr.CodeOf(cause)),
		Reason:     cause.Error(),
		OccurredAt: time.Now().UTC(),
	}
	if json.Valid(msg.Value) {
		rec.Payload = msg.Value
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return stageerr.Wrap(err, stageerr.CodeInternal, "marshal dead-letter record")
	}
	if err := d.publisher.Publish(ctx, d.topic, msg.Key, value); err != nil {
		return err
	}

	d.logger.Warn("message dead-lettered",
		"dlq_id", rec.ID,
		"stage", rec.Stage,
		"source_topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"error_code", rec.ErrorCode,
		"reason", rec.Reason,
	)
	return nil
}
