package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/platform/kafka/consumer"
)

func trackedMessage(partition int32, offset int64) *consumer.Message {
	return &consumer.Message{Topic: "text-extraction", Partition: partition, Offset: offset}
}

func TestOffsetTrackerOutOfOrderFinishCommitsContiguously(t *testing.T) {
	tr := newOffsetTracker()
	for off := int64(0); off < 4; off++ {
		tr.deliver(trackedMessage(0, off))
	}

	var commits []int64
	record := func(m *consumer.Message) { commits = append(commits, m.Offset) }

	// Offsets 2 and 3 finish first; nothing may commit past the open 0.
	tr.finish(trackedMessage(0, 2), record)
	tr.finish(trackedMessage(0, 3), record)
	assert.Empty(t, commits)

	// Closing 0 releases only 0; 1 is still open.
	tr.finish(trackedMessage(0, 0), record)
	require.Equal(t, []int64{0}, commits)

	// Closing 1 releases the whole run through 3 in one commit.
	tr.finish(trackedMessage(0, 1), record)
	assert.Equal(t, []int64{0, 3}, commits)
}

func TestOffsetTrackerOpenMessagePinsPartition(t *testing.T) {
	tr := newOffsetTracker()
	for off := int64(5); off < 9; off++ {
		tr.deliver(trackedMessage(0, off))
	}

	var commits []int64
	record := func(m *consumer.Message) { commits = append(commits, m.Offset) }

	// Offset 5 is never finished; everything above it stays uncommitted.
	tr.finish(trackedMessage(0, 6), record)
	tr.finish(trackedMessage(0, 7), record)
	tr.finish(trackedMessage(0, 8), record)
	assert.Empty(t, commits)
}

func TestOffsetTrackerPartitionsAreIndependent(t *testing.T) {
	tr := newOffsetTracker()
	tr.deliver(trackedMessage(0, 0))
	tr.deliver(trackedMessage(1, 0))

	var commits []topicPartition
	tr.finish(trackedMessage(1, 0), func(m *consumer.Message) {
		commits = append(commits, topicPartition{topic: m.Topic, partition: m.Partition})
	})

	// Partition 0 still has offset 0 open; partition 1 commits regardless.
	require.Len(t, commits, 1)
	assert.Equal(t, int32(1), commits[0].partition)
}

func TestOffsetTrackerIgnoresRedeliveredDuplicates(t *testing.T) {
	tr := newOffsetTracker()
	tr.deliver(trackedMessage(0, 0))

	var commits []int64
	record := func(m *consumer.Message) { commits = append(commits, m.Offset) }

	tr.finish(trackedMessage(0, 0), record)
	tr.finish(trackedMessage(0, 0), record)
	assert.Equal(t, []int64{0}, commits)
}
