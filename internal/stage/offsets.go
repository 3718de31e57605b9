package stage

import (
	"sync"

	"docflow/internal/platform/kafka/consumer"
)

type topicPartition struct {
	topic     string
	partition int32
}

type partitionProgress struct {
	// next is the lowest delivered offset not yet finished.
	next int64
	done map[int64]*consumer.Message
}

// offsetTracker gates group commits behind per-partition contiguity. Workers
// finish messages out of order, but a group commit is a per-partition
// high-water mark: committing offset 8 while offset 5 is still open would
// move the group past 5 and lose it on restart. The tracker records each
// finished offset and releases a commit only for the highest offset whose
// predecessors on that partition are all finished. A message left open, such
// as during a store outage or after a failed dead-letter publish, pins its
// partition until a rebalance redelivers it.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[topicPartition]*partitionProgress
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[topicPartition]*partitionProgress)}
}

// deliver records a polled message. The first delivery seen for a partition
// sets the floor below which nothing needs committing.
func (t *offsetTracker) deliver(msg *consumer.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp := topicPartition{topic: msg.Topic, partition: msg.Partition}
	if _, ok := t.partitions[tp]; !ok {
		t.partitions[tp] = &partitionProgress{
			next: msg.Offset,
			done: make(map[int64]*consumer.Message),
		}
	}
}

// finish marks msg's offset as done and, when that closes a contiguous run
// from the partition's floor, passes the run's highest message to commit.
// The callback runs under the tracker's lock so commits for a partition
// reach the broker in offset order.
func (t *offsetTracker) finish(msg *consumer.Message, commit func(*consumer.Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp := topicPartition{topic: msg.Topic, partition: msg.Partition}
	p, ok := t.partitions[tp]
	if !ok || msg.Offset < p.next {
		// Already covered by an earlier commit; a redelivered duplicate.
		return
	}
	p.done[msg.Offset] = msg

	var last *consumer.Message
	for {
		m, ok := p.done[p.next]
		if !ok {
			break
		}
		delete(p.done, p.next)
		last = m
		p.next++
	}
	if last != nil {
		commit(last)
	}
}
