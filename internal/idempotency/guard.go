// Package idempotency provides the at-most-once-effect guarantee each
// pipeline stage applies on top of at-least-once message delivery. A stage
// checks the guard before doing work and marks the key only after a
// successful publish; a crash in between causes a harmless redelivery of
// idempotent work.
package idempotency

import (
	"context"

	"docflow/pkg/domain"
)

// Guard records which (document, stage) pairs have already produced a
// published result. Implementations must be safe for concurrent use.
type Guard interface {
	// HasProcessed reports whether the stage already published a result for
	// this document. A missing or expired key reads as not processed.
	HasProcessed(ctx context.Context, docID string, stage domain.Stage) (bool, error)

	// MarkProcessed records that the stage published a result for this
	// document. The marker expires after the store's configured TTL, which
	// must exceed the longest legitimate redelivery window across stages.
	MarkProcessed(ctx context.Context, docID string, stage domain.Stage) error
}
