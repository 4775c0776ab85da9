// Package sink delivers composed activity records to the external
// record store. The parsing core's responsibility ends at producing the
// record; sinks own the write path and its failure handling.
package sink

import (
	"context"

	"github.com/xits/voicelog/internal/voicelog"
)

// Sink accepts a composed activity record for persistence or export.
type Sink interface {
	// Name identifies the sink for logs and confirmations.
	Name() string

	// Deliver hands one record to the backing store. Delivery failure
	// never invalidates the record; callers decide whether to journal
	// it as pending.
	Deliver(ctx context.Context, record *voicelog.ActivityRecord) error
}

// Discard is a no-op sink for dry runs.
type Discard struct{}

func (Discard) Name() string { return "discard" }

func (Discard) Deliver(context.Context, *voicelog.ActivityRecord) error { return nil }
