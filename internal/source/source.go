package source

import (
	"context"
	"time"
)

// RawItem is one message read from a stream. It is immutable once read and
// never persisted directly; only the enriched record derived from it is.
type RawItem struct {
	ID       int
	Sender   string
	Text     string
	Date     time.Time
	StreamID string
}

// Stream abstracts the messaging platform.
// FetchRecent returns up to limit recent items, newest first.
// Subscribe yields new items in arrival order until ctx is cancelled;
// the returned channel is closed afterwards.
type Stream interface {
	FetchRecent(ctx context.Context, streamID string, limit int) ([]RawItem, error)
	Subscribe(ctx context.Context, streamID string) (<-chan RawItem, error)
}
