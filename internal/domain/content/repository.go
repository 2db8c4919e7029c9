package content

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving scheduled content.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, limit int) ([]*Item, error)
	// ListDuePending returns pending items whose schedule time is at or
	// before now, oldest first.
	ListDuePending(ctx context.Context, now time.Time, limit int) ([]*Item, error)
	// MarkSent finalizes an item with its per-recipient tallies.
	MarkSent(ctx context.Context, id int64, sentCount, failedCount int) error
	// MarkFailed finalizes an item that could not be dispatched at all.
	MarkFailed(ctx context.Context, id int64) error
}
