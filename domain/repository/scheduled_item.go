package repository

import (
	"context"

	"social-scheduler/domain/model"
)

// IScheduledItem persists scheduled items, one table per kind.
type IScheduledItem interface {
	// Create stores a new item with status scheduled. Items whose ScheduledFor is not in the
	// future are rejected with model.ErrScheduleInPast.
	Create(ctx context.Context, item *model.ScheduledItem) (*model.ScheduledItem, error)
	Get(ctx context.Context, kind model.Kind, id int64) (*model.ScheduledItem, error)
	GetForUser(ctx context.Context, kind model.Kind, id int64, userID string) (*model.ScheduledItem, error)
	// TransitionStatus writes status and result together, only if the row is still in status from.
	// It reports whether the row changed.
	TransitionStatus(ctx context.Context, kind model.Kind, id int64, from, to model.Status, result *model.PublishResult) (bool, error)
	SetScheduleID(ctx context.Context, kind model.Kind, id int64, scheduleID string) error
	ListByUser(ctx context.Context, userID string, filter model.ListFilter) ([]*model.ScheduledItem, error)
	Delete(ctx context.Context, kind model.Kind, id int64) error
}
