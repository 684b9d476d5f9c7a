package repository

import (
	"context"
	"time"

	"social-scheduler/domain/model"
)

// IStatusNotifier publishes status changes to an outside consumer.
type IStatusNotifier interface {
	NotifyStatus(ctx context.Context, event model.StatusEvent) error
}

// IPublishAudit records every trigger handling outcome.
type IPublishAudit interface {
	Record(ctx context.Context, attempt *model.PublishAttempt) error
	ListForItem(ctx context.Context, kind model.Kind, itemID int64) ([]model.PublishAttempt, error)
}

// ITriggerLock serializes trigger handling per item across instances.
type ITriggerLock interface {
	// Acquire returns ok=false when another holder owns the key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
