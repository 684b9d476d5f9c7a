package usecase

import (
	"context"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
)

// statusFanout delivers every status change to all configured notifiers. Delivery is best effort.
type statusFanout []repository.IStatusNotifier

func (f statusFanout) notify(ctx context.Context, item *model.ScheduledItem) {
	if len(f) == 0 {
		return
	}
	event := model.NewStatusEvent(item)
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.NotifyStatus(ctx, event); err != nil {
			logger.GetLogger().WithField("error", err).
				WithField("kind", item.Kind).
				WithField("item_id", item.ID).
				Warn("status notification failed")
		}
	}
}
