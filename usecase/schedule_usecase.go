package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
)

type IScheduleUsecase interface {
	Create(ctx context.Context, userID string, payload model.Payload, scheduledFor time.Time) (*model.ScheduledItem, error)
	Get(ctx context.Context, userID string, kind model.Kind, id int64) (*model.ScheduledItem, error)
	List(ctx context.Context, userID string, filter model.ListFilter) ([]*model.ScheduledItem, error)
	Cancel(ctx context.Context, userID string, kind model.Kind, id int64) (*model.ScheduledItem, error)
	ListAttempts(ctx context.Context, userID string, kind model.Kind, id int64) ([]model.PublishAttempt, error)
	ListVideos(ctx context.Context, userID string, limit, offset int) ([]model.YouTubeVideo, error)
	GetVideo(ctx context.Context, userID, videoID string) (*model.YouTubeVideo, error)
}

type ScheduleUsecase struct {
	items           repository.IScheduledItem
	dispatcher      repository.IScheduleDispatcher
	callbackBaseURL string

	audit     repository.IPublishAudit
	videos    repository.IYouTubeVideo
	notifiers statusFanout
	now       func() time.Time
}

// NewScheduleUsecase wires schedule management. Triggers are registered against
// callbackBaseURL + WebhookPath(kind).
func NewScheduleUsecase(items repository.IScheduledItem, dispatcher repository.IScheduleDispatcher, callbackBaseURL string) *ScheduleUsecase {
	return &ScheduleUsecase{
		items:           items,
		dispatcher:      dispatcher,
		callbackBaseURL: strings.TrimRight(callbackBaseURL, "/"),
		now:             time.Now,
	}
}

func (u *ScheduleUsecase) WithAudit(audit repository.IPublishAudit) *ScheduleUsecase {
	u.audit = audit
	return u
}

func (u *ScheduleUsecase) WithVideos(videos repository.IYouTubeVideo) *ScheduleUsecase {
	u.videos = videos
	return u
}

func (u *ScheduleUsecase) WithNotifiers(notifiers ...repository.IStatusNotifier) *ScheduleUsecase {
	u.notifiers = append(u.notifiers, notifiers...)
	return u
}

// WebhookPath is the callback route of a kind.
func WebhookPath(kind model.Kind) string {
	return "/api/webhooks/" + kind.Platform()
}

// ScheduleIDFor is the deterministic registration id of an item, so re-registering replaces.
func ScheduleIDFor(item *model.ScheduledItem) string {
	return fmt.Sprintf("%s-%d", item.Kind, item.ID)
}

// Create stores the item and registers its trigger. When registration fails the row is removed
// and model.ErrDispatchFailed is returned.
func (u *ScheduleUsecase) Create(ctx context.Context, userID string, payload model.Payload, scheduledFor time.Time) (*model.ScheduledItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is required", model.ErrValidation)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if video, ok := payload.(*model.YouTubePayload); ok {
		video.Privacy = video.PrivacyOrDefault()
	}
	scheduledFor = scheduledFor.UTC()
	now := u.now()
	if !scheduledFor.After(now) {
		return nil, model.ErrScheduleInPast
	}
	// Triggers fire on minute boundaries; the minute of scheduledFor must still be ahead.
	if !scheduledFor.Truncate(time.Minute).After(now) {
		return nil, fmt.Errorf("%w: scheduled time must be in a later minute", model.ErrValidation)
	}

	item, err := u.items.Create(ctx, &model.ScheduledItem{
		Kind:         payload.Kind(),
		UserID:       userID,
		Payload:      payload,
		ScheduledFor: scheduledFor,
	})
	if err != nil {
		return nil, err
	}

	res := u.dispatcher.Register(ctx, repository.RegisterRequest{
		Destination:  u.callbackBaseURL + WebhookPath(item.Kind),
		ScheduledFor: item.ScheduledFor,
		Body:         dto.NewTriggerBody(item),
		ScheduleID:   ScheduleIDFor(item),
	})
	if !res.Success {
		u.rollback(ctx, item)
		return nil, fmt.Errorf("%w: %s", model.ErrDispatchFailed, res.Message)
	}

	if err := u.items.SetScheduleID(ctx, item.Kind, item.ID, res.ScheduleID); err != nil {
		if cancelled := u.dispatcher.Cancel(context.WithoutCancel(ctx), res.ScheduleID); !cancelled.Success {
			logger.GetLogger().WithField("schedule_id", res.ScheduleID).WithField("error", cancelled.Message).
				Error("rolled back item but trigger registration could not be removed")
		}
		u.rollback(ctx, item)
		return nil, fmt.Errorf("store schedule id: %w", err)
	}
	scheduleID := res.ScheduleID
	item.ScheduleID = &scheduleID

	logger.GetLogger().WithField("kind", item.Kind).WithField("item_id", item.ID).
		WithField("schedule_id", scheduleID).WithField("scheduled_for", item.ScheduledFor).
		Info("item scheduled")
	u.notifiers.notify(ctx, item)
	return item, nil
}

func (u *ScheduleUsecase) rollback(ctx context.Context, item *model.ScheduledItem) {
	if err := u.items.Delete(context.WithoutCancel(ctx), item.Kind, item.ID); err != nil {
		logger.GetLogger().WithField("error", err).WithField("kind", item.Kind).WithField("item_id", item.ID).
			Error("failed to roll back unregistered item")
	}
}

func (u *ScheduleUsecase) Get(ctx context.Context, userID string, kind model.Kind, id int64) (*model.ScheduledItem, error) {
	return u.items.GetForUser(ctx, kind, id, userID)
}

func (u *ScheduleUsecase) List(ctx context.Context, userID string, filter model.ListFilter) ([]*model.ScheduledItem, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, filter.Status)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", model.ErrValidation)
	}
	return u.items.ListByUser(ctx, userID, filter)
}

// Cancel moves a scheduled item to cancelled and removes its trigger registration.
func (u *ScheduleUsecase) Cancel(ctx context.Context, userID string, kind model.Kind, id int64) (*model.ScheduledItem, error) {
	item, err := u.items.GetForUser(ctx, kind, id, userID)
	if err != nil {
		return nil, err
	}
	if item.Status != model.StatusScheduled {
		return nil, fmt.Errorf("%w: item is %s", model.ErrInvalidTransition, item.Status)
	}
	changed, err := u.items.TransitionStatus(ctx, kind, id, model.StatusScheduled, model.StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: item is no longer scheduled", model.ErrInvalidTransition)
	}
	item.Status = model.StatusCancelled

	if item.ScheduleID != nil && *item.ScheduleID != "" {
		if res := u.dispatcher.Cancel(ctx, *item.ScheduleID); !res.Success {
			logger.GetLogger().WithField("schedule_id", *item.ScheduleID).WithField("error", res.Message).
				Warn("item cancelled but trigger registration could not be removed")
		}
	}
	u.notifiers.notify(ctx, item)
	return item, nil
}

func (u *ScheduleUsecase) ListAttempts(ctx context.Context, userID string, kind model.Kind, id int64) ([]model.PublishAttempt, error) {
	if _, err := u.items.GetForUser(ctx, kind, id, userID); err != nil {
		return nil, err
	}
	if u.audit == nil {
		return []model.PublishAttempt{}, nil
	}
	return u.audit.ListForItem(ctx, kind, id)
}

func (u *ScheduleUsecase) ListVideos(ctx context.Context, userID string, limit, offset int) ([]model.YouTubeVideo, error) {
	if u.videos == nil {
		return []model.YouTubeVideo{}, nil
	}
	if limit <= 0 || limit > model.MaxListLimit {
		limit = model.DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return u.videos.ListByUser(ctx, userID, limit, offset)
}

func (u *ScheduleUsecase) GetVideo(ctx context.Context, userID, videoID string) (*model.YouTubeVideo, error) {
	if u.videos == nil {
		return nil, model.ErrNotFound
	}
	v, err := u.videos.GetByVideoID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, model.ErrNotFound
	}
	return v, nil
}
