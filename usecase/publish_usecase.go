package usecase

import (
	"context"
	"fmt"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
)

// EarlyTolerance is how far ahead of scheduledFor a trigger may fire. Cron triggers fire on the
// minute, so a trigger can precede a scheduledFor that carries seconds.
const EarlyTolerance = time.Minute

const triggerLockTTL = 10 * time.Minute

// TriggerOutcome is what the webhook reports back to the scheduler.
type TriggerOutcome struct {
	Kind       model.Kind           `json:"kind"`
	ItemID     int64                `json:"id"`
	Status     model.Status         `json:"status"`
	Idempotent bool                 `json:"idempotent,omitempty"`
	Result     *model.PublishResult `json:"publishResult,omitempty"`
}

// Failed reports whether this trigger ended the item in failed.
func (o *TriggerOutcome) Failed() bool {
	return o != nil && !o.Idempotent && o.Status == model.StatusFailed
}

// Publishers groups the per-platform publish clients.
type Publishers struct {
	Twitter  repository.ITwitterPublisher
	LinkedIn repository.ILinkedInPublisher
	YouTube  repository.IYouTubePublisher
}

type IPublishUsecase interface {
	// HandleTrigger runs one verified trigger for the item to completion. Errors are returned only
	// when no durable outcome could be recorded; model.ErrNotFound when the item does not exist.
	HandleTrigger(ctx context.Context, kind model.Kind, id int64) (*TriggerOutcome, error)
}

type PublishUsecase struct {
	items       repository.IScheduledItem
	credentials repository.ICredentialRefresher
	dispatcher  repository.IScheduleDispatcher
	media       repository.IMediaFetcher
	publishers  Publishers
	staleWindow time.Duration

	lock      repository.ITriggerLock
	audit     repository.IPublishAudit
	notifiers statusFanout
	now       func() time.Time
}

func NewPublishUsecase(
	items repository.IScheduledItem,
	credentials repository.ICredentialRefresher,
	dispatcher repository.IScheduleDispatcher,
	media repository.IMediaFetcher,
	publishers Publishers,
	staleWindow time.Duration,
) *PublishUsecase {
	return &PublishUsecase{
		items:       items,
		credentials: credentials,
		dispatcher:  dispatcher,
		media:       media,
		publishers:  publishers,
		staleWindow: staleWindow,
		now:         time.Now,
	}
}

// WithTriggerLock short-circuits concurrent duplicate deliveries before any read.
func (u *PublishUsecase) WithTriggerLock(lock repository.ITriggerLock) *PublishUsecase {
	u.lock = lock
	return u
}

func (u *PublishUsecase) WithAudit(audit repository.IPublishAudit) *PublishUsecase {
	u.audit = audit
	return u
}

func (u *PublishUsecase) WithNotifiers(notifiers ...repository.IStatusNotifier) *PublishUsecase {
	u.notifiers = append(u.notifiers, notifiers...)
	return u
}

func (u *PublishUsecase) HandleTrigger(ctx context.Context, kind model.Kind, id int64) (*TriggerOutcome, error) {
	log := logger.GetLogger().WithField("kind", kind).WithField("item_id", id)

	if u.lock != nil {
		release, ok, err := u.lock.Acquire(ctx, fmt.Sprintf("%s:%d", kind, id), triggerLockTTL)
		switch {
		case err != nil:
			log.WithField("error", err).Warn("trigger lock unavailable, relying on conditional update")
		case !ok:
			log.Info("duplicate trigger in flight, acknowledging")
			return &TriggerOutcome{Kind: kind, ItemID: id, Status: model.StatusProcessing, Idempotent: true}, nil
		default:
			defer release()
		}
	}

	item, err := u.items.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if item.Status != model.StatusScheduled {
		log.WithField("status", item.Status).Info("trigger for item not in scheduled, acknowledging")
		if item.Status.IsTerminal() {
			u.cancelRegistration(ctx, item)
		}
		return &TriggerOutcome{Kind: kind, ItemID: id, Status: item.Status, Idempotent: true, Result: item.PublishResult}, nil
	}

	changed, err := u.items.TransitionStatus(ctx, kind, id, model.StatusScheduled, model.StatusProcessing, nil)
	if err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	if !changed {
		log.Info("lost race for trigger, acknowledging")
		return &TriggerOutcome{Kind: kind, ItemID: id, Status: model.StatusProcessing, Idempotent: true}, nil
	}
	item.Status = model.StatusProcessing
	u.notifiers.notify(ctx, item)

	started := u.now()
	result, publishErr := u.run(ctx, item, started)

	// The outcome must be recorded even if the caller has gone away.
	writeCtx := context.WithoutCancel(ctx)
	to := model.StatusCompleted
	if publishErr != nil {
		to = model.StatusFailed
		result = model.FailureResult(publishErr)
		log.WithField("error", publishErr).Error("publish failed")
	}
	changed, err = u.items.TransitionStatus(writeCtx, kind, id, model.StatusProcessing, to, result)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", to, err)
	}
	if !changed {
		log.WithField("status", to).Warn("item left processing before the outcome was recorded")
	}
	item.Status = to
	item.PublishResult = result

	u.cancelRegistration(writeCtx, item)
	u.notifiers.notify(writeCtx, item)
	u.recordAttempt(writeCtx, item, started)

	if publishErr == nil {
		log.WithField("post_id", result.PostID).WithField("video_id", result.VideoID).Info("publish completed")
	}
	return &TriggerOutcome{Kind: kind, ItemID: id, Status: to, Result: result}, nil
}

// run performs every step between the processing write and the terminal write.
func (u *PublishUsecase) run(ctx context.Context, item *model.ScheduledItem, now time.Time) (*model.PublishResult, error) {
	if err := u.checkWindow(item, now); err != nil {
		return nil, err
	}
	cred, err := u.credentials.EnsureFresh(ctx, item.UserID, item.Kind.Platform())
	if err != nil {
		return nil, err
	}
	result, err := u.publish(ctx, item, cred)
	if err == nil && result == nil {
		result = &model.PublishResult{}
	}
	return result, err
}

func (u *PublishUsecase) checkWindow(item *model.ScheduledItem, now time.Time) error {
	if u.staleWindow <= 0 {
		return nil
	}
	late := now.Sub(item.ScheduledFor)
	if late > u.staleWindow {
		return fmt.Errorf("%w: fired %s after scheduled time", model.ErrStaleTrigger, late.Truncate(time.Second))
	}
	if -late > EarlyTolerance {
		return fmt.Errorf("%w: fired %s before scheduled time", model.ErrStaleTrigger, (-late).Truncate(time.Second))
	}
	return nil
}

func (u *PublishUsecase) publish(ctx context.Context, item *model.ScheduledItem, cred *model.OAuthToken) (*model.PublishResult, error) {
	switch p := item.Payload.(type) {
	case *model.TweetPayload:
		return u.publishers.Twitter.PublishTweet(ctx, cred, p)

	case *model.LinkedInPayload:
		var image *model.Media
		if p.ImageURL != "" {
			m, err := u.media.Fetch(ctx, "image", p.ImageURL)
			if err != nil {
				return nil, err
			}
			image = m
		}
		return u.publishers.LinkedIn.PublishPost(ctx, cred, p, image)

	case *model.YouTubePayload:
		video, err := u.media.Fetch(ctx, "video", p.VideoURL)
		if err != nil {
			return nil, err
		}
		var thumbnail *model.Media
		if p.ThumbnailURL != "" {
			if thumbnail, err = u.media.Fetch(ctx, "thumbnail", p.ThumbnailURL); err != nil {
				return nil, err
			}
		}
		return u.publishers.YouTube.UploadVideo(ctx, cred, item, p, video, thumbnail)

	default:
		return nil, fmt.Errorf("%w: unsupported payload %T for %s", model.ErrValidation, item.Payload, item.Kind)
	}
}

// cancelRegistration removes the yearly-recurring trigger once the item is terminal.
func (u *PublishUsecase) cancelRegistration(ctx context.Context, item *model.ScheduledItem) {
	if item.ScheduleID == nil || *item.ScheduleID == "" {
		return
	}
	res := u.dispatcher.Cancel(ctx, *item.ScheduleID)
	if !res.Success {
		logger.GetLogger().WithField("schedule_id", *item.ScheduleID).
			WithField("error", res.Message).
			Warn("failed to cancel trigger registration")
	}
}

func (u *PublishUsecase) recordAttempt(ctx context.Context, item *model.ScheduledItem, started time.Time) {
	if u.audit == nil {
		return
	}
	attempt := &model.PublishAttempt{
		Kind:       item.Kind,
		ItemID:     item.ID,
		UserID:     item.UserID,
		Platform:   item.Kind.Platform(),
		Status:     item.Status,
		StartedAt:  started.UTC(),
		FinishedAt: u.now().UTC(),
	}
	if r := item.PublishResult; r != nil {
		attempt.PostID = r.PostID
		if attempt.PostID == "" {
			attempt.PostID = r.VideoID
		}
		attempt.Error = r.Error
	}
	if err := u.audit.Record(ctx, attempt); err != nil {
		logger.GetLogger().WithField("error", err).WithField("item_id", item.ID).Warn("failed to record publish attempt")
	}
}
