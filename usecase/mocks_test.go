package usecase

import (
	"context"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"

	"github.com/stretchr/testify/mock"
)

type MockScheduledItemRepo struct {
	mock.Mock
}

func (m *MockScheduledItemRepo) Create(ctx context.Context, item *model.ScheduledItem) (*model.ScheduledItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledItem), args.Error(1)
}

func (m *MockScheduledItemRepo) Get(ctx context.Context, kind model.Kind, id int64) (*model.ScheduledItem, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledItem), args.Error(1)
}

func (m *MockScheduledItemRepo) GetForUser(ctx context.Context, kind model.Kind, id int64, userID string) (*model.ScheduledItem, error) {
	args := m.Called(ctx, kind, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledItem), args.Error(1)
}

func (m *MockScheduledItemRepo) TransitionStatus(ctx context.Context, kind model.Kind, id int64, from, to model.Status, result *model.PublishResult) (bool, error) {
	args := m.Called(ctx, kind, id, from, to, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduledItemRepo) SetScheduleID(ctx context.Context, kind model.Kind, id int64, scheduleID string) error {
	return m.Called(ctx, kind, id, scheduleID).Error(0)
}

func (m *MockScheduledItemRepo) ListByUser(ctx context.Context, userID string, filter model.ListFilter) ([]*model.ScheduledItem, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledItem), args.Error(1)
}

func (m *MockScheduledItemRepo) Delete(ctx context.Context, kind model.Kind, id int64) error {
	return m.Called(ctx, kind, id).Error(0)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) EnsureFresh(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OAuthToken), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Register(ctx context.Context, req repository.RegisterRequest) repository.DispatchResult {
	return m.Called(ctx, req).Get(0).(repository.DispatchResult)
}

func (m *MockDispatcher) Cancel(ctx context.Context, scheduleID string) repository.DispatchResult {
	return m.Called(ctx, scheduleID).Get(0).(repository.DispatchResult)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, label, url string) (*model.Media, error) {
	args := m.Called(ctx, label, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Media), args.Error(1)
}

type MockTwitter struct {
	mock.Mock
}

func (m *MockTwitter) PublishTweet(ctx context.Context, cred *model.OAuthToken, payload *model.TweetPayload) (*model.PublishResult, error) {
	args := m.Called(ctx, cred, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublishResult), args.Error(1)
}

type MockLinkedIn struct {
	mock.Mock
}

func (m *MockLinkedIn) PublishPost(ctx context.Context, cred *model.OAuthToken, payload *model.LinkedInPayload, image *model.Media) (*model.PublishResult, error) {
	args := m.Called(ctx, cred, payload, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublishResult), args.Error(1)
}

type MockYouTube struct {
	mock.Mock
}

func (m *MockYouTube) UploadVideo(ctx context.Context, cred *model.OAuthToken, item *model.ScheduledItem, payload *model.YouTubePayload, video, thumbnail *model.Media) (*model.PublishResult, error) {
	args := m.Called(ctx, cred, item, payload, video, thumbnail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublishResult), args.Error(1)
}

type MockTriggerLock struct {
	mock.Mock
}

func (m *MockTriggerLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	args := m.Called(ctx, key, ttl)
	release, _ := args.Get(0).(func())
	return release, args.Bool(1), args.Error(2)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Record(ctx context.Context, attempt *model.PublishAttempt) error {
	return m.Called(ctx, attempt).Error(0)
}

func (m *MockAudit) ListForItem(ctx context.Context, kind model.Kind, itemID int64) ([]model.PublishAttempt, error) {
	args := m.Called(ctx, kind, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PublishAttempt), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatus(ctx context.Context, event model.StatusEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockYouTubeVideos struct {
	mock.Mock
}

func (m *MockYouTubeVideos) Save(ctx context.Context, video *model.YouTubeVideo) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockYouTubeVideos) GetByVideoID(ctx context.Context, videoID string) (*model.YouTubeVideo, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.YouTubeVideo), args.Error(1)
}

func (m *MockYouTubeVideos) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.YouTubeVideo, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.YouTubeVideo), args.Error(1)
}
