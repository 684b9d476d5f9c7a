package repository

import (
	"context"

	"social-scheduler/domain/model"
)

type ITwitterPublisher interface {
	PublishTweet(ctx context.Context, cred *model.OAuthToken, payload *model.TweetPayload) (*model.PublishResult, error)
}

// ILinkedInPublisher publishes a post; image may be nil.
type ILinkedInPublisher interface {
	PublishPost(ctx context.Context, cred *model.OAuthToken, payload *model.LinkedInPayload, image *model.Media) (*model.PublishResult, error)
}

// IYouTubePublisher uploads a video; thumbnail may be nil.
type IYouTubePublisher interface {
	UploadVideo(ctx context.Context, cred *model.OAuthToken, item *model.ScheduledItem, payload *model.YouTubePayload, video, thumbnail *model.Media) (*model.PublishResult, error)
}

// IMediaFetcher downloads assets referenced by payload URLs. label names the asset in error messages.
type IMediaFetcher interface {
	Fetch(ctx context.Context, label, url string) (*model.Media, error)
}

// IMediaArchive keeps a copy of fetched media.
type IMediaArchive interface {
	Save(ctx context.Context, key string, media *model.Media) (string, error)
}
