package repository

import (
	"context"

	"social-scheduler/domain/model"
)

// IYouTubeVideo stores local mirror records of uploaded videos.
type IYouTubeVideo interface {
	Save(ctx context.Context, video *model.YouTubeVideo) error
	GetByVideoID(ctx context.Context, videoID string) (*model.YouTubeVideo, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.YouTubeVideo, error)
}
