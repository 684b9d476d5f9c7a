package persistence

import (
	"context"
	"errors"

	"social-scheduler/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// YouTubeVideoRepository keeps the local mirror of uploaded videos in MySQL.
type YouTubeVideoRepository struct {
	db *gorm.DB
}

func NewYouTubeVideoRepository(db *gorm.DB) *YouTubeVideoRepository {
	return &YouTubeVideoRepository{db: db}
}

// Save inserts the mirror row, or refreshes it when the video id is already known.
func (r *YouTubeVideoRepository) Save(ctx context.Context, video *model.YouTubeVideo) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "url", "privacy_status", "upload_status", "thumbnail_set", "updated_at"}),
	}).Create(video).Error
}

func (r *YouTubeVideoRepository) GetByVideoID(ctx context.Context, videoID string) (*model.YouTubeVideo, error) {
	var v model.YouTubeVideo
	err := r.db.WithContext(ctx).Where("video_id = ?", videoID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *YouTubeVideoRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.YouTubeVideo, error) {
	if limit <= 0 {
		limit = model.DefaultListLimit
	}
	var videos []model.YouTubeVideo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&videos).Error
	return videos, err
}
