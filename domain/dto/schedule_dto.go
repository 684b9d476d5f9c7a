package dto

import (
	"time"

	"social-scheduler/domain/model"
)

// CreateTweetRequest is the body of POST /api/schedules/twitter
type CreateTweetRequest struct {
	Text         string    `json:"text" binding:"required"`
	ScheduledFor time.Time `json:"scheduledFor" binding:"required"`
}

// CreateLinkedInPostRequest is the body of POST /api/schedules/linkedin
type CreateLinkedInPostRequest struct {
	Content      string    `json:"content" binding:"required"`
	Title        string    `json:"title"`
	ImageURL     string    `json:"imageUrl"`
	ScheduledFor time.Time `json:"scheduledFor" binding:"required"`
}

// CreateYouTubeVideoRequest is the body of POST /api/schedules/youtube
type CreateYouTubeVideoRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl" binding:"required"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Tags         []string  `json:"tags"`
	Privacy      string    `json:"privacy"` // private | public | unlisted
	ScheduledFor time.Time `json:"scheduledFor" binding:"required"`
}

// ScheduleListResponse wraps ListByUser results.
type ScheduleListResponse struct {
	Items  []*model.ScheduledItem `json:"items"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   string                 `json:"next,omitempty"`
}
