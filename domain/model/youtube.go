package model

import (
	"time"
)

// YouTubeVideo is the local mirror of a video uploaded on behalf of a user.
// It is kept separately from the scheduled item that produced it.
type YouTubeVideo struct {
	ID              int64     `json:"id"                gorm:"primaryKey;autoIncrement"`
	VideoID         string    `json:"video_id"          gorm:"size:64;uniqueIndex"`
	UserID          string    `json:"user_id"           gorm:"size:128;index"`
	ScheduledItemID int64     `json:"scheduled_item_id" gorm:"index"`
	Title           string    `json:"title"             gorm:"size:255"`
	Description     string    `json:"description"       gorm:"type:text"`
	URL             string    `json:"url"               gorm:"size:255"`
	PrivacyStatus   string    `json:"privacy_status"    gorm:"size:32"`
	UploadStatus    string    `json:"upload_status"     gorm:"size:32"`
	ThumbnailSet    bool      `json:"thumbnail_set"`
	CreatedAt       time.Time `json:"created_at"        gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time `json:"updated_at"        gorm:"autoUpdateTime"`
}

func (YouTubeVideo) TableName() string { return "youtube_videos" }

// WatchURL builds the public watch link for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
