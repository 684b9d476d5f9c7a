package model

import (
	"encoding/json"
	"time"
)

// Kind identifies the content type of a scheduled item. Each kind lives in its own table.
type Kind string

const (
	KindTweet        Kind = "tweet"
	KindLinkedInPost Kind = "linkedin_post"
	KindYouTubeVideo Kind = "youtube_video"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{KindTweet, KindLinkedInPost, KindYouTubeVideo}

// ParseKind accepts both the kind name and the platform alias used in URLs.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case string(KindTweet), PlatformTwitter:
		return KindTweet, true
	case string(KindLinkedInPost), PlatformLinkedIn:
		return KindLinkedInPost, true
	case string(KindYouTubeVideo), PlatformYouTube:
		return KindYouTubeVideo, true
	}
	return "", false
}

// Platform returns the publishing platform for the kind.
func (k Kind) Platform() string {
	switch k {
	case KindTweet:
		return PlatformTwitter
	case KindLinkedInPost:
		return PlatformLinkedIn
	case KindYouTubeVideo:
		return PlatformYouTube
	}
	return ""
}

// TriggerField is the kind-specific identifier field carried in the trigger body.
func (k Kind) TriggerField() string {
	switch k {
	case KindTweet:
		return "scheduledTweetId"
	case KindLinkedInPost:
		return "scheduledPostId"
	case KindYouTubeVideo:
		return "scheduledVideoId"
	}
	return ""
}

// ScheduledItem is a durable publish intent.
type ScheduledItem struct {
	ID            int64          `json:"id"`
	Kind          Kind           `json:"kind"`
	UserID        string         `json:"user_id"`
	Payload       Payload        `json:"payload"`
	ScheduledFor  time.Time      `json:"scheduled_for"`
	Status        Status         `json:"status"`
	ScheduleID    *string        `json:"schedule_id,omitempty"`
	PublishResult *PublishResult `json:"publish_result,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PublishResult holds either the platform outcome of a successful publish or the error of a failed one.
type PublishResult struct {
	PostID  string          `json:"postId,omitempty"`
	VideoID string          `json:"videoId,omitempty"`
	URL     string          `json:"url,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// FailureResult builds the stored result of a failed attempt.
func FailureResult(err error) *PublishResult {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &PublishResult{Error: msg}
}

// ListFilter narrows ListByUser queries.
type ListFilter struct {
	Kind   Kind   `url:"kind,omitempty"`
	Status Status `url:"status,omitempty"`
	Limit  int    `url:"limit,omitempty"`
	Offset int    `url:"offset,omitempty"`
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Normalize applies the default and maximum page size and clamps a negative offset.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
