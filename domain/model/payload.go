package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTweetLength is the platform character limit for a single tweet.
const MaxTweetLength = 280

// Payload is the kind-specific content of a scheduled item. The concrete types are
// *TweetPayload, *LinkedInPayload and *YouTubePayload.
type Payload interface {
	Kind() Kind
	Validate() error
}

type TweetPayload struct {
	Text string `json:"text"`
}

func (p *TweetPayload) Kind() Kind { return KindTweet }

func (p *TweetPayload) Validate() error {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return fmt.Errorf("%w: tweet text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxTweetLength {
		return fmt.Errorf("%w: tweet exceeds %d characters", ErrValidation, MaxTweetLength)
	}
	return nil
}

type LinkedInPayload struct {
	Content  string `json:"content"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (p *LinkedInPayload) Kind() Kind { return KindLinkedInPost }

func (p *LinkedInPayload) Validate() error {
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("%w: post content is required", ErrValidation)
	}
	if p.ImageURL != "" && !isHTTPURL(p.ImageURL) {
		return fmt.Errorf("%w: imageUrl must be an http(s) URL", ErrValidation)
	}
	return nil
}

// Privacy levels accepted by YouTube.
const (
	PrivacyPrivate  = "private"
	PrivacyPublic   = "public"
	PrivacyUnlisted = "unlisted"
)

type YouTubePayload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	VideoURL     string   `json:"videoUrl"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Privacy      string   `json:"privacy"`
}

func (p *YouTubePayload) Kind() Kind { return KindYouTubeVideo }

func (p *YouTubePayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: video title is required", ErrValidation)
	}
	if !isHTTPURL(p.VideoURL) {
		return fmt.Errorf("%w: videoUrl must be an http(s) URL", ErrValidation)
	}
	if p.ThumbnailURL != "" && !isHTTPURL(p.ThumbnailURL) {
		return fmt.Errorf("%w: thumbnailUrl must be an http(s) URL", ErrValidation)
	}
	switch p.Privacy {
	case "", PrivacyPrivate, PrivacyPublic, PrivacyUnlisted:
	default:
		return fmt.Errorf("%w: unknown privacy %q", ErrValidation, p.Privacy)
	}
	return nil
}

// PrivacyOrDefault is the privacy to upload with; an empty value means private.
func (p *YouTubePayload) PrivacyOrDefault() string {
	if p.Privacy == "" {
		return PrivacyPrivate
	}
	return p.Privacy
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
