package model

import "time"

// Platforms with stored OAuth credentials.
const (
	PlatformTwitter  = "twitter"
	PlatformLinkedIn = "linkedin"
	PlatformYouTube  = "youtube"
)

// OAuthToken stores platform OAuth credentials per user
type OAuthToken struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Platform     string     `json:"platform"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       string     `json:"scopes"`
	TokenType    *string    `json:"token_type,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Expired reports whether the access token is expired, or will be within skew.
// Tokens without an expiry never expire.
func (t *OAuthToken) Expired(now time.Time, skew time.Duration) bool {
	if t.ExpiresAt == nil || t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(*t.ExpiresAt)
}
