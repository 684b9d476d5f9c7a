package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Config represents YouTube OAuth client configuration
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	TokenURL     string `json:"token_url"`
}

// uploader is the slice of the Data API the publisher needs.
type uploader interface {
	InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error)
	SetThumbnail(ctx context.Context, videoID string, media io.Reader) error
}

// Client uploads scheduled videos with the owner's stored credential and mirrors them locally.
type Client struct {
	oauthConfig *oauth2.Config
	mirror      repository.IYouTubeVideo
	newUploader func(ctx context.Context, token *oauth2.Token) (uploader, error)
}

// NewYouTubeClient creates the publisher. mirror may be nil when no mirror store is configured.
func NewYouTubeClient(config *Config, mirror repository.IYouTubeVideo) *Client {
	endpoint := google.Endpoint
	if config.TokenURL != "" {
		endpoint.TokenURL = config.TokenURL
	}
	c := &Client{
		oauthConfig: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes: []string{
				youtube.YoutubeUploadScope,
				youtube.YoutubeForceSslScope,
			},
			Endpoint: endpoint,
		},
		mirror: mirror,
	}
	c.newUploader = c.serviceUploader
	return c
}

func (c *Client) serviceUploader(ctx context.Context, token *oauth2.Token) (uploader, error) {
	httpClient := c.oauthConfig.Client(ctx, token)
	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &dataAPI{service: service}, nil
}

// UploadVideo inserts the video, then sets the thumbnail when one was fetched. A thumbnail
// failure does not fail the publish.
func (c *Client) UploadVideo(ctx context.Context, cred *model.OAuthToken, item *model.ScheduledItem, payload *model.YouTubePayload, video, thumbnail *model.Media) (*model.PublishResult, error) {
	if cred == nil || cred.AccessToken == "" {
		return nil, model.ErrCredentialMissing
	}
	if video == nil || len(video.Data) == 0 {
		return nil, fmt.Errorf("%w: video file is empty", model.ErrValidation)
	}

	api, err := c.newUploader(ctx, tokenFrom(cred))
	if err != nil {
		return nil, err
	}

	privacy := payload.PrivacyOrDefault()
	uploaded, err := api.InsertVideo(ctx, &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       payload.Title,
			Description: payload.Description,
			Tags:        payload.Tags,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: privacy,
		},
	}, bytes.NewReader(video.Data))
	if err != nil {
		return nil, publishError(err)
	}
	if uploaded == nil || uploaded.Id == "" {
		return nil, &model.PublishError{Platform: model.PlatformYouTube, Message: "upload response did not include a video id"}
	}

	thumbnailSet := false
	if thumbnail != nil && len(thumbnail.Data) > 0 {
		if err := api.SetThumbnail(ctx, uploaded.Id, bytes.NewReader(thumbnail.Data)); err != nil {
			logger.GetLogger().WithField("error", err).WithField("videoId", uploaded.Id).Warn("failed to set thumbnail")
		} else {
			thumbnailSet = true
		}
	}

	result := &model.PublishResult{VideoID: uploaded.Id, URL: model.WatchURL(uploaded.Id)}
	if raw, err := uploaded.MarshalJSON(); err == nil {
		result.Raw = raw
	}
	c.saveMirror(ctx, item, payload, uploaded, privacy, thumbnailSet)
	return result, nil
}

func (c *Client) saveMirror(ctx context.Context, item *model.ScheduledItem, payload *model.YouTubePayload, uploaded *youtube.Video, privacy string, thumbnailSet bool) {
	if c.mirror == nil {
		return
	}
	rec := &model.YouTubeVideo{
		VideoID:       uploaded.Id,
		Title:         payload.Title,
		Description:   payload.Description,
		URL:           model.WatchURL(uploaded.Id),
		PrivacyStatus: privacy,
		ThumbnailSet:  thumbnailSet,
	}
	if item != nil {
		rec.UserID = item.UserID
		rec.ScheduledItemID = item.ID
	}
	if uploaded.Status != nil {
		rec.UploadStatus = uploaded.Status.UploadStatus
		if uploaded.Status.PrivacyStatus != "" {
			rec.PrivacyStatus = uploaded.Status.PrivacyStatus
		}
	}
	if err := c.mirror.Save(ctx, rec); err != nil {
		logger.GetLogger().WithField("error", err).WithField("videoId", uploaded.Id).Warn("failed to save youtube mirror record")
	}
}

func tokenFrom(cred *model.OAuthToken) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
	}
	if cred.ExpiresAt != nil {
		tok.Expiry = *cred.ExpiresAt
	}
	return tok
}

func publishError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" && len(gerr.Errors) > 0 {
			msg = gerr.Errors[0].Message
		}
		if msg == "" {
			msg = gerr.Error()
		}
		return &model.PublishError{Platform: model.PlatformYouTube, StatusCode: gerr.Code, Message: msg}
	}
	return &model.PublishError{Platform: model.PlatformYouTube, Message: err.Error()}
}

// dataAPI adapts *youtube.Service to uploader.
type dataAPI struct {
	service *youtube.Service
}

func (d *dataAPI) InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error) {
	return d.service.Videos.Insert([]string{"snippet", "status"}, video).Media(media).Context(ctx).Do()
}

func (d *dataAPI) SetThumbnail(ctx context.Context, videoID string, media io.Reader) error {
	_, err := d.service.Thumbnails.Set(videoID).Media(media).Context(ctx).Do()
	return err
}
