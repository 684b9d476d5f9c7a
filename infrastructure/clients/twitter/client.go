package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Config for the X/Twitter v2 API.
type Config struct {
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 5),
	}
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// PublishTweet posts the text on behalf of the credential's owner.
func (c *Client) PublishTweet(ctx context.Context, cred *model.OAuthToken, payload *model.TweetPayload) (*model.PublishResult, error) {
	if cred == nil || cred.AccessToken == "" {
		return nil, model.ErrCredentialMissing
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(createTweetRequest{Text: payload.Text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.GetLogger().WithFields(map[string]interface{}{
			"status":    resp.StatusCode,
			"requestId": requestID,
		}).Warn("twitter rejected tweet")
		return nil, &model.PublishError{Platform: model.PlatformTwitter, StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	var out createTweetResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.Data.ID == "" {
		return nil, &model.PublishError{Platform: model.PlatformTwitter, StatusCode: resp.StatusCode, Message: "response did not include a tweet id"}
	}
	return &model.PublishResult{
		PostID: out.Data.ID,
		URL:    "https://twitter.com/i/web/status/" + out.Data.ID,
		Raw:    json.RawMessage(raw),
	}, nil
}

func errorMessage(code int, raw []byte) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil {
		switch {
		case e.Detail != "":
			return e.Detail
		case len(e.Errors) > 0 && e.Errors[0].Message != "":
			return e.Errors[0].Message
		case e.Title != "":
			return e.Title
		}
	}
	return http.StatusText(code)
}
