package linkedin

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

	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"
)

const (
	imageRecipe   = "urn:li:digitalmediaRecipe:feedshare-image"
	uploadRequest = "com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"
)

type Config struct {
	BaseURL           string
	Version           string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client publishes member posts through the UGC API, uploading an image asset first when present.
type Client struct {
	baseURL    string
	version    string
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
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		version:    cfg.Version,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 5),
	}
}

type actionQuery struct {
	Action string `url:"action"`
}

type userInfo struct {
	Sub string `json:"sub"`
}

type registerUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism map[string]struct {
			UploadURL string `json:"uploadUrl"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}

func (c *Client) PublishPost(ctx context.Context, cred *model.OAuthToken, payload *model.LinkedInPayload, image *model.Media) (*model.PublishResult, error) {
	if cred == nil || cred.AccessToken == "" {
		return nil, model.ErrCredentialMissing
	}
	author, err := c.authorURN(ctx, cred.AccessToken)
	if err != nil {
		return nil, err
	}

	var asset string
	if image != nil && len(image.Data) > 0 {
		if asset, err = c.uploadImage(ctx, cred.AccessToken, author, image); err != nil {
			return nil, err
		}
	}

	raw, header, err := c.do(ctx, cred.AccessToken, http.MethodPost, c.baseURL+"/v2/ugcPosts", ugcPost(author, payload, asset))
	if err != nil {
		return nil, err
	}
	id := header.Get("X-RestLi-Id")
	if id == "" {
		var body struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(raw, &body)
		id = body.ID
	}
	if id == "" {
		return nil, &model.PublishError{Platform: model.PlatformLinkedIn, Message: "response did not include a post id"}
	}
	result := &model.PublishResult{PostID: id, URL: "https://www.linkedin.com/feed/update/" + id}
	if len(raw) > 0 && json.Valid(raw) {
		result.Raw = json.RawMessage(raw)
	}
	return result, nil
}

func (c *Client) authorURN(ctx context.Context, accessToken string) (string, error) {
	raw, _, err := c.do(ctx, accessToken, http.MethodGet, c.baseURL+"/v2/userinfo", nil)
	if err != nil {
		return "", err
	}
	var info userInfo
	if err := json.Unmarshal(raw, &info); err != nil || info.Sub == "" {
		return "", &model.PublishError{Platform: model.PlatformLinkedIn, Message: "could not resolve member id"}
	}
	return "urn:li:person:" + info.Sub, nil
}

func (c *Client) uploadImage(ctx context.Context, accessToken, owner string, image *model.Media) (string, error) {
	v, err := query.Values(actionQuery{Action: "registerUpload"})
	if err != nil {
		return "", err
	}
	register := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{imageRecipe},
			"owner":   owner,
			"serviceRelationships": []map[string]string{
				{"relationshipType": "OWNER", "identifier": "urn:li:userGeneratedContent"},
			},
		},
	}
	raw, _, err := c.do(ctx, accessToken, http.MethodPost, c.baseURL+"/v2/assets?"+v.Encode(), register)
	if err != nil {
		return "", err
	}
	var out registerUploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode register upload: %w", err)
	}
	mech, ok := out.Value.UploadMechanism[uploadRequest]
	if !ok || mech.UploadURL == "" || out.Value.Asset == "" {
		return "", &model.PublishError{Platform: model.PlatformLinkedIn, Message: "register upload returned no upload url"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, mech.UploadURL, bytes.NewReader(image.Data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if image.ContentType != "" {
		req.Header.Set("Content-Type", image.ContentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("linkedin image upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &model.PublishError{Platform: model.PlatformLinkedIn, StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
	return out.Value.Asset, nil
}

// ugcPost builds the share. Without an image the title leads the commentary, since only
// media entries carry a title of their own.
func ugcPost(author string, payload *model.LinkedInPayload, asset string) map[string]interface{} {
	commentary := payload.Content
	if asset == "" && strings.TrimSpace(payload.Title) != "" {
		commentary = strings.TrimSpace(payload.Title) + "\n\n" + payload.Content
	}
	content := map[string]interface{}{
		"shareCommentary":    map[string]string{"text": commentary},
		"shareMediaCategory": "NONE",
	}
	if asset != "" {
		media := map[string]interface{}{"status": "READY", "media": asset}
		if payload.Title != "" {
			media["title"] = map[string]string{"text": payload.Title}
		}
		content["shareMediaCategory"] = "IMAGE"
		content["media"] = []interface{}{media}
	}
	return map[string]interface{}{
		"author":          author,
		"lifecycleState":  "PUBLISHED",
		"specificContent": map[string]interface{}{"com.linkedin.ugc.ShareContent": content},
		"visibility":      map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}
}

func (c *Client) do(ctx context.Context, accessToken, method, url string, body interface{}) ([]byte, http.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	if c.version != "" {
		req.Header.Set("LinkedIn-Version", c.version)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("linkedin request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &model.PublishError{Platform: model.PlatformLinkedIn, StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	return raw, resp.Header, nil
}

func errorMessage(code int, raw []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return http.StatusText(code)
}
