package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"social-scheduler/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PublishTweet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello world", body["text"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1789","text":"hello world"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerMinute: 600})
	res, err := c.PublishTweet(context.Background(), &model.OAuthToken{AccessToken: "access-1"}, &model.TweetPayload{Text: "hello world"})

	require.NoError(t, err)
	assert.Equal(t, "1789", res.PostID)
	assert.Equal(t, "https://twitter.com/i/web/status/1789", res.URL)
	assert.JSONEq(t, `{"data":{"id":"1789","text":"hello world"}}`, string(res.Raw))
}

func TestClient_PublishTweet_PlatformError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail", http.StatusForbidden, `{"title":"Forbidden","detail":"You are not allowed to create a Tweet with duplicate content."}`, "You are not allowed to create a Tweet with duplicate content."},
		{"errors list", http.StatusBadRequest, `{"errors":[{"message":"text is too long"}]}`, "text is too long"},
		{"no body", http.StatusTooManyRequests, ``, "Too Many Requests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).PublishTweet(context.Background(), &model.OAuthToken{AccessToken: "a"}, &model.TweetPayload{Text: "x"})

			var pubErr *model.PublishError
			require.True(t, errors.As(err, &pubErr))
			assert.Equal(t, tt.status, pubErr.StatusCode)
			assert.Equal(t, tt.message, pubErr.Message)
			assert.Equal(t, model.PlatformTwitter, pubErr.Platform)
		})
	}
}

func TestClient_PublishTweet_NoCredential(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"}).PublishTweet(context.Background(), nil, &model.TweetPayload{Text: "x"})
	assert.ErrorIs(t, err, model.ErrCredentialMissing)
}
