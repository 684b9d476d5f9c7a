package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/configuration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokens struct {
	token    *model.OAuthToken
	getErr   error
	upserted []*model.OAuthToken
}

func (m *memoryTokens) GetToken(context.Context, string, string) (*model.OAuthToken, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.token == nil {
		return nil, nil
	}
	cp := *m.token
	return &cp, nil
}

func (m *memoryTokens) UpsertToken(_ context.Context, t *model.OAuthToken) error {
	m.upserted = append(m.upserted, t)
	return nil
}

func tokenServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rt-old", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func expiredToken(platform string) *model.OAuthToken {
	past := time.Now().Add(-time.Hour)
	return &model.OAuthToken{UserID: "u1", Platform: platform, AccessToken: "at-old", RefreshToken: "rt-old", ExpiresAt: &past}
}

func oauthConfig(tokenURL string) configuration.OAuth {
	client := configuration.OAuthClient{ClientID: "id", ClientSecret: "secret", TokenURL: tokenURL}
	return configuration.OAuth{Twitter: client, LinkedIn: client, YouTube: client}
}

func TestEnsureFresh_NotExpired(t *testing.T) {
	future := time.Now().Add(time.Hour)
	store := &memoryTokens{token: &model.OAuthToken{UserID: "u1", Platform: model.PlatformTwitter, AccessToken: "at", ExpiresAt: &future}}

	tok, err := NewRefresher(store, configuration.OAuth{}).EnsureFresh(context.Background(), "u1", model.PlatformTwitter)

	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Empty(t, store.upserted)
}

func TestEnsureFresh_Missing(t *testing.T) {
	_, err := NewRefresher(&memoryTokens{}, configuration.OAuth{}).EnsureFresh(context.Background(), "u1", model.PlatformLinkedIn)
	assert.ErrorIs(t, err, model.ErrCredentialMissing)
}

func TestEnsureFresh_StoreError(t *testing.T) {
	_, err := NewRefresher(&memoryTokens{getErr: errors.New("db down")}, configuration.OAuth{}).EnsureFresh(context.Background(), "u1", model.PlatformLinkedIn)
	assert.ErrorContains(t, err, "db down")
}

func TestEnsureFresh_RefreshesAndPersists(t *testing.T) {
	for _, platform := range []string{model.PlatformTwitter, model.PlatformLinkedIn, model.PlatformYouTube} {
		t.Run(platform, func(t *testing.T) {
			var calls int32
			srv := tokenServer(t, http.StatusOK, `{"access_token":"at-new","refresh_token":"rt-new","token_type":"bearer","expires_in":3600,"scope":"tweet.write offline.access"}`, &calls)
			store := &memoryTokens{token: expiredToken(platform)}

			tok, err := NewRefresher(store, oauthConfig(srv.URL)).EnsureFresh(context.Background(), "u1", platform)

			require.NoError(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
			assert.Equal(t, "at-new", tok.AccessToken)
			assert.Equal(t, "rt-new", tok.RefreshToken)
			require.NotNil(t, tok.ExpiresAt)
			assert.True(t, tok.ExpiresAt.After(time.Now()))
			assert.Equal(t, "tweet.write offline.access", tok.Scopes)
			require.Len(t, store.upserted, 1)
			assert.Equal(t, "at-new", store.upserted[0].AccessToken)
		})
	}
}

func TestEnsureFresh_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	var calls int32
	srv := tokenServer(t, http.StatusOK, `{"access_token":"at-new","expires_in":60}`, &calls)
	store := &memoryTokens{token: expiredToken(model.PlatformLinkedIn)}

	tok, err := NewRefresher(store, oauthConfig(srv.URL)).EnsureFresh(context.Background(), "u1", model.PlatformLinkedIn)

	require.NoError(t, err)
	assert.Equal(t, "rt-old", tok.RefreshToken)
}

func TestEnsureFresh_RefreshRejected(t *testing.T) {
	var calls int32
	srv := tokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`, &calls)
	store := &memoryTokens{token: expiredToken(model.PlatformTwitter)}

	_, err := NewRefresher(store, oauthConfig(srv.URL)).EnsureFresh(context.Background(), "u1", model.PlatformTwitter)

	assert.ErrorIs(t, err, model.ErrCredentialExpired)
	assert.Empty(t, store.upserted)
}

func TestEnsureFresh_CannotRefresh(t *testing.T) {
	noRefresh := expiredToken(model.PlatformTwitter)
	noRefresh.RefreshToken = ""
	_, err := NewRefresher(&memoryTokens{token: noRefresh}, oauthConfig("http://unused")).EnsureFresh(context.Background(), "u1", model.PlatformTwitter)
	assert.ErrorIs(t, err, model.ErrCredentialExpired)

	_, err = NewRefresher(&memoryTokens{token: expiredToken(model.PlatformYouTube)}, configuration.OAuth{}).EnsureFresh(context.Background(), "u1", model.PlatformYouTube)
	assert.ErrorIs(t, err, model.ErrCredentialExpired)
}
