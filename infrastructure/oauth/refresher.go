package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
	"social-scheduler/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
)

// DefaultSkew refreshes tokens that expire within the next minute.
const DefaultSkew = time.Minute

// Refresher implements repository.ICredentialRefresher on top of the credential store.
// Concurrent refreshes of the same credential in one process share a single token request;
// across processes the last write wins.
type Refresher struct {
	tokens     repository.IOAuthToken
	clients    map[string]*oauth2.Config
	httpClient *http.Client
	skew       time.Duration
	now        func() time.Time
	group      singleflight.Group
}

func NewRefresher(tokens repository.IOAuthToken, cfg configuration.OAuth) *Refresher {
	r := &Refresher{
		tokens:  tokens,
		clients: map[string]*oauth2.Config{},
		skew:    DefaultSkew,
		now:     time.Now,
	}
	r.register(model.PlatformTwitter, cfg.Twitter, oauth2.Endpoint{AuthStyle: oauth2.AuthStyleInHeader})
	r.register(model.PlatformLinkedIn, cfg.LinkedIn, oauth2.Endpoint{AuthStyle: oauth2.AuthStyleInParams})
	r.register(model.PlatformYouTube, cfg.YouTube, google.Endpoint)
	return r
}

// WithHTTPClient sets the client used for token requests.
func (r *Refresher) WithHTTPClient(c *http.Client) *Refresher {
	r.httpClient = c
	return r
}

func (r *Refresher) register(platform string, client configuration.OAuthClient, endpoint oauth2.Endpoint) {
	if !client.Configured() {
		return
	}
	if client.TokenURL != "" {
		endpoint.TokenURL = client.TokenURL
	}
	r.clients[platform] = &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  client.RedirectURI,
		Endpoint:     endpoint,
	}
}

// EnsureFresh returns the stored credential, refreshing and persisting it first when it is
// expired or about to expire.
func (r *Refresher) EnsureFresh(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	tok, err := r.tokens.GetToken(ctx, userID, platform)
	if err != nil {
		return nil, fmt.Errorf("load %s credential: %w", platform, err)
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s", model.ErrCredentialMissing, platform)
	}
	if !tok.Expired(r.now(), r.skew) {
		return tok, nil
	}

	v, err, _ := r.group.Do(userID+"|"+platform, func() (interface{}, error) {
		return r.refresh(ctx, tok)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.OAuthToken), nil
}

func (r *Refresher) refresh(ctx context.Context, tok *model.OAuthToken) (*model.OAuthToken, error) {
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s has no refresh token", model.ErrCredentialExpired, tok.Platform)
	}
	cfg, ok := r.clients[tok.Platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s oauth client is not configured", model.ErrCredentialExpired, tok.Platform)
	}

	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}
	// oauth2 checks expiry against the wall clock, so mark the token as long expired.
	current := &oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       time.Unix(1, 0),
	}
	next, err := cfg.TokenSource(ctx, current).Token()
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("platform", tok.Platform).WithField("user_id", tok.UserID).Warn("token refresh failed")
		return nil, fmt.Errorf("%w: %s refresh: %v", model.ErrCredentialExpired, tok.Platform, err)
	}

	refreshed := *tok
	refreshed.AccessToken = next.AccessToken
	if next.RefreshToken != "" {
		refreshed.RefreshToken = next.RefreshToken
	}
	if next.Expiry.IsZero() {
		refreshed.ExpiresAt = nil
	} else {
		exp := next.Expiry.UTC()
		refreshed.ExpiresAt = &exp
	}
	if next.TokenType != "" {
		tt := next.TokenType
		refreshed.TokenType = &tt
	}
	if scope, ok := next.Extra("scope").(string); ok && scope != "" {
		refreshed.Scopes = strings.TrimSpace(scope)
	}

	if err := r.tokens.UpsertToken(ctx, &refreshed); err != nil {
		return nil, fmt.Errorf("store refreshed %s credential: %w", tok.Platform, err)
	}
	logger.GetLogger().WithField("platform", tok.Platform).WithField("user_id", tok.UserID).Info("credential refreshed")
	return &refreshed, nil
}
