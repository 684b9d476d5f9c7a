package repository

import (
	"context"

	"social-scheduler/domain/model"
)

// IOAuthToken is the credential store. GetToken returns (nil, nil) when nothing is stored.
type IOAuthToken interface {
	GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error)
	UpsertToken(ctx context.Context, t *model.OAuthToken) error
}

// ICredentialRefresher returns a usable credential, refreshing it first when expired.
type ICredentialRefresher interface {
	EnsureFresh(ctx context.Context, userID, platform string) (*model.OAuthToken, error)
}
