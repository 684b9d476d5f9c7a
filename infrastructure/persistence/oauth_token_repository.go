package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"social-scheduler/domain/model"
)

// OAuthTokenRepository is the PostgreSQL credential store. Rows are unique per (user_id, platform).
type OAuthTokenRepository struct{ db *sql.DB }

func NewOAuthTokenRepository(db *sql.DB) *OAuthTokenRepository { return &OAuthTokenRepository{db: db} }

// UpsertToken writes the credential; concurrent refreshes resolve last-writer-wins.
func (r *OAuthTokenRepository) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	q := `INSERT INTO oauth_tokens (user_id, platform, access_token, refresh_token, expires_at, scopes, token_type, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			token_type=EXCLUDED.token_type,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, t.UserID, t.Platform, t.AccessToken, t.RefreshToken, nullTime(t.ExpiresAt), t.Scopes, nullString(t.TokenType), t.CreatedAt, t.UpdatedAt)
	return err
}

// GetToken returns (nil, nil) when the user has no credential for the platform.
func (r *OAuthTokenRepository) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, token_type, created_at, updated_at FROM oauth_tokens WHERE user_id=$1 AND platform=$2`, userID, platform)
	return scanToken(row)
}

func scanToken(row rowScanner) (*model.OAuthToken, error) {
	tok := &model.OAuthToken{}
	var exp sql.NullTime
	var refresh, tokenType sql.NullString
	if err := row.Scan(&tok.ID, &tok.UserID, &tok.Platform, &tok.AccessToken, &refresh, &exp, &tok.Scopes, &tokenType, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	tok.RefreshToken = refresh.String
	if exp.Valid {
		v := exp.Time.UTC()
		tok.ExpiresAt = &v
	}
	if tokenType.Valid {
		v := tokenType.String
		tok.TokenType = &v
	}
	return tok, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
