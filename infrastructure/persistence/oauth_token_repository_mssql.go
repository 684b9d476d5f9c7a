package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-scheduler/domain/model"
)

type OAuthTokenRepositoryMSSQL struct{ db *sql.DB }

func NewOAuthTokenRepositoryMSSQL(db *sql.DB) *OAuthTokenRepositoryMSSQL {
	return &OAuthTokenRepositoryMSSQL{db: db}
}

// UpsertToken writes the credential for (user_id, platform). HOLDLOCK keeps concurrent
// refreshes from racing into a duplicate insert; the later writer wins.
func (r *OAuthTokenRepositoryMSSQL) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `MERGE dbo.[oauth_tokens] WITH (HOLDLOCK) AS cur
USING (SELECT @p1 AS user_id, @p2 AS platform) AS incoming
   ON cur.user_id = incoming.user_id AND cur.platform = incoming.platform
WHEN MATCHED THEN
   UPDATE SET access_token = @p3, refresh_token = @p4, expires_at = @p5, scopes = @p6, token_type = @p7, updated_at = @p9
WHEN NOT MATCHED THEN
   INSERT (user_id, platform, access_token, refresh_token, expires_at, scopes, token_type, created_at, updated_at)
   VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9);`,
		t.UserID, t.Platform, t.AccessToken, t.RefreshToken,
		nullTime(t.ExpiresAt), t.Scopes, nullString(t.TokenType),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert %s token: %w", t.Platform, err)
	}
	return nil
}

func (r *OAuthTokenRepositoryMSSQL) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, token_type, created_at, updated_at FROM dbo.[oauth_tokens] WHERE user_id=@p1 AND platform=@p2`, userID, platform)
	return scanToken(row)
}
