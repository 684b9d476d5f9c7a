package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// EnsureSchemaMSSQL creates the scheduled item and credential tables for SQL Server if they do not exist.
func EnsureSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, t := range orderedTables() {
		cols := make([]string, 0, len(t.columns))
		for _, c := range t.columns {
			cols = append(cols, fmt.Sprintf("%s NVARCHAR(MAX) NOT NULL DEFAULT ''", c))
		}
		ddl := fmt.Sprintf(`IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.%[1]s') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[%[1]s] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(128) NOT NULL,
        scheduled_for DATETIME2 NOT NULL,
        status NVARCHAR(32) NOT NULL DEFAULT 'scheduled',
        schedule_id NVARCHAR(255) NULL,
        publish_result NVARCHAR(MAX) NULL,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL,
        %[2]s
    );
    CREATE INDEX IX_%[1]s_user_status ON dbo.[%[1]s](user_id, status);
END`, t.name, strings.Join(cols, ",\n        "))
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create %s (mssql): %w", t.name, err)
		}
	}

	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.oauth_tokens') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[oauth_tokens] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(64) NOT NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        refresh_token NVARCHAR(MAX) NULL,
        expires_at DATETIME2 NULL,
        scopes NVARCHAR(MAX) NOT NULL,
        token_type NVARCHAR(32) NULL,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE UNIQUE INDEX UX_oauth_tokens_user_platform ON dbo.[oauth_tokens](user_id, platform);
END`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create oauth_tokens (mssql): %w", err)
	}

	// Helper to add a column if missing via COL_LENGTH check
	addIfMissing := func(table, column, ddl string) error {
		q := fmt.Sprintf(`IF COL_LENGTH('%s', '%s') IS NULL BEGIN %s END`, table, column, ddl)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure column %s.%s: %w", table, column, err)
		}
		return nil
	}
	if err := addIfMissing("dbo.scheduled_youtube_videos", "privacy", "ALTER TABLE dbo.[scheduled_youtube_videos] ADD privacy NVARCHAR(32) NOT NULL DEFAULT 'private'"); err != nil {
		return err
	}
	return addIfMissing("dbo.scheduled_linkedin_posts", "image_url", "ALTER TABLE dbo.[scheduled_linkedin_posts] ADD image_url NVARCHAR(MAX) NOT NULL DEFAULT ''")
}
