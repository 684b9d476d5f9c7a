package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"social-scheduler/infrastructure/logger"
)

// EnsureSchema creates the scheduled item and credential tables for PostgreSQL if missing,
// then adds columns introduced after the first release. Safe to call at startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, t := range orderedTables() {
		cols := make([]string, 0, len(t.columns))
		for _, c := range t.columns {
			cols = append(cols, fmt.Sprintf("%s TEXT NOT NULL DEFAULT ''", c))
		}
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL,
        scheduled_for TIMESTAMPTZ NOT NULL,
        status TEXT NOT NULL DEFAULT 'scheduled',
        schedule_id TEXT,
        publish_result JSONB,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        %s
    )`, t.name, strings.Join(cols, ",\n        "))
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
		idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user_status ON %s(user_id, status)`, t.name, t.name)
		if _, err := db.ExecContext(ctx, idx); err != nil {
			logger.GetLogger().WithField("error", err).Warnf("failed creating index on %s", t.name)
		}
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS oauth_tokens (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL,
        platform TEXT NOT NULL,
        access_token TEXT NOT NULL,
        refresh_token TEXT NOT NULL DEFAULT '',
        expires_at TIMESTAMPTZ,
        scopes TEXT NOT NULL DEFAULT '',
        token_type TEXT,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        UNIQUE (user_id, platform)
    )`); err != nil {
		return fmt.Errorf("create oauth_tokens table: %w", err)
	}

	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"scheduled_youtube_videos", "privacy", "ALTER TABLE scheduled_youtube_videos ADD COLUMN privacy TEXT NOT NULL DEFAULT 'private'"},
		{"scheduled_linkedin_posts", "image_url", "ALTER TABLE scheduled_linkedin_posts ADD COLUMN image_url TEXT NOT NULL DEFAULT ''"},
	}
	for _, c := range checks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
