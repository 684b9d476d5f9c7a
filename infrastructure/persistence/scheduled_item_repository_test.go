package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"social-scheduler/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T, dialect Dialect) (*ScheduledItemRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewScheduledItemRepository(db, dialect)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func itemColumns(payload ...string) []string {
	return append(append([]string{}, commonColumns...), payload...)
}

func TestScheduledItemRepository_Create(t *testing.T) {
	repo, mock := newTestRepo(t, Postgres)
	scheduledFor := fixedNow.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO scheduled_tweets (user_id, scheduled_for, status, created_at, updated_at, text) VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`)).
		WithArgs("user-1", scheduledFor, "scheduled", fixedNow, fixedNow, "hello").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	item, err := repo.Create(context.Background(), &model.ScheduledItem{
		Kind:         model.KindTweet,
		UserID:       "user-1",
		Payload:      &model.TweetPayload{Text: "hello"},
		ScheduledFor: scheduledFor,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), item.ID)
	assert.Equal(t, model.StatusScheduled, item.Status)
	assert.Nil(t, item.ScheduleID)
	assert.Nil(t, item.PublishResult)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledItemRepository_Create_SQLServer(t *testing.T) {
	repo, mock := newTestRepo(t, SQLServer)
	scheduledFor := fixedNow.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO dbo.[scheduled_linkedin_posts] (user_id, scheduled_for, status, created_at, updated_at, content, title, image_url) OUTPUT INSERTED.id VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8)`)).
		WithArgs("user-1", scheduledFor, "scheduled", fixedNow, fixedNow, "body", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	item, err := repo.Create(context.Background(), &model.ScheduledItem{
		Kind:         model.KindLinkedInPost,
		UserID:       "user-1",
		Payload:      &model.LinkedInPayload{Content: "body"},
		ScheduledFor: scheduledFor,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledItemRepository_Create_RejectsPastOrNow(t *testing.T) {
	repo, mock := newTestRepo(t, Postgres)

	for _, when := range []time.Time{fixedNow.Add(-time.Minute), fixedNow} {
		_, err := repo.Create(context.Background(), &model.ScheduledItem{
			Kind:         model.KindTweet,
			UserID:       "user-1",
			Payload:      &model.TweetPayload{Text: "late"},
			ScheduledFor: when,
		})
		assert.ErrorIs(t, err, model.ErrScheduleInPast)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledItemRepository_Create_PayloadKindMismatch(t *testing.T) {
	repo, _ := newTestRepo(t, Postgres)

	_, err := repo.Create(context.Background(), &model.ScheduledItem{
		Kind:         model.KindYouTubeVideo,
		UserID:       "user-1",
		Payload:      &model.TweetPayload{Text: "wrong table"},
		ScheduledFor: fixedNow.Add(time.Hour),
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestScheduledItemRepository_Get(t *testing.T) {
	repo, mock := newTestRepo(t, Postgres)
	scheduledFor := fixedNow.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, scheduled_for, status, schedule_id, publish_result, created_at, updated_at, title, description, video_url, thumbnail_url, tags, privacy FROM scheduled_youtube_videos WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(itemColumns("title", "description", "video_url", "thumbnail_url", "tags", "privacy")).
			AddRow(9, "user-1", scheduledFor, "completed", "youtube_video-9", `{"videoId":"abc","url":"https://www.youtube.com/watch?v=abc"}`, fixedNow, fixedNow,
				"Launch", "desc", "https://cdn.example.com/v.mp4", "", `["go","release"]`, "unlisted"))

	item, err := repo.Get(context.Background(), model.KindYouTubeVideo, 9)

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, item.Status)
	require.NotNil(t, item.ScheduleID)
	assert.Equal(t, "youtube_video-9", *item.ScheduleID)
	require.NotNil(t, item.PublishResult)
	assert.Equal(t, "abc", item.PublishResult.VideoID)
	payload, ok := item.Payload.(*model.YouTubePayload)
	require.True(t, ok)
	assert.Equal(t, []string{"go", "release"}, payload.Tags)
	assert.Equal(t, model.PrivacyUnlisted, payload.Privacy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledItemRepository_Get_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t, Postgres)

	mock.ExpectQuery(`SELECT .* FROM scheduled_tweets WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(itemColumns("text")))

	_, err := repo.Get(context.Background(), model.KindTweet, 404)
	assert.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledItemRepository_GetForUser(t *testing.T) {
	repo, mock := newTestRepo(t, Postgres)

	mock.ExpectQuery(`SELECT .* FROM scheduled_tweets WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(3), "user-2").
		WillReturnRows(sqlmock.NewRows(itemColumns("text")))

	_, err := repo.GetForUser(context.Background(), model.KindTweet, 3, "user-2")
	assert.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledItemRepository_TransitionStatus(t *testing.T) {
	t.Run("claims scheduled item", func(t *testing.T) {
		repo, mock := newTestRepo(t, Postgres)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_tweets SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`)).
			WithArgs("processing", fixedNow, int64(1), "scheduled").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.TransitionStatus(context.Background(), model.KindTweet, 1, model.StatusScheduled, model.StatusProcessing, nil)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race reports no change", func(t *testing.T) {
		repo, mock := newTestRepo(t, Postgres)
		mock.ExpectExec(`UPDATE scheduled_tweets SET status`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.TransitionStatus(context.Background(), model.KindTweet, 1, model.StatusScheduled, model.StatusProcessing, nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("writes result with status", func(t *testing.T) {
		repo, mock := newTestRepo(t, SQLServer)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE dbo.[scheduled_linkedin_posts] SET status = @p1, updated_at = @p2, publish_result = @p3 WHERE id = @p4 AND status = @p5`)).
			WithArgs("failed", fixedNow, `{"error":"boom"}`, int64(5), "processing").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.TransitionStatus(context.Background(), model.KindLinkedInPost, 5, model.StatusProcessing, model.StatusFailed, &model.PublishResult{Error: "boom"})
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects edges outside the state machine", func(t *testing.T) {
		repo, mock := newTestRepo(t, Postgres)
		_, err := repo.TransitionStatus(context.Background(), model.KindTweet, 1, model.StatusCompleted, model.StatusScheduled, nil)
		assert.ErrorIs(t, err, model.ErrInvalidTransition)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestScheduledItemRepository_SetScheduleID(t *testing.T) {
	repo, mock := newTestRepo(t, Postgres)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE scheduled_tweets SET schedule_id = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs("sched-1", fixedNow, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetScheduleID(context.Background(), model.KindTweet, 8, "sched-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledItemRepository_ListByUser(t *testing.T) {
	t.Run("single kind pages in SQL", func(t *testing.T) {
		repo, mock := newTestRepo(t, Postgres)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, scheduled_for, status, schedule_id, publish_result, created_at, updated_at, text FROM scheduled_tweets WHERE user_id = $1 AND status = $2 ORDER BY scheduled_for DESC, id DESC LIMIT $3 OFFSET $4`)).
			WithArgs("user-1", "scheduled", 10, 0).
			WillReturnRows(sqlmock.NewRows(itemColumns("text")).
				AddRow(1, "user-1", fixedNow.Add(time.Hour), "scheduled", nil, nil, fixedNow, fixedNow, "first"))

		items, err := repo.ListByUser(context.Background(), "user-1", model.ListFilter{Kind: model.KindTweet, Status: model.StatusScheduled, Limit: 10})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "first", items[0].Payload.(*model.TweetPayload).Text)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all kinds merged by schedule time", func(t *testing.T) {
		repo, mock := newTestRepo(t, Postgres)
		mock.ExpectQuery(`FROM scheduled_tweets`).WithArgs("user-1", 2, 0).
			WillReturnRows(sqlmock.NewRows(itemColumns("text")).
				AddRow(1, "user-1", fixedNow.Add(time.Hour), "scheduled", nil, nil, fixedNow, fixedNow, "tweet"))
		mock.ExpectQuery(`FROM scheduled_linkedin_posts`).WithArgs("user-1", 2, 0).
			WillReturnRows(sqlmock.NewRows(itemColumns("content", "title", "image_url")).
				AddRow(2, "user-1", fixedNow.Add(3*time.Hour), "scheduled", nil, nil, fixedNow, fixedNow, "post", "", ""))
		mock.ExpectQuery(`FROM scheduled_youtube_videos`).WithArgs("user-1", 2, 0).
			WillReturnRows(sqlmock.NewRows(itemColumns("title", "description", "video_url", "thumbnail_url", "tags", "privacy")).
				AddRow(3, "user-1", fixedNow.Add(2*time.Hour), "scheduled", nil, nil, fixedNow, fixedNow, "video", "", "https://x/v.mp4", "", "[]", "private"))

		items, err := repo.ListByUser(context.Background(), "user-1", model.ListFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, model.KindLinkedInPost, items[0].Kind)
		assert.Equal(t, model.KindYouTubeVideo, items[1].Kind)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestScheduledItemRepository_Delete(t *testing.T) {
	repo, mock := newTestRepo(t, SQLServer)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM dbo.[scheduled_youtube_videos] WHERE id = @p1`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), model.KindYouTubeVideo, 4))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("sqlserver")
	require.NoError(t, err)
	assert.Equal(t, SQLServer, d)
	d, err = DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
	_, err = DialectFor("oracle")
	assert.Error(t, err)
}
