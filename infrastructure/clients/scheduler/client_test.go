package scheduler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-scheduler/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2026, 5, 10, 8, 30, 15, 0, time.UTC)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(Config{BaseURL: srv.URL + "/", Token: "secret-token", Timeout: time.Second})
	c.now = func() time.Time { return clock }
	return c
}

func TestCronFor(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc", time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), "59 23 31 12 *"},
		{"converted to utc", time.Date(2026, 1, 1, 7, 5, 0, 0, time.FixedZone("WIB", 7*3600)), "5 0 1 1 *"},
		{"seconds dropped", time.Date(2026, 3, 4, 5, 6, 30, 0, time.UTC), "6 5 4 3 *"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CronFor(tt.in))
		})
	}
}

func TestClient_Register(t *testing.T) {
	var gotPath, gotCron, gotID, gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCron = r.Header.Get("Upstash-Cron")
		gotID = r.Header.Get("Upstash-Schedule-Id")
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scheduleId":"scd_123"}`))
	}))
	defer srv.Close()

	res := newTestClient(srv).Register(context.Background(), repository.RegisterRequest{
		Destination:  "https://app.example.com/api/webhooks/twitter",
		ScheduledFor: time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC),
		Body:         map[string]interface{}{"scheduledTweetId": 42},
		ScheduleID:   "tweet-42",
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "scd_123", res.ScheduleID)
	assert.Equal(t, "/v2/schedules/https://app.example.com/api/webhooks/twitter", gotPath)
	assert.Equal(t, "0 9 10 5 *", gotCron)
	assert.Equal(t, "tweet-42", gotID)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, float64(42), gotBody["scheduledTweetId"])
}

func TestClient_Register_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer srv.Close()
	c := newTestClient(srv)

	t.Run("rejected by scheduler", func(t *testing.T) {
		res := c.Register(context.Background(), repository.RegisterRequest{
			Destination:  "https://app.example.com/api/webhooks/twitter",
			ScheduledFor: clock.Add(time.Hour),
			Body:         map[string]int{"scheduledTweetId": 1},
		})
		assert.False(t, res.Success)
		assert.Equal(t, "scheduler responded 401: invalid token", res.Message)
	})

	t.Run("past time", func(t *testing.T) {
		res := c.Register(context.Background(), repository.RegisterRequest{
			Destination:  "https://app.example.com/api/webhooks/twitter",
			ScheduledFor: clock.Add(-time.Minute),
		})
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Message)
	})

	t.Run("inside current minute", func(t *testing.T) {
		res := c.Register(context.Background(), repository.RegisterRequest{
			Destination:  "https://app.example.com/api/webhooks/twitter",
			ScheduledFor: clock.Add(20 * time.Second),
		})
		assert.False(t, res.Success)
	})

	t.Run("more than a year ahead", func(t *testing.T) {
		res := c.Register(context.Background(), repository.RegisterRequest{
			Destination:  "https://app.example.com/api/webhooks/twitter",
			ScheduledFor: clock.AddDate(1, 0, 0).Add(time.Hour),
		})
		assert.False(t, res.Success)
		assert.Equal(t, "scheduled time is more than a year ahead", res.Message)
	})

	t.Run("bad destination", func(t *testing.T) {
		res := c.Register(context.Background(), repository.RegisterRequest{
			Destination:  "not a url",
			ScheduledFor: clock.Add(time.Hour),
		})
		assert.False(t, res.Success)
	})
}

func TestClient_Register_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(srv)
	srv.Close()

	res := c.Register(context.Background(), repository.RegisterRequest{
		Destination:  "https://app.example.com/api/webhooks/youtube",
		ScheduledFor: clock.Add(time.Hour),
		Body:         map[string]int{"scheduledVideoId": 3},
	})
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
}

func TestClient_Cancel(t *testing.T) {
	statuses := map[string]int{
		"/v2/schedules/tweet-1": http.StatusOK,
		"/v2/schedules/tweet-2": http.StatusNotFound,
		"/v2/schedules/tweet-3": http.StatusInternalServerError,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(statuses[r.URL.Path])
	}))
	defer srv.Close()
	c := newTestClient(srv)

	assert.True(t, c.Cancel(context.Background(), "tweet-1").Success)
	assert.True(t, c.Cancel(context.Background(), "tweet-2").Success, "already removed counts as cancelled")

	res := c.Cancel(context.Background(), "tweet-3")
	assert.False(t, res.Success)
	assert.Equal(t, "scheduler responded 500: Internal Server Error", res.Message)

	assert.False(t, c.Cancel(context.Background(), "").Success)
}
