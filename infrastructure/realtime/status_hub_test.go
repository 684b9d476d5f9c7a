package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social-scheduler/domain/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHub_NotifyOnlyOwner(t *testing.T) {
	hub := NewStatusHub()
	mine := hub.Subscribe("user-1")
	other := hub.Subscribe("user-2")
	defer hub.Unsubscribe("user-1", mine)
	defer hub.Unsubscribe("user-2", other)

	require.NoError(t, hub.NotifyStatus(context.Background(), model.StatusEvent{Type: "schedule_status", UserID: "user-1", ItemID: 5, Status: model.StatusCompleted}))

	select {
	case evt := <-mine:
		assert.Equal(t, int64(5), evt.ItemID)
	default:
		t.Fatal("owner did not receive event")
	}
	select {
	case <-other:
		t.Fatal("other user received event")
	default:
	}
}

func TestStatusHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewStatusHub()
	ch := hub.Subscribe("user-1")
	defer hub.Unsubscribe("user-1", ch)

	for i := 0; i < 20; i++ {
		require.NoError(t, hub.NotifyStatus(context.Background(), model.StatusEvent{UserID: "user-1", ItemID: int64(i)}))
	}
	assert.Len(t, ch, cap(ch))
}

func TestStatusHub_UnsubscribeTwice(t *testing.T) {
	hub := NewStatusHub()
	ch := hub.Subscribe("user-1")
	hub.Unsubscribe("user-1", ch)
	assert.NotPanics(t, func() { hub.Unsubscribe("user-1", ch) })
}

func TestStatusHub_ServeRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewStatusHub()
	router := gin.New()
	router.GET("/stream", hub.Serve)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusHub_ServeStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewStatusHub()
	router := gin.New()
	router.GET("/stream", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		hub.Serve(c)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ":ok\n", line)

	require.NoError(t, hub.NotifyStatus(context.Background(), model.StatusEvent{Type: "schedule_status", UserID: "user-1", ItemID: 9, Status: model.StatusFailed}))

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.TrimSpace(line) != "" {
			got = append(got, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, "event: schedule_status", got[0])
	assert.Contains(t, got[1], `"item_id":9`)
}
