package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"social-scheduler/domain/model"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 25 * time.Second

// StatusHub maintains per-user subscribers listening for schedule status events.
type StatusHub struct {
	mu    sync.RWMutex
	users map[string]map[chan model.StatusEvent]struct{}
}

func NewStatusHub() *StatusHub {
	return &StatusHub{users: make(map[string]map[chan model.StatusEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *StatusHub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := h.Subscribe(userID)
	defer h.Unsubscribe(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			_, _ = c.Writer.Write([]byte(":keepalive\n\n"))
			c.Writer.Flush()
		case evt, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: " + evt.Type + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *StatusHub) Subscribe(userID string) chan model.StatusEvent {
	ch := make(chan model.StatusEvent, 8)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan model.StatusEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
	return ch
}

func (h *StatusHub) Unsubscribe(userID string, ch chan model.StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// NotifyStatus broadcasts to all subscribers of the item's owner. Slow subscribers miss events.
func (h *StatusHub) NotifyStatus(_ context.Context, event model.StatusEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[event.UserID] {
		select { // non-blocking
		case ch <- event:
		default:
		}
	}
	return nil
}
