package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"social-scheduler/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatusMessage(t *testing.T) {
	event := model.StatusEvent{Type: "schedule_status", Kind: model.KindTweet, ItemID: 42, UserID: "user-1", Status: model.StatusCompleted}

	msg, err := newStatusMessage(event)

	require.NoError(t, err)
	assert.Equal(t, "tweet", msg.Attributes["kind"])
	assert.Equal(t, "completed", msg.Attributes["status"])
	assert.Equal(t, "42", msg.Attributes["itemId"])

	var decoded model.StatusEvent
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, event.UserID, decoded.UserID)
}

func TestStatusPublisher_WithoutClient(t *testing.T) {
	p := NewStatusPublisher(nil, "schedule-status")
	assert.Error(t, p.NotifyStatus(context.Background(), model.StatusEvent{}))
	assert.Error(t, p.EnsureTopic(context.Background()))
	p.Stop()
}

func TestNewPubSub_RequiresProject(t *testing.T) {
	_, err := NewPubSub(context.Background(), "")
	assert.Error(t, err)
}
