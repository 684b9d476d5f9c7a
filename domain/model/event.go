package model

import "time"

// StatusEvent announces a status change of a scheduled item.
type StatusEvent struct {
	Type       string         `json:"type"`
	Kind       Kind           `json:"kind"`
	ItemID     int64          `json:"item_id"`
	UserID     string         `json:"user_id"`
	Status     Status         `json:"status"`
	Result     *PublishResult `json:"result,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewStatusEvent snapshots the item's current state.
func NewStatusEvent(item *ScheduledItem) StatusEvent {
	return StatusEvent{
		Type:       "schedule_status",
		Kind:       item.Kind,
		ItemID:     item.ID,
		UserID:     item.UserID,
		Status:     item.Status,
		Result:     item.PublishResult,
		OccurredAt: time.Now().UTC(),
	}
}

// PublishAttempt is an append-only audit entry of one trigger handling.
type PublishAttempt struct {
	Kind       Kind      `json:"kind" bson:"kind"`
	ItemID     int64     `json:"item_id" bson:"itemId"`
	UserID     string    `json:"user_id" bson:"userId"`
	Platform   string    `json:"platform" bson:"platform"`
	Status     Status    `json:"status" bson:"status"`
	PostID     string    `json:"post_id,omitempty" bson:"postId,omitempty"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt  time.Time `json:"started_at" bson:"startedAt"`
	FinishedAt time.Time `json:"finished_at" bson:"finishedAt"`
}
