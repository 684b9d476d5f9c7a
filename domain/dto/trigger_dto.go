package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"social-scheduler/domain/model"
)

// TriggerBody is the JSON registered with the external scheduler and echoed back on every trigger.
// Only the kind-specific identifier is authoritative; the context fields are informational.
type TriggerBody struct {
	ScheduledTweetID *int64 `json:"scheduledTweetId,omitempty"`
	ScheduledPostID  *int64 `json:"scheduledPostId,omitempty"`
	ScheduledVideoID *int64 `json:"scheduledVideoId,omitempty"`
	UserID           string `json:"userId,omitempty"`
	Text             string `json:"text,omitempty"`
	Content          string `json:"content,omitempty"`
	Title            string `json:"title,omitempty"`
}

// NewTriggerBody builds the body registered for an item.
func NewTriggerBody(item *model.ScheduledItem) TriggerBody {
	id := item.ID
	body := TriggerBody{UserID: item.UserID}
	switch p := item.Payload.(type) {
	case *model.TweetPayload:
		body.ScheduledTweetID = &id
		body.Text = p.Text
	case *model.LinkedInPayload:
		body.ScheduledPostID = &id
		body.Content = p.Content
	case *model.YouTubePayload:
		body.ScheduledVideoID = &id
		body.Title = p.Title
	}
	return body
}

// ParseTriggerID extracts the kind-specific identifier from a raw trigger body.
// Numeric and string encodings are both accepted. ok is false when the field is absent or empty.
func ParseTriggerID(kind model.Kind, raw []byte) (id int64, ok bool, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, false, fmt.Errorf("%w: malformed trigger body: %v", model.ErrValidation, err)
	}
	v, present := fields[kind.TriggerField()]
	if !present || string(v) == "null" {
		return 0, false, nil
	}
	s := strings.Trim(strings.TrimSpace(string(v)), `"`)
	if s == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, fmt.Errorf("%w: invalid %s %q", model.ErrValidation, kind.TriggerField(), s)
	}
	return id, true, nil
}
