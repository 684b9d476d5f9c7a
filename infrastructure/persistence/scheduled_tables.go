package persistence

import (
	"encoding/json"
	"fmt"

	"social-scheduler/domain/model"
)

// kindTable maps one kind onto its table. Payload columns are all textual.
type kindTable struct {
	name    string
	columns []string
	encode  func(model.Payload) ([]interface{}, error)
	decode  func(values []string) (model.Payload, error)
}

var kindTables = map[model.Kind]kindTable{
	model.KindTweet: {
		name:    "scheduled_tweets",
		columns: []string{"text"},
		encode: func(p model.Payload) ([]interface{}, error) {
			t, ok := p.(*model.TweetPayload)
			if !ok {
				return nil, payloadMismatch(model.KindTweet, p)
			}
			return []interface{}{t.Text}, nil
		},
		decode: func(v []string) (model.Payload, error) {
			return &model.TweetPayload{Text: v[0]}, nil
		},
	},
	model.KindLinkedInPost: {
		name:    "scheduled_linkedin_posts",
		columns: []string{"content", "title", "image_url"},
		encode: func(p model.Payload) ([]interface{}, error) {
			l, ok := p.(*model.LinkedInPayload)
			if !ok {
				return nil, payloadMismatch(model.KindLinkedInPost, p)
			}
			return []interface{}{l.Content, l.Title, l.ImageURL}, nil
		},
		decode: func(v []string) (model.Payload, error) {
			return &model.LinkedInPayload{Content: v[0], Title: v[1], ImageURL: v[2]}, nil
		},
	},
	model.KindYouTubeVideo: {
		name:    "scheduled_youtube_videos",
		columns: []string{"title", "description", "video_url", "thumbnail_url", "tags", "privacy"},
		encode: func(p model.Payload) ([]interface{}, error) {
			y, ok := p.(*model.YouTubePayload)
			if !ok {
				return nil, payloadMismatch(model.KindYouTubeVideo, p)
			}
			tags := "[]"
			if len(y.Tags) > 0 {
				b, err := json.Marshal(y.Tags)
				if err != nil {
					return nil, err
				}
				tags = string(b)
			}
			return []interface{}{y.Title, y.Description, y.VideoURL, y.ThumbnailURL, tags, y.Privacy}, nil
		},
		decode: func(v []string) (model.Payload, error) {
			y := &model.YouTubePayload{Title: v[0], Description: v[1], VideoURL: v[2], ThumbnailURL: v[3], Privacy: v[5]}
			if v[4] != "" {
				if err := json.Unmarshal([]byte(v[4]), &y.Tags); err != nil {
					return nil, fmt.Errorf("decode tags: %w", err)
				}
			}
			return y, nil
		},
	},
}

func tableFor(kind model.Kind) (kindTable, error) {
	t, ok := kindTables[kind]
	if !ok {
		return kindTable{}, fmt.Errorf("%w: unknown kind %q", model.ErrValidation, kind)
	}
	return t, nil
}

func payloadMismatch(kind model.Kind, p model.Payload) error {
	return fmt.Errorf("%w: payload %T does not belong to kind %s", model.ErrValidation, p, kind)
}

// commonColumns precede the payload columns in every SELECT.
var commonColumns = []string{"id", "user_id", "scheduled_for", "status", "schedule_id", "publish_result", "created_at", "updated_at"}

func orderedTables() []kindTable {
	out := make([]kindTable, 0, len(model.Kinds))
	for _, k := range model.Kinds {
		out = append(out, kindTables[k])
	}
	return out
}
