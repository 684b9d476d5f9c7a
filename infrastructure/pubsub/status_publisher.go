package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates a Pub/Sub client for the project. An empty project id disables Pub/Sub.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id not configured")
	}
	return pubsub.NewClient(ctx, projectID)
}

// StatusPublisher publishes schedule status events to a Pub/Sub topic.
type StatusPublisher struct {
	client  *pubsub.Client
	topicID string
	topic   *pubsub.Topic
}

func NewStatusPublisher(client *pubsub.Client, topicID string) *StatusPublisher {
	p := &StatusPublisher{client: client, topicID: topicID}
	if client != nil {
		p.topic = client.Topic(topicID)
	}
	return p
}

// EnsureTopic creates the topic if it doesn't exist.
func (p *StatusPublisher) EnsureTopic(ctx context.Context) error {
	if p.topic == nil {
		return errors.New("pubsub client not initialised")
	}
	exists, err := p.topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicID).Info("Topic doesn't exist - creating it")
		if _, err := p.client.CreateTopic(ctx, p.topicID); err != nil {
			return err
		}
	}
	return nil
}

func (p *StatusPublisher) NotifyStatus(ctx context.Context, event model.StatusEvent) error {
	if p.topic == nil {
		return errors.New("pubsub client not initialised")
	}
	msg, err := newStatusMessage(event)
	if err != nil {
		return err
	}
	serverID, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).WithField("item", event.ItemID).Debug("Status event published")
	return nil
}

// Stop flushes pending messages.
func (p *StatusPublisher) Stop() {
	if p.topic != nil {
		p.topic.Stop()
	}
}

func newStatusMessage(event model.StatusEvent) (*pubsub.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"kind":   string(event.Kind),
			"status": string(event.Status),
			"itemId": strconv.FormatInt(event.ItemID, 10),
		},
	}, nil
}
