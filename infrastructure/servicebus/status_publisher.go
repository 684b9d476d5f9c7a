package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus connects to a namespace (e.g. "myns.servicebus.windows.net") with the default Azure credential chain.
func NewServiceBus(_ context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, errors.New("service bus namespace not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

// StatusPublisher sends schedule status events to a Service Bus queue.
type StatusPublisher struct {
	client    *azservicebus.Client
	queueName string

	mu     sync.Mutex
	sender *azservicebus.Sender
}

func NewStatusPublisher(client *azservicebus.Client, queueName string) *StatusPublisher {
	return &StatusPublisher{client: client, queueName: queueName}
}

func (p *StatusPublisher) NotifyStatus(ctx context.Context, event model.StatusEvent) error {
	sender, err := p.getSender()
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	msg, err := newStatusMessage(event)
	if err != nil {
		return err
	}
	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}

func (p *StatusPublisher) getSender() (*azservicebus.Sender, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sender != nil {
		return p.sender, nil
	}
	if p.client == nil {
		return nil, errors.New("service bus client not initialised")
	}
	sender, err := p.client.NewSender(p.queueName, nil)
	if err != nil {
		return nil, err
	}
	p.sender = sender
	return sender, nil
}

// Close releases the sender and the client.
func (p *StatusPublisher) Close(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sender != nil {
		if err := p.sender.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
		p.sender = nil
	}
	if p.client != nil {
		if err := p.client.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing service bus client.")
		}
	}
}

func newStatusMessage(event model.StatusEvent) (*azservicebus.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	contentType := "application/json"
	subject := event.Type
	return &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]interface{}{
			"kind":   string(event.Kind),
			"status": string(event.Status),
			"itemId": event.ItemID,
		},
	}, nil
}
