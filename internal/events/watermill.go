package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const DefaultTopic = "course-marketplace.events"

// Config selects the transport. Without brokers events stay in process.
type Config struct {
	Brokers []string
	Topic   string
}

// WatermillPublisher publishes JSON events on a single topic
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewWatermillPublisher wraps an existing watermill publisher
func NewWatermillPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// NewPublisher builds a Kafka publisher when brokers are configured and an
// in-process gochannel otherwise. The gochannel is returned so tests and
// local consumers can subscribe to it.
func NewPublisher(cfg Config, logger *slog.Logger) (*WatermillPublisher, *gochannel.GoChannel, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(cfg.Brokers) > 0 {
		kafkaPublisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		return NewWatermillPublisher(kafkaPublisher, cfg.Topic, logger), nil, nil
	}

	channel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
	return NewWatermillPublisher(channel, cfg.Topic, logger), channel, nil
}

func (p *WatermillPublisher) Topic() string {
	return p.topic
}

func (p *WatermillPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type, "topic", p.topic)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
