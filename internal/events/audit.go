package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// AuditLog drains a topic and writes every event to the log. It returns when
// ctx is cancelled or the subscription closes.
func AuditLog(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			logEvent(logger, msg)
			msg.Ack()
		}
	}
}

func logEvent(logger *slog.Logger, msg *message.Message) {
	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Warn("Discarding malformed event", "message_id", msg.UUID, "error", err)
		return
	}

	logger.Info("Audit event",
		"event_id", msg.UUID,
		"event_type", event.Type,
		"source", msg.Metadata.Get("source"),
		"data", string(event.Data),
	)
}
