package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subject the notification workers subscribe on.
const subjectNewMessage = "skillsocket.notifications.message"

// NATSDispatcher publishes new-message notifications to NATS, where the
// push-notification workers pick them up. Publish is fire-and-forget from
// the messaging core's point of view.
type NATSDispatcher struct {
	nc *nats.Conn
}

// NewNATSDispatcher connects to the NATS server at the given URL.
func NewNATSDispatcher(url string) (*NATSDispatcher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSDispatcher{nc: nc}, nil
}

func (d *NATSDispatcher) NotifyNewMessage(ctx context.Context, senderID, recipientID int64, content, conversationKey string) error {
	payload := NewMessageNotification{
		SenderID:        senderID,
		RecipientID:     recipientID,
		Content:         content,
		ConversationKey: conversationKey,
		SentAt:          time.Now().UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := d.nc.Publish(subjectNewMessage, data); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close drains the NATS connection.
func (d *NATSDispatcher) Close() {
	if d.nc != nil {
		d.nc.Close()
	}
}
