// Package notify carries new-message events to the out-of-band notification
// pipeline. Every persisted message is dispatched exactly once, whether or
// not the recipient holds a live connection: presence does not imply
// attention, so push notifications are never suppressed by online status.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher is the invocation contract for the external notification
// transport. Implementations must not block the message send path; failures
// are logged by the caller and never surface to the sender.
type Dispatcher interface {
	NotifyNewMessage(ctx context.Context, senderID, recipientID int64, content, conversationKey string) error
}

// NewMessageNotification is the payload handed to the notification pipeline.
type NewMessageNotification struct {
	SenderID        int64     `json:"sender_id"`
	RecipientID     int64     `json:"recipient_id"`
	Content         string    `json:"content"`
	ConversationKey string    `json:"conversation_key"`
	SentAt          time.Time `json:"sent_at"`
}

// LogDispatcher records notifications to the log only. It stands in for the
// real transport in development and whenever NATS is not configured.
type LogDispatcher struct {
	logger zerolog.Logger
}

func NewLogDispatcher(logger zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) NotifyNewMessage(ctx context.Context, senderID, recipientID int64, content, conversationKey string) error {
	d.logger.Info().
		Int64("sender", senderID).
		Int64("recipient", recipientID).
		Str("conversation", conversationKey).
		Msg("new message notification")
	return nil
}
