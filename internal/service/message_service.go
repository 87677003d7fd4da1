package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"skillsocket/internal/chat"
	"skillsocket/internal/domain"
	"skillsocket/internal/metrics"
	"skillsocket/internal/notify"
)

const maxContentRunes = 5000

// MessageService owns the message lifecycle: validation, persistence, live
// delivery to the recipient, the sender-side delivery acknowledgement, and
// the unconditional out-of-band notification.
type MessageService struct {
	messages domain.MessageRepository
	users    domain.UserRepository
	presence *chat.Presence
	delivery *chat.DeliveryTracker
	notifier notify.Dispatcher
	logger   zerolog.Logger
}

func NewMessageService(
	messages domain.MessageRepository,
	users domain.UserRepository,
	presence *chat.Presence,
	delivery *chat.DeliveryTracker,
	notifier notify.Dispatcher,
	logger zerolog.Logger,
) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		presence: presence,
		delivery: delivery,
		notifier: notifier,
		logger:   logger,
	}
}

type SendMessageInput struct {
	From    int64
	To      int64
	Content string
}

// SendMessage validates and persists a new message, emits it to the
// recipient's connection when present, acknowledges delivery to the sender
// when the recipient is present, and always dispatches the out-of-band
// notification. A send either fully succeeds or fails with no record
// persisted; the message is never echoed back to the sender's own channel,
// whose client already holds the content locally.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*chat.MessagePayload, error) {
	if in.To == 0 || strings.TrimSpace(in.Content) == "" {
		return nil, domain.ErrInvalidInput
	}
	if len([]rune(in.Content)) > maxContentRunes {
		return nil, fmt.Errorf("%w: content exceeds %d characters", domain.ErrInvalidInput, maxContentRunes)
	}

	// resolve both profiles before persisting so a bad recipient id fails
	// the send with no partial record
	sender, err := s.users.GetByID(ctx, in.From)
	if err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}
	recipient, err := s.users.GetByID(ctx, in.To)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		From:      in.From,
		To:        in.To,
		Content:   in.Content,
		Seen:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	metrics.MessagesSent.Inc()

	payload := &chat.MessagePayload{
		Message:   *msg,
		Sender:    sender.Profile(),
		Recipient: recipient.Profile(),
	}

	// in-channel delivery to the recipient, dropped if absent
	s.presence.Emit(in.To, chat.EventReceiveMessage, payload)

	// notification dispatch is a side-channel: it runs detached so a slow
	// transport cannot stall delivery, and its outcome never reaches the
	// sender's acknowledgement path
	go s.dispatchNotification(msg)

	s.delivery.AckDelivery(in.From, in.To, msg.ID)

	return payload, nil
}

func (s *MessageService) dispatchNotification(msg *domain.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := domain.ConversationKey(msg.From, msg.To)
	if err := s.notifier.NotifyNewMessage(ctx, msg.From, msg.To, msg.Content, key); err != nil {
		metrics.NotificationsDispatched.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).
			Str("message_id", msg.ID).
			Int64("recipient", msg.To).
			Msg("notification dispatch failed")
		return
	}
	metrics.NotificationsDispatched.WithLabelValues("ok").Inc()
}

// MarkAllSeen flips every unseen message from -> to to seen, then tells the
// original sender, when present, that `to` has read their messages. The
// update is idempotent: a repeat call changes no rows and re-sends only the
// same confirmation.
func (s *MessageService) MarkAllSeen(ctx context.Context, from, to int64) error {
	updated, err := s.messages.MarkSeen(ctx, from, to)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	metrics.MessagesSeen.Add(float64(updated))

	s.delivery.ConfirmSeen(from, to)
	return nil
}

// History returns the full exchange between two users, oldest first.
func (s *MessageService) History(ctx context.Context, userID, otherID int64) ([]*domain.Message, error) {
	return s.messages.ListBetween(ctx, userID, otherID)
}

// UnreadCounts groups the user's unseen messages by sender.
func (s *MessageService) UnreadCounts(ctx context.Context, userID int64) ([]domain.UnreadCount, error) {
	return s.messages.CountUnreadBySender(ctx, userID)
}
