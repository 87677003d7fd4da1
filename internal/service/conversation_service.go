package service

import (
	"context"
	"errors"
	"fmt"

	"skillsocket/internal/domain"
)

// ConversationService builds per-partner conversation summaries from the
// message store. It is a pure read path with no state of its own.
type ConversationService struct {
	messages domain.MessageRepository
	users    domain.UserRepository
}

func NewConversationService(messages domain.MessageRepository, users domain.UserRepository) *ConversationService {
	return &ConversationService{
		messages: messages,
		users:    users,
	}
}

// ListForUser returns one summary per distinct partner the user has
// exchanged messages with. The store returns messages newest first, so the
// first sighting of a partner carries their most recent message and later
// sightings are skipped. Ordering of the result is the caller's concern.
func (s *ConversationService) ListForUser(ctx context.Context, userID int64) ([]domain.ConversationSummary, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	seenPartners := make(map[int64]struct{})
	summaries := make([]domain.ConversationSummary, 0)

	for _, m := range msgs {
		partnerID := partnerOf(m, userID)
		if _, ok := seenPartners[partnerID]; ok {
			continue
		}
		seenPartners[partnerID] = struct{}{}

		partner, err := s.users.GetByID(ctx, partnerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// partner account removed; skip the thread rather than
				// failing the whole listing
				continue
			}
			return nil, fmt.Errorf("resolve partner %d: %w", partnerID, err)
		}

		summaries = append(summaries, domain.ConversationSummary{
			ID:          domain.ConversationKey(userID, partnerID),
			Participant: partner.Profile(),
			LastMessage: domain.MessageSnapshot{
				Content:   m.Content,
				CreatedAt: m.CreatedAt,
				From:      m.From,
				Seen:      m.Seen,
			},
		})
	}

	return summaries, nil
}

// partnerOf resolves the conversation partner as the endpoint that is not
// the requester. For a self-message both endpoints are the requester; the
// partner is defined as the `to` side.
func partnerOf(m *domain.Message, userID int64) int64 {
	if m.From == m.To {
		return m.To
	}
	if m.From == userID {
		return m.To
	}
	return m.From
}
