package chat

import (
	"time"

	"github.com/rs/zerolog"

	"skillsocket/internal/metrics"
)

// DeliveryTracker advances the per-message Sent -> Delivered -> Read state
// using presence lookups and client acknowledgements. Delivered and Read are
// best-effort liveness signals to the sender; a message may stay Sent
// forever if the recipient never connects, and that is acceptable.
type DeliveryTracker struct {
	presence *Presence
	logger   zerolog.Logger

	// assumeReadAfter, when positive, synthesizes a messageRead event this
	// long after delivery without any recipient action. It is a UX heuristic
	// carried over from the product, not a true read receipt; zero disables
	// it and leaves Read to explicit markAsSeen confirmations.
	assumeReadAfter time.Duration
}

func NewDeliveryTracker(presence *Presence, assumeReadAfter time.Duration, logger zerolog.Logger) *DeliveryTracker {
	return &DeliveryTracker{
		presence:        presence,
		assumeReadAfter: assumeReadAfter,
		logger:          logger,
	}
}

// AckDelivery fires the Sent -> Delivered transition for a just-persisted
// message. The acknowledgement goes to the sender's connection, and only
// when the recipient was present at send time. Reports whether the
// recipient was present.
func (t *DeliveryTracker) AckDelivery(from, to int64, messageID string) bool {
	if _, ok := t.presence.Lookup(to); !ok {
		return false
	}

	if t.presence.Emit(from, EventMessageDelivered, AckPayload{MessageID: messageID}) {
		metrics.MessagesDelivered.Inc()
	}

	if t.assumeReadAfter > 0 {
		t.scheduleAssumedRead(from, messageID)
	}
	return true
}

// scheduleAssumedRead emits a synthetic read receipt after the configured
// delay. The timer always runs to completion; if the sender has disconnected
// by then the emit finds no presence and the event is silently dropped.
func (t *DeliveryTracker) scheduleAssumedRead(from int64, messageID string) {
	time.AfterFunc(t.assumeReadAfter, func() {
		if t.presence.Emit(from, EventMessageRead, AckPayload{MessageID: messageID}) {
			t.logger.Debug().
				Str("message_id", messageID).
				Int64("sender", from).
				Msg("synthesized read receipt")
		}
	})
}

// ConfirmSeen fires the Delivered -> Read transition after a batch
// markAsSeen: the original sender, when present, is told that `by` has read
// their messages. The persisted seen flag is already flipped by the caller
// and never reverts, so repeating this is harmless.
func (t *DeliveryTracker) ConfirmSeen(sender, by int64) {
	t.presence.Emit(sender, EventMessagesSeen, SeenPayload{By: by})
}
