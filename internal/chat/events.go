package chat

import "skillsocket/internal/domain"

// Realtime event names. Inbound events are read from the client connection,
// outbound events are written to it.
const (
	// inbound
	EventJoinRoom    = "joinRoom"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventSendMessage = "sendMessage"
	EventMarkAsSeen  = "markAsSeen"

	// outbound
	EventReceiveMessage   = "receiveMessage"
	EventMessageDelivered = "messageDelivered"
	EventMessageRead      = "messageRead"
	EventMessagesSeen     = "messagesSeen"
	EventError            = "error"
)

// Event is the wire envelope for every realtime frame, in both directions.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// TypingPayload is relayed verbatim to the recipient when present, dropped
// otherwise. Typing state is transient; a stale indicator is worse than
// silence, so it is never queued.
type TypingPayload struct {
	From int64 `json:"from"`
}

// MessagePayload is the fully populated message sent to the recipient.
type MessagePayload struct {
	domain.Message
	Sender    domain.UserProfile `json:"sender"`
	Recipient domain.UserProfile `json:"recipient"`
}

// AckPayload carries sender-side delivery and read acknowledgements.
type AckPayload struct {
	MessageID string `json:"messageId"`
}

// SeenPayload names the party who read the sender's messages.
type SeenPayload struct {
	By int64 `json:"by"`
}

// ErrorPayload is reported to the offending client only, never broadcast.
type ErrorPayload struct {
	Message string `json:"message"`
}
