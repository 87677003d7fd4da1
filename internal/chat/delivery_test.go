package chat_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsocket/internal/chat"
)

func TestAckDeliveryRecipientPresent(t *testing.T) {
	p := chat.NewPresence()
	sender := &recorder{}
	recipient := &recorder{}
	p.Register(1, sender)
	p.Register(2, recipient)

	tracker := chat.NewDeliveryTracker(p, 0, zerolog.Nop())

	delivered := tracker.AckDelivery(1, 2, "msg-1")
	assert.True(t, delivered)

	events := sender.Events()
	require.Len(t, events, 1)
	assert.Equal(t, chat.EventMessageDelivered, events[0].Event)
	assert.Equal(t, chat.AckPayload{MessageID: "msg-1"}, events[0].Data)

	// the acknowledgement targets the sender's channel, never the recipient's
	assert.Empty(t, recipient.Events())
}

func TestAckDeliveryRecipientAbsent(t *testing.T) {
	p := chat.NewPresence()
	sender := &recorder{}
	p.Register(1, sender)

	tracker := chat.NewDeliveryTracker(p, 0, zerolog.Nop())

	assert.False(t, tracker.AckDelivery(1, 2, "msg-1"))
	assert.Empty(t, sender.Events())
}

func TestAssumedReadReceipt(t *testing.T) {
	p := chat.NewPresence()
	sender := &recorder{}
	recipient := &recorder{}
	p.Register(1, sender)
	p.Register(2, recipient)

	tracker := chat.NewDeliveryTracker(p, 10*time.Millisecond, zerolog.Nop())
	tracker.AckDelivery(1, 2, "msg-1")

	require.Eventually(t, func() bool {
		return len(sender.Events()) == 2
	}, time.Second, 5*time.Millisecond)

	events := sender.Events()
	assert.Equal(t, chat.EventMessageDelivered, events[0].Event)
	assert.Equal(t, chat.EventMessageRead, events[1].Event)
	assert.Equal(t, chat.AckPayload{MessageID: "msg-1"}, events[1].Data)
}

func TestAssumedReadDroppedWhenSenderGone(t *testing.T) {
	p := chat.NewPresence()
	sender := &recorder{}
	recipient := &recorder{}
	p.Register(1, sender)
	p.Register(2, recipient)

	tracker := chat.NewDeliveryTracker(p, 10*time.Millisecond, zerolog.Nop())
	tracker.AckDelivery(1, 2, "msg-1")

	// sender disconnects before the synthesis interval elapses; the
	// scheduled callback must still run and find no presence, not error
	p.Unregister(sender)
	time.Sleep(30 * time.Millisecond)

	events := sender.Events()
	require.Len(t, events, 1)
	assert.Equal(t, chat.EventMessageDelivered, events[0].Event)
}

func TestAssumedReadDisabled(t *testing.T) {
	p := chat.NewPresence()
	sender := &recorder{}
	recipient := &recorder{}
	p.Register(1, sender)
	p.Register(2, recipient)

	tracker := chat.NewDeliveryTracker(p, 0, zerolog.Nop())
	tracker.AckDelivery(1, 2, "msg-1")
	time.Sleep(20 * time.Millisecond)

	require.Len(t, sender.Events(), 1, "no synthetic read when the policy is disabled")
}

func TestConfirmSeen(t *testing.T) {
	p := chat.NewPresence()
	sender := &recorder{}
	p.Register(1, sender)

	tracker := chat.NewDeliveryTracker(p, 0, zerolog.Nop())

	tracker.ConfirmSeen(1, 2)
	events := sender.Events()
	require.Len(t, events, 1)
	assert.Equal(t, chat.EventMessagesSeen, events[0].Event)
	assert.Equal(t, chat.SeenPayload{By: 2}, events[0].Data)

	// absent sender: dropped silently
	tracker.ConfirmSeen(42, 2)
}
