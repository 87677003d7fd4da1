package ws_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsocket/internal/chat"
	"skillsocket/internal/domain"
	"skillsocket/internal/notify"
	"skillsocket/internal/service"
	"skillsocket/internal/store/sqlite"
	"skillsocket/internal/ws"
)

const testOrigin = "http://localhost:3000"

type testServer struct {
	srv      *httptest.Server
	presence *chat.Presence
	db       *sql.DB
	alice    int64
	bob      int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepo(db)
	msgs := sqlite.NewMessageRepo(db)

	alice := &domain.User{Name: "Alice"}
	bob := &domain.User{Name: "Bob"}
	require.NoError(t, users.Create(context.Background(), alice))
	require.NoError(t, users.Create(context.Background(), bob))

	presence := chat.NewPresence()
	tracker := chat.NewDeliveryTracker(presence, 0, zerolog.Nop())
	msgSvc := service.NewMessageService(
		msgs, users, presence, tracker,
		notify.NewLogDispatcher(zerolog.Nop()), zerolog.Nop(),
	)

	handler := ws.MakeHandler(presence, msgSvc, []string{testOrigin}, zerolog.Nop())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		srv:      srv,
		presence: presence,
		db:       db,
		alice:    alice.ID,
		bob:      bob.ID,
	}
}

func (s *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{testOrigin}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (s *testServer) join(t *testing.T, conn *websocket.Conn, userID int64) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "joinRoom",
		"data":  map[string]any{"userId": userID},
	}))
	require.Eventually(t, func() bool {
		_, ok := s.presence.Lookup(userID)
		return ok
	}, time.Second, 5*time.Millisecond)
}

type frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestRejectsUnknownOrigin(t *testing.T) {
	s := newTestServer(t)
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSendMessageDeliveredToRecipient(t *testing.T) {
	s := newTestServer(t)

	aliceConn := s.dial(t)
	bobConn := s.dial(t)
	s.join(t, aliceConn, s.alice)
	s.join(t, bobConn, s.bob)

	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"event": "sendMessage",
		"data":  map[string]any{"from": s.alice, "to": s.bob, "content": "hello bob"},
	}))

	// recipient gets the populated message
	got := readFrame(t, bobConn)
	assert.Equal(t, "receiveMessage", got.Event)
	assert.Equal(t, "hello bob", got.Data["content"])
	sender, ok := got.Data["sender"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", sender["name"])

	// sender gets a delivery acknowledgement, not an echo
	ack := readFrame(t, aliceConn)
	assert.Equal(t, "messageDelivered", ack.Event)
	assert.NotEmpty(t, ack.Data["messageId"])

	// and the message is persisted
	msgs := sqlite.NewMessageRepo(s.db)
	stored, err := msgs.ListBetween(context.Background(), s.alice, s.bob)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "hello bob", stored[0].Content)
	assert.False(t, stored[0].Seen)
}

func TestSendMessageRecipientOffline(t *testing.T) {
	s := newTestServer(t)

	aliceConn := s.dial(t)
	s.join(t, aliceConn, s.alice)

	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"event": "sendMessage",
		"data":  map[string]any{"from": s.alice, "to": s.bob, "content": "are you there?"},
	}))

	// persisted even though nobody is listening
	msgs := sqlite.NewMessageRepo(s.db)
	require.Eventually(t, func() bool {
		stored, err := msgs.ListBetween(context.Background(), s.alice, s.bob)
		return err == nil && len(stored) == 1
	}, time.Second, 10*time.Millisecond)

	// no delivery acknowledgement arrives
	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var f frame
	assert.Error(t, aliceConn.ReadJSON(&f), "expected no frame for the sender")
}

func TestTypingRelayedOnlyWhenPresent(t *testing.T) {
	s := newTestServer(t)

	aliceConn := s.dial(t)
	bobConn := s.dial(t)
	s.join(t, aliceConn, s.alice)
	s.join(t, bobConn, s.bob)

	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"event": "typing",
		"data":  map[string]any{"from": s.alice, "to": s.bob},
	}))

	got := readFrame(t, bobConn)
	assert.Equal(t, "typing", got.Event)
	assert.Equal(t, float64(s.alice), got.Data["from"])

	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"event": "stopTyping",
		"data":  map[string]any{"from": s.alice, "to": s.bob},
	}))
	got = readFrame(t, bobConn)
	assert.Equal(t, "stopTyping", got.Event)
}

func TestMarkAsSeenConfirmsToSender(t *testing.T) {
	s := newTestServer(t)

	aliceConn := s.dial(t)
	bobConn := s.dial(t)
	s.join(t, aliceConn, s.alice)
	s.join(t, bobConn, s.bob)

	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"event": "sendMessage",
		"data":  map[string]any{"from": s.alice, "to": s.bob, "content": "read me"},
	}))
	readFrame(t, bobConn)   // receiveMessage
	readFrame(t, aliceConn) // messageDelivered

	// bob confirms reading alice's messages
	require.NoError(t, bobConn.WriteJSON(map[string]any{
		"event": "markAsSeen",
		"data":  map[string]any{"from": s.alice, "to": s.bob},
	}))

	got := readFrame(t, aliceConn)
	assert.Equal(t, "messagesSeen", got.Event)
	assert.Equal(t, float64(s.bob), got.Data["by"])

	msgs := sqlite.NewMessageRepo(s.db)
	stored, err := msgs.ListBetween(context.Background(), s.alice, s.bob)
	require.NoError(t, err)
	assert.True(t, stored[0].Seen)
}

func TestDisconnectRemovesPresence(t *testing.T) {
	s := newTestServer(t)

	aliceConn := s.dial(t)
	bobConn := s.dial(t)
	s.join(t, aliceConn, s.alice)
	s.join(t, bobConn, s.bob)

	aliceConn.Close()

	require.Eventually(t, func() bool {
		_, ok := s.presence.Lookup(s.alice)
		return !ok
	}, time.Second, 5*time.Millisecond)

	// other entries untouched
	_, ok := s.presence.Lookup(s.bob)
	assert.True(t, ok)

	// a typing event targeting the gone user is silently dropped
	require.NoError(t, bobConn.WriteJSON(map[string]any{
		"event": "typing",
		"data":  map[string]any{"from": s.bob, "to": s.alice},
	}))
}

func TestMalformedSendReportsErrorToCallerOnly(t *testing.T) {
	s := newTestServer(t)

	aliceConn := s.dial(t)
	bobConn := s.dial(t)
	s.join(t, aliceConn, s.alice)
	s.join(t, bobConn, s.bob)

	// empty content is rejected before any persistence attempt
	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"event": "sendMessage",
		"data":  map[string]any{"from": s.alice, "to": s.bob, "content": ""},
	}))

	got := readFrame(t, aliceConn)
	assert.Equal(t, "error", got.Event)

	msgs := sqlite.NewMessageRepo(s.db)
	stored, err := msgs.ListBetween(context.Background(), s.alice, s.bob)
	require.NoError(t, err)
	assert.Empty(t, stored)

	// never broadcast to the recipient
	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var f frame
	assert.Error(t, bobConn.ReadJSON(&f))
}
