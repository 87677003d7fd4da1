package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"skillsocket/internal/chat"
	"skillsocket/internal/metrics"
	"skillsocket/internal/service"
)

// safeConn serializes writes to one connection. Frames can originate from
// other clients' read loops and from read-receipt timers, and the underlying
// websocket allows only one concurrent writer.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *safeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	UserID int64 `json:"userId"`
}

type directedPayload struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type sendPayload struct {
	From    int64  `json:"from"`
	To      int64  `json:"to"`
	Content string `json:"content"`
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

// MakeHandler returns the HTTP handler for the /ws endpoint. Each
// connection runs a single read loop, so events from one client are
// processed strictly in arrival order; messages between the same pair of
// users are therefore persisted and delivered in send order. Events:
//   - joinRoom    -> register presence for the declared user
//   - typing / stopTyping -> relay to the recipient if present, drop otherwise
//   - sendMessage -> persist + deliver + notify
//   - markAsSeen  -> batch flip seen + confirm to the original sender
//
// On disconnect the connection's presence entry is removed.
func MakeHandler(
	presence *chat.Presence,
	msgSvc *service.MessageService,
	allowedOrigins []string,
	logger zerolog.Logger,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &safeConn{conn: conn}
		// disconnect only reports the handle; the registry finds the owner
		// by reverse lookup, and a duplicate unregister is a no-op
		defer presence.Unregister(client)

		ctx := r.Context()

		for {
			var ev inboundEvent
			if err := conn.ReadJSON(&ev); err != nil {
				break
			}

			switch ev.Event {

			case chat.EventJoinRoom:
				var p joinPayload
				if err := json.Unmarshal(ev.Data, &p); err != nil || p.UserID == 0 {
					sendError(client, "joinRoom requires userId")
					continue
				}
				presence.Register(p.UserID, client)
				logger.Debug().Int64("user", p.UserID).Msg("user joined")

			case chat.EventTyping, chat.EventStopTyping:
				var p directedPayload
				if err := json.Unmarshal(ev.Data, &p); err != nil || p.To == 0 {
					continue
				}
				// relayed only while the recipient is present; stale typing
				// indicators are never queued
				if presence.Emit(p.To, ev.Event, chat.TypingPayload{From: p.From}) {
					metrics.TypingEvents.Inc()
				}

			case chat.EventSendMessage:
				var p sendPayload
				if err := json.Unmarshal(ev.Data, &p); err != nil {
					sendError(client, "sendMessage requires from, to and content")
					continue
				}
				if _, err := msgSvc.SendMessage(ctx, service.SendMessageInput{
					From:    p.From,
					To:      p.To,
					Content: p.Content,
				}); err != nil {
					logger.Error().Err(err).Int64("from", p.From).Int64("to", p.To).Msg("send message failed")
					sendError(client, "failed to send message")
					continue
				}

			case chat.EventMarkAsSeen:
				var p directedPayload
				if err := json.Unmarshal(ev.Data, &p); err != nil || p.From == 0 || p.To == 0 {
					sendError(client, "markAsSeen requires from and to")
					continue
				}
				if err := msgSvc.MarkAllSeen(ctx, p.From, p.To); err != nil {
					logger.Error().Err(err).Int64("from", p.From).Int64("to", p.To).Msg("mark as seen failed")
					sendError(client, "failed to mark messages as seen")
				}

			default:
				logger.Warn().Str("event", ev.Event).Msg("unknown ws event")
			}
		}
	}
}

func sendError(conn chat.Sender, msg string) {
	_ = conn.WriteJSON(chat.Event{
		Event: chat.EventError,
		Data:  chat.ErrorPayload{Message: msg},
	})
}
