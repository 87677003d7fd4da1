package chat

import (
	"sync"

	"skillsocket/internal/metrics"
)

// Sender is the write side of a live client connection. *websocket.Conn
// satisfies it in production; tests substitute an in-memory recorder.
type Sender interface {
	WriteJSON(v any) error
}

// Presence maps user IDs to their live connection. It holds at most one
// handle per user: a later Register for the same user overwrites the
// earlier handle. The map is owned by the connection-handling layer and
// guarded by a mutex because connection goroutines run in parallel.
type Presence struct {
	mu    sync.RWMutex
	conns map[int64]Sender
}

func NewPresence() *Presence {
	return &Presence{
		conns: make(map[int64]Sender),
	}
}

// Register binds the user to the given connection, replacing any prior
// handle for that user. It never fails.
func (p *Presence) Register(userID int64, conn Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.conns[userID] = conn
	metrics.ActiveConnections.Set(float64(len(p.conns)))
}

// Unregister removes whichever user the connection belongs to, found by
// reverse scan since a disconnect only reports the handle. Unknown handles
// are ignored, which also covers duplicate disconnect events and the case
// where a newer connection has already replaced this one.
func (p *Presence) Unregister(conn Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for userID, c := range p.conns {
		if c == conn {
			delete(p.conns, userID)
			break
		}
	}
	metrics.ActiveConnections.Set(float64(len(p.conns)))
}

// Lookup returns the user's live connection, if any.
func (p *Presence) Lookup(userID int64) (Sender, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	conn, ok := p.conns[userID]
	return conn, ok
}

// Emit writes the event to the user's connection if one is registered and
// reports whether the user was present. An absent user is a normal branch,
// not an error; the frame is simply dropped.
func (p *Presence) Emit(userID int64, event string, data any) bool {
	conn, ok := p.Lookup(userID)
	if !ok {
		return false
	}
	// write errors are best-effort; the read loop notices a dead
	// connection and unregisters it
	_ = conn.WriteJSON(Event{Event: event, Data: data})
	return true
}
