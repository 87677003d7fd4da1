package domain

import (
	"context"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListBetween returns every message exchanged between the two users,
	// oldest first.
	ListBetween(ctx context.Context, userID, otherID int64) ([]*Message, error)
	// ListForUser returns every message where the user is sender or
	// recipient, newest first.
	ListForUser(ctx context.Context, userID int64) ([]*Message, error)
	// MarkSeen flips seen to true on every unseen message from -> to and
	// returns the number of rows updated. A second call is a no-op.
	MarkSeen(ctx context.Context, from, to int64) (int64, error)
	// CountUnreadBySender groups the recipient's unseen messages by sender.
	CountUnreadBySender(ctx context.Context, to int64) ([]UnreadCount, error)
}

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// Search finds active users whose name or email matches the query,
	// excluding the given user.
	Search(ctx context.Context, excludeID int64, query string, limit int) ([]*User, error)
}
