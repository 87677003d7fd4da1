package domain

import (
	"fmt"
	"time"
)

// User represents a platform member as seen by the messaging subsystem.
// Account management lives elsewhere; messaging only reads profile data.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        *string   `db:"email" json:"email,omitempty"`
	ProfileImage *string   `db:"profile_image" json:"profile_image,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile returns the snapshot of a user embedded in message and
// conversation payloads.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}

// UserProfile is the subset of user fields exposed to chat partners.
type UserProfile struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// Message represents a single direct message. Seen only ever moves from
// false to true; records are never deleted by this subsystem.
type Message struct {
	ID        string    `db:"id" json:"id"`
	From      int64     `db:"from_id" json:"from"`
	To        int64     `db:"to_id" json:"to"`
	Content   string    `db:"content" json:"content"`
	Seen      bool      `db:"seen" json:"seen"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MessageSnapshot is the last-message view embedded in a conversation
// summary.
type MessageSnapshot struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	From      int64     `json:"from"`
	Seen      bool      `json:"seen"`
}

// ConversationSummary is a derived, non-persisted view of the most recent
// exchange with a single partner.
type ConversationSummary struct {
	ID          string          `json:"id"`
	Participant UserProfile     `json:"participant"`
	LastMessage MessageSnapshot `json:"last_message"`
}

// UnreadCount is the number of unseen messages from one sender.
type UnreadCount struct {
	From  int64 `json:"from"`
	Count int   `json:"count"`
}

// ConversationKey returns the deterministic pairing key for two users,
// identical regardless of argument order.
func ConversationKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}
