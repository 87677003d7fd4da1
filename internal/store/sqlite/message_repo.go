package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"skillsocket/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, from_id, to_id, content, seen, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		m.ID, m.From, m.To, m.Content, m.Seen, m.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, userID, otherID int64) ([]*domain.Message, error) {
	query := `
		SELECT id, from_id, to_id, content, seen, created_at
		FROM messages
		WHERE (from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)
		ORDER BY created_at ASC, rowid ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, otherID, otherID, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages between: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *MessageRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Message, error) {
	query := `
		SELECT id, from_id, to_id, content, seen, created_at
		FROM messages
		WHERE from_id = ? OR to_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages for user: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *MessageRepo) MarkSeen(ctx context.Context, from, to int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET seen = 1
		WHERE from_id = ? AND to_id = ? AND seen = 0
	`, from, to)
	if err != nil {
		return 0, fmt.Errorf("mark seen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *MessageRepo) CountUnreadBySender(ctx context.Context, to int64) ([]domain.UnreadCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT from_id, COUNT(*)
		FROM messages
		WHERE to_id = ? AND seen = 0
		GROUP BY from_id
	`, to)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	defer rows.Close()

	var res []domain.UnreadCount
	for rows.Next() {
		var c domain.UnreadCount
		if err := rows.Scan(&c.From, &c.Count); err != nil {
			return nil, fmt.Errorf("scan unread count: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func scanMessages(rows *sql.Rows) ([]*domain.Message, error) {
	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Content, &m.Seen, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
