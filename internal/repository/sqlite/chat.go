package sqlite

import (
	"context"
	"fmt"

	"painpal/internal/model"
)

// CreateChatMessage appends one conversation turn.
func (db *DB) CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	id, err := db.nextID(ctx, "chat_messages")
	if err != nil {
		return fmt.Errorf("sqlite: creating chat message: %w", err)
	}

	msg.ID = id
	msg.Timestamp = db.now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, content, is_from_user, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, msg.Content, msg.IsFromUser, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns the LAST limit messages in chronological order —
// the most recent window of the conversation, not its beginning.
//
// The inner query selects the newest rows; the outer one flips them back to
// ascending. This is the only ascending list in the store.
func (db *DB) ListChatMessages(ctx context.Context, userID int64, limit int) ([]model.ChatMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, content, is_from_user, timestamp FROM (
			SELECT id, user_id, content, is_from_user, timestamp
			FROM chat_messages
			WHERE user_id = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		 ) ORDER BY timestamp ASC, id ASC`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing chat messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]model.ChatMessage, 0, limit)
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.IsFromUser, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning chat message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating chat messages: %w", err)
	}
	return msgs, nil
}
