package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"painpal/internal/model"
)

// Tag lists (pain tags, mood triggers/helpers) are stored as JSON text
// columns. SQLite has no array type and the lists are only ever read back
// whole, never queried by element, so JSON text keeps the schema flat.

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	return tags, nil
}

// CreatePainLog inserts a pain entry, allocating its ID and stamping the
// timestamp. Tags default to an empty list.
func (db *DB) CreatePainLog(ctx context.Context, log *model.PainLog) error {
	id, err := db.nextID(ctx, "pain_logs")
	if err != nil {
		return fmt.Errorf("sqlite: creating pain log: %w", err)
	}

	log.ID = id
	log.Date = db.now()
	if log.Tags == nil {
		log.Tags = []string{}
	}

	tags, err := encodeTags(log.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: creating pain log: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO pain_logs (id, user_id, pain_level, tags, notes, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.PainLevel, tags, log.Notes, log.Date,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting pain log: %w", err)
	}
	return nil
}

// ListPainLogs returns the user's pain logs, newest first, at most limit.
// The ID tiebreaker keeps same-instant entries in a stable order.
func (db *DB) ListPainLogs(ctx context.Context, userID int64, limit int) ([]model.PainLog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, pain_level, tags, notes, date
		 FROM pain_logs
		 WHERE user_id = ?
		 ORDER BY date DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pain logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.PainLog, 0, limit)
	for rows.Next() {
		var l model.PainLog
		var tags string
		if err := rows.Scan(&l.ID, &l.UserID, &l.PainLevel, &tags, &l.Notes, &l.Date); err != nil {
			return nil, fmt.Errorf("sqlite: scanning pain log row: %w", err)
		}
		if l.Tags, err = decodeTags(tags); err != nil {
			return nil, fmt.Errorf("sqlite: pain log %d: %w", l.ID, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating pain logs: %w", err)
	}
	return logs, nil
}

// CreateMoodLog inserts a mood entry. Triggers and helpers default to empty
// lists, symmetric with pain-log tags.
func (db *DB) CreateMoodLog(ctx context.Context, log *model.MoodLog) error {
	id, err := db.nextID(ctx, "mood_logs")
	if err != nil {
		return fmt.Errorf("sqlite: creating mood log: %w", err)
	}

	log.ID = id
	log.Date = db.now()
	if log.Triggers == nil {
		log.Triggers = []string{}
	}
	if log.Helpers == nil {
		log.Helpers = []string{}
	}

	triggers, err := encodeTags(log.Triggers)
	if err != nil {
		return fmt.Errorf("sqlite: creating mood log: %w", err)
	}
	helpers, err := encodeTags(log.Helpers)
	if err != nil {
		return fmt.Errorf("sqlite: creating mood log: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO mood_logs (id, user_id, mood, anxiety_level, triggers, helpers, notes, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.Mood, log.AnxietyLevel, triggers, helpers, log.Notes, log.Date,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting mood log: %w", err)
	}
	return nil
}

// ListMoodLogs returns the user's mood logs, newest first, at most limit.
func (db *DB) ListMoodLogs(ctx context.Context, userID int64, limit int) ([]model.MoodLog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, mood, anxiety_level, triggers, helpers, notes, date
		 FROM mood_logs
		 WHERE user_id = ?
		 ORDER BY date DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing mood logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.MoodLog, 0, limit)
	for rows.Next() {
		var l model.MoodLog
		var triggers, helpers string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Mood, &l.AnxietyLevel, &triggers, &helpers, &l.Notes, &l.Date); err != nil {
			return nil, fmt.Errorf("sqlite: scanning mood log row: %w", err)
		}
		if l.Triggers, err = decodeTags(triggers); err != nil {
			return nil, fmt.Errorf("sqlite: mood log %d: %w", l.ID, err)
		}
		if l.Helpers, err = decodeTags(helpers); err != nil {
			return nil, fmt.Errorf("sqlite: mood log %d: %w", l.ID, err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating mood logs: %w", err)
	}
	return logs, nil
}
