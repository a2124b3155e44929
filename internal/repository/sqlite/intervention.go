package sqlite

import (
	"context"
	"fmt"
	"time"

	"painpal/internal/model"
	"painpal/internal/repository"
	"painpal/internal/streak"
)

// CreateIntervention inserts a new habit. Streak starts at 0 and the
// intervention is active until the user archives it.
func (db *DB) CreateIntervention(ctx context.Context, iv *model.Intervention) error {
	id, err := db.nextID(ctx, "interventions")
	if err != nil {
		return fmt.Errorf("sqlite: creating intervention: %w", err)
	}

	iv.ID = id
	iv.CurrentStreak = 0
	iv.IsActive = true
	iv.CreatedAt = db.now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO interventions (id, user_id, name, frequency, current_streak, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		iv.ID, iv.UserID, iv.Name, iv.Frequency, iv.CurrentStreak, iv.IsActive, iv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting intervention: %w", err)
	}
	return nil
}

// ListInterventions returns the user's active interventions, newest first.
// Archived (inactive) interventions never appear.
func (db *DB) ListInterventions(ctx context.Context, userID int64) ([]model.Intervention, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, frequency, current_streak, is_active, created_at
		 FROM interventions
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing interventions: %w", err)
	}
	defer rows.Close()

	ivs := make([]model.Intervention, 0)
	for rows.Next() {
		var iv model.Intervention
		if err := rows.Scan(&iv.ID, &iv.UserID, &iv.Name, &iv.Frequency,
			&iv.CurrentStreak, &iv.IsActive, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning intervention row: %w", err)
		}
		ivs = append(ivs, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating interventions: %w", err)
	}
	return ivs, nil
}

// CreateInterventionLog inserts the log, then recomputes and persists the
// parent intervention's streak from the full log history.
//
// The recompute is read-full-history-then-write, not an increment: under
// concurrent appends every writer derives the same final value from the same
// history, so the stored streak settles correctly regardless of write order.
func (db *DB) CreateInterventionLog(ctx context.Context, log *model.InterventionLog) error {
	id, err := db.nextID(ctx, "intervention_logs")
	if err != nil {
		return fmt.Errorf("sqlite: creating intervention log: %w", err)
	}

	log.ID = id
	log.Date = db.now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO intervention_logs (id, user_id, intervention_id, pain_level, notes, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.InterventionID, log.PainLevel, log.Notes, log.Date,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting intervention log: %w", err)
	}

	if err := db.recomputeStreak(ctx, log.UserID, log.InterventionID); err != nil {
		return fmt.Errorf("sqlite: updating streak for intervention %d: %w", log.InterventionID, err)
	}
	return nil
}

// recomputeStreak derives the streak from the intervention's log dates and
// overwrites the cached value. The fetch is capped — the scan must stay
// finite even for a years-long history.
func (db *DB) recomputeStreak(ctx context.Context, userID, interventionID int64) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT date FROM intervention_logs
		 WHERE user_id = ? AND intervention_id = ?
		 ORDER BY date DESC
		 LIMIT ?`,
		userID, interventionID, repository.MaxStreakFetch,
	)
	if err != nil {
		return fmt.Errorf("fetching log dates: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return fmt.Errorf("scanning log date: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating log dates: %w", err)
	}

	// No row matched is fine — the caller verified ownership, and a missing
	// parent just means there is nothing to update.
	_, err = db.conn.ExecContext(ctx,
		`UPDATE interventions SET current_streak = ? WHERE id = ?`,
		streak.Current(times, db.now()), interventionID,
	)
	if err != nil {
		return fmt.Errorf("writing streak: %w", err)
	}
	return nil
}

// ListInterventionLogs returns one intervention's logs, newest first.
func (db *DB) ListInterventionLogs(ctx context.Context, userID, interventionID int64, limit int) ([]model.InterventionLog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, intervention_id, pain_level, notes, date
		 FROM intervention_logs
		 WHERE user_id = ? AND intervention_id = ?
		 ORDER BY date DESC, id DESC
		 LIMIT ?`,
		userID, interventionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing intervention logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.InterventionLog, 0, limit)
	for rows.Next() {
		var l model.InterventionLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.InterventionID, &l.PainLevel, &l.Notes, &l.Date); err != nil {
			return nil, fmt.Errorf("sqlite: scanning intervention log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating intervention logs: %w", err)
	}
	return logs, nil
}
