package model

import "time"

// PainLog is a single pain entry. PainLevel is on a 1–10 scale; the service
// layer rejects anything outside that range before it reaches storage.
// Tags defaults to an empty (non-nil) slice so it always marshals as [].
type PainLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PainLevel int       `json:"painLevel"`
	Tags      []string  `json:"tags"`
	Notes     string    `json:"notes,omitempty"`
	Date      time.Time `json:"date"`
}

// MoodLog is a single mood/anxiety entry. Mood is 1–5 (very sad to very
// happy), AnxietyLevel is 1–10. Triggers and Helpers are free-text tag lists
// describing what worsened or eased the user's state.
type MoodLog struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Mood         int       `json:"mood"`
	AnxietyLevel int       `json:"anxietyLevel"`
	Triggers     []string  `json:"triggers"`
	Helpers      []string  `json:"helpers"`
	Notes        string    `json:"notes,omitempty"`
	Date         time.Time `json:"date"`
}
