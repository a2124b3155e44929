package model

import "time"

// Intervention is a user-defined recurring habit (stretching, meditation,
// medication, ...) tracked alongside its effect on pain.
//
// CurrentStreak is a CACHED DERIVED VALUE — the number of consecutive
// calendar days, ending today, with at least one log for this intervention.
// It is recomputed from the full log history and overwritten every time a
// new InterventionLog is appended. This is the only field in the whole data
// model that is ever updated in place; everything else is insert-only.
type Intervention struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Name          string    `json:"name"`
	Frequency     string    `json:"frequency"`
	CurrentStreak int       `json:"currentStreak"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// InterventionLog records one performance of an intervention together with
// the pain level at that moment (1–10).
//
// The parent intervention must belong to the same user. Storage does not
// enforce this — the service layer verifies ownership before writing.
type InterventionLog struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	InterventionID int64     `json:"interventionId"`
	PainLevel      int       `json:"painLevel"`
	Notes          string    `json:"notes,omitempty"`
	Date           time.Time `json:"date"`
}
