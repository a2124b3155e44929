// Package repository defines the storage contract shared by both backends.
//
// Two implementations conform to Store: an in-process map (repository/memory)
// for development and tests, and an embedded SQLite database
// (repository/sqlite) for real deployments. Which one a process uses is
// decided once, at startup, by whoever constructs the server — there is no
// ambient global. The storetest package holds a conformance suite that runs
// against both so their semantics (ordering, limits, streak recomputation,
// idempotent registration) cannot drift apart.
package repository

import (
	"context"

	"painpal/internal/model"
)

// MaxStreakFetch caps how much log history a backend reads when recomputing
// an intervention's streak. The recomputation scans the full history rather
// than updating incrementally; the cap keeps that scan finite.
const MaxStreakFetch = 1000

// Store is the storage contract for all six entity kinds.
//
// Conventions, identical across backends:
//
//   - Create* methods take a pointer, allocate the ID, stamp the creation
//     time, and fill those fields in place.
//   - Lookups return apperror.ErrNotFound (wrapped) for absence; absence is
//     never a generic failure.
//   - Every list is scoped to the owning user. Cross-user reads are not
//     expressible through this interface.
//   - List limits are applied by the caller's choice of limit argument; a
//     limit <= 0 means "no truncation" and is not used by the service layer.
//
// Records are insert-only. The single exception is the parent intervention's
// CurrentStreak, which CreateInterventionLog recomputes from the full log
// history and persists before returning. Under concurrent appends each
// writer recomputes from full history, so the final stored value is correct
// regardless of write order.
type Store interface {
	// CreateUser is idempotent on ExternalUID: if a user with the same
	// external identity already exists, u is overwritten with the existing
	// record and no new row is created. Email uniqueness beyond that is the
	// caller's concern.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByExternalUID(ctx context.Context, uid string) (*model.User, error)

	CreatePainLog(ctx context.Context, log *model.PainLog) error
	// ListPainLogs returns the user's pain logs, newest first, at most limit.
	ListPainLogs(ctx context.Context, userID int64, limit int) ([]model.PainLog, error)

	CreateMoodLog(ctx context.Context, log *model.MoodLog) error
	ListMoodLogs(ctx context.Context, userID int64, limit int) ([]model.MoodLog, error)

	CreateIntervention(ctx context.Context, iv *model.Intervention) error
	// ListInterventions returns only active interventions, newest first.
	ListInterventions(ctx context.Context, userID int64) ([]model.Intervention, error)

	// CreateInterventionLog inserts the log and, as a side effect,
	// recomputes and persists the parent intervention's CurrentStreak.
	CreateInterventionLog(ctx context.Context, log *model.InterventionLog) error
	ListInterventionLogs(ctx context.Context, userID, interventionID int64, limit int) ([]model.InterventionLog, error)

	CreateChatMessage(ctx context.Context, msg *model.ChatMessage) error
	// ListChatMessages is the one ascending list: it returns the LAST limit
	// messages (the most recent ones) in chronological order — a chat
	// window, not a paging cursor.
	ListChatMessages(ctx context.Context, userID int64, limit int) ([]model.ChatMessage, error)

	Close() error
}
