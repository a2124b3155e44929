// Package memory implements repository.Store as an in-process map.
//
// This is the development and test backend: everything lives in maps guarded
// by one mutex, and is lost when the process exits. IDs come from a single
// process-wide counter shared by all entity kinds, so an ID is globally
// unique — a user and a pain log never share one.
//
// The semantics (ordering, limits, streak recomputation, idempotent user
// registration) are identical to the sqlite backend; the shared conformance
// suite in repository/storetest pins that.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"painpal/internal/apperror"
	"painpal/internal/model"
	"painpal/internal/repository"
	"painpal/internal/streak"
)

// compile-time check that *Store implements repository.Store
var _ repository.Store = (*Store)(nil)

// Store holds all entities in memory. One mutex guards everything — at this
// backend's scale (one process, one user base that fits in RAM) finer
// locking buys nothing.
type Store struct {
	mu sync.Mutex

	// now is swappable so tests can back-date log entries; production code
	// never touches it.
	now func() time.Time

	currentID        int64
	users            map[int64]model.User
	painLogs         map[int64]model.PainLog
	moodLogs         map[int64]model.MoodLog
	interventions    map[int64]model.Intervention
	interventionLogs map[int64]model.InterventionLog
	chatMessages     map[int64]model.ChatMessage
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		now:              time.Now,
		users:            make(map[int64]model.User),
		painLogs:         make(map[int64]model.PainLog),
		moodLogs:         make(map[int64]model.MoodLog),
		interventions:    make(map[int64]model.Intervention),
		interventionLogs: make(map[int64]model.InterventionLog),
		chatMessages:     make(map[int64]model.ChatMessage),
	}
}

// nextID allocates the next identifier. Caller must hold s.mu.
func (s *Store) nextID() int64 {
	s.currentID++
	return s.currentID
}

// Close is a no-op; the store has no resources beyond process memory.
func (s *Store) Close() error {
	return nil
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent on external identity: registering the same ExternalUID
	// twice returns the original record both times.
	for _, existing := range s.users {
		if existing.ExternalUID == u.ExternalUID {
			*u = existing
			return nil
		}
	}

	u.ID = s.nextID()
	u.CreatedAt = s.now()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperror.NotFoundFor("user", "email", email)
}

func (s *Store) GetUserByExternalUID(_ context.Context, uid string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ExternalUID == uid {
			user := u
			return &user, nil
		}
	}
	return nil, apperror.NotFoundFor("user", "external uid", uid)
}

// --- pain logs ---

func (s *Store) CreatePainLog(_ context.Context, log *model.PainLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextID()
	log.Date = s.now()
	if log.Tags == nil {
		log.Tags = []string{}
	}
	s.painLogs[log.ID] = *log
	return nil
}

func (s *Store) ListPainLogs(_ context.Context, userID int64, limit int) ([]model.PainLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]model.PainLog, 0)
	for _, l := range s.painLogs {
		if l.UserID == userID {
			logs = append(logs, l)
		}
	}
	sortNewestFirst(logs, func(l model.PainLog) (time.Time, int64) { return l.Date, l.ID })
	return truncate(logs, limit), nil
}

// --- mood logs ---

func (s *Store) CreateMoodLog(_ context.Context, log *model.MoodLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextID()
	log.Date = s.now()
	if log.Triggers == nil {
		log.Triggers = []string{}
	}
	if log.Helpers == nil {
		log.Helpers = []string{}
	}
	s.moodLogs[log.ID] = *log
	return nil
}

func (s *Store) ListMoodLogs(_ context.Context, userID int64, limit int) ([]model.MoodLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]model.MoodLog, 0)
	for _, l := range s.moodLogs {
		if l.UserID == userID {
			logs = append(logs, l)
		}
	}
	sortNewestFirst(logs, func(l model.MoodLog) (time.Time, int64) { return l.Date, l.ID })
	return truncate(logs, limit), nil
}

// --- interventions ---

func (s *Store) CreateIntervention(_ context.Context, iv *model.Intervention) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	iv.ID = s.nextID()
	iv.CurrentStreak = 0
	iv.IsActive = true
	iv.CreatedAt = s.now()
	s.interventions[iv.ID] = *iv
	return nil
}

func (s *Store) ListInterventions(_ context.Context, userID int64) ([]model.Intervention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ivs := make([]model.Intervention, 0)
	for _, iv := range s.interventions {
		if iv.UserID == userID && iv.IsActive {
			ivs = append(ivs, iv)
		}
	}
	sortNewestFirst(ivs, func(iv model.Intervention) (time.Time, int64) { return iv.CreatedAt, iv.ID })
	return ivs, nil
}

// --- intervention logs ---

func (s *Store) CreateInterventionLog(_ context.Context, log *model.InterventionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextID()
	log.Date = s.now()
	s.interventionLogs[log.ID] = *log

	// Recompute the parent's streak from the log history. The fetch cap must
	// keep the NEWEST entries — map iteration order is randomized, so the cap
	// is applied only after sorting, or today's log could fall outside the
	// window and zero the streak. Same window the sqlite backend reads.
	logs := make([]model.InterventionLog, 0)
	for _, l := range s.interventionLogs {
		if l.UserID == log.UserID && l.InterventionID == log.InterventionID {
			logs = append(logs, l)
		}
	}
	sortNewestFirst(logs, func(l model.InterventionLog) (time.Time, int64) { return l.Date, l.ID })
	logs = truncate(logs, repository.MaxStreakFetch)

	times := make([]time.Time, len(logs))
	for i, l := range logs {
		times[i] = l.Date
	}
	if iv, ok := s.interventions[log.InterventionID]; ok {
		iv.CurrentStreak = streak.Current(times, s.now())
		s.interventions[log.InterventionID] = iv
	}

	return nil
}

func (s *Store) ListInterventionLogs(_ context.Context, userID, interventionID int64, limit int) ([]model.InterventionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]model.InterventionLog, 0)
	for _, l := range s.interventionLogs {
		if l.UserID == userID && l.InterventionID == interventionID {
			logs = append(logs, l)
		}
	}
	sortNewestFirst(logs, func(l model.InterventionLog) (time.Time, int64) { return l.Date, l.ID })
	return truncate(logs, limit), nil
}

// --- chat messages ---

func (s *Store) CreateChatMessage(_ context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID()
	msg.Timestamp = s.now()
	s.chatMessages[msg.ID] = *msg
	return nil
}

func (s *Store) ListChatMessages(_ context.Context, userID int64, limit int) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]model.ChatMessage, 0)
	for _, m := range s.chatMessages {
		if m.UserID == userID {
			msgs = append(msgs, m)
		}
	}

	// Ascending by timestamp (ID breaks ties — IDs follow insertion order),
	// then keep the LAST limit entries: the most recent window of the
	// conversation, still in chronological order.
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// sortNewestFirst orders a slice descending by timestamp, with the ID as a
// deterministic tiebreaker for same-instant entries.
func sortNewestFirst[T any](items []T, key func(T) (time.Time, int64)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti.Equal(tj) {
			return idi > idj
		}
		return ti.After(tj)
	})
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
