package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"painpal/internal/apperror"
	"painpal/internal/model"
	"painpal/internal/repository"
	"painpal/internal/streak"
)

// Validation and paging constants. The numeric ranges come straight from
// the tracking scales shown to the user: pain and anxiety are 1–10, mood is
// a 5-point scale.
const (
	MinPainLevel = 1
	MaxPainLevel = 10
	MinMood      = 1
	MaxMood      = 5
	MinAnxiety   = 1
	MaxAnxiety   = 10

	MaxNameLength      = 100
	MaxFrequencyLength = 100
	MaxNotesLength     = 2000

	DefaultListLimit = 50
	MaxListLimit     = 100
)

// TrackerService handles pain logs, mood logs, interventions and streaks.
type TrackerService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewTrackerService(store repository.Store, logger *slog.Logger) *TrackerService {
	return &TrackerService{store: store, logger: logger}
}

// clampLimit applies the default and the ceiling to a caller-supplied limit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func validateRange(field string, value, min, max int) error {
	if value < min || value > max {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be between %d and %d", field, min, max))
	}
	return nil
}

func validateNotes(notes string) error {
	if len(notes) > MaxNotesLength {
		return apperror.ValidationFailed("notes",
			fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
	}
	return nil
}

// LogPain validates and records a pain entry for the user.
func (s *TrackerService) LogPain(ctx context.Context, userID int64, level int, notes string, tags []string) (*model.PainLog, error) {
	if err := validateRange("painLevel", level, MinPainLevel, MaxPainLevel); err != nil {
		return nil, err
	}
	if err := validateNotes(notes); err != nil {
		return nil, err
	}

	log := &model.PainLog{
		UserID:    userID,
		PainLevel: level,
		Notes:     strings.TrimSpace(notes),
		Tags:      tags,
	}
	if err := s.store.CreatePainLog(ctx, log); err != nil {
		s.logger.Error("failed to create pain log",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating pain log: %w", err)
	}

	s.logger.Info("pain logged",
		slog.Int64("id", log.ID),
		slog.Int64("userId", userID),
		slog.Int("level", level),
	)
	return log, nil
}

// PainLogs returns the user's pain history, newest first.
func (s *TrackerService) PainLogs(ctx context.Context, userID int64, limit int) ([]model.PainLog, error) {
	logs, err := s.store.ListPainLogs(ctx, userID, clampLimit(limit))
	if err != nil {
		s.logger.Error("failed to list pain logs", slog.Int64("userId", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing pain logs: %w", err)
	}
	return logs, nil
}

// DayStreak computes the user's current run of consecutive days with at
// least one pain log — any level counts.
//
// This is the dashboard number, derived on read rather than cached: unlike
// an intervention's streak there is no single write path that could keep a
// cached value fresh across all pain logs.
func (s *TrackerService) DayStreak(ctx context.Context, userID int64) (int, error) {
	logs, err := s.store.ListPainLogs(ctx, userID, repository.MaxStreakFetch)
	if err != nil {
		return 0, fmt.Errorf("listing pain logs for streak: %w", err)
	}

	times := make([]time.Time, len(logs))
	for i, l := range logs {
		times[i] = l.Date
	}
	return streak.Current(times, time.Now()), nil
}

// LogMood validates and records a mood entry.
func (s *TrackerService) LogMood(ctx context.Context, userID int64, mood, anxiety int, triggers, helpers []string, notes string) (*model.MoodLog, error) {
	if err := validateRange("mood", mood, MinMood, MaxMood); err != nil {
		return nil, err
	}
	if err := validateRange("anxietyLevel", anxiety, MinAnxiety, MaxAnxiety); err != nil {
		return nil, err
	}
	if err := validateNotes(notes); err != nil {
		return nil, err
	}

	log := &model.MoodLog{
		UserID:       userID,
		Mood:         mood,
		AnxietyLevel: anxiety,
		Triggers:     triggers,
		Helpers:      helpers,
		Notes:        strings.TrimSpace(notes),
	}
	if err := s.store.CreateMoodLog(ctx, log); err != nil {
		s.logger.Error("failed to create mood log",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating mood log: %w", err)
	}

	s.logger.Info("mood logged",
		slog.Int64("id", log.ID),
		slog.Int64("userId", userID),
		slog.Int("mood", mood),
		slog.Int("anxiety", anxiety),
	)
	return log, nil
}

// MoodLogs returns the user's mood history, newest first.
func (s *TrackerService) MoodLogs(ctx context.Context, userID int64, limit int) ([]model.MoodLog, error) {
	logs, err := s.store.ListMoodLogs(ctx, userID, clampLimit(limit))
	if err != nil {
		s.logger.Error("failed to list mood logs", slog.Int64("userId", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing mood logs: %w", err)
	}
	return logs, nil
}

// CreateIntervention registers a new habit to track.
func (s *TrackerService) CreateIntervention(ctx context.Context, userID int64, name, frequency string) (*model.Intervention, error) {
	name = strings.TrimSpace(name)
	frequency = strings.TrimSpace(frequency)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "intervention name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("intervention name must be %d characters or less", MaxNameLength))
	}
	if frequency == "" {
		return nil, apperror.ValidationFailed("frequency", "frequency is required")
	}
	if len(frequency) > MaxFrequencyLength {
		return nil, apperror.ValidationFailed("frequency",
			fmt.Sprintf("frequency must be %d characters or less", MaxFrequencyLength))
	}

	iv := &model.Intervention{UserID: userID, Name: name, Frequency: frequency}
	if err := s.store.CreateIntervention(ctx, iv); err != nil {
		s.logger.Error("failed to create intervention",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating intervention: %w", err)
	}

	s.logger.Info("intervention created",
		slog.Int64("id", iv.ID),
		slog.Int64("userId", userID),
		slog.String("name", iv.Name),
	)
	return iv, nil
}

// Interventions returns the user's active interventions, newest first.
func (s *TrackerService) Interventions(ctx context.Context, userID int64) ([]model.Intervention, error) {
	ivs, err := s.store.ListInterventions(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list interventions", slog.Int64("userId", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing interventions: %w", err)
	}
	return ivs, nil
}

// LogIntervention records a performance of an intervention. The store
// recomputes the intervention's streak as part of the write.
//
// The storage layer does not check that the intervention belongs to the
// caller — that's this method's job, done against the caller's own active
// interventions before anything is written.
func (s *TrackerService) LogIntervention(ctx context.Context, userID, interventionID int64, level int, notes string) (*model.InterventionLog, error) {
	if err := validateRange("painLevel", level, MinPainLevel, MaxPainLevel); err != nil {
		return nil, err
	}
	if err := validateNotes(notes); err != nil {
		return nil, err
	}

	owned, err := s.ownsIntervention(ctx, userID, interventionID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperror.NotFound("intervention", interventionID)
	}

	log := &model.InterventionLog{
		UserID:         userID,
		InterventionID: interventionID,
		PainLevel:      level,
		Notes:          strings.TrimSpace(notes),
	}
	if err := s.store.CreateInterventionLog(ctx, log); err != nil {
		s.logger.Error("failed to create intervention log",
			slog.Int64("userId", userID),
			slog.Int64("interventionId", interventionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating intervention log: %w", err)
	}

	s.logger.Info("intervention logged",
		slog.Int64("id", log.ID),
		slog.Int64("interventionId", interventionID),
		slog.Int64("userId", userID),
	)
	return log, nil
}

// InterventionLogs returns one intervention's history, newest first.
func (s *TrackerService) InterventionLogs(ctx context.Context, userID, interventionID int64, limit int) ([]model.InterventionLog, error) {
	logs, err := s.store.ListInterventionLogs(ctx, userID, interventionID, clampLimit(limit))
	if err != nil {
		s.logger.Error("failed to list intervention logs",
			slog.Int64("userId", userID),
			slog.Int64("interventionId", interventionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing intervention logs: %w", err)
	}
	return logs, nil
}

func (s *TrackerService) ownsIntervention(ctx context.Context, userID, interventionID int64) (bool, error) {
	ivs, err := s.store.ListInterventions(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("checking intervention ownership: %w", err)
	}
	for _, iv := range ivs {
		if iv.ID == interventionID {
			return true, nil
		}
	}
	return false, nil
}
