package sqlite

import (
	"context"
	"testing"
	"time"

	"painpal/internal/model"
	"painpal/internal/repository"
	"painpal/internal/repository/storetest"
)

// newTestDB opens a fresh in-memory database per test. ":memory:" is fast,
// isolated, and destroyed when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return newTestDB(t)
	})
}

func TestNextID_PerCollectionCounters(t *testing.T) {
	// Unlike the in-memory backend's global counter, sqlite allocates per
	// collection: the first pain log and the first mood log both get id 1.
	db := newTestDB(t)
	ctx := context.Background()

	u := &model.User{Email: "c@example.com", Name: "C", ExternalUID: "uid-c"}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	pain := &model.PainLog{UserID: u.ID, PainLevel: 3}
	if err := db.CreatePainLog(ctx, pain); err != nil {
		t.Fatalf("CreatePainLog: %v", err)
	}
	mood := &model.MoodLog{UserID: u.ID, Mood: 3, AnxietyLevel: 5}
	if err := db.CreateMoodLog(ctx, mood); err != nil {
		t.Fatalf("CreateMoodLog: %v", err)
	}

	if pain.ID != 1 || mood.ID != 1 {
		t.Errorf("first ids = pain %d, mood %d; want 1 and 1 (independent counters)", pain.ID, mood.ID)
	}

	second := &model.PainLog{UserID: u.ID, PainLevel: 4}
	if err := db.CreatePainLog(ctx, second); err != nil {
		t.Fatalf("CreatePainLog: %v", err)
	}
	if second.ID != 2 {
		t.Errorf("second pain log id = %d, want 2 (monotonic)", second.ID)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	// Running migrations again on an initialised database must be a no-op.
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

// Back-dated streak tests via the now hook, mirroring the memory backend's.

func seedIntervention(t *testing.T, db *DB) (*model.User, *model.Intervention) {
	t.Helper()
	ctx := context.Background()
	u := &model.User{Email: "streak@example.com", Name: "S", ExternalUID: "uid-streak"}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	iv := &model.Intervention{UserID: u.ID, Name: "Stretching", Frequency: "daily"}
	if err := db.CreateIntervention(ctx, iv); err != nil {
		t.Fatalf("CreateIntervention: %v", err)
	}
	return u, iv
}

func currentStreak(t *testing.T, db *DB, u *model.User) int {
	t.Helper()
	ivs, err := db.ListInterventions(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListInterventions: %v", err)
	}
	if len(ivs) != 1 {
		t.Fatalf("expected 1 intervention, got %d", len(ivs))
	}
	return ivs[0].CurrentStreak
}

func TestStreak_ExtendsAcrossConsecutiveDays(t *testing.T) {
	db := newTestDB(t)
	u, iv := seedIntervention(t, db)
	ctx := context.Background()

	day := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.Local)
	for _, at := range []time.Time{day.AddDate(0, 0, -1), day} {
		db.now = func() time.Time { return at }
		err := db.CreateInterventionLog(ctx,
			&model.InterventionLog{UserID: u.ID, InterventionID: iv.ID, PainLevel: 5})
		if err != nil {
			t.Fatalf("CreateInterventionLog: %v", err)
		}
	}

	if got := currentStreak(t, db, u); got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
}

func TestStreak_GapResetsToRunEndingToday(t *testing.T) {
	db := newTestDB(t)
	u, iv := seedIntervention(t, db)
	ctx := context.Background()

	day := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.Local)
	// Logs on T-3, T-2 and T; nothing on T-1.
	for _, at := range []time.Time{day.AddDate(0, 0, -3), day.AddDate(0, 0, -2), day} {
		db.now = func() time.Time { return at }
		err := db.CreateInterventionLog(ctx,
			&model.InterventionLog{UserID: u.ID, InterventionID: iv.ID, PainLevel: 5})
		if err != nil {
			t.Fatalf("CreateInterventionLog: %v", err)
		}
	}

	if got := currentStreak(t, db, u); got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
}

func TestFilePersistence(t *testing.T) {
	// Data written through one connection must be visible after reopening
	// the file — the whole point of the persistent backend.
	path := t.TempDir() + "/painpal_test.db"

	db, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	u := &model.User{Email: "persist@example.com", Name: "P", ExternalUID: "uid-persist"}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { reopened.Close() })

	found, err := reopened.GetUserByExternalUID(ctx, "uid-persist")
	if err != nil {
		t.Fatalf("GetUserByExternalUID after reopen: %v", err)
	}
	if found.ID != u.ID || found.Email != u.Email {
		t.Errorf("reopened user = %+v, want %+v", found, u)
	}
}
