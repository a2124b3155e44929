// Package storetest holds the conformance suite shared by both storage
// backends.
//
// The memory and sqlite backends must be interchangeable: identical
// ordering, identical limits, identical idempotency and streak behaviour.
// Rather than trusting two implementations to stay in sync, each backend's
// test file calls Run with its own constructor and the whole contract is
// checked against both. A behaviour difference between backends is a bug
// even when each backend looks self-consistent.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painpal/internal/apperror"
	"painpal/internal/model"
	"painpal/internal/repository"
)

// Factory builds a fresh, empty store for one (sub)test. Cleanup is the
// factory's job, via t.Cleanup.
type Factory func(t *testing.T) repository.Store

// Run executes the full conformance suite against one backend.
func Run(t *testing.T, open Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, open) })
	t.Run("PainLogs", func(t *testing.T) { testPainLogs(t, open) })
	t.Run("MoodLogs", func(t *testing.T) { testMoodLogs(t, open) })
	t.Run("Interventions", func(t *testing.T) { testInterventions(t, open) })
	t.Run("InterventionLogs", func(t *testing.T) { testInterventionLogs(t, open) })
	t.Run("ChatMessages", func(t *testing.T) { testChatMessages(t, open) })
	t.Run("UserScoping", func(t *testing.T) { testUserScoping(t, open) })
}

// registerUser is a helper that creates a user and fails the test on error.
func registerUser(t *testing.T, s repository.Store, email, name, uid string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: name, ExternalUID: uid}
	require.NoError(t, s.CreateUser(context.Background(), u))
	require.NotZero(t, u.ID, "CreateUser must allocate an ID")
	require.False(t, u.CreatedAt.IsZero(), "CreateUser must stamp CreatedAt")
	return u
}

func testUsers(t *testing.T, open Factory) {
	s := open(t)
	ctx := context.Background()

	u := registerUser(t, s, "mira@example.com", "Mira", "uid-mira")

	t.Run("create is idempotent on external identity", func(t *testing.T) {
		again := &model.User{Email: "other@example.com", Name: "Someone Else", ExternalUID: "uid-mira"}
		require.NoError(t, s.CreateUser(ctx, again))
		assert.Equal(t, u.ID, again.ID, "same external identity must map to the same user")
		assert.Equal(t, "mira@example.com", again.Email, "the original record wins")
		assert.Equal(t, "Mira", again.Name)
	})

	t.Run("lookups return the record", func(t *testing.T) {
		byID, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ExternalUID, byID.ExternalUID)

		byEmail, err := s.GetUserByEmail(ctx, "mira@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		byUID, err := s.GetUserByExternalUID(ctx, "uid-mira")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byUID.ID)
	})

	t.Run("absence is ErrNotFound, never a generic failure", func(t *testing.T) {
		_, err := s.GetUser(ctx, 999999)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = s.GetUserByExternalUID(ctx, "uid-nobody")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func testPainLogs(t *testing.T, open Factory) {
	s := open(t)
	ctx := context.Background()
	u := registerUser(t, s, "pain@example.com", "P", "uid-pain")

	t.Run("create fills id, date and default tags", func(t *testing.T) {
		log := &model.PainLog{UserID: u.ID, PainLevel: 6, Notes: "dull ache"}
		require.NoError(t, s.CreatePainLog(ctx, log))
		assert.NotZero(t, log.ID)
		assert.False(t, log.Date.IsZero())
		assert.NotNil(t, log.Tags, "tags must default to an empty slice, not nil")
		assert.Empty(t, log.Tags)
	})

	t.Run("list is newest first and truncated to limit", func(t *testing.T) {
		var ids []int64
		for i := 0; i < 5; i++ {
			log := &model.PainLog{UserID: u.ID, PainLevel: i + 1, Tags: []string{fmt.Sprintf("t%d", i)}}
			require.NoError(t, s.CreatePainLog(ctx, log))
			ids = append(ids, log.ID)
		}

		logs, err := s.ListPainLogs(ctx, u.ID, 50)
		require.NoError(t, err)
		require.Len(t, logs, 6) // 5 here + 1 from the subtest above
		for i := 1; i < len(logs); i++ {
			assert.False(t, logs[i-1].Date.Before(logs[i].Date),
				"dates must be non-increasing")
		}
		// Newest entry is the last one created.
		assert.Equal(t, ids[len(ids)-1], logs[0].ID)

		limited, err := s.ListPainLogs(ctx, u.ID, 3)
		require.NoError(t, err)
		assert.Len(t, limited, 3)
		assert.Equal(t, logs[0].ID, limited[0].ID, "limit truncates the tail, not the head")
	})

	t.Run("tags round-trip", func(t *testing.T) {
		log := &model.PainLog{UserID: u.ID, PainLevel: 4, Tags: []string{"lower back", "morning"}}
		require.NoError(t, s.CreatePainLog(ctx, log))

		logs, err := s.ListPainLogs(ctx, u.ID, 1)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, []string{"lower back", "morning"}, logs[0].Tags)
	})
}

func testMoodLogs(t *testing.T, open Factory) {
	s := open(t)
	ctx := context.Background()
	u := registerUser(t, s, "mood@example.com", "M", "uid-mood")

	t.Run("create fills id, date and default lists", func(t *testing.T) {
		log := &model.MoodLog{UserID: u.ID, Mood: 3, AnxietyLevel: 7}
		require.NoError(t, s.CreateMoodLog(ctx, log))
		assert.NotZero(t, log.ID)
		assert.False(t, log.Date.IsZero())
		assert.NotNil(t, log.Triggers)
		assert.NotNil(t, log.Helpers)
	})

	t.Run("list is newest first with trigger and helper round-trip", func(t *testing.T) {
		log := &model.MoodLog{
			UserID: u.ID, Mood: 2, AnxietyLevel: 9,
			Triggers: []string{"work deadline"},
			Helpers:  []string{"walk", "tea"},
		}
		require.NoError(t, s.CreateMoodLog(ctx, log))

		logs, err := s.ListMoodLogs(ctx, u.ID, 50)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, log.ID, logs[0].ID, "newest first")
		assert.Equal(t, []string{"work deadline"}, logs[0].Triggers)
		assert.Equal(t, []string{"walk", "tea"}, logs[0].Helpers)
	})
}

func testInterventions(t *testing.T, open Factory) {
	s := open(t)
	ctx := context.Background()
	u := registerUser(t, s, "iv@example.com", "I", "uid-iv")

	t.Run("create starts with zero streak and active flag", func(t *testing.T) {
		iv := &model.Intervention{UserID: u.ID, Name: "Morning stretches", Frequency: "daily"}
		require.NoError(t, s.CreateIntervention(ctx, iv))
		assert.NotZero(t, iv.ID)
		assert.Zero(t, iv.CurrentStreak)
		assert.True(t, iv.IsActive)
		assert.False(t, iv.CreatedAt.IsZero())
	})

	t.Run("list returns active interventions newest first", func(t *testing.T) {
		second := &model.Intervention{UserID: u.ID, Name: "Meditation", Frequency: "twice a week"}
		require.NoError(t, s.CreateIntervention(ctx, second))

		ivs, err := s.ListInterventions(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, ivs, 2)
		assert.Equal(t, second.ID, ivs[0].ID, "newest first")
		for _, iv := range ivs {
			assert.True(t, iv.IsActive)
		}
	})
}

func testInterventionLogs(t *testing.T, open Factory) {
	s := open(t)
	ctx := context.Background()
	u := registerUser(t, s, "ivlog@example.com", "L", "uid-ivlog")

	iv := &model.Intervention{UserID: u.ID, Name: "Heat pack", Frequency: "as needed"}
	require.NoError(t, s.CreateIntervention(ctx, iv))

	t.Run("first log today sets streak to 1", func(t *testing.T) {
		log := &model.InterventionLog{UserID: u.ID, InterventionID: iv.ID, PainLevel: 5}
		require.NoError(t, s.CreateInterventionLog(ctx, log))
		assert.NotZero(t, log.ID)
		assert.False(t, log.Date.IsZero())

		ivs, err := s.ListInterventions(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, ivs, 1)
		assert.Equal(t, 1, ivs[0].CurrentStreak)
	})

	t.Run("second log the same day keeps streak at 1", func(t *testing.T) {
		log := &model.InterventionLog{UserID: u.ID, InterventionID: iv.ID, PainLevel: 4, Notes: "after lunch"}
		require.NoError(t, s.CreateInterventionLog(ctx, log))

		ivs, err := s.ListInterventions(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, ivs, 1)
		assert.Equal(t, 1, ivs[0].CurrentStreak, "same-day logs count once")
	})

	t.Run("list is newest first and scoped to the intervention", func(t *testing.T) {
		other := &model.Intervention{UserID: u.ID, Name: "Ice", Frequency: "daily"}
		require.NoError(t, s.CreateIntervention(ctx, other))
		require.NoError(t, s.CreateInterventionLog(ctx,
			&model.InterventionLog{UserID: u.ID, InterventionID: other.ID, PainLevel: 2}))

		logs, err := s.ListInterventionLogs(ctx, u.ID, iv.ID, 50)
		require.NoError(t, err)
		assert.Len(t, logs, 2, "only the requested intervention's logs")
		for _, l := range logs {
			assert.Equal(t, iv.ID, l.InterventionID)
		}
	})
}

func testChatMessages(t *testing.T, open Factory) {
	s := open(t)
	ctx := context.Background()
	u := registerUser(t, s, "chat@example.com", "C", "uid-chat")

	var ids []int64
	for i := 0; i < 6; i++ {
		msg := &model.ChatMessage{
			UserID:     u.ID,
			Content:    fmt.Sprintf("message %d", i),
			IsFromUser: i%2 == 0,
		}
		require.NoError(t, s.CreateChatMessage(ctx, msg))
		ids = append(ids, msg.ID)
	}

	t.Run("full history is ascending", func(t *testing.T) {
		msgs, err := s.ListChatMessages(ctx, u.ID, 50)
		require.NoError(t, err)
		require.Len(t, msgs, 6)
		for i, m := range msgs {
			assert.Equal(t, ids[i], m.ID, "chronological order")
		}
	})

	t.Run("limit keeps the most recent window, still ascending", func(t *testing.T) {
		msgs, err := s.ListChatMessages(ctx, u.ID, 3)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		// The LAST three messages, not the first three.
		assert.Equal(t, ids[3], msgs[0].ID)
		assert.Equal(t, ids[4], msgs[1].ID)
		assert.Equal(t, ids[5], msgs[2].ID)
	})
}

func testUserScoping(t *testing.T, open Factory) {
	s := open(t)
	ctx := context.Background()
	alice := registerUser(t, s, "alice@example.com", "Alice", "uid-alice")
	bob := registerUser(t, s, "bob@example.com", "Bob", "uid-bob")

	require.NoError(t, s.CreatePainLog(ctx, &model.PainLog{UserID: alice.ID, PainLevel: 8}))
	require.NoError(t, s.CreateMoodLog(ctx, &model.MoodLog{UserID: alice.ID, Mood: 2, AnxietyLevel: 6}))
	require.NoError(t, s.CreateChatMessage(ctx, &model.ChatMessage{UserID: alice.ID, Content: "hi", IsFromUser: true}))
	iv := &model.Intervention{UserID: alice.ID, Name: "Yoga", Frequency: "daily"}
	require.NoError(t, s.CreateIntervention(ctx, iv))

	pain, err := s.ListPainLogs(ctx, bob.ID, 50)
	require.NoError(t, err)
	assert.Empty(t, pain, "another user's pain logs are invisible")

	mood, err := s.ListMoodLogs(ctx, bob.ID, 50)
	require.NoError(t, err)
	assert.Empty(t, mood)

	msgs, err := s.ListChatMessages(ctx, bob.ID, 50)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	ivs, err := s.ListInterventions(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, ivs)

	logs, err := s.ListInterventionLogs(ctx, bob.ID, iv.ID, 50)
	require.NoError(t, err)
	assert.Empty(t, logs, "logs are scoped by owner even with a known intervention id")
}
