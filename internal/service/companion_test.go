package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"painpal/internal/apperror"
	"painpal/internal/companion"
	"painpal/internal/model"
	"painpal/internal/repository/memory"
)

// stubClient returns a canned reply and records the last request it saw.
type stubClient struct {
	reply string
	err   error
	last  companion.Request
}

func (c *stubClient) Generate(_ context.Context, req companion.Request) (companion.Response, error) {
	c.last = req
	if c.err != nil {
		return companion.Response{}, c.err
	}
	return companion.Response{Content: c.reply, TotalTokens: 42}, nil
}

func newCompanion(t *testing.T, client companion.Client) (*CompanionService, *memory.Store, *model.User) {
	t.Helper()
	store := memory.New()
	u := &model.User{Email: "ada@example.com", Name: "Ada", ExternalUID: "uid-ada"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return NewCompanionService(store, client, discardLogger()), store, u
}

func TestChat_SavesBothSides(t *testing.T) {
	client := &stubClient{reply: "That sounds tough. Have you tried a short walk?"}
	svc, store, u := newCompanion(t, client)
	ctx := context.Background()

	aiMsg, err := svc.Chat(ctx, u, "My back hurts again today.")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if aiMsg.IsFromUser {
		t.Error("Chat() returned message flagged as from the user")
	}
	if aiMsg.Content != client.reply {
		t.Errorf("Chat() content = %q, want %q", aiMsg.Content, client.reply)
	}

	msgs, err := store.ListChatMessages(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("stored %d messages, want 2", len(msgs))
	}
	if !msgs[0].IsFromUser || msgs[1].IsFromUser {
		t.Errorf("message order wrong: %+v", msgs)
	}
}

func TestChat_PromptCarriesUserContext(t *testing.T) {
	client := &stubClient{reply: "ok"}
	svc, store, u := newCompanion(t, client)
	ctx := context.Background()

	pain := &model.PainLog{UserID: u.ID, PainLevel: 8, Notes: "lower back"}
	if err := store.CreatePainLog(ctx, pain); err != nil {
		t.Fatalf("CreatePainLog: %v", err)
	}
	iv := &model.Intervention{UserID: u.ID, Name: "Stretching", Frequency: "daily"}
	if err := store.CreateIntervention(ctx, iv); err != nil {
		t.Fatalf("CreateIntervention: %v", err)
	}

	if _, err := svc.Chat(ctx, u, "hello"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if len(client.last.Messages) != 2 {
		t.Fatalf("request had %d messages, want system+user", len(client.last.Messages))
	}
	system := client.last.Messages[0]
	if system.Role != companion.RoleSystem {
		t.Errorf("first message role = %q, want system", system.Role)
	}
	for _, want := range []string{"lower back", "Stretching", "\"level\":8"} {
		if !strings.Contains(system.Content, want) {
			t.Errorf("system prompt missing %q:\n%s", want, system.Content)
		}
	}
	if client.last.MaxTokens != chatMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", client.last.MaxTokens, chatMaxTokens)
	}
}

func TestChat_EmptyCompletionUsesFallback(t *testing.T) {
	svc, _, u := newCompanion(t, &stubClient{reply: ""})

	aiMsg, err := svc.Chat(context.Background(), u, "hello?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if aiMsg.Content != chatFallback {
		t.Errorf("Chat() content = %q, want fallback", aiMsg.Content)
	}
}

func TestChat_ModelErrorKeepsUserMessage(t *testing.T) {
	svc, store, u := newCompanion(t, &stubClient{err: errors.New("upstream down")})
	ctx := context.Background()

	if _, err := svc.Chat(ctx, u, "are you there?"); err == nil {
		t.Fatal("Chat() should surface the model error")
	}

	// The user's message is persisted before the model call.
	msgs, err := store.ListChatMessages(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("ListChatMessages: %v", err)
	}
	if len(msgs) != 1 || !msgs[0].IsFromUser {
		t.Errorf("stored messages = %+v, want only the user's message", msgs)
	}
}

func TestChat_Validation(t *testing.T) {
	svc, _, u := newCompanion(t, &stubClient{reply: "ok"})
	ctx := context.Background()

	if _, err := svc.Chat(ctx, u, "   "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Chat(blank) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Chat(ctx, u, strings.Repeat("x", MaxMessageLength+1)); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Chat(too long) error = %v, want ErrValidation", err)
	}
}

func TestDailySummary(t *testing.T) {
	client := &stubClient{reply: "A calm week overall."}
	svc, _, u := newCompanion(t, client)

	got, err := svc.DailySummary(context.Background(), u)
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}
	if got != client.reply {
		t.Errorf("DailySummary() = %q", got)
	}
	if client.last.Temperature != summaryTemperature {
		t.Errorf("Temperature = %v, want %v", client.last.Temperature, summaryTemperature)
	}
}

func TestDailySummary_Fallback(t *testing.T) {
	svc, _, u := newCompanion(t, &stubClient{reply: ""})

	got, err := svc.DailySummary(context.Background(), u)
	if err != nil {
		t.Fatalf("DailySummary() error = %v", err)
	}
	if got != summaryFallback {
		t.Errorf("DailySummary() = %q, want fallback", got)
	}
}

func TestPatterns_Fallback(t *testing.T) {
	svc, _, u := newCompanion(t, &stubClient{reply: ""})

	got, err := svc.Patterns(context.Background(), u)
	if err != nil {
		t.Fatalf("Patterns() error = %v", err)
	}
	if got != patternFallback {
		t.Errorf("Patterns() = %q, want fallback", got)
	}
}

func TestPatterns_IncludesInterventionHistory(t *testing.T) {
	client := &stubClient{reply: "Stretching days track lower pain."}
	svc, store, u := newCompanion(t, client)
	ctx := context.Background()

	iv := &model.Intervention{UserID: u.ID, Name: "Stretching", Frequency: "daily"}
	if err := store.CreateIntervention(ctx, iv); err != nil {
		t.Fatalf("CreateIntervention: %v", err)
	}
	log := &model.InterventionLog{UserID: u.ID, InterventionID: iv.ID, PainLevel: 3}
	if err := store.CreateInterventionLog(ctx, log); err != nil {
		t.Fatalf("CreateInterventionLog: %v", err)
	}

	if _, err := svc.Patterns(ctx, u); err != nil {
		t.Fatalf("Patterns() error = %v", err)
	}
	prompt := client.last.Messages[0].Content
	for _, want := range []string{"Stretching", "\"pain\":3"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("pattern prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestHistory_ReturnsAscendingWindow(t *testing.T) {
	svc, store, u := newCompanion(t, &stubClient{reply: "ok"})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		m := &model.ChatMessage{UserID: u.ID, Content: strings.Repeat("m", i+1), IsFromUser: i%2 == 0}
		if err := store.CreateChatMessage(ctx, m); err != nil {
			t.Fatalf("CreateChatMessage: %v", err)
		}
	}

	msgs, err := svc.History(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("History() returned %d messages, want 2", len(msgs))
	}
	// The window keeps the LAST two, still in chronological order.
	if msgs[0].Content != "mmm" || msgs[1].Content != "mmmm" {
		t.Errorf("History() window = %q, %q", msgs[0].Content, msgs[1].Content)
	}
}
