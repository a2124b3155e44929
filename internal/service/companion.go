package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"painpal/internal/apperror"
	"painpal/internal/companion"
	"painpal/internal/model"
	"painpal/internal/repository"
)

// Context windows and sampling knobs for the companion calls. Chat replies
// get a warmer temperature and a bigger budget than the summaries.
const (
	chatContextWindow = 5
	summaryWindow     = 7
	patternWindow     = 30

	chatMaxTokens      = 300
	chatTemperature    = 0.7
	summaryMaxTokens   = 200
	summaryTemperature = 0.5

	MaxMessageLength = 4000
)

// Hardcoded fallbacks, used when the model returns an empty completion.
// Transport failures are NOT papered over with these — they surface as
// server errors.
const (
	chatFallback    = "I'm here to help! Could you tell me more?"
	summaryFallback = "Keep up the great work tracking your wellness journey!"
	patternFallback = "No significant patterns detected yet."
)

// CompanionService drives the AI companion: chat, the daily summary and the
// pattern analysis. It owns assembling the user's recent data into the
// model's context; the companion.Client itself is a black box.
type CompanionService struct {
	store  repository.Store
	client companion.Client
	logger *slog.Logger
}

func NewCompanionService(store repository.Store, client companion.Client, logger *slog.Logger) *CompanionService {
	return &CompanionService{store: store, client: client, logger: logger}
}

// Context entry shapes sent to the model. Trimmed-down views of the
// entities: dates and the few numbers that matter, marshalled as JSON so
// the context is assembled deterministically from store reads.

type painContext struct {
	Level int       `json:"level"`
	Date  time.Time `json:"date"`
	Notes string    `json:"notes,omitempty"`
}

type moodContext struct {
	Mood    int       `json:"mood"`
	Anxiety int       `json:"anxiety"`
	Date    time.Time `json:"date"`
}

type interventionContext struct {
	Name      string `json:"name"`
	Frequency string `json:"frequency"`
	Streak    int    `json:"streak"`
}

// History returns the most recent window of the conversation in
// chronological order.
func (s *CompanionService) History(ctx context.Context, userID int64, limit int) ([]model.ChatMessage, error) {
	msgs, err := s.store.ListChatMessages(ctx, userID, clampLimit(limit))
	if err != nil {
		s.logger.Error("failed to list chat messages", slog.Int64("userId", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	return msgs, nil
}

// Chat stores the user's message, asks the companion for a reply grounded
// in the user's recent data, stores the reply and returns it.
//
// The user's message is saved before the model call on purpose: if the
// model is unreachable the user's side of the conversation is still kept.
func (s *CompanionService) Chat(ctx context.Context, user *model.User, content string) (*model.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "message content is required")
	}
	if len(content) > MaxMessageLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("message must be %d characters or less", MaxMessageLength))
	}

	userMsg := &model.ChatMessage{UserID: user.ID, Content: content, IsFromUser: true}
	if err := s.store.CreateChatMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("saving user message: %w", err)
	}

	systemPrompt, err := s.buildChatPrompt(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, companion.Request{
		Messages: []companion.Message{
			{Role: companion.RoleSystem, Content: systemPrompt},
			{Role: companion.RoleUser, Content: content},
		},
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		s.logger.Error("companion chat failed",
			slog.Int64("userId", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("generating companion reply: %w", err)
	}

	reply := resp.Content
	if reply == "" {
		reply = chatFallback
	}

	aiMsg := &model.ChatMessage{UserID: user.ID, Content: reply, IsFromUser: false}
	if err := s.store.CreateChatMessage(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("saving companion message: %w", err)
	}

	s.logger.Info("companion replied",
		slog.Int64("userId", user.ID),
		slog.Int("totalTokens", resp.TotalTokens),
	)
	return aiMsg, nil
}

// buildChatPrompt assembles the companion's system prompt from the user's
// recent data.
func (s *CompanionService) buildChatPrompt(ctx context.Context, userID int64) (string, error) {
	painLogs, err := s.store.ListPainLogs(ctx, userID, chatContextWindow)
	if err != nil {
		return "", fmt.Errorf("fetching pain context: %w", err)
	}
	moodLogs, err := s.store.ListMoodLogs(ctx, userID, chatContextWindow)
	if err != nil {
		return "", fmt.Errorf("fetching mood context: %w", err)
	}
	interventions, err := s.store.ListInterventions(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetching intervention context: %w", err)
	}

	recentPain := make([]painContext, len(painLogs))
	for i, l := range painLogs {
		recentPain[i] = painContext{Level: l.PainLevel, Date: l.Date, Notes: l.Notes}
	}
	recentMood := make([]moodContext, len(moodLogs))
	for i, l := range moodLogs {
		recentMood[i] = moodContext{Mood: l.Mood, Anxiety: l.AnxietyLevel, Date: l.Date}
	}
	active := make([]interventionContext, len(interventions))
	for i, iv := range interventions {
		active[i] = interventionContext{Name: iv.Name, Frequency: iv.Frequency, Streak: iv.CurrentStreak}
	}

	return fmt.Sprintf(`You are Pal, a compassionate AI wellness companion for the PainPal app. You help users track chronic pain and mood.
Be empathetic, supportive, and provide actionable advice. Keep responses concise but caring.

User context:
Recent pain levels: %s
Recent mood data: %s
Active interventions: %s`,
		mustJSON(recentPain), mustJSON(recentMood), mustJSON(active)), nil
}

// DailySummary asks the companion for a short wellness summary over the
// past week of data.
func (s *CompanionService) DailySummary(ctx context.Context, user *model.User) (string, error) {
	painLogs, err := s.store.ListPainLogs(ctx, user.ID, summaryWindow)
	if err != nil {
		return "", fmt.Errorf("fetching pain logs for summary: %w", err)
	}
	moodLogs, err := s.store.ListMoodLogs(ctx, user.ID, summaryWindow)
	if err != nil {
		return "", fmt.Errorf("fetching mood logs for summary: %w", err)
	}
	interventions, err := s.store.ListInterventions(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("fetching interventions for summary: %w", err)
	}

	prompt := fmt.Sprintf(`Generate a brief daily wellness summary for the user based on their recent data.
Focus on trends, insights, and gentle recommendations. Keep it encouraging and under 150 words.

Pain data: %s
Mood data: %s
Interventions: %s`,
		mustJSON(painLogs), mustJSON(moodLogs), mustJSON(interventions))

	resp, err := s.client.Generate(ctx, companion.Request{
		Messages:    []companion.Message{{Role: companion.RoleUser, Content: prompt}},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		s.logger.Error("daily summary failed",
			slog.Int64("userId", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("generating daily summary: %w", err)
	}

	if resp.Content == "" {
		return summaryFallback, nil
	}
	return resp.Content, nil
}

// Patterns asks the companion to look for correlations between
// interventions, pain and mood over the past month.
func (s *CompanionService) Patterns(ctx context.Context, user *model.User) (string, error) {
	painLogs, err := s.store.ListPainLogs(ctx, user.ID, patternWindow)
	if err != nil {
		return "", fmt.Errorf("fetching pain logs for patterns: %w", err)
	}
	moodLogs, err := s.store.ListMoodLogs(ctx, user.ID, patternWindow)
	if err != nil {
		return "", fmt.Errorf("fetching mood logs for patterns: %w", err)
	}
	interventions, err := s.store.ListInterventions(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("fetching interventions for patterns: %w", err)
	}

	type painPoint struct {
		Level int       `json:"level"`
		Date  time.Time `json:"date"`
		Tags  []string  `json:"tags"`
	}
	type interventionHistory struct {
		Name string `json:"name"`
		Logs []struct {
			Pain int       `json:"pain"`
			Date time.Time `json:"date"`
		} `json:"logs"`
	}

	pain := make([]painPoint, len(painLogs))
	for i, l := range painLogs {
		pain[i] = painPoint{Level: l.PainLevel, Date: l.Date, Tags: l.Tags}
	}
	mood := make([]moodContext, len(moodLogs))
	for i, l := range moodLogs {
		mood[i] = moodContext{Mood: l.Mood, Anxiety: l.AnxietyLevel, Date: l.Date}
	}

	histories := make([]interventionHistory, len(interventions))
	for i, iv := range interventions {
		logs, err := s.store.ListInterventionLogs(ctx, user.ID, iv.ID, patternWindow)
		if err != nil {
			return "", fmt.Errorf("fetching logs for intervention %d: %w", iv.ID, err)
		}
		h := interventionHistory{Name: iv.Name}
		for _, l := range logs {
			h.Logs = append(h.Logs, struct {
				Pain int       `json:"pain"`
				Date time.Time `json:"date"`
			}{Pain: l.PainLevel, Date: l.Date})
		}
		histories[i] = h
	}

	prompt := fmt.Sprintf(`Analyze the user's recent wellness data to find correlations between interventions, pain levels and mood. Provide a few short insights if any patterns stand out.

Pain logs: %s
Mood logs: %s
Intervention logs: %s`,
		mustJSON(pain), mustJSON(mood), mustJSON(histories))

	resp, err := s.client.Generate(ctx, companion.Request{
		Messages:    []companion.Message{{Role: companion.RoleUser, Content: prompt}},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		s.logger.Error("pattern analysis failed",
			slog.Int64("userId", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("generating pattern insights: %w", err)
	}

	if resp.Content == "" {
		return patternFallback, nil
	}
	return resp.Content, nil
}

// mustJSON marshals context data for prompt embedding. The inputs are plain
// structs of numbers, strings and times — marshalling them cannot fail.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
