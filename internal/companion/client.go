// Package companion wraps the external text-generation service behind a
// small interface.
//
// The companion is a black box to the rest of the system: the service layer
// assembles a deterministic context from the entity store, hands it over as
// chat messages, and gets free text back. One blocking request per call — no
// retries, no streaming, no function calling.
package companion

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string
	Content string
}

// Request carries the messages plus per-call sampling knobs. Different
// endpoints use different budgets (chat replies are longer and warmer than
// summaries), so these ride along with each request instead of living on
// the client.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
