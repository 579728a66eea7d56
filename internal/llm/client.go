package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is a single-turn completion backend. Implementations issue exactly
// one outbound request per Generate call; retry policy belongs to the caller.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
