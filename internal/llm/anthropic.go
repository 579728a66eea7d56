package llm

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client sdk.Client
	model  string
}

func NewAnthropic(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: 1024,
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.System = append(params.System, sdk.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create anthropic message: %w", err)
	}
	if len(msg.Content) == 0 {
		return Response{}, fmt.Errorf("anthropic returned empty response")
	}

	out := Response{
		Content: msg.Content[0].Text,
		Model:   string(msg.Model),
	}
	out.PromptTokens = int(msg.Usage.InputTokens)
	out.CompletionTokens = int(msg.Usage.OutputTokens)
	out.TotalTokens = out.PromptTokens + out.CompletionTokens
	return out, nil
}
