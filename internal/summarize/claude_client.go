package summarize

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// claudeMaxTokens matches the original's hard-coded response budget.
const claudeMaxTokens = 2048

// claudeClient serves Anthropic's Messages API, which structurally differs
// from the OpenAI-compatible family: a top-level system field instead of a
// system message, and x-api-key/anthropic-version headers instead of a
// bearer token.
type claudeClient struct {
	client *anthropic.Client
	model  string
}

func newClaudeClient(apiKey, model string) *claudeClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &claudeClient{client: &client, model: model}
}

func (c *claudeClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: claudeMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send request to LLM: %w", err)
	}

	for _, block := range resp.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no content in LLM response")
}
