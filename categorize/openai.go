package categorize

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter satisfies Completer with the OpenAI (or Azure OpenAI) API.
// Temperature is pinned low so repeated runs over the same statement give
// the same answers.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

const (
	completionTemperature = 0.1
	completionMaxTokens   = 200
)

// Usage accumulates token counts across calls for the prom exporter.
// Completions may run concurrently, one per in-flight HTTP request.
var Usage struct {
	PromptTokens     atomic.Int64
	CompletionTokens atomic.Int64
	TotalTokens      atomic.Int64
}

func NewOpenAICompleter(client *openai.Client, model string) *OpenAICompleter {
	return &OpenAICompleter{client: client, model: model}
}

func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	// Instruct models use the legacy completion endpoint
	if o.model == openai.GPT3Dot5TurboInstruct {
		resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
			Model:       o.model,
			Prompt:      prompt,
			MaxTokens:   completionMaxTokens,
			Temperature: completionTemperature,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no completion choices returned")
		}
		accumulateUsage(resp.Usage)
		return resp.Choices[0].Text, nil
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) != 1 {
		return "", fmt.Errorf("unexpected number of choices %d", len(resp.Choices))
	}
	accumulateUsage(resp.Usage)
	return resp.Choices[0].Message.Content, nil
}

func accumulateUsage(u openai.Usage) {
	Usage.PromptTokens.Add(int64(u.PromptTokens))
	Usage.CompletionTokens.Add(int64(u.CompletionTokens))
	Usage.TotalTokens.Add(int64(u.TotalTokens))
}
