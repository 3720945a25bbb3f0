package extract

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flowlens/flowlens/pkg/schema"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultModels is the fallback list offered when model discovery against the
// upstream endpoint fails. Availability still depends on the account.
var DefaultModels = []string{
	"openrouter/cypher-alpha:free",
	"mistralai/mistral-small-3.2-24b-instruct:free",
	"deepseek/deepseek-r1:free",
}

// ChatClient is the outbound boundary to the hosted model API.
type ChatClient interface {
	// Complete sends one chat completion request and returns the raw text of
	// the first choice.
	Complete(ctx context.Context, model, system, user string, temperature float32) (string, error)
	// ListModels returns the model IDs the upstream endpoint advertises.
	ListModels(ctx context.Context) ([]string, error)
}

// OpenRouterClient implements ChatClient against an OpenAI-compatible endpoint.
type OpenRouterClient struct {
	client  *openai.Client
	timeout time.Duration
}

// NewOpenRouterClient builds a client for the given API key and base URL.
// An empty baseURL selects the OpenRouter endpoint.
func NewOpenRouterClient(apiKey, baseURL string, timeout time.Duration) *OpenRouterClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL

	return &OpenRouterClient{
		client:  openai.NewClientWithConfig(cfg),
		timeout: timeout,
	}
}

func (c *OpenRouterClient) Complete(ctx context.Context, model, system, user string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", schema.NewError(schema.ErrCodeUpstream, "chat completion failed").WithCause(err)
	}
	if len(resp.Choices) == 0 {
		return "", schema.NewError(schema.ErrCodeUpstream, "no choices returned from model API")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenRouterClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeUpstream, "model discovery failed").WithCause(err)
	}

	ids := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}
