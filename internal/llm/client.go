package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"rickmorty-api/internal/observability"
)

// Client sends chat completion requests to an OpenAI-compatible API.
type Client struct {
	BaseURL string
	Model   string
	client  openai.Client
}

// NewClient creates a new LLM client. Requests are not retried.
func NewClient(baseURL, apiKey, model string, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Client{
		BaseURL: baseURL,
		Model:   model,
		client:  openai.NewClient(append(base, opts...)...),
	}
}

// ChatWithMessages sends a chat completion request with the given messages
// and returns the content of the first choice unchanged.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	model := c.Model
	if params.Model != "" {
		model = params.Model
	}

	ctx, span := observability.StartLLMSpan(ctx, "chat", model)
	defer span.End()

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	}
	if params.Temperature > 0 {
		req.Temperature = openai.Float(float64(params.Temperature))
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		observability.RecordError(span, err)
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	observability.RecordTokenUsage(span, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	if len(completion.Choices) == 0 {
		err := fmt.Errorf("no choices returned")
		observability.RecordError(span, err)
		return "", err
	}

	return completion.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}
