package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `あなたは日本の法令の参照関係を検証する専門家です。` +
	`与えられた条文の抜粋と参照候補について、参照が実在するか判定し、` +
	`必ず次のJSONのみで回答してください: ` +
	`{"valid": bool, "confidence": 0.0-1.0, "corrected_target": {"Article": {"Base": int, "Branch": int}, "Paragraph": int, "Item": int} | null}`

// OpenAIClient reviews candidates through the OpenAI chat completion API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// OpenAIOption configures the client.
type OpenAIOption func(*OpenAIClient)

// WithModel overrides the default model.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout sets the hard per-request timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewOpenAIClient builds an oracle client. apiKey must be non-empty.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("oracle: api key not set")
	}
	c := &OpenAIClient{
		client:  openai.NewClient(apiKey),
		model:   openai.GPT4oMini,
		timeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Review sends one candidate and parses the structured verdict. Timeouts and
// malformed responses are returned as ErrTimeout/ErrProtocol so the pipeline
// can keep the pre-oracle confidence.
func (c *OpenAIClient) Review(ctx context.Context, req Request) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return Verdict{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return Verdict{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, fmt.Errorf("%w: no choices", ErrProtocol)
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &verdict); err != nil {
		slog.Warn("oracle returned unparseable verdict", "error", err)
		return Verdict{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		return Verdict{}, fmt.Errorf("%w: confidence %f out of range", ErrProtocol, verdict.Confidence)
	}
	return verdict, nil
}
