package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultModel is used when the config names none.
	DefaultModel = "gpt-4o-mini"

	requestTimeout = 8 * time.Second
)

const systemPrompt = `You extract merchant/payee names from bank transaction text.
For each transaction you receive, answer with the payee a human would write in
their ledger, in title case, without store numbers, state codes, or processor
prefixes. Respond with ONLY a JSON array, one object per transaction, in input
order: [{"payee": "...", "confidence": 0.0, "explanation": "..."}]. Use an
empty payee and confidence 0 when no payee is identifiable.`

// OpenAIResolver asks a chat model to name payees the regex cascade missed.
type OpenAIResolver struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIResolver creates a resolver using the given API key and model.
func NewOpenAIResolver(apiKey, model string) *OpenAIResolver {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIResolver{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
	}
}

func (r *OpenAIResolver) ResolvePayees(ctx context.Context, reqs []Request) ([]Resolution, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	prompt, err := buildPrompt(reqs)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("payee fallback request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("payee fallback: empty response")
	}
	return parseResolutions(resp.Choices[0].Message.Content, len(reqs))
}

func buildPrompt(reqs []Request) (string, error) {
	type wire struct {
		Action      string `json:"action"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
	}
	items := make([]wire, len(reqs))
	for i, req := range reqs {
		items[i] = wire{
			Action:      req.Action,
			Description: req.Description,
			Amount:      req.Amount.StringFixed(2),
		}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("payee fallback prompt: %w", err)
	}
	return string(data), nil
}

// parseResolutions decodes the model's JSON array, tolerating code fences,
// and clamps confidences. The count must match the request count.
func parseResolutions(content string, want int) ([]Resolution, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out []Resolution
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("payee fallback response: %w", err)
	}
	if len(out) != want {
		return nil, fmt.Errorf("payee fallback: got %d answers for %d requests", len(out), want)
	}
	for i := range out {
		out[i].Payee = strings.TrimSpace(out[i].Payee)
		out[i].Confidence = clamp01(out[i].Confidence)
	}
	return out, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
