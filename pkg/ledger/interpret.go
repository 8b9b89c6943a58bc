package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultInterpretModel   = "gpt-4o-mini"
	interpretRequestTimeout = 60 * time.Second
)

const interpretSystemPrompt = `You translate one natural-language portfolio command into a single JSON object and nothing else. No Markdown fences, no commentary.

Fields:
- kind: one of "buy", "sell_partial", "sell_all", "add_cash", "remove", "update_position", "set_price", "update_cash" (required)
- symbol: asset ticker, upper-case
- amount, sell_amount, sell_percent, price_per_unit, sell_price, total_cost, price, cost_basis: numbers
- account_id, asset_type, currency, name, date (YYYY-MM-DD), notes: strings
- confidence: number in [0,1] reflecting how certain the mapping is (required)
- summary: one short sentence restating the command for user confirmation (required)

Rules:
- Emit only fields the command actually implies; never invent amounts or prices.
- "sell half", "sell 30%" and similar map to sell_percent on kind sell_partial.
- "sell everything", "close the position" map to sell_all.
- Deposits, top-ups and withdrawals map to add_cash (withdrawals as negative intent must instead lower confidence and explain in summary).
- If the command is not a portfolio command, output {"kind":"","confidence":0,"summary":"<why>"}.`

// InterpretRequest defines inputs for translating a natural-language
// command into a pending action.
type InterpretRequest struct {
	Text    string
	BaseURL string
	APIKey  string
	Model   string
}

// Function variable for testing/mocking.
var interpretChatFn = interpretChatImpl

// InterpretCommand asks the external interpretation service to translate a
// natural-language command into a RawAction. The result is a pending action
// for user confirmation; it is validated but not executed here.
func (c *Core) InterpretCommand(ctx context.Context, req InterpretRequest) (*RawAction, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, newValidationError("invalid interpret request",
			FieldError{Field: "text", Message: "required"})
	}
	if req.APIKey == "" {
		return nil, newValidationError("invalid interpret request",
			FieldError{Field: "api_key", Message: "required"})
	}
	if req.Model == "" {
		req.Model = defaultInterpretModel
	}

	ctx, cancel := context.WithTimeout(ctx, interpretRequestTimeout)
	defer cancel()

	content, err := interpretChatFn(ctx, req)
	if err != nil {
		return nil, WrapError(ErrCodeInternal, "interpretation service", err)
	}

	var raw RawAction
	if err := json.Unmarshal([]byte(cleanupModelJSON(content)), &raw); err != nil {
		return nil, WrapError(ErrCodeInternal, "interpretation returned malformed JSON", err)
	}
	if raw.Kind == "" {
		message := raw.Summary
		if message == "" {
			message = "command not understood"
		}
		return nil, NewError(ErrCodeValidation, message)
	}

	// Surface field-level problems now so the caller can show them next to
	// the pending action instead of failing at execution time.
	if _, err := ParseAction(raw); err != nil {
		return &raw, err
	}
	return &raw, nil
}

func interpretChatImpl(ctx context.Context, req InterpretRequest) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(req.APIKey)}
	if req.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(req.BaseURL))
	}
	client := openai.NewClient(opts...)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(interpretSystemPrompt),
			openai.UserMessage(req.Text),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

// cleanupModelJSON strips Markdown fences and surrounding prose that models
// sometimes wrap around JSON output.
func cleanupModelJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) >= 2 {
			lines = lines[1:]
			if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
				lines = lines[:len(lines)-1]
			}
			trimmed = strings.Join(lines, "\n")
		}
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		trimmed = trimmed[start : end+1]
	}
	return strings.TrimSpace(trimmed)
}
