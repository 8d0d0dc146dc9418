// openai.go - OpenAI chat-completion reasoner (alternative to Gemini)

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/common"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/ratelimit"
	openai "github.com/sashabaranov/go-openai"
)

const openaiMaxTokens = 2048

// OpenAIReasoner implements the reasoner boundary via OpenAI chat completions
type OpenAIReasoner struct {
	client *openai.Client
	model  string
	reqCtx *common.RequestContext
}

// NewOpenAIReasoner creates an OpenAI credit reasoner bound to one request
func NewOpenAIReasoner(apiKey, model string, reqCtx *common.RequestContext) *OpenAIReasoner {
	return &OpenAIReasoner{
		client: openai.NewClient(apiKey),
		model:  model,
		reqCtx: reqCtx,
	}
}

// GetProviderName returns "openai"
func (o *OpenAIReasoner) GetProviderName() string {
	return "openai"
}

// Recommend asks OpenAI for a credit recommendation over the combined records
func (o *OpenAIReasoner) Recommend(ctx context.Context, records []analysis.CombinedDocumentRecord, summary analysis.DocumentSummary) (string, error) {
	recordsJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize records: %w", err)
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize summary: %w", err)
	}

	o.reqCtx.LogInfo("🤖 Reasoning model: %s (openai)", o.model)

	req := openai.ChatCompletionRequest{
		Model: o.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reasonerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildReasonerPrompt(string(recordsJSON), string(summaryJSON))},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(o.model, "o1") || strings.HasPrefix(o.model, "o3") || strings.HasPrefix(o.model, "o4") || strings.HasPrefix(o.model, "gpt-5") {
		req.MaxCompletionTokens = openaiMaxTokens
	} else {
		req.MaxTokens = openaiMaxTokens
	}

	ratelimit.WaitForRateLimit()

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	tokens := common.CalculateReasoningTokenCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	o.reqCtx.AddTokens(&tokens)
	o.reqCtx.LogInfo("🪙 Reasoning tokens: %d in + %d out | 💰 $%.4f",
		tokens.InputTokens, tokens.OutputTokens, tokens.CostUSD)

	return resp.Choices[0].Message.Content, nil
}

var _ ReasonerProvider = (*OpenAIReasoner)(nil)
