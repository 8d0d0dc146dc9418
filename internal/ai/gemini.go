// gemini.go - Gemini providers for vision extraction and credit reasoning

package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bosocmputer/credit_analyzer_gemini/configs"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/common"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/ratelimit"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiVisionProvider implements VisionProvider using the Gemini API
type GeminiVisionProvider struct {
	apiKey    string
	modelName string
}

// NewGeminiVisionProvider creates a Gemini vision provider
func NewGeminiVisionProvider(apiKey, modelName string) *GeminiVisionProvider {
	return &GeminiVisionProvider{apiKey: apiKey, modelName: modelName}
}

// GetProviderName returns "gemini"
func (g *GeminiVisionProvider) GetProviderName() string {
	return "gemini"
}

// ExtractPage sends one page image to Gemini with the prompt for the declared
// document type and returns the raw response text.
func (g *GeminiVisionProvider) ExtractPage(ctx context.Context, pageData []byte, mimeType string, docType analysis.DocumentType, reqCtx *common.RequestContext) (string, *common.TokenUsage, error) {
	// Log page size for debugging
	reqCtx.LogInfo("📄 Page size: %d bytes (%.2f MB), type: %s", len(pageData), float64(len(pageData))/(1024*1024), mimeType)

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.modelName)
	// Low temperature keeps numeric extraction stable across runs
	model.SetTemperature(0.1)

	prompt := GetExtractionPrompt(docType)

	// Apply rate limiting before EVERY API call (prevent hitting RPM limit)
	ratelimit.WaitForRateLimit()

	resp, err := callGeminiWithRetry(ctx, model,
		[]genai.Part{
			genai.Text(prompt),
			genai.Blob{MIMEType: mimeType, Data: pageData},
		},
		reqCtx,
		DefaultRetryConfig,
	)
	if err != nil {
		return "", nil, fmt.Errorf("vision extraction failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", nil, err
	}

	var tokenUsage *common.TokenUsage
	if resp.UsageMetadata != nil {
		tokens := common.CalculateVisionTokenCost(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)
		tokenUsage = &tokens
	}

	return text, tokenUsage, nil
}

// GeminiReasoner implements the reasoner boundary using the Gemini API.
// Constructed per request so token costs land on the right RequestContext.
type GeminiReasoner struct {
	apiKey    string
	modelName string
	reqCtx    *common.RequestContext
}

// NewGeminiReasoner creates a Gemini credit reasoner bound to one request
func NewGeminiReasoner(apiKey, modelName string, reqCtx *common.RequestContext) *GeminiReasoner {
	return &GeminiReasoner{apiKey: apiKey, modelName: modelName, reqCtx: reqCtx}
}

// GetProviderName returns "gemini"
func (g *GeminiReasoner) GetProviderName() string {
	return "gemini"
}

// Recommend asks Gemini for a credit recommendation over the combined records
func (g *GeminiReasoner) Recommend(ctx context.Context, records []analysis.CombinedDocumentRecord, summary analysis.DocumentSummary) (string, error) {
	recordsJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize records: %w", err)
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize summary: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	g.reqCtx.LogInfo("🤖 Reasoning model: %s", g.modelName)

	model := client.GenerativeModel(g.modelName)
	model.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(reasonerSystemPrompt)},
	}

	prompt := BuildReasonerPrompt(string(recordsJSON), string(summaryJSON))

	ratelimit.WaitForRateLimit()

	resp, err := callGeminiWithRetry(ctx, model,
		[]genai.Part{genai.Text(prompt)},
		g.reqCtx,
		DefaultRetryConfig,
	)
	if err != nil {
		return "", fmt.Errorf("reasoning call failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	if resp.UsageMetadata != nil {
		tokens := common.CalculateReasoningTokenCost(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)
		g.reqCtx.AddTokens(&tokens)
		g.reqCtx.LogInfo("🪙 Reasoning tokens: %d in + %d out | 💰 $%.4f",
			tokens.InputTokens, tokens.OutputTokens, tokens.CostUSD)
	}

	return text, nil
}

// responseText pulls the first text part out of a Gemini response
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok && string(text) != "" {
			return string(text), nil
		}
	}

	return "", fmt.Errorf("empty response from Gemini API (FinishReason: %v)", resp.Candidates[0].FinishReason)
}

var _ VisionProvider = (*GeminiVisionProvider)(nil)
var _ ReasonerProvider = (*GeminiReasoner)(nil)

// visionModelFromConfig is a convenience for callers that only have configs
func visionModelFromConfig() string {
	if configs.VISION_MODEL != "" {
		return configs.VISION_MODEL
	}
	return "gemini-2.5-flash"
}
