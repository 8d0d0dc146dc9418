// factory.go - Provider factories wired from configuration

package ai

import (
	"fmt"
	"log"

	"github.com/bosocmputer/credit_analyzer_gemini/configs"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/common"
)

// CreateVisionProvider creates the vision extraction provider. Extraction
// always runs on Gemini; the provider indirection exists for the handlers
// and tests.
func CreateVisionProvider() VisionProvider {
	return NewGeminiVisionProvider(configs.GEMINI_API_KEY, visionModelFromConfig())
}

// CreateReasoner creates the credit reasoner for one request based on
// configuration. The request context receives the call's token costs.
func CreateReasoner(reqCtx *common.RequestContext) (ReasonerProvider, error) {
	provider := configs.REASONER_PROVIDER

	switch provider {
	case "gemini":
		log.Printf("🔵 Creating Gemini reasoner")
		return NewGeminiReasoner(configs.GEMINI_API_KEY, configs.REASONING_MODEL, reqCtx), nil

	case "openai":
		if configs.OPENAI_API_KEY == "" {
			return nil, fmt.Errorf("REASONER_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		log.Printf("🔷 Creating OpenAI reasoner")
		return NewOpenAIReasoner(configs.OPENAI_API_KEY, configs.REASONING_MODEL, reqCtx), nil

	default:
		return nil, fmt.Errorf("unsupported reasoner provider: %s (supported: gemini, openai)", provider)
	}
}
