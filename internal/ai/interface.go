// interface.go - Provider interfaces for the two model boundaries

package ai

import (
	"context"

	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/common"
)

// VisionProvider extracts structured facts from one document page image.
// The response is free-form model text; parsing happens downstream.
type VisionProvider interface {
	// ExtractPage sends a single page to the vision model with the prompt for
	// the declared document type and returns the raw response text.
	ExtractPage(ctx context.Context, pageData []byte, mimeType string, docType analysis.DocumentType, reqCtx *common.RequestContext) (string, *common.TokenUsage, error)

	// GetProviderName returns the provider identifier (e.g., "gemini")
	GetProviderName() string
}

// ReasonerProvider produces the credit recommendation text from combined
// records. It extends analysis.Reasoner with a provider identifier so the
// handler can report provenance.
type ReasonerProvider interface {
	analysis.Reasoner
	GetProviderName() string
}
