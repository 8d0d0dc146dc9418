// orchestrator.go - Sequences reasoning, sanitization and fallback

package analysis

import (
	"context"
	"time"

	"github.com/bosocmputer/credit_analyzer_gemini/internal/recovery"
)

// Reasoner is the external model boundary that produces an unsanitized credit
// recommendation as free-form text. Implemented by internal/ai providers and
// by test doubles.
type Reasoner interface {
	Recommend(ctx context.Context, records []CombinedDocumentRecord, summary DocumentSummary) (string, error)
}

// Config carries the process-wide model settings. Read-only after startup.
type Config struct {
	VisionModel    string
	ReasoningModel string
	Timeout        time.Duration // reasoning call budget; 0 means no deadline
}

// Analyzer runs the analysis pipeline for one request: summarize, reason,
// sanitize, and substitute the rule-based fallback on any reasoner failure.
type Analyzer struct {
	cfg      Config
	reasoner Reasoner
}

// NewAnalyzer builds an Analyzer. A nil reasoner is valid and routes every
// request through the fallback scorer.
func NewAnalyzer(cfg Config, reasoner Reasoner) *Analyzer {
	return &Analyzer{cfg: cfg, reasoner: reasoner}
}

// Analyze produces the final result envelope. Reasoner failures are absorbed
// here: the caller always receives a valid AnalysisResult.
func (a *Analyzer) Analyze(ctx context.Context, results []ProcessingResult) AnalysisResult {
	summary := Summarize(results)

	if a.reasoner == nil {
		return a.fallbackResult(results, summary, "no reasoner configured")
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	records := make([]CombinedDocumentRecord, 0, len(results))
	for _, r := range results {
		records = append(records, r.Record)
	}

	text, err := a.reasoner.Recommend(ctx, records, summary)
	if err != nil {
		return a.fallbackResult(results, summary, "reasoner call failed: "+err.Error())
	}

	raw, err := recovery.ExtractObject(text)
	if err != nil {
		return a.fallbackResult(results, summary, "reasoner response unparsable: "+err.Error())
	}

	rec := Sanitize(raw)
	if _, present := raw["analysisModel"]; !present && a.cfg.ReasoningModel != "" {
		rec.AnalysisModel = a.cfg.ReasoningModel
	}

	// The reasoner's own risk/confidence stand when supplied; the rule-based
	// helpers fill the gaps only.
	overallRisk := rec.RiskLevel
	if s, ok := raw["riskLevel"].(string); !ok || !validRiskLevels[s] {
		overallRisk = FallbackRisk(results)
	}

	confidence := FallbackConfidence(results)
	if v, ok := toFloat(raw["confidence"]); ok {
		confidence = clampInt(int(v+0.5), 0, 100)
	}

	return AnalysisResult{
		Recommendation: rec,
		OverallRisk:    overallRisk,
		Confidence:     confidence,
		Summary:        summary,
		AnalysisModel:  rec.AnalysisModel,
		UsedFallback:   false,
	}
}

func (a *Analyzer) fallbackResult(results []ProcessingResult, summary DocumentSummary, reason string) AnalysisResult {
	return AnalysisResult{
		Recommendation: ComputeFallback(results),
		OverallRisk:    FallbackRisk(results),
		Confidence:     FallbackConfidence(results),
		Summary:        summary,
		AnalysisModel:  FallbackModelName,
		UsedFallback:   true,
		Error:          reason,
	}
}
