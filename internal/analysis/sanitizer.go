// sanitizer.go - Defensive normalization of raw reasoner output
//
// The reasoner returns an untyped object recovered from free-form model text.
// Sanitize turns it into a well-formed CreditRecommendation no matter what it
// contains: every field is validated independently and every branch ends in a
// documented default, so sanitization can never fail.

package analysis

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	// DefaultAnalysisModel is reported when the reasoner response carried no
	// model identifier and the caller supplied none.
	DefaultAnalysisModel = "gemini-2.5-flash"

	defaultRecommendationText = "Manual review recommended before extending credit."
	defaultReasoningText      = "Insufficient data for detailed reasoning."
	defaultKeyFactor          = "Limited document data available"
	defaultSuggestion         = "Provide additional financial documentation"

	maxListEntries = 6
)

var validRatings = map[string]bool{
	"Excellent": true,
	"Good":      true,
	"Fair":      true,
	"Poor":      true,
	"Very Poor": true,
}

var validRiskLevels = map[string]bool{
	"Low":    true,
	"Medium": true,
	"High":   true,
}

// Sanitize normalizes a raw reasoner object into a valid CreditRecommendation.
//
// The score arrives under "creditScore" on the wire; "score" is also accepted
// so an already-sanitized record round-trips unchanged. Rating and riskLevel
// are validated against their enums but never re-derived from the score: the
// reasoner's own rating stands even when it disagrees with its score.
//
// A numeric zero is a value, not an absence; only missing or non-numeric
// fields fall back to defaults.
func Sanitize(raw bson.M) CreditRecommendation {
	if raw == nil {
		raw = bson.M{}
	}

	return CreditRecommendation{
		Score:                  clampInt(intField(raw, 650, "creditScore", "score"), 300, 850),
		Rating:                 enumField(raw["rating"], validRatings, "Fair"),
		RiskLevel:              enumField(raw["riskLevel"], validRiskLevels, "Medium"),
		Recommendation:         textField(raw["recommendation"], defaultRecommendationText),
		KeyFactors:             listField(raw["keyFactors"], defaultKeyFactor),
		ImprovementSuggestions: listField(raw["improvementSuggestions"], defaultSuggestion),
		MaxCreditLimit:         floorFloat(floatField(raw["maxCreditLimit"], 10000), 0),
		InterestRate:           clampFloat(floatField(raw["interestRate"], 15.0), 0, 50),
		Reasoning:              textField(raw["reasoning"], defaultReasoningText),
		AnalysisModel:          stringField(raw["analysisModel"], DefaultAnalysisModel),
		GeneratedAt:            timestampField(raw["generatedAt"]),
	}
}

// intField returns the first key holding a numeric value, rounded.
func intField(raw bson.M, def int, keys ...string) int {
	for _, key := range keys {
		if v, ok := toFloat(raw[key]); ok {
			if v < 0 {
				return int(v - 0.5)
			}
			return int(v + 0.5)
		}
	}
	return def
}

func floatField(v interface{}, def float64) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

func enumField(v interface{}, allowed map[string]bool, def string) string {
	if s, ok := v.(string); ok && allowed[s] {
		return s
	}
	return def
}

// textField coerces scalar values to trimmed text; empty or non-scalar input
// yields the default sentence.
func textField(v interface{}, def string) string {
	var text string
	switch s := v.(type) {
	case string:
		text = s
	case float64, float32, int, int32, int64, bool:
		text = fmt.Sprintf("%v", s)
	default:
		return def
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return def
	}
	return text
}

// stringField passes a non-empty string through, else the default.
func stringField(v interface{}, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

// listField accepts only sequences, keeps non-empty trimmed strings, caps the
// result at maxListEntries, and substitutes a single-element default when
// nothing survives filtering.
func listField(v interface{}, def string) []string {
	out := []string{}
	for _, item := range toStringList(v) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == maxListEntries {
			break
		}
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}

func timestampField(v interface{}) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func floorFloat(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}
