package analysis

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestSanitizeEmptyInput(t *testing.T) {
	rec := Sanitize(bson.M{})

	if rec.Score != 650 {
		t.Errorf("score = %d, want 650", rec.Score)
	}
	if rec.Rating != "Fair" {
		t.Errorf("rating = %q, want Fair", rec.Rating)
	}
	if rec.RiskLevel != "Medium" {
		t.Errorf("riskLevel = %q, want Medium", rec.RiskLevel)
	}
	if rec.MaxCreditLimit != 10000 {
		t.Errorf("maxCreditLimit = %v, want 10000", rec.MaxCreditLimit)
	}
	if rec.InterestRate != 15.0 {
		t.Errorf("interestRate = %v, want 15.0", rec.InterestRate)
	}
	if rec.Recommendation == "" || rec.Reasoning == "" {
		t.Errorf("text fields must never be empty")
	}
	if rec.AnalysisModel != DefaultAnalysisModel {
		t.Errorf("analysisModel = %q, want default", rec.AnalysisModel)
	}
	if rec.GeneratedAt == "" {
		t.Errorf("generatedAt must be populated")
	}
}

func TestSanitizeNilInput(t *testing.T) {
	rec := Sanitize(nil)
	if rec.Score != 650 {
		t.Errorf("score = %d, want 650", rec.Score)
	}
}

func TestSanitizeScoreSourceKeyAndClamp(t *testing.T) {
	cases := []struct {
		name string
		raw  bson.M
		want int
	}{
		{"wire key", bson.M{"creditScore": 720.0}, 720},
		{"already sanitized key", bson.M{"score": 700.0}, 700},
		{"wire key wins", bson.M{"creditScore": 500.0, "score": 800.0}, 500},
		{"clamped low", bson.M{"creditScore": 100.0}, 300},
		{"clamped high", bson.M{"creditScore": 9000.0}, 850},
		{"non-numeric", bson.M{"creditScore": "seven hundred"}, 650},
		{"zero is a value, clamped to floor", bson.M{"creditScore": 0.0}, 300},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.raw).Score; got != tc.want {
			t.Errorf("%s: score = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestSanitizeRatingNotDerivedFromScore(t *testing.T) {
	// The reasoner's rating stands even when inconsistent with its score.
	rec := Sanitize(bson.M{"creditScore": 320.0, "rating": "Excellent"})
	if rec.Rating != "Excellent" {
		t.Errorf("rating = %q, want Excellent (not re-derived)", rec.Rating)
	}
	if rec.Score != 320 {
		t.Errorf("score = %d, want 320", rec.Score)
	}
}

func TestSanitizeEnumDefaults(t *testing.T) {
	rec := Sanitize(bson.M{"rating": "Superb", "riskLevel": "extreme"})
	if rec.Rating != "Fair" {
		t.Errorf("rating = %q, want Fair", rec.Rating)
	}
	if rec.RiskLevel != "Medium" {
		t.Errorf("riskLevel = %q, want Medium", rec.RiskLevel)
	}
}

func TestSanitizeLists(t *testing.T) {
	raw := bson.M{
		"keyFactors": []interface{}{" steady income ", "", "   ", 17, "low debt",
			"a", "b", "c", "d", "e"},
		"improvementSuggestions": "not a list",
	}
	rec := Sanitize(raw)

	if len(rec.KeyFactors) != 6 {
		t.Fatalf("keyFactors length = %d, want capped at 6", len(rec.KeyFactors))
	}
	if rec.KeyFactors[0] != "steady income" {
		t.Errorf("keyFactors[0] = %q, want trimmed entry", rec.KeyFactors[0])
	}
	for _, f := range rec.KeyFactors {
		if strings.TrimSpace(f) == "" {
			t.Errorf("keyFactors contains blank entry: %q", f)
		}
	}
	if !reflect.DeepEqual(rec.ImprovementSuggestions, []string{defaultSuggestion}) {
		t.Errorf("improvementSuggestions = %v, want single default", rec.ImprovementSuggestions)
	}
}

func TestSanitizeNumericBounds(t *testing.T) {
	rec := Sanitize(bson.M{"maxCreditLimit": -500.0, "interestRate": 120.0})
	if rec.MaxCreditLimit != 0 {
		t.Errorf("maxCreditLimit = %v, want floored at 0", rec.MaxCreditLimit)
	}
	if rec.InterestRate != 50 {
		t.Errorf("interestRate = %v, want clamped to 50", rec.InterestRate)
	}

	// No upper clamp on the credit limit.
	rec = Sanitize(bson.M{"maxCreditLimit": 5000000.0})
	if rec.MaxCreditLimit != 5000000 {
		t.Errorf("maxCreditLimit = %v, want passed through", rec.MaxCreditLimit)
	}

	// Zero interest is a legitimate value, not an absence.
	rec = Sanitize(bson.M{"interestRate": 0.0})
	if rec.InterestRate != 0 {
		t.Errorf("interestRate = %v, want 0", rec.InterestRate)
	}
}

func TestSanitizeTextCoercion(t *testing.T) {
	rec := Sanitize(bson.M{"recommendation": "   ", "reasoning": 42.0})
	if rec.Recommendation != defaultRecommendationText {
		t.Errorf("recommendation = %q, want default for blank input", rec.Recommendation)
	}
	if rec.Reasoning != "42" {
		t.Errorf("reasoning = %q, want scalar coerced to text", rec.Reasoning)
	}
}

func TestSanitizeInvariantsHoldForArbitraryInput(t *testing.T) {
	inputs := []bson.M{
		{"creditScore": []interface{}{1, 2}, "keyFactors": bson.M{"not": "a list"}},
		{"rating": 5.0, "riskLevel": true, "maxCreditLimit": "plenty"},
		{"improvementSuggestions": []interface{}{nil, false, bson.M{}}},
	}
	for i, raw := range inputs {
		rec := Sanitize(raw)
		if rec.Score < 300 || rec.Score > 850 {
			t.Errorf("input %d: score %d out of range", i, rec.Score)
		}
		if rec.InterestRate < 0 || rec.InterestRate > 50 {
			t.Errorf("input %d: interestRate %v out of range", i, rec.InterestRate)
		}
		if rec.MaxCreditLimit < 0 {
			t.Errorf("input %d: maxCreditLimit %v negative", i, rec.MaxCreditLimit)
		}
		for _, list := range [][]string{rec.KeyFactors, rec.ImprovementSuggestions} {
			if len(list) < 1 || len(list) > 6 {
				t.Errorf("input %d: list length %d out of [1,6]", i, len(list))
			}
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	first := Sanitize(bson.M{
		"creditScore":            712.0,
		"rating":                 "Good",
		"riskLevel":              "Low",
		"recommendation":         "Approve with standard terms.",
		"keyFactors":             []interface{}{"steady income", "long account history"},
		"improvementSuggestions": []interface{}{"reduce revolving debt"},
		"maxCreditLimit":         20000.0,
		"interestRate":           8.5,
		"reasoning":              "Strong balance trend.",
		"analysisModel":          "gemini-2.5-flash",
		"generatedAt":            "2026-08-23T10:00:00Z",
	})

	// Round-trip through JSON to simulate re-sanitizing persisted output.
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap bson.M
	if err := json.Unmarshal(data, &asMap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := Sanitize(asMap)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("sanitizer not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}
