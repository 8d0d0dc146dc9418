package analysis

import (
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func metricResult(income, assets float64, risks ...string) ProcessingResult {
	return ProcessingResult{
		Record: CombinedDocumentRecord{
			DocumentType: TypeBankStatement,
			FinancialMetrics: &FinancialMetrics{
				MonthlyIncome: floatPtr(income),
				TotalAssets:   floatPtr(assets),
			},
			RiskFactors: risks,
		},
	}
}

func TestComputeFallbackStrongMetrics(t *testing.T) {
	// Mean income 40000 and assets 90000 with no risk factors:
	// 650 + 100 = 750, the second band.
	results := []ProcessingResult{
		metricResult(50000, 100000),
		metricResult(30000, 80000),
	}

	rec := ComputeFallback(results)

	if rec.Score != 750 {
		t.Errorf("score = %d, want 750", rec.Score)
	}
	if rec.Rating != "Good" {
		t.Errorf("rating = %q, want Good", rec.Rating)
	}
	if rec.RiskLevel != "Low" {
		t.Errorf("riskLevel = %q, want Low", rec.RiskLevel)
	}
	if rec.MaxCreditLimit != 25000 {
		t.Errorf("maxCreditLimit = %v, want 25000", rec.MaxCreditLimit)
	}
	if rec.InterestRate != 9.2 {
		t.Errorf("interestRate = %v, want 9.2", rec.InterestRate)
	}
	if rec.AnalysisModel != FallbackModelName {
		t.Errorf("analysisModel = %q, want %q", rec.AnalysisModel, FallbackModelName)
	}
}

func TestComputeFallbackNoMetricsManyRisks(t *testing.T) {
	// No financial metrics, five risk factors: 650 - 75 = 575.
	results := []ProcessingResult{
		{Record: CombinedDocumentRecord{
			DocumentType: TypeLegal,
			RiskFactors:  []string{"a", "b", "c", "d", "e"},
		}},
	}

	rec := ComputeFallback(results)

	if rec.Score != 575 {
		t.Errorf("score = %d, want 575", rec.Score)
	}
	if rec.Rating != "Very Poor" {
		t.Errorf("rating = %q, want Very Poor", rec.Rating)
	}
	// Without metrics the tier adjustment never runs, so risk stays Medium.
	if rec.RiskLevel != "Medium" {
		t.Errorf("riskLevel = %q, want Medium", rec.RiskLevel)
	}
	if rec.MaxCreditLimit != 3000 {
		t.Errorf("maxCreditLimit = %v, want 3000", rec.MaxCreditLimit)
	}
	if rec.InterestRate != 24.9 {
		t.Errorf("interestRate = %v, want 24.9", rec.InterestRate)
	}
}

func TestComputeFallbackWeakMetrics(t *testing.T) {
	rec := ComputeFallback([]ProcessingResult{metricResult(5000, 2000)})
	if rec.Score != 600 {
		t.Errorf("score = %d, want 650-50=600", rec.Score)
	}
	if rec.RiskLevel != "High" {
		t.Errorf("riskLevel = %q, want High", rec.RiskLevel)
	}
}

func TestComputeFallbackScoreClamped(t *testing.T) {
	risks := make([]string, 30)
	for i := range risks {
		risks[i] = "risk"
	}
	rec := ComputeFallback([]ProcessingResult{
		{Record: CombinedDocumentRecord{RiskFactors: risks}},
	})
	if rec.Score != 300 {
		t.Errorf("score = %d, want clamped to 300", rec.Score)
	}
}

func TestComputeFallbackEmptyInput(t *testing.T) {
	rec := ComputeFallback(nil)
	// 650 lands in the 580 band.
	if rec.Score != 650 || rec.Rating != "Poor" {
		t.Errorf("got %d/%q, want 650/Poor", rec.Score, rec.Rating)
	}
	if rec.MaxCreditLimit != 8000 || rec.InterestRate != 18.9 {
		t.Errorf("got limit %v rate %v, want 8000/18.9", rec.MaxCreditLimit, rec.InterestRate)
	}
	if len(rec.KeyFactors) == 0 || len(rec.ImprovementSuggestions) == 0 {
		t.Errorf("lists must be populated even with no input")
	}
}

func TestComputeFallbackIncomeFallsBackToRevenue(t *testing.T) {
	results := []ProcessingResult{
		{Record: CombinedDocumentRecord{FinancialMetrics: &FinancialMetrics{
			AnnualRevenue:  floatPtr(40000),
			AccountBalance: floatPtr(90000),
		}}},
	}
	rec := ComputeFallback(results)
	if rec.Score != 750 {
		t.Errorf("score = %d, want 750 (revenue/balance as income/asset proxies)", rec.Score)
	}
}

func TestFallbackRisk(t *testing.T) {
	cases := []struct {
		name         string
		risksPerDoc  [][]string
		want         string
	}{
		{"no documents", nil, "Medium"},
		{"one risk each", [][]string{{"a"}, {"b"}}, "Low"},
		{"mean below threshold", [][]string{{"a", "b"}, {}}, "Low"},
		{"mean in middle", [][]string{{"a", "b"}, {"c"}}, "Medium"},
		{"mean at high boundary", [][]string{{"a", "b", "c"}, {"d", "e"}}, "High"},
	}
	for _, tc := range cases {
		var results []ProcessingResult
		for _, risks := range tc.risksPerDoc {
			results = append(results, ProcessingResult{
				Record: CombinedDocumentRecord{RiskFactors: risks},
			})
		}
		if got := FallbackRisk(results); got != tc.want {
			t.Errorf("%s: risk = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFallbackConfidence(t *testing.T) {
	ok := ProcessingResult{Record: CombinedDocumentRecord{DocumentType: TypeFinancial}}
	failed := ProcessingResult{Filename: "bad.pdf", Err: "extraction failed"}

	cases := []struct {
		name    string
		results []ProcessingResult
		want    int
	}{
		{"no documents", nil, 75},
		{"two clean documents", []ProcessingResult{ok, ok}, 79},
		{"bonus capped at ten", []ProcessingResult{ok, ok, ok, ok, ok, ok, ok}, 85},
		{"three documents one failed", []ProcessingResult{ok, ok, failed}, 66},
		{"floor at fifty", []ProcessingResult{failed, failed, failed}, 50},
	}
	for _, tc := range cases {
		if got := FallbackConfidence(tc.results); got != tc.want {
			t.Errorf("%s: confidence = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestFallbackSuggestionsMatchRiskKeywords(t *testing.T) {
	results := []ProcessingResult{
		{Record: CombinedDocumentRecord{RiskFactors: []string{
			"Irregular income deposits",
			"High debt-to-income ratio",
			"High DEBT load", // duplicate category
		}}},
	}

	got := ComputeFallback(results).ImprovementSuggestions

	if len(got) != 2 {
		t.Fatalf("suggestions = %v, want one per matched keyword category", got)
	}
	if !strings.Contains(got[0], "income") || !strings.Contains(strings.ToLower(got[1]), "debt") {
		t.Errorf("suggestions = %v, want income then debt advice", got)
	}
}

func TestRatingForScore(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{850, "Excellent"}, {800, "Excellent"},
		{799, "Good"}, {740, "Good"},
		{739, "Fair"}, {670, "Fair"},
		{669, "Poor"}, {580, "Poor"},
		{579, "Very Poor"}, {300, "Very Poor"},
	}
	for _, tc := range cases {
		if got := RatingForScore(tc.score); got != tc.want {
			t.Errorf("RatingForScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
