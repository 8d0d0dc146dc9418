// fallback.go - Deterministic rule-based scoring used when the reasoner fails
//
// The rules are intentionally conservative: a flat base score adjusted by
// income/asset tiers and penalized per identified risk factor, then mapped
// onto fixed rating / limit / rate bands. Inputs are already-validated
// combined records, so nothing in here can fail.

package analysis

import (
	"fmt"
	"strings"
	"time"
)

// FallbackModelName is the provenance identifier for rule-based results.
const FallbackModelName = "rule-based-fallback"

const fallbackBaseScore = 650

// scoreBands maps score thresholds to rating, credit limit and interest rate.
// Ordered highest first; the zero-threshold band is the terminal default.
var scoreBands = []struct {
	min    int
	rating string
	limit  float64
	rate   float64
}{
	{800, "Excellent", 50000, 6.5},
	{740, "Good", 25000, 9.2},
	{670, "Fair", 15000, 13.5},
	{580, "Poor", 8000, 18.9},
	{0, "Very Poor", 3000, 24.9},
}

// ComputeFallback derives a full recommendation from the combined records
// alone. Never fails.
func ComputeFallback(results []ProcessingResult) CreditRecommendation {
	score := float64(fallbackBaseScore)
	riskLevel := "Medium"

	avgIncome, avgAssets, hasMetrics := averageIncomeAndAssets(results)
	if hasMetrics {
		switch {
		case avgIncome > 30000 && avgAssets > 75000:
			score += 100
			riskLevel = "Low"
		case avgIncome > 15000 && avgAssets > 25000:
			score += 50
		default:
			score -= 50
			riskLevel = "High"
		}
	}

	riskCount := totalRiskFactors(results)
	score -= 15 * float64(riskCount)

	finalScore := clampInt(int(score), 300, 850)
	band := bandForScore(finalScore)

	return CreditRecommendation{
		Score:                  finalScore,
		Rating:                 band.rating,
		RiskLevel:              riskLevel,
		Recommendation:         fallbackRecommendationText(finalScore, documentTypesPresent(results)),
		KeyFactors:             fallbackKeyFactors(results, hasMetrics, avgIncome, avgAssets, riskCount),
		ImprovementSuggestions: fallbackSuggestions(results),
		MaxCreditLimit:         band.limit,
		InterestRate:           band.rate,
		Reasoning: fmt.Sprintf(
			"Rule-based assessment of %d document(s): base score %d adjusted for financial metrics and %d identified risk factor(s).",
			len(results), fallbackBaseScore, riskCount),
		AnalysisModel: FallbackModelName,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// FallbackRisk classifies overall risk by the mean risk-factor count per
// document. Usable standalone when only the reasoner's risk field is missing.
func FallbackRisk(results []ProcessingResult) string {
	if len(results) == 0 {
		return "Medium"
	}
	mean := float64(totalRiskFactors(results)) / float64(len(results))
	switch {
	case mean < 1.5:
		return "Low"
	case mean >= 2.5:
		return "High"
	default:
		return "Medium"
	}
}

// FallbackConfidence estimates confidence from document count and failures:
// 75 base, +2 per document capped at +10, -15 per failed document, clamped
// to [50,95].
func FallbackConfidence(results []ProcessingResult) int {
	confidence := 75

	bonus := 2 * len(results)
	if bonus > 10 {
		bonus = 10
	}
	confidence += bonus

	for _, r := range results {
		if r.Failed() {
			confidence -= 15
		}
	}

	return clampInt(confidence, 50, 95)
}

// averageIncomeAndAssets computes the mean income and asset figures over the
// records that carry FinancialMetrics. Income falls back from monthlyIncome
// to annualRevenue, assets from totalAssets to accountBalance; a record with
// metrics but neither field contributes zero.
func averageIncomeAndAssets(results []ProcessingResult) (avgIncome, avgAssets float64, hasMetrics bool) {
	n := 0
	for _, r := range results {
		m := r.Record.FinancialMetrics
		if m == nil {
			continue
		}
		n++
		avgIncome += firstMetric(m.MonthlyIncome, m.AnnualRevenue)
		avgAssets += firstMetric(m.TotalAssets, m.AccountBalance)
	}
	if n == 0 {
		return 0, 0, false
	}
	return avgIncome / float64(n), avgAssets / float64(n), true
}

func firstMetric(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func totalRiskFactors(results []ProcessingResult) int {
	count := 0
	for _, r := range results {
		count += len(r.Record.RiskFactors)
	}
	return count
}

func bandForScore(score int) struct {
	min    int
	rating string
	limit  float64
	rate   float64
} {
	for _, band := range scoreBands {
		if score >= band.min {
			return band
		}
	}
	return scoreBands[len(scoreBands)-1]
}

// RatingForScore maps a score onto the fallback rating bands.
func RatingForScore(score int) string {
	return bandForScore(score).rating
}

func documentTypesPresent(results []ProcessingResult) map[DocumentType]bool {
	present := make(map[DocumentType]bool)
	for _, r := range results {
		present[r.Record.DocumentType] = true
	}
	return present
}

func fallbackRecommendationText(score int, types map[DocumentType]bool) string {
	reviewed := "submitted documents"
	if len(types) == 1 && types[TypeBankStatement] {
		reviewed = "bank statement history"
	} else if len(types) == 1 && types[TypeFinancial] {
		reviewed = "financial statements"
	}

	switch {
	case score >= 740:
		return fmt.Sprintf("Approve credit at standard terms based on the %s.", reviewed)
	case score >= 670:
		return fmt.Sprintf("Approve a moderate credit line with periodic review of the %s.", reviewed)
	case score >= 580:
		return "Extend limited credit with enhanced monitoring and shorter review cycles."
	default:
		return "Decline unsecured credit; require collateral or a guarantor before reconsidering."
	}
}

func fallbackKeyFactors(results []ProcessingResult, hasMetrics bool, avgIncome, avgAssets float64, riskCount int) []string {
	types := documentTypesPresent(results)

	factors := []string{}
	if types[TypeBankStatement] {
		factors = append(factors, "Bank statement activity reviewed")
	}
	if types[TypeFinancial] {
		factors = append(factors, "Financial statement figures reviewed")
	}
	if types[TypeLegal] {
		factors = append(factors, "Legal document status reviewed")
	}
	if hasMetrics {
		factors = append(factors, fmt.Sprintf("Average income %.0f and assets %.0f considered", avgIncome, avgAssets))
	}
	if riskCount > 0 {
		factors = append(factors, fmt.Sprintf("%d risk factor(s) identified across documents", riskCount))
	}
	if types[TypeError] {
		factors = append(factors, "One or more documents could not be processed")
	}

	if len(factors) == 0 {
		return []string{defaultKeyFactor}
	}
	if len(factors) > maxListEntries {
		factors = factors[:maxListEntries]
	}
	return factors
}

// riskKeywordSuggestions maps risk-factor keyword categories to advice.
var riskKeywordSuggestions = []struct {
	keyword    string
	suggestion string
}{
	{"income", "Stabilize and document recurring income"},
	{"debt", "Reduce outstanding debt obligations"},
	{"balance", "Maintain a higher average account balance"},
}

func fallbackSuggestions(results []ProcessingResult) []string {
	suggestions := []string{}
	matched := make(map[string]bool)

	for _, r := range results {
		for _, risk := range r.Record.RiskFactors {
			lower := strings.ToLower(risk)
			for _, ks := range riskKeywordSuggestions {
				if matched[ks.keyword] || !strings.Contains(lower, ks.keyword) {
					continue
				}
				matched[ks.keyword] = true
				suggestions = append(suggestions, ks.suggestion)
			}
		}
	}

	if len(suggestions) == 0 {
		return []string{defaultSuggestion}
	}
	if len(suggestions) > maxListEntries {
		suggestions = suggestions[:maxListEntries]
	}
	return suggestions
}
