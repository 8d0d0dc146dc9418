// types.go - Data model for the credit analysis core

package analysis

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentType classifies an uploaded document.
type DocumentType string

const (
	TypeBankStatement DocumentType = "bank_statement"
	TypeFinancial     DocumentType = "financial"
	TypeLegal         DocumentType = "legal"
	TypeUnknown       DocumentType = "unknown"
	TypeError         DocumentType = "error"
)

// ValidDocumentType reports whether t is one of the declarable types
// (error is assigned internally, never declared by a caller).
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case TypeBankStatement, TypeFinancial, TypeLegal, TypeUnknown:
		return true
	}
	return false
}

// ExtractedFact is the best-effort structured output for a single page.
// Fields holds whatever key/value pairs the vision model produced; RiskFactors
// and Confidence are lifted out because the combiner treats them specially.
// Ephemeral: facts are discarded once combined into a document record.
type ExtractedFact struct {
	DocumentType DocumentType
	Fields       bson.M
	RiskFactors  []string
	Confidence   *int // 0-100, nil when the model omitted it
}

// FactFromRaw builds an ExtractedFact from a recovered model response object.
// riskFactors, confidence and documentType are lifted into typed fields;
// everything else stays in Fields untouched.
func FactFromRaw(raw map[string]interface{}) ExtractedFact {
	fact := ExtractedFact{Fields: bson.M{}}
	for k, v := range raw {
		switch k {
		case "riskFactors":
			fact.RiskFactors = toStringList(v)
		case "confidence":
			if n, ok := toFloat(v); ok {
				c := clampInt(int(n+0.5), 0, 100)
				fact.Confidence = &c
			}
		case "documentType":
			if s, ok := v.(string); ok && ValidDocumentType(DocumentType(s)) {
				fact.DocumentType = DocumentType(s)
			}
		default:
			fact.Fields[k] = v
		}
	}
	return fact
}

// FinancialMetrics holds the recognized numeric facts of a document. Each
// field is present only when the source supplied a numeric value for it.
type FinancialMetrics struct {
	AccountBalance   *float64 `json:"accountBalance,omitempty" bson:"accountBalance,omitempty"`
	MonthlyIncome    *float64 `json:"monthlyIncome,omitempty" bson:"monthlyIncome,omitempty"`
	MonthlyExpenses  *float64 `json:"monthlyExpenses,omitempty" bson:"monthlyExpenses,omitempty"`
	AnnualRevenue    *float64 `json:"annualRevenue,omitempty" bson:"annualRevenue,omitempty"`
	NetProfit        *float64 `json:"netProfit,omitempty" bson:"netProfit,omitempty"`
	TotalAssets      *float64 `json:"totalAssets,omitempty" bson:"totalAssets,omitempty"`
	TotalLiabilities *float64 `json:"totalLiabilities,omitempty" bson:"totalLiabilities,omitempty"`
	CashFlow         *float64 `json:"cashFlow,omitempty" bson:"cashFlow,omitempty"`
}

// CombinedDocumentRecord is the canonical merged record for one document.
// Immutable once built.
type CombinedDocumentRecord struct {
	DocumentType     DocumentType      `json:"documentType" bson:"documentType"`
	KeyInformation   bson.M            `json:"keyInformation" bson:"keyInformation"`
	RiskFactors      []string          `json:"riskFactors" bson:"riskFactors"`
	FinancialMetrics *FinancialMetrics `json:"financialMetrics,omitempty" bson:"financialMetrics,omitempty"`
	Confidence       *int              `json:"confidence,omitempty" bson:"confidence,omitempty"`
}

// ProcessingResult wraps a combined record with per-document processing stats.
type ProcessingResult struct {
	Filename       string                 `json:"filename" bson:"filename"`
	Record         CombinedDocumentRecord `json:"record" bson:"record"`
	ProcessingTime float64                `json:"processingTime" bson:"processingTime"` // seconds
	ImageCount     int                    `json:"imageCount" bson:"imageCount"`
	Err            string                 `json:"error,omitempty" bson:"error,omitempty"`
}

// Failed reports whether this document failed processing outright.
func (r ProcessingResult) Failed() bool {
	return r.Err != "" || r.Record.DocumentType == TypeError
}

// DocumentSummary is the cross-document aggregate handed to the reasoner.
// Recomputed every run, never persisted on its own.
type DocumentSummary struct {
	TotalDocuments      int      `json:"totalDocuments" bson:"totalDocuments"`
	DocumentTypes       []string `json:"documentTypes" bson:"documentTypes"`
	AverageConfidence   int      `json:"averageConfidence" bson:"averageConfidence"`
	TotalProcessingTime float64  `json:"totalProcessingTime" bson:"totalProcessingTime"`
	TotalImages         int      `json:"totalImages" bson:"totalImages"`
}

// CreditRecommendation is the sanitized recommendation. Every field is
// guaranteed well-formed by Sanitize regardless of upstream data quality.
type CreditRecommendation struct {
	Score                  int      `json:"score" bson:"score"`
	Rating                 string   `json:"rating" bson:"rating"`
	RiskLevel              string   `json:"riskLevel" bson:"riskLevel"`
	Recommendation         string   `json:"recommendation" bson:"recommendation"`
	KeyFactors             []string `json:"keyFactors" bson:"keyFactors"`
	ImprovementSuggestions []string `json:"improvementSuggestions" bson:"improvementSuggestions"`
	MaxCreditLimit         float64  `json:"maxCreditLimit" bson:"maxCreditLimit"`
	InterestRate           float64  `json:"interestRate" bson:"interestRate"`
	Reasoning              string   `json:"reasoning" bson:"reasoning"`
	AnalysisModel          string   `json:"analysisModel" bson:"analysisModel"`
	GeneratedAt            string   `json:"generatedAt" bson:"generatedAt"`
}

// AnalysisResult is the top-level output envelope for one request.
type AnalysisResult struct {
	Recommendation CreditRecommendation `json:"recommendation" bson:"recommendation"`
	OverallRisk    string               `json:"overallRisk" bson:"overallRisk"`
	Confidence     int                  `json:"confidence" bson:"confidence"` // 0-100
	Summary        DocumentSummary      `json:"documentSummary" bson:"documentSummary"`
	AnalysisModel  string               `json:"analysisModel" bson:"analysisModel"`
	UsedFallback   bool                 `json:"usedFallback" bson:"usedFallback"`
	Error          string               `json:"error,omitempty" bson:"error,omitempty"`
}

// --- shared coercion helpers ---

// toFloat converts the numeric types JSON and BSON decoding produce.
// Strings are deliberately not numeric.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toStringList converts the list shapes JSON and BSON decoding produce,
// keeping only string elements.
func toStringList(v interface{}) []string {
	var items []interface{}
	switch l := v.(type) {
	case []string:
		return l
	case []interface{}:
		items = l
	case primitive.A:
		items = []interface{}(l)
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
