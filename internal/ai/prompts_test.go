package ai

import (
	"strings"
	"testing"

	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
)

func TestExtractionPromptsCarrySchemaKeys(t *testing.T) {
	cases := []struct {
		docType analysis.DocumentType
		keys    []string
	}{
		{analysis.TypeBankStatement, []string{"accountBalance", "monthlyIncome", "monthlyExpenses", "overdraftFees", "riskFactors", "confidence"}},
		{analysis.TypeFinancial, []string{"annualRevenue", "netProfit", "totalAssets", "totalLiabilities", "cashFlow", "riskFactors"}},
		{analysis.TypeLegal, []string{"documentStatus", "legalRisk", "complianceScore", "keyObligations"}},
		{analysis.TypeUnknown, []string{"documentType", "extractedData", "amounts", "entities", "recommendation"}},
	}
	for _, tc := range cases {
		prompt := GetExtractionPrompt(tc.docType)
		for _, key := range tc.keys {
			if !strings.Contains(prompt, key) {
				t.Errorf("%s prompt missing key %q", tc.docType, key)
			}
		}
	}
}

func TestUnrecognizedTypeGetsUnknownPrompt(t *testing.T) {
	if GetExtractionPrompt(analysis.TypeError) != GetExtractionPrompt(analysis.TypeUnknown) {
		t.Errorf("error type should fall back to the unknown prompt")
	}
}

func TestReasonerPromptCarriesContract(t *testing.T) {
	prompt := BuildReasonerPrompt(`[{"documentType":"bank_statement"}]`, `{"totalDocuments":1}`)

	for _, key := range []string{"creditScore", "rating", "riskLevel", "keyFactors", "improvementSuggestions", "maxCreditLimit", "interestRate", "reasoning", "confidence", "analysisModel"} {
		if !strings.Contains(prompt, key) {
			t.Errorf("reasoner prompt missing key %q", key)
		}
	}
	if !strings.Contains(prompt, `"totalDocuments":1`) {
		t.Errorf("summary JSON not embedded in prompt")
	}
}
