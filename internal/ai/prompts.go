// prompts.go - Prompt construction for vision extraction and credit reasoning

package ai

import (
	"fmt"

	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
)

// GetExtractionPrompt returns the per-document-type vision prompt. Each prompt
// pins the exact JSON keys the combiner recognizes so numeric fields land
// under their canonical names.
func GetExtractionPrompt(docType analysis.DocumentType) string {
	switch docType {
	case analysis.TypeBankStatement:
		return bankStatementPrompt
	case analysis.TypeFinancial:
		return financialPrompt
	case analysis.TypeLegal:
		return legalPrompt
	default:
		return unknownPrompt
	}
}

const bankStatementPrompt = `You are a financial document analyst. Analyze this bank statement page carefully.

Extract the following and return ONLY a single JSON object with these keys:
{
  "accountBalance": <current balance as a number, or null>,
  "monthlyIncome": <total monthly deposits/income as a number, or null>,
  "monthlyExpenses": <total monthly withdrawals/expenses as a number, or null>,
  "accountAge": <how long the account has existed, as text, or null>,
  "transactionCount": <number of transactions visible, or null>,
  "overdraftFees": <total overdraft/NSF fees as a number, or null>,
  "averageBalance": <average daily balance as a number, or null>,
  "riskFactors": [<short strings describing credit risks you observe, e.g. "frequent overdrafts", "irregular income deposits">],
  "keyFindings": [<short strings with notable positive or neutral observations>],
  "confidence": <your confidence in this extraction, 0-100>
}

Rules:
- All monetary values must be plain numbers without currency symbols or thousands separators.
- Use null for anything not visible on this page. Do NOT guess values.
- riskFactors must be empty if you see no risks.
- Return ONLY the JSON object, no commentary.`

const financialPrompt = `You are a financial document analyst. Analyze this financial statement page carefully.

Extract the following and return ONLY a single JSON object with these keys:
{
  "annualRevenue": <annual revenue as a number, or null>,
  "netProfit": <net profit/income as a number, or null>,
  "totalAssets": <total assets as a number, or null>,
  "totalLiabilities": <total liabilities as a number, or null>,
  "cashFlow": <operating cash flow as a number, or null>,
  "employeeCount": <number of employees, or null>,
  "businessAge": <age of the business, as text, or null>,
  "debtToEquityRatio": <debt-to-equity ratio as a number, or null>,
  "profitMargin": <profit margin as a number, or null>,
  "riskFactors": [<short strings describing credit risks, e.g. "high debt load", "declining revenue">],
  "keyFindings": [<short strings with notable observations>],
  "confidence": <your confidence in this extraction, 0-100>
}

Rules:
- All monetary values must be plain numbers without currency symbols or thousands separators.
- Use null for anything not stated on this page. Do NOT guess values.
- Return ONLY the JSON object, no commentary.`

const legalPrompt = `You are a legal document analyst. Analyze this legal document page carefully.

Extract the following and return ONLY a single JSON object with these keys:
{
  "documentStatus": <one of "Valid", "Invalid", "Pending", "Expired">,
  "expirationDate": <expiration date as text, or null>,
  "legalRisk": <one of "Low", "Medium", "High">,
  "complianceScore": <compliance assessment 0-100, or null>,
  "keyObligations": [<short strings listing obligations imposed by the document>],
  "riskFactors": [<short strings describing legal/credit risks, e.g. "pending litigation", "expired license">],
  "keyFindings": [<short strings with notable observations>],
  "confidence": <your confidence in this extraction, 0-100>
}

Rules:
- Use null for anything not determinable from this page.
- Return ONLY the JSON object, no commentary.`

const unknownPrompt = `You are a document analyst. Identify and analyze this document page.

Return ONLY a single JSON object with these keys:
{
  "documentType": <one of "bank_statement", "financial", "legal", "unknown">,
  "confidence": <your confidence in this analysis, 0-100>,
  "extractedData": {
    "amounts": [<monetary amounts found, as numbers>],
    "dates": [<dates found, as text>],
    "entities": [<company/person names found>]
  },
  "riskFactors": [<short strings describing any credit risks visible>],
  "keyFindings": [<short strings with notable observations>],
  "recommendation": <one sentence on how this document should be treated>
}

Rules:
- Classify conservatively; use "unknown" when unsure.
- Return ONLY the JSON object, no commentary.`

// reasonerSystemPrompt frames the credit analysis role for chat-style models.
const reasonerSystemPrompt = `You are a senior credit analyst. You receive structured facts extracted from a customer's financial documents and must produce a credit recommendation as a single JSON object. Be conservative: missing data lowers confidence, never raises the score.`

// BuildReasonerPrompt assembles the user prompt from the serialized combined
// records and the document summary.
func BuildReasonerPrompt(recordsJSON, summaryJSON string) string {
	return fmt.Sprintf(`Based on the following extracted document data, produce a credit recommendation.

DOCUMENT SUMMARY:
%s

EXTRACTED DOCUMENT RECORDS:
%s

Return ONLY a single JSON object with exactly these keys:
{
  "creditScore": <integer 300-850>,
  "rating": <one of "Excellent", "Good", "Fair", "Poor", "Very Poor">,
  "riskLevel": <one of "Low", "Medium", "High">,
  "recommendation": <one or two sentences with the credit decision>,
  "keyFactors": [<1-6 short strings, the factors that drove the decision>],
  "riskFactors": [<short strings, the risks considered>],
  "improvementSuggestions": [<1-6 short strings, concrete steps to improve creditworthiness>],
  "maxCreditLimit": <recommended maximum credit limit as a number>,
  "interestRate": <recommended annual interest rate as a number, 0-50>,
  "reasoning": <a paragraph explaining the assessment>,
  "confidence": <your confidence in this recommendation, 0-100>,
  "analysisModel": <the model name you are running as>
}

Rules:
- The rating and riskLevel must be consistent with the score.
- Documents marked with documentType "error" could not be processed; treat them as missing data.
- Return ONLY the JSON object, no commentary.`, summaryJSON, recordsJSON)
}
