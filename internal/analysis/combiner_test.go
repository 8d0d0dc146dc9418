package analysis

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func intPtr(v int) *int { return &v }

func TestCombineEmptyInput(t *testing.T) {
	rec := Combine(nil, TypeFinancial)

	if rec.DocumentType != TypeError {
		t.Errorf("documentType = %q, want %q", rec.DocumentType, TypeError)
	}
	if !reflect.DeepEqual(rec.RiskFactors, []string{"No data extracted"}) {
		t.Errorf("riskFactors = %v, want [No data extracted]", rec.RiskFactors)
	}
	if rec.Confidence == nil || *rec.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", rec.Confidence)
	}
	if len(rec.KeyInformation) != 0 {
		t.Errorf("keyInformation = %v, want empty", rec.KeyInformation)
	}
}

func TestCombineSingleFact(t *testing.T) {
	fact := ExtractedFact{
		Fields:      bson.M{"accountBalance": 1200.0, "accountAge": "3 years"},
		RiskFactors: []string{"overdraft fees present"},
		Confidence:  intPtr(90),
	}

	rec := Combine([]ExtractedFact{fact}, TypeBankStatement)

	if rec.DocumentType != TypeBankStatement {
		t.Errorf("documentType = %q, want bank_statement", rec.DocumentType)
	}
	if rec.KeyInformation["accountAge"] != "3 years" {
		t.Errorf("keyInformation not copied verbatim: %v", rec.KeyInformation)
	}
	if rec.FinancialMetrics == nil || rec.FinancialMetrics.AccountBalance == nil {
		t.Fatalf("financialMetrics.accountBalance missing")
	}
	if *rec.FinancialMetrics.AccountBalance != 1200 {
		t.Errorf("accountBalance = %v, want 1200", *rec.FinancialMetrics.AccountBalance)
	}
	if rec.Confidence == nil || *rec.Confidence != 90 {
		t.Errorf("confidence = %v, want 90", rec.Confidence)
	}
}

func TestCombineSingleFactOwnTypeWins(t *testing.T) {
	fact := ExtractedFact{DocumentType: TypeLegal, Fields: bson.M{}}
	rec := Combine([]ExtractedFact{fact}, TypeUnknown)
	if rec.DocumentType != TypeLegal {
		t.Errorf("documentType = %q, want legal", rec.DocumentType)
	}
}

func TestCombineSingleFactNoNumericMetrics(t *testing.T) {
	fact := ExtractedFact{Fields: bson.M{"accountBalance": "a lot", "entity": "Acme"}}
	rec := Combine([]ExtractedFact{fact}, TypeUnknown)
	if rec.FinancialMetrics != nil {
		t.Errorf("financialMetrics = %+v, want nil", rec.FinancialMetrics)
	}
}

func TestCombineMultiPage(t *testing.T) {
	facts := []ExtractedFact{
		{
			Fields:      bson.M{"monthlyIncome": 1000.0, "bank": "First National"},
			RiskFactors: []string{"r"},
		},
		{
			Fields:      bson.M{"monthlyIncome": 3000.0, "bank": "First National Corp"},
			RiskFactors: []string{"r", "s"},
		},
	}

	rec := Combine(facts, TypeBankStatement)

	if rec.DocumentType != TypeBankStatement {
		t.Errorf("documentType = %q, want declared type", rec.DocumentType)
	}
	if rec.FinancialMetrics == nil || rec.FinancialMetrics.MonthlyIncome == nil {
		t.Fatalf("monthlyIncome missing from metrics")
	}
	if *rec.FinancialMetrics.MonthlyIncome != 2000 {
		t.Errorf("monthlyIncome = %v, want mean 2000", *rec.FinancialMetrics.MonthlyIncome)
	}
	if !reflect.DeepEqual(rec.RiskFactors, []string{"r", "s"}) {
		t.Errorf("riskFactors = %v, want deduplicated [r s]", rec.RiskFactors)
	}
	// Later pages overwrite earlier ones on key collision.
	if rec.KeyInformation["bank"] != "First National Corp" {
		t.Errorf("bank = %v, want later page's value", rec.KeyInformation["bank"])
	}
}

func TestCombineMultiPagePartialMetrics(t *testing.T) {
	facts := []ExtractedFact{
		{Fields: bson.M{"totalAssets": 50000.0}},
		{Fields: bson.M{"cashFlow": 800.0}},
		{Fields: bson.M{"totalAssets": 70000.0}},
	}

	rec := Combine(facts, TypeFinancial)

	m := rec.FinancialMetrics
	if m == nil {
		t.Fatalf("financialMetrics missing")
	}
	if m.TotalAssets == nil || *m.TotalAssets != 60000 {
		t.Errorf("totalAssets = %v, want mean of contributing pages 60000", m.TotalAssets)
	}
	if m.CashFlow == nil || *m.CashFlow != 800 {
		t.Errorf("cashFlow = %v, want 800", m.CashFlow)
	}
	if m.MonthlyIncome != nil {
		t.Errorf("monthlyIncome = %v, want omitted", m.MonthlyIncome)
	}
}

func TestCombineMultiPageConfidenceAveragesSuppliedOnly(t *testing.T) {
	facts := []ExtractedFact{
		{Fields: bson.M{}, Confidence: intPtr(60)},
		{Fields: bson.M{}},
		{Fields: bson.M{}, Confidence: intPtr(90)},
	}
	rec := Combine(facts, TypeUnknown)
	if rec.Confidence == nil || *rec.Confidence != 75 {
		t.Errorf("confidence = %v, want 75", rec.Confidence)
	}
}

func TestFactFromRaw(t *testing.T) {
	raw := map[string]interface{}{
		"documentType": "bank_statement",
		"confidence":   87.6,
		"riskFactors":  []interface{}{"low balance", 42, "irregular income"},
		"monthlyIncome": 2500.0,
	}

	fact := FactFromRaw(raw)

	if fact.DocumentType != TypeBankStatement {
		t.Errorf("documentType = %q, want bank_statement", fact.DocumentType)
	}
	if fact.Confidence == nil || *fact.Confidence != 88 {
		t.Errorf("confidence = %v, want rounded 88", fact.Confidence)
	}
	if !reflect.DeepEqual(fact.RiskFactors, []string{"low balance", "irregular income"}) {
		t.Errorf("riskFactors = %v, non-strings should be dropped", fact.RiskFactors)
	}
	if fact.Fields["monthlyIncome"] != 2500.0 {
		t.Errorf("monthlyIncome not preserved in fields: %v", fact.Fields)
	}
	if _, ok := fact.Fields["confidence"]; ok {
		t.Errorf("confidence should be lifted out of fields")
	}
}

func TestFactFromRawInvalidType(t *testing.T) {
	fact := FactFromRaw(map[string]interface{}{"documentType": "receipt"})
	if fact.DocumentType != "" {
		t.Errorf("documentType = %q, want empty for unrecognized type", fact.DocumentType)
	}
}
