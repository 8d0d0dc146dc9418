// combiner.go - Merges per-page extraction results into one document record

package analysis

import (
	"go.mongodb.org/mongo-driver/bson"
)

// metricKeys are the numeric fields recognized for FinancialMetrics, paired
// with a setter into the struct.
var metricKeys = []struct {
	key string
	set func(*FinancialMetrics, float64)
}{
	{"accountBalance", func(m *FinancialMetrics, v float64) { m.AccountBalance = &v }},
	{"monthlyIncome", func(m *FinancialMetrics, v float64) { m.MonthlyIncome = &v }},
	{"monthlyExpenses", func(m *FinancialMetrics, v float64) { m.MonthlyExpenses = &v }},
	{"annualRevenue", func(m *FinancialMetrics, v float64) { m.AnnualRevenue = &v }},
	{"netProfit", func(m *FinancialMetrics, v float64) { m.NetProfit = &v }},
	{"totalAssets", func(m *FinancialMetrics, v float64) { m.TotalAssets = &v }},
	{"totalLiabilities", func(m *FinancialMetrics, v float64) { m.TotalLiabilities = &v }},
	{"cashFlow", func(m *FinancialMetrics, v float64) { m.CashFlow = &v }},
}

// Combine merges the per-page facts of one document into its canonical record.
//
// Empty input produces an error-typed record. A single fact is taken verbatim.
// Multiple facts are shallow-merged in page order (later pages win on key
// collision), risk factors are unioned in first-occurrence order, and each
// recognized metric becomes the mean of the pages that supplied it.
func Combine(facts []ExtractedFact, declaredType DocumentType) CombinedDocumentRecord {
	switch len(facts) {
	case 0:
		return ErrorRecord("No data extracted")

	case 1:
		fact := facts[0]
		docType := fact.DocumentType
		if docType == "" {
			docType = declaredType
		}
		return CombinedDocumentRecord{
			DocumentType:     docType,
			KeyInformation:   cloneMap(fact.Fields),
			RiskFactors:      append([]string{}, fact.RiskFactors...),
			FinancialMetrics: singleFactMetrics(fact.Fields),
			Confidence:       fact.Confidence,
		}

	default:
		merged := bson.M{}
		seen := make(map[string]bool)
		risks := []string{}
		sums := make(map[string]float64)
		counts := make(map[string]int)
		confSum, confCount := 0, 0

		for _, fact := range facts {
			// Lossy by design: later pages overwrite earlier ones per key.
			for k, v := range fact.Fields {
				merged[k] = v
			}
			for _, r := range fact.RiskFactors {
				if !seen[r] {
					seen[r] = true
					risks = append(risks, r)
				}
			}
			for _, mk := range metricKeys {
				if v, ok := toFloat(fact.Fields[mk.key]); ok {
					sums[mk.key] += v
					counts[mk.key]++
				}
			}
			if fact.Confidence != nil {
				confSum += *fact.Confidence
				confCount++
			}
		}

		rec := CombinedDocumentRecord{
			DocumentType:     declaredType,
			KeyInformation:   merged,
			RiskFactors:      risks,
			FinancialMetrics: averagedMetrics(sums, counts),
		}
		if confCount > 0 {
			avg := confSum / confCount
			rec.Confidence = &avg
		}
		return rec
	}
}

// ErrorRecord builds the record for a document that produced no usable data.
func ErrorRecord(diagnostic string) CombinedDocumentRecord {
	zero := 0
	return CombinedDocumentRecord{
		DocumentType:   TypeError,
		KeyInformation: bson.M{},
		RiskFactors:    []string{diagnostic},
		Confidence:     &zero,
	}
}

// singleFactMetrics filters one fact's fields down to the recognized numeric
// metric names. Returns nil when no recognized field holds a numeric value.
func singleFactMetrics(fields bson.M) *FinancialMetrics {
	metrics := &FinancialMetrics{}
	found := false
	for _, mk := range metricKeys {
		if v, ok := toFloat(fields[mk.key]); ok {
			mk.set(metrics, v)
			found = true
		}
	}
	if !found {
		return nil
	}
	return metrics
}

// averagedMetrics builds field-wise means; fields no page supplied are omitted.
func averagedMetrics(sums map[string]float64, counts map[string]int) *FinancialMetrics {
	if len(counts) == 0 {
		return nil
	}
	metrics := &FinancialMetrics{}
	for _, mk := range metricKeys {
		if n := counts[mk.key]; n > 0 {
			mk.set(metrics, sums[mk.key]/float64(n))
		}
	}
	return metrics
}

func cloneMap(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
