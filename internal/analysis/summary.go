// summary.go - Cross-document aggregation

package analysis

import "math"

// defaultRecordConfidence is assumed for records whose extraction supplied no
// confidence figure. Applied before averaging, not treated as zero.
const defaultRecordConfidence = 80

// Summarize aggregates per-document results into one summary. An empty input
// yields a zeroed summary with AverageConfidence 0 rather than a panic; the
// caller is expected to avoid calling with no documents.
func Summarize(results []ProcessingResult) DocumentSummary {
	summary := DocumentSummary{
		TotalDocuments: len(results),
		DocumentTypes:  []string{},
	}
	if len(results) == 0 {
		return summary
	}

	seen := make(map[DocumentType]bool)
	confTotal := 0

	for _, r := range results {
		if !seen[r.Record.DocumentType] {
			seen[r.Record.DocumentType] = true
			summary.DocumentTypes = append(summary.DocumentTypes, string(r.Record.DocumentType))
		}

		if r.Record.Confidence != nil {
			confTotal += *r.Record.Confidence
		} else {
			confTotal += defaultRecordConfidence
		}

		summary.TotalProcessingTime += r.ProcessingTime
		summary.TotalImages += r.ImageCount
	}

	summary.AverageConfidence = int(math.Round(float64(confTotal) / float64(len(results))))
	return summary
}
