// pipeline.go - Per-document extraction pipeline: split, preprocess, extract,
// parse, combine

package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bosocmputer/credit_analyzer_gemini/configs"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/ai"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/common"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/recovery"
)

// pageInput is one vision-model payload: a single page image or PDF page
type pageInput struct {
	data     []byte
	mimeType string
}

// ProcessDocument runs one uploaded document through the extraction pipeline.
// Individual page failures are skipped; the result carries an error record
// only when no page yields usable facts. Never returns an error: failures are
// encoded in the ProcessingResult so one bad document cannot sink a batch.
func ProcessDocument(ctx context.Context, vision ai.VisionProvider, filePath string, declaredType analysis.DocumentType, reqCtx *common.RequestContext) analysis.ProcessingResult {
	start := time.Now()
	filename := filepath.Base(filePath)

	reqCtx.LogInfo("📑 Processing document: %s (type hint: %s)", filename, declaredType)

	pages, err := preparePages(filePath)
	if err != nil {
		reqCtx.LogError("Failed to prepare %s: %v", filename, err)
		return failedResult(filename, start, 0, err.Error())
	}

	facts := make([]analysis.ExtractedFact, 0, len(pages))
	for i, page := range pages {
		pageCtx, cancel := context.WithTimeout(ctx, time.Duration(configs.EXTRACTION_TIMEOUT)*time.Second)
		text, tokens, err := vision.ExtractPage(pageCtx, page.data, page.mimeType, declaredType, reqCtx)
		cancel()

		reqCtx.AddTokens(tokens)

		if err != nil {
			if category, suggestion := ai.UserFriendlyError(err); category != "" {
				reqCtx.LogWarning("Page %d/%d of %s failed (%s), skipping: %s", i+1, len(pages), filename, category, suggestion)
			} else {
				reqCtx.LogWarning("Page %d/%d of %s failed, skipping: %v", i+1, len(pages), filename, err)
			}
			continue
		}

		raw, err := recovery.ExtractObject(text)
		if err != nil {
			reqCtx.LogWarning("Page %d/%d of %s returned no structured data, skipping", i+1, len(pages), filename)
			continue
		}

		facts = append(facts, analysis.FactFromRaw(raw))
	}

	if len(facts) == 0 {
		msg := fmt.Sprintf("no usable data extracted from %d page(s)", len(pages))
		reqCtx.LogError("Document %s: %s", filename, msg)
		return failedResult(filename, start, len(pages), msg)
	}

	record := analysis.Combine(facts, declaredType)
	reqCtx.LogInfo("✅ Document %s: %d/%d page(s) extracted, %d risk factor(s)",
		filename, len(facts), len(pages), len(record.RiskFactors))

	return analysis.ProcessingResult{
		Filename:       filename,
		Record:         record,
		ProcessingTime: time.Since(start).Seconds(),
		ImageCount:     len(pages),
	}
}

// preparePages turns the uploaded file into vision-model payloads. PDFs are
// split into single-page PDFs; images are preprocessed as one page.
func preparePages(filePath string) ([]pageInput, error) {
	if !IsPDF(filePath) {
		data, mimeType, err := PreprocessImage(filePath)
		if err != nil {
			return nil, err
		}
		return []pageInput{{data: data, mimeType: mimeType}}, nil
	}

	workDir, err := os.MkdirTemp("", "pages-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pagePaths, err := SplitPDF(filePath, workDir)
	if err != nil {
		return nil, err
	}

	pageData, err := ReadPages(pagePaths)
	if err != nil {
		return nil, err
	}

	pages := make([]pageInput, len(pageData))
	for i, data := range pageData {
		pages[i] = pageInput{data: data, mimeType: "application/pdf"}
	}
	return pages, nil
}

func failedResult(filename string, start time.Time, imageCount int, msg string) analysis.ProcessingResult {
	return analysis.ProcessingResult{
		Filename:       filename,
		Record:         analysis.ErrorRecord(msg),
		ProcessingTime: time.Since(start).Seconds(),
		ImageCount:     imageCount,
		Err:            msg,
	}
}
