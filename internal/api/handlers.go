// handlers.go - HTTP handlers for document upload and credit analysis

package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bosocmputer/credit_analyzer_gemini/configs"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/ai"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/common"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/processor"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/storage"
	"github.com/gin-gonic/gin"
)

const maxUploadDocuments = 10

// documentUpload is one saved upload with its declared type
type documentUpload struct {
	path         string
	filename     string
	declaredType analysis.DocumentType
	data         []byte
}

// AnalyzeDocumentsHandler handles POST /api/v1/analyze-documents.
// Multipart form: "documents" files plus optional parallel "documentTypes"
// hints (bank_statement, financial, legal, unknown).
func AnalyzeDocumentsHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Invalid multipart form",
			"details":  err.Error(),
			"expected": "multipart form with 'documents' files and optional 'documentTypes' values",
		})
		return
	}

	files := form.File["documents"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "at least one document is required",
		})
		return
	}
	if len(files) > maxUploadDocuments {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("too many documents: %d (max %d)", len(files), maxUploadDocuments),
		})
		return
	}

	reqCtx := common.NewRequestContext()
	typeHints := form.Value["documentTypes"]

	// Save uploads to a per-request directory, removed when done
	reqCtx.StartStep("save_uploads")
	requestDir := filepath.Join(configs.UPLOAD_DIR, reqCtx.RequestID)
	if err := os.MkdirAll(requestDir, 0755); err != nil {
		reqCtx.EndStep("failed", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "failed to store uploads",
			"request_id": reqCtx.RequestID,
		})
		return
	}
	defer os.RemoveAll(requestDir)

	uploads := make([]documentUpload, 0, len(files))
	for i, file := range files {
		dst := filepath.Join(requestDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			reqCtx.EndStep("failed", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      fmt.Sprintf("failed to save %s", file.Filename),
				"request_id": reqCtx.RequestID,
			})
			return
		}

		data, err := os.ReadFile(dst)
		if err != nil {
			reqCtx.EndStep("failed", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      fmt.Sprintf("failed to read %s", file.Filename),
				"request_id": reqCtx.RequestID,
			})
			return
		}

		uploads = append(uploads, documentUpload{
			path:         dst,
			filename:     file.Filename,
			declaredType: declaredTypeFor(typeHints, i, reqCtx),
			data:         data,
		})
	}
	reqCtx.EndStep("success", nil, nil)

	// Identical re-uploads skip the model calls entirely
	cacheKey := storage.CacheKey(uploadBytes(uploads))
	if cached, ok := storage.Cache.Get(cacheKey); ok {
		reqCtx.LogInfo("💾 Cache hit, returning stored result")
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"cached": true,
			"result": cached,
			"request": gin.H{
				"request_id": reqCtx.RequestID,
			},
		})
		return
	}

	// Extract each document through the vision pipeline
	vision := ai.CreateVisionProvider()
	results := make([]analysis.ProcessingResult, 0, len(uploads))
	for _, upload := range uploads {
		reqCtx.StartStep(fmt.Sprintf("extract_%s", upload.filename))
		result := processor.ProcessDocument(c.Request.Context(), vision, upload.path, upload.declaredType, reqCtx)
		if result.Failed() {
			reqCtx.EndStep("failed", nil, fmt.Errorf("%s", result.Err))
		} else {
			reqCtx.EndStep("success", nil, nil)
		}
		results = append(results, result)
	}

	// All documents failing is a request-level error, not a fallback case
	if allFailed(results) {
		category, suggestion := "extraction_failed", "None of the uploaded documents could be processed. Check that they are readable scans or PDFs."
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":     "error",
			"error":      category,
			"message":    suggestion,
			"documents":  documentStatuses(results),
			"request_id": reqCtx.RequestID,
		})
		return
	}

	// Reason over the combined records; any failure inside Analyze degrades
	// to the rule-based fallback instead of failing the request
	reqCtx.StartStep("credit_analysis")
	reasoner, err := ai.CreateReasoner(reqCtx)
	if err != nil {
		reqCtx.LogWarning("Reasoner unavailable, using rule-based fallback: %v", err)
		reasoner = nil
	}

	analyzer := analysis.NewAnalyzer(analysis.Config{
		VisionModel:    configs.VISION_MODEL,
		ReasoningModel: configs.REASONING_MODEL,
		Timeout:        time.Duration(configs.REASONING_TIMEOUT) * time.Second,
	}, reasonerOrNil(reasoner))

	result := analyzer.Analyze(c.Request.Context(), results)
	if result.UsedFallback {
		reqCtx.EndStep("success", nil, nil)
		reqCtx.LogWarning("Rule-based fallback used: %s", result.Error)
	} else {
		reqCtx.EndStep("success", nil, nil)
	}

	// History is best-effort; the response does not depend on it
	if err := storage.SaveAnalysis(storage.AnalysisRecord{
		RequestID:   reqCtx.RequestID,
		Filenames:   uploadNames(uploads),
		Result:      result,
		TotalTokens: reqCtx.TotalTokens.TotalTokens,
		CostUSD:     reqCtx.TotalTokens.CostUSD,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		reqCtx.LogWarning("Failed to save analysis history: %v", err)
	}

	storage.Cache.Put(cacheKey, result)

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"cached":    false,
		"result":    result,
		"documents": documentStatuses(results),
		"request":   reqCtx.GetSummary(),
	})
}

// RecentAnalysesHandler handles GET /api/v1/analyses
func RecentAnalysesHandler(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	records, err := storage.RecentAnalyses(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to load analysis history",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"count":    len(records),
		"analyses": records,
	})
}

// declaredTypeFor resolves the i-th document-type hint. Missing or
// unrecognized hints degrade to unknown.
func declaredTypeFor(hints []string, i int, reqCtx *common.RequestContext) analysis.DocumentType {
	if i >= len(hints) {
		return analysis.TypeUnknown
	}
	t := analysis.DocumentType(hints[i])
	if !analysis.ValidDocumentType(t) {
		reqCtx.LogWarning("Unrecognized document type hint %q, treating as unknown", hints[i])
		return analysis.TypeUnknown
	}
	return t
}

func uploadBytes(uploads []documentUpload) [][]byte {
	out := make([][]byte, len(uploads))
	for i, u := range uploads {
		out[i] = u.data
	}
	return out
}

func uploadNames(uploads []documentUpload) []string {
	out := make([]string, len(uploads))
	for i, u := range uploads {
		out[i] = u.filename
	}
	return out
}

func allFailed(results []analysis.ProcessingResult) bool {
	for _, r := range results {
		if !r.Failed() {
			return false
		}
	}
	return true
}

// documentStatuses builds the per-document portion of the response
func documentStatuses(results []analysis.ProcessingResult) []gin.H {
	statuses := make([]gin.H, len(results))
	for i, r := range results {
		status := gin.H{
			"filename":        r.Filename,
			"documentType":    r.Record.DocumentType,
			"imageCount":      r.ImageCount,
			"processingTime":  r.ProcessingTime,
			"riskFactorCount": len(r.Record.RiskFactors),
		}
		if r.Failed() {
			status["status"] = "failed"
			status["error"] = r.Err
		} else {
			status["status"] = "processed"
		}
		statuses[i] = status
	}
	return statuses
}

// reasonerOrNil avoids handing the analyzer a typed nil interface
func reasonerOrNil(r ai.ReasonerProvider) analysis.Reasoner {
	if r == nil {
		return nil
	}
	return r
}
