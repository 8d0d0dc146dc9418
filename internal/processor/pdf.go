// pdf.go - PDF page splitting so multi-page documents feed the vision model
// one page at a time

package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// IsPDF reports whether the file is a PDF by extension
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// SplitPDF optimizes the PDF and splits it into single-page PDFs under
// workDir. Returns the per-page file paths in page order.
func SplitPDF(pdfPath, workDir string) ([]string, error) {
	// Relaxed validation: scanned statements are frequently produced by
	// tools that emit slightly malformed PDFs.
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	optimized := filepath.Join(workDir, "optimized.pdf")
	if err := api.OptimizeFile(pdfPath, optimized, cfg); err != nil {
		return nil, fmt.Errorf("failed to validate/optimize PDF: %w", err)
	}

	pageCount, err := api.PageCountFile(optimized)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	if err := api.SplitFile(optimized, workDir, 1, cfg); err != nil {
		return nil, fmt.Errorf("failed to split PDF: %w", err)
	}

	// SplitFile names pages <base>_<n>.pdf
	base := strings.TrimSuffix(filepath.Base(optimized), ".pdf")
	pages := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		pagePath := filepath.Join(workDir, fmt.Sprintf("%s_%d.pdf", base, i))
		if _, err := os.Stat(pagePath); err != nil {
			return nil, fmt.Errorf("split page %d missing: %w", i, err)
		}
		pages = append(pages, pagePath)
	}

	return pages, nil
}

// ReadPages loads the split page files concurrently, preserving page order
func ReadPages(pagePaths []string) ([][]byte, error) {
	pages := make([][]byte, len(pagePaths))

	var g errgroup.Group
	g.SetLimit(4)
	for i, path := range pagePaths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read page %d: %w", i+1, err)
			}
			pages[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pages, nil
}
