package extract

import (
	"errors"
	"fmt"
	"time"

	"docquery/internal/config"
	"docquery/pkg/applog"
	"github.com/dslipak/pdf"
)

// extractPDFText pulls the embedded text layer page by page. Pages that fail
// to parse are skipped; they count as empty toward the OCR threshold.
func extractPDFText(path string, logger *applog.Logger) ([]Page, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []Page
	numPages := f.NumPage()
	logger.Debug("extractPDFText", "pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page, logger)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, Page{Number: i, Text: content})
	}
	return pages, nil
}

// protectExtract guards against pathological PDFs that hang the parser.
func protectExtract(page pdf.Page, logger *applog.Logger) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageExtractTimeout):
		logger.Error("pdf page extraction timed out")
		return "", errors.New("timeout")
	}
}
