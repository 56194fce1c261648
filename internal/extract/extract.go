package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/ocr"
	"docquery/pkg/applog"
	"github.com/lu4p/cat"
)

// Page is one page of extracted text, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// Result is the output of text extraction for a single file.
type Result struct {
	Pages    []Page
	UsedOCR  bool
	FileType string
}

// Text concatenates the per-page text with blank-line page boundaries. The
// chunker keeps its own page offset map, so this is mainly for display.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

var textExts = map[string]bool{
	".txt":  true,
	".docx": true,
	".rtf":  true,
}

// Extractor converts raw files into per-page plain text, falling back to the
// OCR service when a PDF carries no usable text layer.
type Extractor struct {
	ocr        ocr.Client
	minTextLen int
	logger     *applog.Logger
}

func NewExtractor(ocrClient ocr.Client) *Extractor {
	return &Extractor{
		ocr:        ocrClient,
		minTextLen: config.MinTextLength,
		logger:     applog.NewLogger("Extractor"),
	}
}

// Extract reads the file at path and returns its text with page provenance.
// It fails with ExtractionError for unreadable, corrupt or unsupported
// files; OCR failures are reported, never retried here.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e.logger.Debug("extracting", "path", path, "ext", ext)

	switch {
	case ext == ".pdf":
		return e.extractPDF(ctx, path)
	case mimeByExt[ext] != "":
		return e.extractImage(ctx, path, mimeByExt[ext])
	case textExts[ext]:
		return e.extractPlain(path, ext)
	default:
		return Result{}, &docmodel.ExtractionError{Path: path, Reason: "unsupported file type " + ext}
	}
}

// extractPDF tries the embedded text layer first. When the whole document
// yields less text than the scanned-document threshold, the raw file is
// handed to the OCR service instead.
func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	pages, err := extractPDFText(path, e.logger)
	if err != nil {
		return Result{}, &docmodel.ExtractionError{Path: path, Reason: "unreadable pdf", Err: err}
	}

	total := 0
	for _, p := range pages {
		total += len(strings.TrimSpace(p.Text))
	}
	if total >= e.minTextLen {
		return Result{Pages: nonEmptyPages(pages), FileType: "pdf"}, nil
	}

	e.logger.Debug("minimal text layer, switching to OCR", "path", path, "chars", total)
	ocrPages, err := e.runOCRFile(ctx, path, "application/pdf")
	if err != nil {
		return Result{}, &docmodel.ExtractionError{Path: path, Reason: "ocr failed for scanned pdf", Err: err}
	}
	return Result{Pages: ocrPages, UsedOCR: true, FileType: "pdf"}, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string, mimeType string) (Result, error) {
	pages, err := e.runOCRFile(ctx, path, mimeType)
	if err != nil {
		return Result{}, &docmodel.ExtractionError{Path: path, Reason: "ocr failed for image", Err: err}
	}
	return Result{Pages: pages, UsedOCR: true, FileType: strings.TrimPrefix(filepath.Ext(path), ".")}, nil
}

func (e *Extractor) extractPlain(path string, ext string) (Result, error) {
	text, err := cat.File(path)
	if err != nil {
		return Result{}, &docmodel.ExtractionError{Path: path, Reason: "unreadable document", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, &docmodel.ExtractionError{Path: path, Reason: "no text content"}
	}
	return Result{
		Pages:    []Page{{Number: 1, Text: text}},
		FileType: strings.TrimPrefix(ext, "."),
	}, nil
}

// runOCRFile sends the raw file to the OCR service and splits the response
// into pages on form-feed boundaries.
func (e *Extractor) runOCRFile(ctx context.Context, path string, mimeType string) ([]Page, error) {
	if e.ocr == nil {
		return nil, &docmodel.OCRUnavailableError{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &docmodel.ExtractionError{Path: path, Reason: "empty file"}
	}

	text, err := e.ocr.ExtractText(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	var pages []Page
	for i, pageText := range strings.Split(text, "\f") {
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: pageText})
	}
	if len(pages) == 0 {
		return nil, &docmodel.ExtractionError{Path: path, Reason: "no text recognized"}
	}
	return pages, nil
}

func nonEmptyPages(pages []Page) []Page {
	out := pages[:0]
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			out = append(out, p)
		}
	}
	return out
}
