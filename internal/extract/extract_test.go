package extract_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docquery/internal/domain/docmodel"
	"docquery/internal/extract"
)

type MockOCR struct {
	OnExtractText func(ctx context.Context, data []byte, mimeType string) (string, error)
}

func (m *MockOCR) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if m.OnExtractText != nil {
		return m.OnExtractText(ctx, data, mimeType)
	}
	return "recognized text", nil
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	return path
}

func TestExtract_PlainText(t *testing.T) {
	e := extract.NewExtractor(nil)
	path := writeFile(t, "notes.txt", []byte("Meeting notes for the quarter.\nAll targets met."))

	result, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.UsedOCR {
		t.Error("Plain text should not use OCR")
	}
	if result.FileType != "txt" {
		t.Errorf("Unexpected file type: %q", result.FileType)
	}
	if len(result.Pages) != 1 || !strings.Contains(result.Pages[0].Text, "targets met") {
		t.Errorf("Unexpected pages: %+v", result.Pages)
	}
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := extract.NewExtractor(nil)
	path := writeFile(t, "data.csv", []byte("a,b,c"))

	_, err := e.Extract(context.Background(), path)
	var extractionErr *docmodel.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
	if !strings.Contains(extractionErr.Reason, "unsupported file type") {
		t.Errorf("Unexpected reason: %q", extractionErr.Reason)
	}
}

func TestExtract_EmptyTextFile(t *testing.T) {
	e := extract.NewExtractor(nil)
	path := writeFile(t, "blank.txt", []byte("   \n\t  "))

	_, err := e.Extract(context.Background(), path)
	var extractionErr *docmodel.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
	if extractionErr.Reason != "no text content" {
		t.Errorf("Unexpected reason: %q", extractionErr.Reason)
	}
}

func TestExtract_ImageUsesOCR(t *testing.T) {
	var gotMime string
	ocrClient := &MockOCR{
		OnExtractText: func(ctx context.Context, data []byte, mimeType string) (string, error) {
			gotMime = mimeType
			return "First page text\fSecond page text", nil
		},
	}
	e := extract.NewExtractor(ocrClient)
	path := writeFile(t, "scan.png", []byte{0x89, 0x50, 0x4e, 0x47})

	result, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !result.UsedOCR {
		t.Error("Image extraction must report OCR usage")
	}
	if gotMime != "image/png" {
		t.Errorf("Unexpected mime type: %q", gotMime)
	}
	if len(result.Pages) != 2 || result.Pages[1].Text != "Second page text" {
		t.Errorf("Form-feed page split failed: %+v", result.Pages)
	}
}

func TestExtract_ImageWithoutOCRClient(t *testing.T) {
	e := extract.NewExtractor(nil)
	path := writeFile(t, "scan.jpg", []byte{0xff, 0xd8})

	_, err := e.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("Expected error when OCR is unavailable")
	}
	var unavailable *docmodel.OCRUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("Expected OCRUnavailableError in chain, got %v", err)
	}
}

func TestExtract_OCRRecognizesNothing(t *testing.T) {
	ocrClient := &MockOCR{
		OnExtractText: func(ctx context.Context, data []byte, mimeType string) (string, error) {
			return "  \f  ", nil
		},
	}
	e := extract.NewExtractor(ocrClient)
	path := writeFile(t, "scan.png", []byte{0x89})

	_, err := e.Extract(context.Background(), path)
	var extractionErr *docmodel.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
}
