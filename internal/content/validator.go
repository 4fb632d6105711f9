package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/paperlens/paperlens/internal/domain"
)

// Validator provides local sanity checks for PDF files before any
// extraction API call is spent on them.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePDF validates that a path points to a readable, non-empty PDF
// and returns its page count.
func (v *Validator) ValidatePDF(path string) (int, error) {
	// Check if path is empty
	if strings.TrimSpace(path) == "" {
		return 0, domain.ValidationError("file path cannot be empty", nil)
	}

	// Check if file exists
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return 0, domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	// Check if it's a directory
	if info.IsDir() {
		return 0, domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return 0, domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %s)", ext), nil)
	}

	// Open the document to confirm it parses and count pages
	doc, err := fitz.New(path)
	if err != nil {
		return 0, domain.ValidationError(fmt.Sprintf("cannot open PDF: %s", path), err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return 0, domain.ValidationError("PDF has no pages", nil)
	}

	return pages, nil
}
