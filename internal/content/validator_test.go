package content

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePDFRejections(t *testing.T) {
	dir := t.TempDir()

	textFile := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textFile, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	fakePDF := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(fakePDF, []byte("not really a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"whitespace path", "   "},
		{"nonexistent file", filepath.Join(dir, "missing.pdf")},
		{"directory", dir},
		{"wrong extension", textFile},
		{"invalid pdf content", fakePDF},
	}

	validator := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := validator.ValidatePDF(tt.path); err == nil {
				t.Errorf("Expected error for %q", tt.path)
			}
		})
	}
}
