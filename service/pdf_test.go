package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes an uncompressed PDF with one page per entry in pages, each
// page showing its lines top to bottom in Helvetica.
func buildPDF(pages ...[]string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in once the kids are known
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var kids []string
	for _, lines := range pages {
		shown := make([]string, len(lines))
		for i, line := range lines {
			shown[i] = fmt.Sprintf("(%s) Tj", line)
		}
		content := fmt.Sprintf("BT /F1 12 Tf 14 TL 72 720 Td %s ET", strings.Join(shown, " T* "))

		pageNum := len(objects) + 1
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageNum+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFExtractorExtract(t *testing.T) {
	e := NewPDFExtractor()

	tests := []struct {
		name     string
		pages    [][]string
		expected string
	}{
		{
			name:     "single page",
			pages:    [][]string{{"RESIDENTIAL LEASE AGREEMENT", "Monthly rent is $950.", "Late fee is $75."}},
			expected: "RESIDENTIAL LEASE AGREEMENT\nMonthly rent is $950.\nLate fee is $75.\n",
		},
		{
			name:     "pages joined by newline",
			pages:    [][]string{{"Monthly rent is $950."}, {"Pets are not allowed."}},
			expected: "Monthly rent is $950.\nPets are not allowed.\n",
		},
		{
			name:     "blank page skipped over",
			pages:    [][]string{{}, {"Security deposit is $1,900."}},
			expected: "\nSecurity deposit is $1,900.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := e.Extract(buildPDF(tt.pages...))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if text != tt.expected {
				t.Errorf("Expected text %q, got %q", tt.expected, text)
			}
		})
	}
}

func TestPDFExtractorNoText(t *testing.T) {
	_, err := NewPDFExtractor().Extract(buildPDF([]string{}, []string{}))
	if !errors.Is(err, ErrNoText) {
		t.Errorf("Expected ErrNoText for a PDF without text, got %v", err)
	}
}

func TestPDFExtractorInvalidData(t *testing.T) {
	e := NewPDFExtractor()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("this is not a pdf")},
		{"truncated header", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := e.Extract(tt.data)
			if err == nil {
				t.Fatal("Expected error for invalid PDF")
			}
			if text != "" {
				t.Errorf("Expected empty text, got %q", text)
			}
			if errors.Is(err, ErrNoText) {
				t.Errorf("Expected reader error, got %v", err)
			}
		})
	}
}
