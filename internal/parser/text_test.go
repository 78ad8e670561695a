package parser

import (
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestTextParser_KeepsText(t *testing.T) {
	input := "PHẦN I. Mở đầu\nAAA\n\nPHẦN II. Nội dung\nBBB"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if doc.Text != input {
		t.Errorf("expected text unchanged, got %q", doc.Text)
	}
	if len(doc.Headings) != 0 {
		t.Errorf("expected no heading hints for plain text, got %d", len(doc.Headings))
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" || doc.Text != "" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"bare cr", "a\rb", "a\nb"},
		{"form feed", "page one\fpage two", "page one\npage two"},
		{"decomposed", norm.NFD.String("Phần Mở đầu"), "Phần Mở đầu"},
		{"already clean", "Chương 1", "Chương 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"a.txt", false},
		{"a.MD", false},
		{"a.markdown", false},
		{"a.csv", false},
		{"a.htm", false},
		{"a.pdf", false},
		{"a.docx", false},
		{"a.doc", true},
		{"noext", true},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{PDFFallbackPdftotext: true})
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got parser %T", tt.filename, p)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("%s: expected supported extension", tt.filename)
		}
	}
	p, _ := ForFile("x.pdf", Options{PDFFallbackPdftotext: true})
	if pdf, ok := p.(*PDFParser); !ok || !pdf.FallbackPdftotext {
		t.Error("expected pdftotext fallback option passed to PDF parser")
	}
}
