package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Document is the normalized plain text of an uploaded file.
type Document struct {
	Title string
	Text  string

	// Headings are structural hints from formats that mark headings
	// explicitly (Markdown, HTML, DOCX heading styles). Offsets index Text.
	Headings []Heading
}

// Heading is an explicit heading found by a format-aware parser.
type Heading struct {
	Offset int
	Level  int
	Title  string
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tune parsers that have optional behavior.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF readers
	// fail.
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n")

// NormalizeText composes Unicode to NFC and turns CRLF, CR and form feeds
// into LF. Text extracted from PDFs often carries decomposed Vietnamese
// diacritics, which the heading patterns would not match.
func NormalizeText(s string) string {
	return norm.NFC.String(lineEndings.Replace(s))
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// textBuilder assembles a Document from headings and paragraphs, recording
// heading offsets in the normalized text.
type textBuilder struct {
	buf      strings.Builder
	headings []Heading
}

func (b *textBuilder) heading(level int, title string) {
	title = strings.TrimSpace(NormalizeText(title))
	if title == "" {
		return
	}
	b.separate()
	b.headings = append(b.headings, Heading{Offset: b.buf.Len(), Level: level, Title: title})
	b.buf.WriteString(title)
	b.buf.WriteString("\n")
}

func (b *textBuilder) paragraph(text string) {
	text = strings.TrimSpace(NormalizeText(text))
	if text == "" {
		return
	}
	b.separate()
	b.buf.WriteString(text)
	b.buf.WriteString("\n")
}

// separate keeps a blank line between blocks.
func (b *textBuilder) separate() {
	if b.buf.Len() > 0 {
		b.buf.WriteString("\n")
	}
}

func (b *textBuilder) document(title string) *Document {
	return &Document{
		Title:    title,
		Text:     b.buf.String(),
		Headings: b.headings,
	}
}
