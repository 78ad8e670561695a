package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	rscpdf "rsc.io/pdf"
)

// PDFParser handles PDF files. It tries ledongthuc/pdf first, then
// rsc.io/pdf, then pdftotext if enabled and available.
type PDFParser struct {
	FallbackPdftotext bool
}

var errNoText = errors.New("no extractable text")

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// The PDF readers require a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docoutline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	extractors := []func(string) (string, error){extractPDFText, extractRSCText}
	if p.FallbackPdftotext {
		extractors = append(extractors, extractPdftotext)
	}

	var errs []error
	for _, extract := range extractors {
		text, err := extract(tmpPath)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errNoText
		}
		if err == nil {
			return &Document{
				Title: titleFromFilename(filename),
				Text:  NormalizeText(text),
			}, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("extract pdf text: %w", errors.Join(errs...))
}

func extractPDFText(path string) (text string, err error) {
	defer recoverPDF("ledongthuc/pdf", &err)

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

// extractRSCText rebuilds lines from positioned text runs: a change of
// baseline starts a new line.
func extractRSCText(path string) (text string, err error) {
	defer recoverPDF("rsc.io/pdf", &err)

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	doc, err := rscpdf.NewReader(f, info.Size())
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		var lastY float64
		for j, t := range page.Content().Text {
			if j > 0 && t.Y != lastY {
				buf.WriteString("\n")
			}
			buf.WriteString(t.S)
			lastY = t.Y
		}
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// recoverPDF turns a panic inside a PDF reader into an error. Both readers
// panic on some malformed files.
func recoverPDF(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: %v", name, r)
	}
}
