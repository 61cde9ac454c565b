// Package source pulls sketch text out of files: bare .hsc and .raw files, and
// sketch blocks embedded in Markdown, HTML, plain text, DOCX and PDF
// documents.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format names the encoding of a Source.
type Format string

const (
	FormatSketch Format = "hsc"
	FormatRaw    Format = "raw"
)

// Source is one sketch text found in a file.
type Source struct {
	Name   string `json:"name"`
	Format Format `json:"format"`
	Text   string `json:"-"`
}

// Extractor finds the sketch sources in a file.
type Extractor interface {
	Extract(r io.Reader, filename string) ([]Source, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".hsc":      true,
	".sketch":   true,
	".raw":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".hsc", ".sketch":
		return &WholeFileExtractor{Format: FormatSketch}, nil
	case ".raw":
		return &WholeFileExtractor{Format: FormatRaw}, nil
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// FormatForLabel maps a code-block label such as a fence info string or a
// MIME subtype to a Format.
func FormatForLabel(label string) (Format, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if i := strings.IndexAny(label, " \t{"); i >= 0 {
		label = label[:i]
	}
	switch label {
	case "hsc", "sketch", "x-hsc", "text/x-hsc", "language-hsc":
		return FormatSketch, true
	case "raw", "hsc-raw", "x-hsc-raw", "text/x-hsc-raw", "language-hsc-raw":
		return FormatRaw, true
	}
	return "", false
}

// embeddedName names the n-th (1-based) source found in filename.
func embeddedName(filename string, n int) string {
	return fmt.Sprintf("%s#%d", filename, n)
}

// WholeFileExtractor treats the entire file as one source.
type WholeFileExtractor struct {
	Format Format
}

func (e *WholeFileExtractor) Extract(r io.Reader, filename string) ([]Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return []Source{{Name: filename, Format: e.Format, Text: string(data)}}, nil
}
