package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor finds sketches in .docx files. Runs of consecutive
// paragraphs styled "Sketch" or "SketchRaw" form one source each; fenced
// blocks typed into ordinary paragraphs are recognised too.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extract(r io.Reader, filename string) ([]Source, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "sketchfmt-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paras []docxPara
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		paras = append(paras, docxPara{style: docxParagraphStyle(para), text: docxParagraphText(para)})
	}
	return scanFences(docxLines(paras), filename), nil
}

type docxPara struct {
	style string
	text  string
}

// docxLines flattens paragraphs into text lines, wrapping each run of
// sketch-styled paragraphs in a synthetic fence.
func docxLines(paras []docxPara) []string {
	var lines []string
	var open Format
	for _, p := range paras {
		format, styled := docxStyleFormat(p.style)
		if open != "" && (!styled || format != open) {
			lines = append(lines, "```")
			open = ""
		}
		if styled && open == "" {
			lines = append(lines, "```"+string(format))
			open = format
		}
		lines = append(lines, p.text)
	}
	if open != "" {
		lines = append(lines, "```")
	}
	return lines
}

func docxStyleFormat(style string) (Format, bool) {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch s {
	case "sketch", "hsc":
		return FormatSketch, true
	case "sketchraw", "hscraw":
		return FormatRaw, true
	}
	return "", false
}

func docxParagraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimRight(buf.String(), " \t")
}
