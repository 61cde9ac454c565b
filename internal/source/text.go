package source

import (
	"bufio"
	"io"
	"strings"
)

// TextExtractor finds ```hsc / ```raw fenced blocks in plain text.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) ([]Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return scanFences(lines, filename), nil
}

// scanFences collects the bodies of fenced blocks whose label names a sketch
// format. Blocks with other labels are skipped. An unclosed block runs to the
// last line.
func scanFences(lines []string, filename string) []Source {
	var sources []Source
	var current strings.Builder
	var format Format
	inBlock, wanted := false, false

	flush := func() {
		if wanted {
			sources = append(sources, Source{
				Name:   embeddedName(filename, len(sources)+1),
				Format: format,
				Text:   current.String(),
			})
		}
		current.Reset()
		inBlock, wanted = false, false
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if label, ok := strings.CutPrefix(trimmed, "```"); ok {
				inBlock = true
				format, wanted = FormatForLabel(label)
			}
			continue
		}
		if trimmed == "```" {
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if inBlock {
		flush()
	}
	return sources
}
