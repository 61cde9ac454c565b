package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor finds sketches embedded in HTML as
// <script type="text/x-hsc">, <pre data-format="hsc"> or
// <code class="language-hsc"> elements.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(r io.Reader, filename string) ([]Source, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var sources []Source
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if format, ok := htmlFormat(n); ok {
				sources = append(sources, Source{
					Name:   embeddedName(filename, len(sources)+1),
					Format: format,
					Text:   rawText(n),
				})
				return
			}
			switch n.Data {
			case "style", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sources, nil
}

func htmlFormat(n *html.Node) (Format, bool) {
	switch n.Data {
	case "script":
		return FormatForLabel(attr(n, "type"))
	case "pre":
		if f, ok := FormatForLabel(attr(n, "data-format")); ok {
			return f, true
		}
	case "code":
		for _, class := range strings.Fields(attr(n, "class")) {
			if f, ok := FormatForLabel(class); ok {
				return f, true
			}
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// rawText concatenates the text nodes under n without trimming, since
// line breaks separate raw-format strokes.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
