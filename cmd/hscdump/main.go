// Command hscdump prints the tokens and decoded contents of sketch files, or
// of the sketch blocks embedded in Markdown, HTML, text, DOCX and PDF files.
//
//	hscdump [-raw] [-tokens] [-groups Pencil=pencil,Brush=brush] FILE...
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/sketchfmt/internal/config"
	"github.com/dgallion1/sketchfmt/internal/lexer"
	"github.com/dgallion1/sketchfmt/internal/parser"
	"github.com/dgallion1/sketchfmt/internal/sketch"
	"github.com/dgallion1/sketchfmt/internal/source"
)

func main() {
	forceRaw := flag.Bool("raw", false, "decode every input as raw format")
	showTokens := flag.Bool("tokens", false, "print the token stream before the scene")
	groups := flag.String("groups", "Pencil=pencil,Brush=brush", "group keywords as Name=kind pairs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: hscdump [-raw] [-tokens] [-groups list] FILE...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	table, err := config.ParseGroups(*groups)
	if err != nil {
		log.Error("invalid -groups", "error", err)
		os.Exit(2)
	}

	d := dumper{
		out:      bufio.NewWriter(os.Stdout),
		opts:     []parser.Option{parser.WithGroups(table)},
		forceRaw: *forceRaw,
		tokens:   *showTokens,
	}
	failed := false
	for _, path := range flag.Args() {
		if err := d.dumpFile(path); err != nil {
			log.Error("dump failed", "file", path, "error", err)
			failed = true
		}
	}
	d.out.Flush()
	if failed {
		os.Exit(1)
	}
}

type dumper struct {
	out      *bufio.Writer
	opts     []parser.Option
	forceRaw bool
	tokens   bool
}

func (d *dumper) dumpFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var ex source.Extractor
	if d.forceRaw {
		ex = &source.WholeFileExtractor{Format: source.FormatRaw}
	} else if ex, err = source.ForFile(path); err != nil {
		return err
	}
	sources, err := ex.Extract(f, path)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sketch sources found")
	}

	var firstErr error
	for _, src := range sources {
		if err := d.dumpSource(src); err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", src.Name, err)
			}
		}
	}
	return firstErr
}

func (d *dumper) dumpSource(src source.Source) error {
	fmt.Fprintf(d.out, "== %s (%s)\n", src.Name, src.Format)

	if src.Format == source.FormatRaw {
		rs, err := parser.DecodeRaw(src.Text)
		if err != nil {
			return err
		}
		return sketch.FormatRaw(d.out, rs)
	}

	stream := lexer.Tokenize(src.Text)
	if d.tokens {
		writeTokens(d.out, stream)
	}
	sk, err := parser.Assemble(stream, d.opts...)
	if err != nil {
		return err
	}
	return sketch.Format(d.out, sk)
}

func writeTokens(w io.Writer, s *lexer.Stream) {
	fmt.Fprintf(w, "tokens: %d\n", s.Len())
	for i, tok := range s.Tokens() {
		fmt.Fprintf(w, "\t%4d %-6s @%-5d %s\n", i, tok.Kind, tok.Offset, s.Text(i))
	}
}
