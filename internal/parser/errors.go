package parser

import (
	"errors"
	"fmt"

	"github.com/dgallion1/sketchfmt/internal/lexer"
)

var (
	// ErrGrammar is wrapped by every *GrammarError.
	ErrGrammar = errors.New("grammar error")
	// ErrRawFormat is returned when raw-format text fails verification.
	ErrRawFormat = errors.New("invalid raw format")
)

// GrammarError reports a malformed element or statement.
type GrammarError struct {
	Pos    int    // token index, or the token count when input ran out
	Offset int    // byte offset in the source, -1 at end of input
	Token  string // offending token text, empty at end of input
	Reason string
}

func (e *GrammarError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("token %d (end of input): %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("token %d %q at offset %d: %s", e.Pos, e.Token, e.Offset, e.Reason)
}

func (e *GrammarError) Unwrap() error {
	return ErrGrammar
}

func grammarErr(s *lexer.Stream, pos int, reason string) error {
	if pos < 0 || pos >= s.Len() {
		return &GrammarError{Pos: pos, Offset: -1, Reason: reason}
	}
	return &GrammarError{
		Pos:    pos,
		Offset: s.At(pos).Offset,
		Token:  s.Text(pos),
		Reason: reason,
	}
}

// memberErr ties a codec failure to the member token it came from.
func memberErr(s *lexer.Stream, pos int, err error) error {
	return fmt.Errorf("member %q at offset %d: %w", s.Text(pos), s.At(pos).Offset, err)
}
