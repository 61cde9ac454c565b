// Package lexer splits sketch source text into tokens.
//
// Tokenizing never fails: whitespace and % comments are dropped, string
// literals and one-character operators are recognised, and everything else
// becomes a word. Whether the tokens make sense is the parser's problem.
package lexer

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	Word   Kind = iota // type names, numbers, base-36 digit runs
	Op                 // one of : [ ] , ;
	String             // a parenthesised literal, parens included
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Op:
		return "op"
	case String:
		return "string"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Token is a view into the source text.
type Token struct {
	Kind   Kind
	Offset int
	Length int
	// Open marks a String still unbalanced when the text ran out.
	Open bool
}

// Stream is the ordered token sequence of one source text. It must not
// outlive the text it was built from.
type Stream struct {
	src    string
	tokens []Token
}

// Len returns the number of tokens.
func (s *Stream) Len() int { return len(s.tokens) }

// At returns the i-th token.
func (s *Stream) At(i int) Token { return s.tokens[i] }

// Tokens returns the underlying token slice.
func (s *Stream) Tokens() []Token { return s.tokens }

// Source returns the text the stream was built from.
func (s *Stream) Source() string { return s.src }

// Text returns the source text of the i-th token.
func (s *Stream) Text(i int) string {
	t := s.tokens[i]
	return s.src[t.Offset : t.Offset+t.Length]
}

// IsOpen reports whether the i-th token is a String literal left unclosed
// at the end of the text.
func (s *Stream) IsOpen(i int) bool {
	return i >= 0 && i < len(s.tokens) && s.tokens[i].Open
}

// IsOp reports whether the i-th token exists and is the operator c.
func (s *Stream) IsOp(i int, c byte) bool {
	if i < 0 || i >= len(s.tokens) {
		return false
	}
	t := s.tokens[i]
	return t.Kind == Op && s.src[t.Offset] == c
}

type state uint8

const (
	lineStart state = iota
	comment
	space
	word
	str
	strEnd
	op
	end
)

func isNewline(c byte) bool    { return c == '\n' || c == '\r' }
func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || isNewline(c) }

func isOp(c byte) bool {
	switch c {
	case ':', '[', ']', ',', ';':
		return true
	}
	return false
}

// Tokenize scans src in a single pass. A ';' operator ends the scan: it is
// emitted and nothing after it is read. A string literal left open at the end
// of the text is still emitted.
func Tokenize(src string) *Stream {
	s := &Stream{src: src}
	emit := func(k Kind, from, to int) {
		s.tokens = append(s.tokens, Token{Kind: k, Offset: from, Length: to - from})
	}

	prev := lineStart
	start, depth := 0, 0
	for i := 0; i <= len(src); i++ {
		next := end
		if i < len(src) {
			next = step(prev, src[i], &depth)
		}

		// Operators are a single character, so they are flushed as soon as
		// the automaton moves past them.
		if prev == op {
			emit(Op, i-1, i)
			if src[i-1] == ';' {
				return s
			}
		}

		if prev != next {
			if next == word {
				start = i
			}
			if prev == word {
				emit(Word, start, i)
			}
			if next == str {
				start, depth = i, 1
			}
			if next == strEnd {
				emit(String, start, i+1)
			}
			if prev == str && next == end {
				s.tokens = append(s.tokens, Token{Kind: String, Offset: start, Length: i - start, Open: true})
			}
		}
		prev = next
	}
	return s
}

func step(s state, c byte, depth *int) state {
	switch s {
	case comment:
		if isNewline(c) {
			return lineStart
		}
		return comment
	case str:
		if c == '(' {
			*depth++
		}
		if c == ')' {
			*depth--
			if *depth <= 0 {
				return strEnd
			}
		}
		return str
	case lineStart, space, op, strEnd:
		if c == '%' {
			return comment
		}
	}

	switch {
	case isNewline(c):
		return lineStart
	case isWhitespace(c):
		return space
	case isOp(c):
		return op
	case c == '(':
		return str
	}
	return word
}
