// Package parser decodes .hsc sketch descriptions and legacy raw point
// streams into scenes.
//
// A .hsc file is a list of statements separated by ',' and optionally ended
// by ';'. Each statement is a run of TypeName[: members] elements: the first
// element supplies the content (strokes or a marker), the rest modify it.
//
//	% pencil layer, shifted right by 10
//	Pencil: [000000'001001 00a00a] Affine: [1 0 10, 0 1 0, 0 0 1],
//	Marker: (title);
package parser

import (
	"maps"
	"strings"

	"github.com/dgallion1/sketchfmt/internal/codec"
	"github.com/dgallion1/sketchfmt/internal/lexer"
	"github.com/dgallion1/sketchfmt/internal/sketch"
)

const (
	pencilDiameter = 3
	pencilWindow   = 6 // 3 x + 3 y
	brushWindow    = 8 // 3 x + 3 y + 2 pressure
	coordWidth     = 3
	pressureWidth  = 2
	diameterWidth  = 2
	maxPressure    = 36*36 - 1
	digitSeparator = '\''
)

var defaultGroups = map[string]sketch.ElementKind{
	"Pencil": sketch.KindPencil,
	"Brush":  sketch.KindBrush,
}

// DefaultGroups returns a copy of the group-keyword table used when no
// WithGroups option is given.
func DefaultGroups() map[string]sketch.ElementKind {
	return maps.Clone(defaultGroups)
}

type options struct {
	grammar Grammar
	groups  map[string]sketch.ElementKind
}

// Option configures Parse and Assemble.
type Option func(*options)

// WithGroups sets the group-keyword table. The map is only read.
func WithGroups(groups map[string]sketch.ElementKind) Option {
	return func(o *options) { o.groups = groups }
}

// WithGrammar replaces the element table.
func WithGrammar(g Grammar) Option {
	return func(o *options) { o.grammar = g }
}

// Parse tokenizes src and assembles it into a Sketch.
func Parse(src string, opts ...Option) (*sketch.Sketch, error) {
	return Assemble(lexer.Tokenize(src), opts...)
}

// Assemble builds a Sketch from a token stream. Any error aborts the whole
// parse and no partial Sketch is returned.
func Assemble(s *lexer.Stream, opts ...Option) (*sketch.Sketch, error) {
	o := options{grammar: DefaultGrammar, groups: defaultGroups}
	for _, opt := range opts {
		opt(&o)
	}

	result := &sketch.Sketch{}
	if s.Len() == 0 || s.IsOp(0, ';') {
		return result, nil
	}

	for i := 0; i < s.Len(); i++ {
		var elems []elementData
		for i < s.Len() && !s.IsOp(i, ',') && !s.IsOp(i, ';') {
			el, next, err := o.grammar.parseElement(s, i)
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			i = next
		}
		if len(elems) == 0 {
			return nil, grammarErr(s, i, "empty statement")
		}

		if err := assembleStatement(s, o, elems, result); err != nil {
			return nil, err
		}

		if s.IsOp(i, ';') {
			break
		}
	}
	return result, nil
}

func assembleStatement(s *lexer.Stream, o options, elems []elementData, result *sketch.Sketch) error {
	head := elems[0]
	kind, grouping := o.groups[head.typeName]

	atoms, err := decodeContent(s, head)
	if err != nil {
		return err
	}

	var modifiers []sketch.Modifier
	for _, el := range elems[1:] {
		switch el.typeName {
		case "Affine":
			m, err := decodeAffine(s, el)
			if err != nil {
				return err
			}
			modifiers = append(modifiers, m)
		}
	}

	if grouping {
		result.Elements = append(result.Elements, sketch.Element{
			Kind:      kind,
			Atoms:     append([]sketch.Atom(nil), atoms...),
			Modifiers: modifiers,
		})
	}

	// The statement's block goes in front of everything collected so far.
	merged := make([]sketch.Atom, 0, len(atoms)+len(result.Atoms))
	merged = append(merged, atoms...)
	result.Atoms = append(merged, result.Atoms...)
	return nil
}

func decodeContent(s *lexer.Stream, el elementData) ([]sketch.Atom, error) {
	switch el.typeName {
	case "Data", "Pencil":
		return decodePencil(s, el)
	case "Brush":
		return decodeBrush(s, el)
	case "Marker":
		m, err := decodeMarker(s, el)
		if err != nil {
			return nil, err
		}
		return []sketch.Atom{m}, nil
	}
	return nil, nil
}

func decodePencil(s *lexer.Stream, el elementData) ([]sketch.Atom, error) {
	atoms := make([]sketch.Atom, 0, len(el.members))
	for _, pos := range el.members {
		points, err := decodePoints(s.Text(pos), pencilWindow)
		if err != nil {
			return nil, memberErr(s, pos, err)
		}
		atoms = append(atoms, sketch.Stroke{Diameter: pencilDiameter, Points: points})
	}
	return atoms, nil
}

func decodeBrush(s *lexer.Stream, el elementData) ([]sketch.Atom, error) {
	if len(el.members)%2 != 0 {
		return nil, grammarErr(s, el.pos, "Brush members must come in diameter/points pairs")
	}
	atoms := make([]sketch.Atom, 0, len(el.members)/2)
	for j := 0; j < len(el.members); j += 2 {
		dpos, ppos := el.members[j], el.members[j+1]
		diameter, err := codec.Base36Unsigned(s.Text(dpos), diameterWidth)
		if err != nil {
			return nil, memberErr(s, dpos, err)
		}
		points, err := decodePoints(s.Text(ppos), brushWindow)
		if err != nil {
			return nil, memberErr(s, ppos, err)
		}
		atoms = append(atoms, sketch.Stroke{Diameter: uint(diameter), Points: points})
	}
	return atoms, nil
}

// decodePoints splits one member into windows of 6 (x, y) or 8 (x, y,
// pressure) base-36 digits.
func decodePoints(member string, window int) ([]sketch.Point, error) {
	runs, err := codec.Windows(member, window, digitSeparator)
	if err != nil {
		return nil, err
	}
	points := make([]sketch.Point, 0, len(runs))
	for _, run := range runs {
		x, err := codec.Base36(run[0:3], coordWidth)
		if err != nil {
			return nil, err
		}
		y, err := codec.Base36(run[3:6], coordWidth)
		if err != nil {
			return nil, err
		}
		p := sketch.Point{X: int16(x), Y: int16(y), Pressure: 1}
		if window == brushWindow {
			raw, err := codec.Base36Unsigned(run[6:8], pressureWidth)
			if err != nil {
				return nil, err
			}
			p.Pressure = float64(raw) / maxPressure
		}
		points = append(points, p)
	}
	return points, nil
}

func decodeMarker(s *lexer.Stream, el elementData) (sketch.Marker, error) {
	pos := el.members[0]
	msg := s.Text(pos)
	if s.IsOpen(pos) {
		return sketch.Marker{}, grammarErr(s, pos, "unterminated marker message")
	}
	if len(msg) < 2 || msg[0] != '(' || msg[len(msg)-1] != ')' {
		return sketch.Marker{}, grammarErr(s, pos, "marker message must be wrapped in parentheses")
	}
	// The message outlives the source text.
	return sketch.Marker{Message: strings.Clone(msg[1 : len(msg)-1])}, nil
}

func decodeAffine(s *lexer.Stream, el elementData) (sketch.Affine, error) {
	var m sketch.Affine
	if len(el.members) != len(m) {
		return m, grammarErr(s, el.pos, "Affine takes 9 members")
	}
	for j, pos := range el.members {
		v, err := codec.Base10Float(s.Text(pos))
		if err != nil {
			return m, memberErr(s, pos, err)
		}
		m[j] = v
	}
	return m, nil
}
