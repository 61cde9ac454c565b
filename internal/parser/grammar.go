package parser

import (
	"fmt"

	"github.com/dgallion1/sketchfmt/internal/lexer"
)

// ValueType is what an element's members encode.
type ValueType uint8

const (
	Base36Value ValueType = iota
	NumberValue
	StringValue
)

// Arity is the shape of an element's member list.
type Arity uint8

const (
	ArityNone      Arity = iota // TypeName
	AritySingle                 // TypeName: member
	ArityBounded                // TypeName: [exactly N members]
	ArityUnbounded              // TypeName: [any multiple of Mult members]
)

// Descriptor describes the members an element type takes.
type Descriptor struct {
	Arity Arity
	Value ValueType
	N     int // member count for ArityBounded
	Mult  int // member count must be a multiple of this for ArityUnbounded
}

// Rule binds an element type name to its descriptor.
type Rule struct {
	Name string
	Desc Descriptor
}

// Grammar is an ordered element table. The first rule with a matching name
// wins.
type Grammar []Rule

// DefaultGrammar is the element table of the .hsc format.
var DefaultGrammar = Grammar{
	{"Data", Descriptor{Arity: ArityUnbounded, Value: Base36Value, Mult: 1}},
	{"Pencil", Descriptor{Arity: ArityUnbounded, Value: Base36Value, Mult: 1}},
	{"Brush", Descriptor{Arity: ArityUnbounded, Value: Base36Value, Mult: 2}},
	{"Affine", Descriptor{Arity: ArityBounded, Value: NumberValue, N: 9}},
	{"Marker", Descriptor{Arity: AritySingle, Value: StringValue}},
}

// Lookup returns the descriptor for name.
func (g Grammar) Lookup(name string) (Descriptor, bool) {
	for _, r := range g {
		if r.Name == name {
			return r.Desc, true
		}
	}
	return Descriptor{}, false
}

// With returns a copy of g extended by rules. Rules already present in g take
// precedence.
func (g Grammar) With(rules ...Rule) Grammar {
	out := make(Grammar, 0, len(g)+len(rules))
	out = append(out, g...)
	return append(out, rules...)
}

// elementData is one parsed TypeName[:members] clause.
type elementData struct {
	typeName string
	pos      int   // token index of the type name
	members  []int // token indices of the members
}

// parseElement reads one element starting at token pos and returns it
// together with the index of the first token after it.
func (g Grammar) parseElement(s *lexer.Stream, pos int) (elementData, int, error) {
	i := pos
	if i >= s.Len() {
		return elementData{}, i, grammarErr(s, i, "expected element type name")
	}
	name := s.Text(i)
	desc, ok := g.Lookup(name)
	if !ok {
		return elementData{}, i, grammarErr(s, i, fmt.Sprintf("unknown element type %q", name))
	}
	i++
	el := elementData{typeName: name, pos: pos}

	switch desc.Arity {
	case ArityNone:
		return el, i, nil

	case AritySingle:
		if !s.IsOp(i, ':') {
			return elementData{}, i, grammarErr(s, i, "expected ':' after "+name)
		}
		i++
		if i >= s.Len() {
			return elementData{}, i, grammarErr(s, i, "expected member after "+name+":")
		}
		el.members = []int{i}
		return el, i + 1, nil

	case ArityBounded, ArityUnbounded:
		if !s.IsOp(i, ':') {
			return elementData{}, i, grammarErr(s, i, "expected ':' after "+name)
		}
		i++
		if !s.IsOp(i, '[') {
			return elementData{}, i, grammarErr(s, i, "expected '[' after "+name+":")
		}
		i++
		for i < s.Len() && !s.IsOp(i, ']') {
			// Commas only separate members.
			if !s.IsOp(i, ',') {
				el.members = append(el.members, i)
			}
			i++
		}
		if i >= s.Len() {
			return elementData{}, i, grammarErr(s, i, "expected ']' closing "+name)
		}
		i++

		n := len(el.members)
		if desc.Arity == ArityBounded && n != desc.N {
			return elementData{}, i, grammarErr(s, pos, fmt.Sprintf("%s takes %d members, got %d", name, desc.N, n))
		}
		if desc.Arity == ArityUnbounded && desc.Mult > 1 && n%desc.Mult != 0 {
			return elementData{}, i, grammarErr(s, pos, fmt.Sprintf("%s takes members in groups of %d, got %d", name, desc.Mult, n))
		}
		return el, i, nil
	}
	return elementData{}, i, grammarErr(s, pos, fmt.Sprintf("element %s has no arity", name))
}
