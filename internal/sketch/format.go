package sketch

import (
	"fmt"
	"io"
	"strings"
)

// Format writes a human-readable dump of s to w.
func Format(w io.Writer, s *Sketch) error {
	var b strings.Builder
	for i, e := range s.Elements {
		fmt.Fprintf(&b, "element %d (%s): %d atoms\n", i, e.Kind, len(e.Atoms))
		for _, m := range e.Modifiers {
			fmt.Fprintf(&b, "\t%s\n", describeModifier(m))
		}
		for _, a := range e.Atoms {
			fmt.Fprintf(&b, "\t%s\n", describeAtom(a))
		}
	}
	fmt.Fprintf(&b, "atoms: %d\n", len(s.Atoms))
	for _, a := range s.Atoms {
		fmt.Fprintf(&b, "\t%s\n", describeAtom(a))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s *Sketch) String() string {
	var b strings.Builder
	_ = Format(&b, s)
	return b.String()
}

// FormatRaw writes a human-readable dump of a raw sketch to w.
func FormatRaw(w io.Writer, s *RawSketch) error {
	var b strings.Builder
	fmt.Fprintf(&b, "strokes: %d\n", len(s.Strokes))
	for i, st := range s.Strokes {
		fmt.Fprintf(&b, "\tstroke %d: %s\n", i, describePoints(st.Points))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func describeAtom(a Atom) string {
	switch v := a.(type) {
	case Stroke:
		return fmt.Sprintf("stroke d=%d %s", v.Diameter, describePoints(v.Points))
	case Marker:
		return fmt.Sprintf("marker %q", v.Message)
	}
	return fmt.Sprintf("%T", a)
}

func describeModifier(m Modifier) string {
	switch v := m.(type) {
	case Affine:
		return fmt.Sprintf("affine [%g %g %g; %g %g %g; %g %g %g]",
			v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], v[8])
	}
	return fmt.Sprintf("%T", m)
}

func describePoints(pts []Point) string {
	parts := make([]string, 0, len(pts))
	for _, p := range pts {
		parts = append(parts, fmt.Sprintf("(%d,%d,%.3g)", p.X, p.Y, p.Pressure))
	}
	return fmt.Sprintf("%d points %s", len(pts), strings.Join(parts, " "))
}
