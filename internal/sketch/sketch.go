package sketch

// Point is a single pen sample.
type Point struct {
	X        int16   `json:"x"`
	Y        int16   `json:"y"`
	Pressure float64 `json:"pressure"` // 0..1; 1 when the format has no pressure channel
}

// Atom is an indivisible drawable unit: a Stroke or a Marker.
type Atom interface {
	isAtom()
}

// Stroke is one continuous pen path.
type Stroke struct {
	Diameter uint    `json:"diameter"`
	Points   []Point `json:"points"`
}

// Marker is a point-less text annotation.
type Marker struct {
	Message string `json:"message"`
}

func (Stroke) isAtom() {}
func (Marker) isAtom() {}

// Modifier transforms or annotates the atoms of an Element.
type Modifier interface {
	isModifier()
}

// Affine is a row-major 3x3 transform matrix.
type Affine [9]float64

func (Affine) isModifier() {}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply maps (x, y) through the transform. The last row is not enforced to be
// 0 0 1, so the result is divided by the homogeneous coordinate when it is
// neither 0 nor 1.
func (a Affine) Apply(x, y float64) (float64, float64) {
	tx := a[0]*x + a[1]*y + a[2]
	ty := a[3]*x + a[4]*y + a[5]
	w := a[6]*x + a[7]*y + a[8]
	if w != 0 && w != 1 {
		tx /= w
		ty /= w
	}
	return tx, ty
}

// Element is a named, transformable group of atoms such as a layer.
type Element struct {
	Kind      ElementKind `json:"kind"`
	Atoms     []Atom      `json:"atoms"`
	Modifiers []Modifier  `json:"modifiers"`
}

// Sketch is a decoded scene.
//
// Elements are kept in statement order. Atoms holds every atom of every
// statement, with each statement's block placed in front of the atoms
// collected so far: statements therefore appear in reverse order while the
// atoms within one statement keep theirs. Consumers depend on this layout.
type Sketch struct {
	Elements []Element `json:"elements"`
	Atoms    []Atom    `json:"atoms"`
}

// Strokes returns every stroke in Atoms, in Atoms order.
func (s *Sketch) Strokes() []Stroke {
	var out []Stroke
	for _, a := range s.Atoms {
		if st, ok := a.(Stroke); ok {
			out = append(out, st)
		}
	}
	return out
}

// Markers returns every marker in Atoms, in Atoms order.
func (s *Sketch) Markers() []Marker {
	var out []Marker
	for _, a := range s.Atoms {
		if m, ok := a.(Marker); ok {
			out = append(out, m)
		}
	}
	return out
}

// RawStroke is a stroke of the legacy raw format. Its points carry no
// pressure.
type RawStroke struct {
	Points []Point `json:"points"`
}

// RawSketch is a decoded raw-format file.
type RawSketch struct {
	Strokes []RawStroke `json:"strokes"`
}
