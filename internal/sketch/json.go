package sketch

import "encoding/json"

// Atoms and modifiers are interfaces, so each variant tags itself with a
// "type" field when encoded.

func (s Stroke) MarshalJSON() ([]byte, error) {
	type plain Stroke
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{"stroke", plain(s)})
}

func (m Marker) MarshalJSON() ([]byte, error) {
	type plain Marker
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{"marker", plain(m)})
}

func (a Affine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string     `json:"type"`
		Matrix [9]float64 `json:"matrix"`
	}{"affine", [9]float64(a)})
}
