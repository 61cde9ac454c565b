package parser

import (
	"fmt"
	"strings"

	"github.com/dgallion1/sketchfmt/internal/codec"
	"github.com/dgallion1/sketchfmt/internal/sketch"
)

// Raw-format points are two x digits followed by two y digits.
const rawWindow = 4

type rawState uint8

const (
	rawS0 rawState = iota // between points
	rawX1
	rawX2
	rawY1
	rawY2 // a point just ended
)

// Verify checks that text is a stream of 4-digit base-36 points, with
// whitespace only between points.
func Verify(text string) error {
	state := rawS0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case codec.IsBase36(c):
			switch state {
			case rawS0, rawY2:
				state = rawX1
			case rawX1:
				state = rawX2
			case rawX2:
				state = rawY1
			case rawY1:
				state = rawY2
			}
		case isRawSpace(c) && (state == rawS0 || state == rawY2):
			state = rawS0
		default:
			return fmt.Errorf("%w: unexpected %q at offset %d", ErrRawFormat, c, i)
		}
	}
	if state != rawS0 && state != rawY2 {
		return fmt.Errorf("%w: input ends inside a point", ErrRawFormat)
	}
	return nil
}

// ParseRaw decodes each non-blank line of text into one stroke. Lines end
// at \n, \r or \r\n. It does no
// validation: characters that are not base-36 digits decode as garbage and a
// trailing partial point is dropped. Run Verify first, or use DecodeRaw.
func ParseRaw(text string) *sketch.RawSketch {
	result := &sketch.RawSketch{}
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), "")
		if line == "" {
			continue
		}
		var stroke sketch.RawStroke
		for i := 0; i+rawWindow <= len(line); i += rawWindow {
			stroke.Points = append(stroke.Points, sketch.Point{
				X: rawCoord(line[i : i+2]),
				Y: rawCoord(line[i+2 : i+4]),
			})
		}
		result.Strokes = append(result.Strokes, stroke)
	}
	return result
}

// DecodeRaw verifies text and then parses it.
func DecodeRaw(text string) (*sketch.RawSketch, error) {
	if err := Verify(text); err != nil {
		return nil, err
	}
	return ParseRaw(text), nil
}

// rawCoord reads two digits at the width of a .hsc coordinate, so raw
// coordinates are never negative.
func rawCoord(digits string) int16 {
	v, err := codec.Base36(digits, coordWidth)
	if err != nil {
		return 0
	}
	return int16(v)
}

func isRawSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
