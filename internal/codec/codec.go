// Package codec decodes the fixed-width base-36 and base-10 digit runs used by
// the sketch formats.
package codec

import (
	"errors"
	"fmt"
)

// MaxBase36Width is the widest run whose values fit in 64 bits signed.
const MaxBase36Width = 12

var (
	ErrSyntax = errors.New("invalid digit")
	ErrRange  = errors.New("out of range")
)

// Error describes a digit run that could not be decoded.
type Error struct {
	Input  string
	Reason string
	Err    error // ErrSyntax or ErrRange
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode %q: %s", e.Input, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func syntaxErr(input, reason string) error {
	return &Error{Input: input, Reason: reason, Err: ErrSyntax}
}

func rangeErr(input, reason string) error {
	return &Error{Input: input, Reason: reason, Err: ErrRange}
}

// IsBase36 reports whether c is a base-36 digit in either case.
func IsBase36(c byte) bool {
	return IsBase10(c) || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// IsBase10 reports whether c is a decimal digit.
func IsBase10(c byte) bool {
	return '0' <= c && c <= '9'
}

func digit36(c byte) uint64 {
	switch {
	case IsBase10(c):
		return uint64(c - '0')
	case 'a' <= c && c <= 'z':
		return uint64(c-'a') + 10
	default:
		return uint64(c-'A') + 10
	}
}

// pow36 returns 36^n for n <= MaxBase36Width.
func pow36(n int) uint64 {
	v := uint64(1)
	for range n {
		v *= 36
	}
	return v
}

// Base36Unsigned decodes a run of at most width base-36 digits. Shorter runs
// read as if padded with leading zeros.
func Base36Unsigned(digits string, width int) (uint64, error) {
	if width < 1 || width > MaxBase36Width {
		return 0, rangeErr(digits, fmt.Sprintf("width %d outside 1..%d", width, MaxBase36Width))
	}
	if digits == "" {
		return 0, syntaxErr(digits, "empty digit run")
	}
	if len(digits) > width {
		return 0, rangeErr(digits, fmt.Sprintf("%d digits exceed width %d", len(digits), width))
	}
	var v uint64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if !IsBase36(c) {
			return 0, syntaxErr(digits, fmt.Sprintf("%q is not a base-36 digit", c))
		}
		v = 36*v + digit36(c)
	}
	return v, nil
}

// Base36 decodes a run of at most width base-36 digits as a signed value:
// the upper half of [0, 36^width) wraps to negative numbers.
func Base36(digits string, width int) (int64, error) {
	v, err := Base36Unsigned(digits, width)
	if err != nil {
		return 0, err
	}
	limit := pow36(width)
	if v >= limit/2 {
		return int64(v) - int64(limit), nil
	}
	return int64(v), nil
}

// Base10Int decodes an optionally signed decimal integer.
func Base10Int(text string) (int64, error) {
	sign, body := splitSign(text)
	if body == "" {
		return 0, syntaxErr(text, "no digits")
	}
	v, err := decimalDigits(text, body)
	if err != nil {
		return 0, err
	}
	if sign < 0 {
		if v > 1<<63 {
			return 0, rangeErr(text, "overflows int64")
		}
		return -int64(v-1) - 1, nil
	}
	if v > 1<<63-1 {
		return 0, rangeErr(text, "overflows int64")
	}
	return int64(v), nil
}

// Base10Float decodes sign, integer part, '.' and fraction. Either part may
// be empty, but at least one digit is required.
func Base10Float(text string) (float64, error) {
	sign, body := splitSign(text)
	intPart, fracPart := body, ""
	for i := 0; i < len(body); i++ {
		if body[i] == '.' {
			intPart, fracPart = body[:i], body[i+1:]
			break
		}
	}
	if intPart == "" && fracPart == "" {
		return 0, syntaxErr(text, "no digits")
	}

	var v float64
	if intPart != "" {
		n, err := decimalDigits(text, intPart)
		if err != nil {
			return 0, err
		}
		v = float64(n)
	}
	if fracPart != "" {
		n, err := decimalDigits(text, fracPart)
		if err != nil {
			return 0, err
		}
		scale := 1.0
		for range len(fracPart) {
			scale *= 10
		}
		v += float64(n) / scale
	}
	return float64(sign) * v, nil
}

func splitSign(text string) (int, string) {
	if text == "" {
		return 1, ""
	}
	switch text[0] {
	case '+':
		return 1, text[1:]
	case '-':
		return -1, text[1:]
	}
	return 1, text
}

func decimalDigits(input, digits string) (uint64, error) {
	var v uint64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if !IsBase10(c) {
			return 0, syntaxErr(input, fmt.Sprintf("%q is not a decimal digit", c))
		}
		d := uint64(c - '0')
		if v > (1<<64-1-d)/10 {
			return 0, rangeErr(input, "overflows 64 bits")
		}
		v = 10*v + d
	}
	return v, nil
}

// Windows strips every sep byte from digits and splits the rest into runs of
// exactly size characters. A trailing partial run is an ErrRange error.
func Windows(digits string, size int, sep byte) ([]string, error) {
	if size < 1 {
		return nil, rangeErr(digits, fmt.Sprintf("window size %d", size))
	}
	packed := make([]byte, 0, len(digits))
	for i := 0; i < len(digits); i++ {
		if digits[i] != sep {
			packed = append(packed, digits[i])
		}
	}
	if len(packed)%size != 0 {
		return nil, rangeErr(digits, fmt.Sprintf("%d digits is not a multiple of %d", len(packed), size))
	}
	out := make([]string, 0, len(packed)/size)
	for i := 0; i < len(packed); i += size {
		out = append(out, string(packed[i:i+size]))
	}
	return out, nil
}
