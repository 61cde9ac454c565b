package sketch

import (
	"fmt"
	"strings"
)

// ElementKind identifies what a grouping Element represents.
type ElementKind int

const (
	KindNone ElementKind = iota
	KindLayer
	KindPencil
	KindBrush
	KindMask
)

var kindNames = map[ElementKind]string{
	KindNone:   "none",
	KindLayer:  "layer",
	KindPencil: "pencil",
	KindBrush:  "brush",
	KindMask:   "mask",
}

func (k ElementKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind by its String form, case-insensitively.
func ParseKind(s string) (ElementKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown element kind: %q", s)
}

// MarshalText encodes the kind by name.
func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ElementKind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
