package iq

import (
	"fmt"
	"strings"
)

// Encoding is the on-disk type of a single I or Q component.
// It is declared by the caller; raw captures carry no type tag.
type Encoding uint8

const (
	Uint8 Encoding = iota + 1
	Int8
	Int16
	Uint16
	Float32
	Float64
)

var encodingNames = map[Encoding]string{
	Uint8:   "u8",
	Int8:    "s8",
	Int16:   "s16",
	Uint16:  "u16",
	Float32: "f32",
	Float64: "f64",
}

// Spellings used by rtl_sdr, gqrx, SDR++ and friends.
var encodingAliases = map[string]Encoding{
	"u8":      Uint8,
	"cu8":     Uint8,
	"uint8":   Uint8,
	"s8":      Int8,
	"i8":      Int8,
	"cs8":     Int8,
	"int8":    Int8,
	"s16":     Int16,
	"i16":     Int16,
	"cs16":    Int16,
	"int16":   Int16,
	"u16":     Uint16,
	"cu16":    Uint16,
	"uint16":  Uint16,
	"f32":     Float32,
	"cf32":    Float32,
	"fc32":    Float32,
	"float32": Float32,
	"f64":     Float64,
	"cf64":    Float64,
	"fc64":    Float64,
	"float64": Float64,
}

// Width returns the size in bytes of one scalar component, or 0 for an unknown encoding.
func (e Encoding) Width() int {
	switch e {
	case Uint8, Int8:
		return 1
	case Int16, Uint16:
		return 2
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// SampleWidth returns the size in bytes of one complex sample (I followed by Q).
func (e Encoding) SampleWidth() int {
	return 2 * e.Width()
}

func (e Encoding) Valid() bool {
	return e.Width() != 0
}

func (e Encoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

func (e Encoding) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrInvalidConfig, uint8(e))
	}
	return []byte(e.String()), nil
}

func (e *Encoding) UnmarshalText(text []byte) error {
	enc, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = enc
	return nil
}

// ParseEncoding maps a user supplied name such as "cu8", "cs16" or "cf32" to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	if enc, ok := encodingAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return enc, nil
	}
	return 0, fmt.Errorf("%w: unknown sample encoding %q", ErrInvalidConfig, s)
}

// Encodings lists every supported encoding in declaration order.
func Encodings() []Encoding {
	return []Encoding{Uint8, Int8, Int16, Uint16, Float32, Float64}
}
