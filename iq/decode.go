package iq

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float is the set of output precisions a decoded component can take.
type Float interface {
	~float32 | ~float64
}

// DecodeScalar interprets raw as one little-endian component of the given encoding.
// Integer encodings are cast to T unchanged: no centering, no scaling.
func DecodeScalar[T Float](raw []byte, enc Encoding) (T, error) {
	if !enc.Valid() {
		return 0, fmt.Errorf("%w: unknown encoding %d", ErrDecode, uint8(enc))
	}
	if len(raw) != enc.Width() {
		return 0, fmt.Errorf("%w: %s component needs %d bytes, got %d", ErrDecode, enc, enc.Width(), len(raw))
	}
	return decodeScalar[T](raw, enc), nil
}

// decodeScalar assumes len(raw) == enc.Width().
func decodeScalar[T Float](raw []byte, enc Encoding) T {
	switch enc {
	case Uint8:
		return T(raw[0])
	case Int8:
		return T(int8(raw[0]))
	case Int16:
		return T(int16(binary.LittleEndian.Uint16(raw)))
	case Uint16:
		return T(binary.LittleEndian.Uint16(raw))
	case Float32:
		return T(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
	case Float64:
		return T(math.Float64frombits(binary.LittleEndian.Uint64(raw)))
	default:
		panic(fmt.Sprintf("iq: decodeScalar called with unsupported encoding %d", enc))
	}
}

// ComposeComplex64 decodes an I and a Q component into a single-precision sample.
func ComposeComplex64(re, im []byte, enc Encoding) (complex64, error) {
	r, err := DecodeScalar[float32](re, enc)
	if err != nil {
		return 0, err
	}
	i, err := DecodeScalar[float32](im, enc)
	if err != nil {
		return 0, err
	}
	return complex(r, i), nil
}

// ComposeComplex128 decodes an I and a Q component into a double-precision sample.
func ComposeComplex128(re, im []byte, enc Encoding) (complex128, error) {
	r, err := DecodeScalar[float64](re, enc)
	if err != nil {
		return 0, err
	}
	i, err := DecodeScalar[float64](im, enc)
	if err != nil {
		return 0, err
	}
	return complex(r, i), nil
}

// DecodeComplex64 decodes a run of interleaved I/Q bytes.
// len(raw) must be a multiple of enc.SampleWidth().
func DecodeComplex64(raw []byte, enc Encoding) ([]complex64, error) {
	return decodeSamples(raw, enc, pair64)
}

// DecodeComplex128 is DecodeComplex64 at double precision.
func DecodeComplex128(raw []byte, enc Encoding) ([]complex128, error) {
	return decodeSamples(raw, enc, pair128)
}

func pair64(re, im float32) complex64   { return complex(re, im) }
func pair128(re, im float64) complex128 { return complex(re, im) }

func decodeSamples[F Float, C complex64 | complex128](raw []byte, enc Encoding, pair func(re, im F) C) ([]C, error) {
	if !enc.Valid() {
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrDecode, uint8(enc))
	}
	w := enc.Width()
	sw := 2 * w
	if len(raw)%sw != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %s samples", ErrDecode, len(raw), enc)
	}

	out := make([]C, 0, len(raw)/sw)
	for off := 0; off < len(raw); off += sw {
		re := decodeScalar[F](raw[off:off+w], enc)
		im := decodeScalar[F](raw[off+w:off+sw], enc)
		out = append(out, pair(re, im))
	}
	return out, nil
}
