package iq

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeScalar(t *testing.T) {
	f32 := binary.LittleEndian.AppendUint32(nil, math.Float32bits(1.5))
	f64 := binary.LittleEndian.AppendUint64(nil, math.Float64bits(-2.25))

	testCases := []struct {
		name string
		raw  []byte
		enc  Encoding
		want float64
	}{
		{"u8 max", []byte{0xff}, Uint8, 255},
		{"u8 zero", []byte{0x00}, Uint8, 0},
		{"s8 minus one", []byte{0xff}, Int8, -1},
		{"s8 min", []byte{0x80}, Int8, -128},
		{"s16 minus two", []byte{0xfe, 0xff}, Int16, -2},
		{"s16 little endian", []byte{0x01, 0x02}, Int16, 0x0201},
		{"u16 unsigned", []byte{0xfe, 0xff}, Uint16, 65534},
		{"f32", f32, Float32, 1.5},
		{"f64", f64, Float64, -2.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got64, err := DecodeScalar[float64](tc.raw, tc.enc)
			if err != nil {
				t.Fatalf("DecodeScalar[float64] returned error: %v", err)
			}
			if got64 != tc.want {
				t.Errorf("DecodeScalar[float64] = %v, want %v", got64, tc.want)
			}

			got32, err := DecodeScalar[float32](tc.raw, tc.enc)
			if err != nil {
				t.Fatalf("DecodeScalar[float32] returned error: %v", err)
			}
			if got32 != float32(tc.want) {
				t.Errorf("DecodeScalar[float32] = %v, want %v", got32, float32(tc.want))
			}
		})
	}
}

func TestDecodeScalarWidthMismatch(t *testing.T) {
	testCases := []struct {
		name string
		raw  []byte
		enc  Encoding
	}{
		{"u8 too long", []byte{1, 2}, Uint8},
		{"s16 too short", []byte{1}, Int16},
		{"f32 empty", nil, Float32},
		{"f64 seven bytes", make([]byte, 7), Float64},
		{"unknown encoding", []byte{1}, Encoding(0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeScalar[float64](tc.raw, tc.enc); !errors.Is(err, ErrDecode) {
				t.Errorf("Expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestComposeComplex(t *testing.T) {
	neg := int16(-300)
	re := binary.LittleEndian.AppendUint16(nil, uint16(neg))
	im := binary.LittleEndian.AppendUint16(nil, 300)

	c64, err := ComposeComplex64(re, im, Int16)
	if err != nil {
		t.Fatalf("ComposeComplex64 returned error: %v", err)
	}
	if c64 != complex(float32(-300), float32(300)) {
		t.Errorf("ComposeComplex64 = %v", c64)
	}

	c128, err := ComposeComplex128(re, im, Int16)
	if err != nil {
		t.Fatalf("ComposeComplex128 returned error: %v", err)
	}
	if c128 != complex(-300, 300) {
		t.Errorf("ComposeComplex128 = %v", c128)
	}

	if _, err := ComposeComplex128(re, im[:1], Int16); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode for short imaginary part, got %v", err)
	}
	if _, err := ComposeComplex64(re[:1], im, Int16); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode for short real part, got %v", err)
	}
}

func TestDecodeComplexRuns(t *testing.T) {
	for _, enc := range Encodings() {
		t.Run(enc.String(), func(t *testing.T) {
			raw, want := makeCapture(enc, 9)

			got, err := DecodeComplex128(raw, enc)
			if err != nil {
				t.Fatalf("DecodeComplex128 returned error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("DecodeComplex128 mismatch (-want +got):\n%s", diff)
			}

			got64, err := DecodeComplex64(raw, enc)
			if err != nil {
				t.Fatalf("DecodeComplex64 returned error: %v", err)
			}
			for i, s := range got64 {
				if s != complex64(want[i]) {
					t.Errorf("Sample %d: got %v, want %v", i, s, complex64(want[i]))
				}
			}

			if _, err := DecodeComplex128(raw[:len(raw)-1], enc); !errors.Is(err, ErrDecode) {
				t.Errorf("Expected ErrDecode for a ragged run, got %v", err)
			}
		})
	}
}
