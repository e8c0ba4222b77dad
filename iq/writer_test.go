package iq

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAppendScalarClamps(t *testing.T) {
	testCases := []struct {
		name string
		v    float64
		enc  Encoding
		want []byte
	}{
		{"u8 overflow", 300, Uint8, []byte{0xff}},
		{"u8 underflow", -4, Uint8, []byte{0x00}},
		{"u8 rounds", 1.6, Uint8, []byte{0x02}},
		{"s8 overflow", 200, Int8, []byte{0x7f}},
		{"s8 underflow", -200, Int8, []byte{0x80}},
		{"s16 little endian", -2, Int16, []byte{0xfe, 0xff}},
		{"s16 overflow", 1e9, Int16, []byte{0xff, 0x7f}},
		{"u16 little endian", 0x0102, Uint16, []byte{0x02, 0x01}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AppendScalar(nil, tc.v, tc.enc); !bytes.Equal(got, tc.want) {
				t.Errorf("AppendScalar(%v, %s) = %x, want %x", tc.v, tc.enc, got, tc.want)
			}
		})
	}
}

func TestWriterRoundTrip(t *testing.T) {
	for _, enc := range Encodings() {
		t.Run(enc.String(), func(t *testing.T) {
			raw, want := makeCapture(enc, 33)

			var out bytes.Buffer
			w, err := NewWriter(&out, enc)
			if err != nil {
				t.Fatalf("Failed to create writer: %v", err)
			}
			if err := w.WriteComplex128(want); err != nil {
				t.Fatalf("Failed to write samples: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Failed to close writer: %v", err)
			}

			if !bytes.Equal(out.Bytes(), raw) {
				t.Errorf("Writer output differs from AppendScalar encoding")
			}
			if w.SamplesWritten() != int64(len(want)) {
				t.Errorf("Expected %d samples written, got %d", len(want), w.SamplesWritten())
			}
		})
	}
}

func TestWriterDenormalize(t *testing.T) {
	raw, _ := makeCapture(Uint8, 64)
	samples, err := DecodeComplex64(raw, Uint8)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	NormalizeComplex64(samples, Uint8)

	var out bytes.Buffer
	w, err := NewWriter(&out, Uint8, WithDenormalize())
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.WriteComplex64(samples); err != nil {
		t.Fatalf("Failed to write samples: %v", err)
	}

	if !bytes.Equal(out.Bytes(), raw) {
		t.Errorf("Normalize then denormalize did not reproduce the capture")
	}
}

func TestWriterConvertsEncodings(t *testing.T) {
	_, want := makeCapture(Int8, 16)

	var out bytes.Buffer
	w, err := NewWriter(&out, Float32)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.WriteComplex128(want); err != nil {
		t.Fatalf("Failed to write samples: %v", err)
	}

	got, err := DecodeComplex128(out.Bytes(), Float32)
	if err != nil {
		t.Fatalf("Failed to decode f32 output: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("s8 -> f32 mismatch (-want +got):\n%s", diff)
	}
}

func TestNewWriterInvalid(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, Encoding(0)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown encoding, got %v", err)
	}
	if _, err := NewWriter(&bytes.Buffer{}, Uint8, WithOutputCompression(Compression(7))); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown compression, got %v", err)
	}
}
