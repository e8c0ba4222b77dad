package iq

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// testValue returns a value that survives a round trip through enc exactly.
func testValue(enc Encoding, i int) float64 {
	switch enc {
	case Uint8:
		return float64(i % 256)
	case Int8:
		return float64(i%256 - 128)
	case Int16:
		return float64((i*337)%65536 - 32768)
	case Uint16:
		return float64((i * 337) % 65536)
	case Float32:
		return float64(i)*0.25 - 3
	case Float64:
		return float64(i)*0.1 - 7
	default:
		return 0
	}
}

// makeCapture encodes k samples of enc and returns the raw bytes with the expected values.
func makeCapture(enc Encoding, k int) ([]byte, []complex128) {
	raw := make([]byte, 0, k*enc.SampleWidth())
	want := make([]complex128, 0, k)
	for i := 0; i < k; i++ {
		re, im := testValue(enc, 2*i), testValue(enc, 2*i+1)
		raw = AppendScalar(raw, re, enc)
		raw = AppendScalar(raw, im, enc)
		want = append(want, complex(re, im))
	}
	return raw, want
}

func writeCapture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.raw")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}
	return path
}

func openCapture(t *testing.T, data []byte, chunk int, enc Encoding, opts ...Option) *Reader {
	t.Helper()
	r, err := New(writeCapture(t, data), chunk, enc, opts...)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// readAll128 drains r and returns every chunk in order.
func readAll128(t *testing.T, r *Reader) [][]complex128 {
	t.Helper()
	var chunks [][]complex128
	for {
		chunk, err := r.ReadChunk128()
		if errors.Is(err, io.EOF) {
			if chunk != nil {
				t.Errorf("Expected nil chunk with EOF, got %d samples", len(chunk))
			}
			return chunks
		}
		if err != nil {
			t.Fatalf("Error reading chunk %d: %v", len(chunks), err)
		}
		chunks = append(chunks, chunk)
	}
}

func readAll64(t *testing.T, r *Reader) []complex64 {
	t.Helper()
	var samples []complex64
	for {
		chunk, err := r.ReadChunk64()
		if errors.Is(err, io.EOF) {
			return samples
		}
		if err != nil {
			t.Fatalf("Error reading chunk: %v", err)
		}
		samples = append(samples, chunk...)
	}
}
