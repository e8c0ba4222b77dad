package iq

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
)

// AppendScalar appends v to dst as one little-endian component of enc.
// Integer encodings round to nearest and clamp to the representable range.
func AppendScalar(dst []byte, v float64, enc Encoding) []byte {
	switch enc {
	case Uint8:
		return append(dst, uint8(clampRound(v, 0, math.MaxUint8)))
	case Int8:
		return append(dst, byte(int8(clampRound(v, math.MinInt8, math.MaxInt8))))
	case Int16:
		return binary.LittleEndian.AppendUint16(dst, uint16(int16(clampRound(v, math.MinInt16, math.MaxInt16))))
	case Uint16:
		return binary.LittleEndian.AppendUint16(dst, uint16(clampRound(v, 0, math.MaxUint16)))
	case Float32:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
	case Float64:
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("iq: AppendScalar called with unsupported encoding %d", enc))
	}
}

func clampRound(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, math.Round(v)))
}

type writerOptions struct {
	compression Compression
	denormalize bool
}

type WriterOption func(*writerOptions)

// WithOutputCompression compresses everything written through the Writer.
func WithOutputCompression(c Compression) WriterOption {
	return func(o *writerOptions) {
		o.compression = c
	}
}

// WithDenormalize treats incoming samples as normalized to [-1, 1] and maps
// them back onto the native range of the output encoding before encoding.
func WithDenormalize() WriterOption {
	return func(o *writerOptions) {
		o.denormalize = true
	}
}

// Writer encodes complex samples as a raw interleaved I/Q stream.
type Writer struct {
	out     io.Writer
	zw      *zstd.Encoder
	enc     Encoding
	offset  float64
	scale   float64
	buf     []byte
	written int64
}

// NewWriter returns a Writer encoding samples as enc onto w.
// Close must be called to flush a compressed stream; it does not close w.
func NewWriter(w io.Writer, enc Encoding, opts ...WriterOption) (*Writer, error) {
	if !enc.Valid() {
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrInvalidConfig, uint8(enc))
	}

	var o writerOptions
	for _, opt := range opts {
		opt(&o)
	}

	iw := &Writer{out: w, enc: enc, offset: 0, scale: 1}
	if o.denormalize {
		iw.offset, iw.scale = Scale(enc)
	}

	switch o.compression {
	case CompressionNone:
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		iw.zw = zw
		iw.out = zw
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidConfig, uint8(o.compression))
	}

	return iw, nil
}

func (w *Writer) WriteComplex64(samples []complex64) error {
	w.buf = w.buf[:0]
	for _, s := range samples {
		w.appendSample(float64(real(s)), float64(imag(s)))
	}
	return w.flush(len(samples))
}

func (w *Writer) WriteComplex128(samples []complex128) error {
	w.buf = w.buf[:0]
	for _, s := range samples {
		w.appendSample(real(s), imag(s))
	}
	return w.flush(len(samples))
}

func (w *Writer) appendSample(re, im float64) {
	w.buf = AppendScalar(w.buf, re*w.scale+w.offset, w.enc)
	w.buf = AppendScalar(w.buf, im*w.scale+w.offset, w.enc)
}

func (w *Writer) flush(n int) error {
	if _, err := w.out.Write(w.buf); err != nil {
		return fmt.Errorf("writing %d %s samples: %w", n, w.enc, err)
	}
	w.written += int64(n)
	return nil
}

// SamplesWritten is the number of complex samples accepted so far.
func (w *Writer) SamplesWritten() int64 { return w.written }

func (w *Writer) Close() error {
	if w.zw == nil {
		return nil
	}
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("closing zstd stream: %w", err)
	}
	return nil
}
