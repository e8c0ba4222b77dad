package iq

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth    = 16
	wavChannels    = 2
	wavFormatPCM   = 1
	wavFullScale16 = math.MaxInt16
)

// WAVWriter writes normalized complex samples as a 16-bit stereo WAV file,
// I on the left channel and Q on the right.
type WAVWriter struct {
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	written int64
}

func NewWAVWriter(w io.WriteSeeker, sampleRate int) (*WAVWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, sampleRate)
	}
	return &WAVWriter{
		encoder: wav.NewEncoder(w, sampleRate, wavBitDepth, wavChannels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: wavChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// WriteComplex64 expects samples in [-1, 1]; values outside are clipped.
func (w *WAVWriter) WriteComplex64(samples []complex64) error {
	w.buf.Data = w.buf.Data[:0]
	for _, s := range samples {
		w.buf.Data = append(w.buf.Data, toPCM16(float64(real(s))), toPCM16(float64(imag(s))))
	}
	return w.write(len(samples))
}

func (w *WAVWriter) WriteComplex128(samples []complex128) error {
	w.buf.Data = w.buf.Data[:0]
	for _, s := range samples {
		w.buf.Data = append(w.buf.Data, toPCM16(real(s)), toPCM16(imag(s)))
	}
	return w.write(len(samples))
}

func (w *WAVWriter) write(n int) error {
	if n == 0 {
		return nil
	}
	if err := w.encoder.Write(w.buf); err != nil {
		return fmt.Errorf("writing %d wav frames: %w", n, err)
	}
	w.written += int64(n)
	return nil
}

func (w *WAVWriter) SamplesWritten() int64 { return w.written }

// Close finalizes the RIFF header. It does not close the underlying file.
func (w *WAVWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

func toPCM16(v float64) int {
	return int(clampRound(v*wavFullScale16, -wavFullScale16, wavFullScale16))
}
