// Package stats computes per-chunk signal statistics and power spectra for
// decoded I/Q samples.
package stats

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FloorDB is reported instead of -Inf for zero power.
const FloorDB = -200.0

var ErrSpectrumSize = errors.New("spectrum size must be a power of two >= 2")

type Chunk struct {
	Index   int
	Samples int
	MeanI   float64
	MeanQ   float64
	StdI    float64
	StdQ    float64
	RMS     float64
	PowerDB float64
	Peak    float64
}

// DCOffset is the mean sample of the chunk.
func (c Chunk) DCOffset() complex128 {
	return complex(c.MeanI, c.MeanQ)
}

func Compute(index int, samples []complex128) Chunk {
	c := Chunk{Index: index, Samples: len(samples), PowerDB: FloorDB}
	if len(samples) == 0 {
		return c
	}

	i := make([]float64, len(samples))
	q := make([]float64, len(samples))
	mag := make([]float64, len(samples))
	var power float64
	for n, s := range samples {
		i[n] = real(s)
		q[n] = imag(s)
		mag[n] = cmplx.Abs(s)
		power += real(s)*real(s) + imag(s)*imag(s)
	}
	power /= float64(len(samples))

	c.MeanI, c.StdI = stat.PopMeanStdDev(i, nil)
	c.MeanQ, c.StdQ = stat.PopMeanStdDev(q, nil)
	c.RMS = math.Sqrt(power)
	c.PowerDB = ToDB(power)
	c.Peak = floats.Max(mag)
	return c
}

// ToDB converts a power ratio to decibels, clamped at FloorDB.
func ToDB(power float64) float64 {
	if power <= 0 {
		return FloorDB
	}
	return math.Max(10*math.Log10(power), FloorDB)
}

// Summary accumulates chunk statistics over a whole capture.
type Summary struct {
	Chunks  int
	Samples int64
	Peak    float64

	sumI     float64
	sumQ     float64
	sumPower float64
}

func (s *Summary) Add(c Chunk) {
	if c.Samples == 0 {
		return
	}
	n := float64(c.Samples)
	s.Chunks++
	s.Samples += int64(c.Samples)
	s.sumI += c.MeanI * n
	s.sumQ += c.MeanQ * n
	s.sumPower += c.RMS * c.RMS * n
	s.Peak = math.Max(s.Peak, c.Peak)
}

func (s Summary) DCOffset() complex128 {
	if s.Samples == 0 {
		return 0
	}
	n := float64(s.Samples)
	return complex(s.sumI/n, s.sumQ/n)
}

func (s Summary) MeanPower() float64 {
	if s.Samples == 0 {
		return 0
	}
	return s.sumPower / float64(s.Samples)
}

func (s Summary) MeanPowerDB() float64 {
	return ToDB(s.MeanPower())
}

// Spectrum returns the Hann-windowed power spectrum of samples in dB with
// the zero frequency bin at size/2. Input is truncated or zero padded to
// size.
func Spectrum(samples []complex128, size int) ([]float64, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrSpectrumSize, size)
	}

	seq := make([]complex128, size)
	if n := copy(seq, samples); n > 1 {
		window.HannComplex(seq[:n])
	}

	fft := fourier.NewCmplxFFT(size)
	coeffs := fft.Coefficients(nil, seq)

	norm := 1 / float64(size*size)
	out := make([]float64, size)
	for i := range out {
		c := coeffs[fft.ShiftIdx(i)]
		out[i] = ToDB((real(c)*real(c) + imag(c)*imag(c)) * norm)
	}
	return out, nil
}

// Magnitudes returns |s| for at most n samples, for plotting.
func Magnitudes(samples []complex128, n int) []float64 {
	if n > len(samples) || n <= 0 {
		n = len(samples)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = cmplx.Abs(samples[i])
	}
	return out
}
