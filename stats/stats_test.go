package stats

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/argusdusty/gofft"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

func tone(n, bin, size int, amplitude float64) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(amplitude, 0) * cmplx.Exp(complex(0, 2*math.Pi*float64(bin*i)/float64(size)))
	}
	return out
}

func TestComputeDC(t *testing.T) {
	samples := []complex128{complex(1, -1), complex(1, -1), complex(1, -1), complex(1, -1)}
	c := Compute(3, samples)

	if c.Index != 3 || c.Samples != 4 {
		t.Errorf("Expected index 3 with 4 samples, got index %d with %d", c.Index, c.Samples)
	}
	if c.DCOffset() != complex(1, -1) {
		t.Errorf("Expected DC offset (1-1i), got %v", c.DCOffset())
	}
	if c.StdI != 0 || c.StdQ != 0 {
		t.Errorf("Expected zero deviation, got I=%v Q=%v", c.StdI, c.StdQ)
	}
	if math.Abs(c.RMS-math.Sqrt2) > 1e-12 {
		t.Errorf("Expected RMS %v, got %v", math.Sqrt2, c.RMS)
	}
	if math.Abs(c.PowerDB-10*math.Log10(2)) > 1e-9 {
		t.Errorf("Expected power %v dB, got %v", 10*math.Log10(2), c.PowerDB)
	}
}

func TestComputeTone(t *testing.T) {
	c := Compute(0, tone(256, 4, 256, 0.5))

	if cmplx.Abs(c.DCOffset()) > 1e-9 {
		t.Errorf("Expected no DC offset for a whole number of cycles, got %v", c.DCOffset())
	}
	if math.Abs(c.Peak-0.5) > 1e-9 {
		t.Errorf("Expected peak 0.5, got %v", c.Peak)
	}
	if math.Abs(c.StdI-0.5/math.Sqrt2) > 1e-9 {
		t.Errorf("Expected I deviation %v, got %v", 0.5/math.Sqrt2, c.StdI)
	}
	if math.Abs(c.PowerDB-ToDB(0.25)) > 1e-9 {
		t.Errorf("Expected power %v dB, got %v", ToDB(0.25), c.PowerDB)
	}
}

func TestComputeEmpty(t *testing.T) {
	c := Compute(7, nil)
	if c.Samples != 0 || c.PowerDB != FloorDB || c.Peak != 0 {
		t.Errorf("Unexpected stats for an empty chunk: %+v", c)
	}
}

func TestToDB(t *testing.T) {
	if got := ToDB(0); got != FloorDB {
		t.Errorf("ToDB(0) = %v, want %v", got, FloorDB)
	}
	if got := ToDB(1e-40); got != FloorDB {
		t.Errorf("ToDB(1e-40) = %v, want %v", got, FloorDB)
	}
	if got := ToDB(100); math.Abs(got-20) > 1e-12 {
		t.Errorf("ToDB(100) = %v, want 20", got)
	}
}

func TestSummary(t *testing.T) {
	var s Summary
	s.Add(Compute(0, []complex128{complex(2, 0), complex(2, 0)}))
	s.Add(Compute(1, []complex128{complex(0, 4), complex(0, 4), complex(0, 4), complex(0, 4), complex(0, 4), complex(0, 4)}))
	s.Add(Compute(2, nil))

	if s.Chunks != 2 || s.Samples != 8 {
		t.Errorf("Expected 2 chunks and 8 samples, got %d and %d", s.Chunks, s.Samples)
	}
	if s.DCOffset() != complex(0.5, 3) {
		t.Errorf("Expected DC offset (0.5+3i), got %v", s.DCOffset())
	}
	if math.Abs(s.MeanPower()-13) > 1e-12 {
		t.Errorf("Expected mean power 13, got %v", s.MeanPower())
	}
	if s.Peak != 4 {
		t.Errorf("Expected peak 4, got %v", s.Peak)
	}

	var empty Summary
	if empty.MeanPowerDB() != FloorDB || empty.DCOffset() != 0 {
		t.Errorf("Unexpected empty summary: power %v, DC %v", empty.MeanPowerDB(), empty.DCOffset())
	}
}

func TestSpectrumPeakBin(t *testing.T) {
	testCases := []struct {
		name string
		bin  int
	}{
		{"positive", 8},
		{"negative", -12},
		{"dc", 0},
	}

	const size = 64
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bins, err := Spectrum(tone(size, tc.bin, size, 1), size)
			if err != nil {
				t.Fatalf("Failed to compute spectrum: %v", err)
			}
			if len(bins) != size {
				t.Fatalf("Expected %d bins, got %d", size, len(bins))
			}
			if got, want := floats.MaxIdx(bins), size/2+tc.bin; got != want {
				t.Errorf("Expected peak at bin %d, got %d", want, got)
			}
		})
	}
}

func TestSpectrumPadsAndTruncates(t *testing.T) {
	short, err := Spectrum(tone(10, 4, 32, 1), 32)
	if err != nil {
		t.Fatalf("Failed on short input: %v", err)
	}
	if len(short) != 32 {
		t.Errorf("Expected 32 bins, got %d", len(short))
	}

	long, err := Spectrum(tone(1000, 4, 16, 1), 16)
	if err != nil {
		t.Fatalf("Failed on long input: %v", err)
	}
	if got := floats.MaxIdx(long); got != 8+4 {
		t.Errorf("Expected peak at bin 12, got %d", got)
	}

	silent, err := Spectrum(nil, 8)
	if err != nil {
		t.Fatalf("Failed on empty input: %v", err)
	}
	for i, v := range silent {
		if v != FloorDB {
			t.Errorf("Bin %d of an empty spectrum: got %v, want %v", i, v, FloorDB)
		}
	}
}

func TestSpectrumInvalidSize(t *testing.T) {
	for _, size := range []int{0, 1, 3, 100, -8} {
		if _, err := Spectrum(nil, size); !errors.Is(err, ErrSpectrumSize) {
			t.Errorf("Size %d: expected ErrSpectrumSize, got %v", size, err)
		}
	}
}

func TestSpectrumMatchesGofft(t *testing.T) {
	const size = 128
	samples := make([]complex128, size)
	for i := range samples {
		samples[i] = complex(math.Sin(float64(i)*0.37)+0.1, math.Cos(float64(i)*1.91)*0.3)
	}

	got, err := Spectrum(samples, size)
	if err != nil {
		t.Fatalf("Failed to compute spectrum: %v", err)
	}

	ref := make([]complex128, size)
	copy(ref, samples)
	window.HannComplex(ref)
	if err := gofft.FFT(ref); err != nil {
		t.Fatalf("Failed to run reference FFT: %v", err)
	}

	for i := range got {
		c := ref[(i+size/2)%size]
		want := (real(c)*real(c) + imag(c)*imag(c)) / (size * size)
		have := math.Pow(10, got[i]/10)
		if math.Abs(have-want) > 1e-9 {
			t.Errorf("Bin %d: got power %v, reference %v", i, have, want)
		}
	}
}

func TestMagnitudes(t *testing.T) {
	samples := []complex128{complex(3, 4), complex(0, -2), complex(1, 0)}
	if got := Magnitudes(samples, 2); len(got) != 2 || got[0] != 5 || got[1] != 2 {
		t.Errorf("Magnitudes(2) = %v", got)
	}
	if got := Magnitudes(samples, 0); len(got) != 3 {
		t.Errorf("Expected all samples for n=0, got %d", len(got))
	}
}
