package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/iqtools/config"
	"github.com/jrwynneiii/iqtools/iq"
	"github.com/jrwynneiii/iqtools/stats"
)

const (
	RC_SUCCESS        = 0
	RC_TRUNCATED      = 1
	RC_INVALID_CONFIG = 2
	RC_IO_ERROR       = 3
	RC_READ_ERROR     = 4
	RC_DECODE_ERROR   = 5
)

var cli struct {
	Paths     []string `arg:"" help:"Paths to raw IQ captures" sep:" "`
	Config    string   `help:"Path to an HCL config file"`
	Encoding  string   `short:"e" help:"Sample encoding of the captures (u8, s8, s16, u16, f32, f64)"`
	ChunkSize int      `help:"Complex samples read per chunk"`
	Normalize bool     `help:"Rescale integer samples onto [-1, 1] before computing stats"`
	Chunks    bool     `help:"Print statistics for every chunk" default:"false"`
	Spectrum  bool     `help:"Print the strongest bin of the first chunk's spectrum" default:"false"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4A9B4A"))
	labelStyle = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C4A000"))
	boxStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4A9B4A")).Padding(0, 1)
)

func main() {
	_ = kong.Parse(&cli)
	if len(cli.Paths) == 0 {
		os.Exit(RC_SUCCESS)
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Errorf("Could not load config: %s", err.Error())
		os.Exit(RC_INVALID_CONFIG)
	}
	log.SetLevel(cfg.Level())

	if err := applyFlags(&cfg); err != nil {
		log.Errorf("Invalid options: %s", err.Error())
		os.Exit(RC_INVALID_CONFIG)
	}

	var rc int = 0
	for _, path := range cli.Paths {
		report, ret := statCapture(path, cfg)
		if report != "" {
			fmt.Println(report)
		}
		if ret > rc {
			rc = ret
		}
	}
	os.Exit(rc)
}

// applyFlags overlays the command line on cfg and validates the result.
func applyFlags(cfg *config.Config) error {
	if cli.Encoding != "" {
		enc, err := iq.ParseEncoding(cli.Encoding)
		if err != nil {
			return err
		}
		cfg.Input.Encoding = enc
	}
	if cli.ChunkSize != 0 {
		cfg.Input.ChunkSize = cli.ChunkSize
	}
	if cli.Normalize {
		cfg.Input.Normalize = true
	}
	return cfg.Validate()
}

// statCapture reads the capture at path and renders its report along with
// the exit code for that file.
func statCapture(path string, cfg config.Config) (string, int) {
	compression := cfg.Input.Compression
	if compression == iq.CompressionNone {
		compression = iq.CompressionFromPath(path)
	}

	r, err := iq.New(path, cfg.Input.ChunkSize, cfg.Input.Encoding, iq.WithCompression(compression))
	if err != nil {
		log.Errorf("Could not open capture %s: %s", path, err.Error())
		return "", exitCode(err)
	}
	defer r.Close()

	var summary stats.Summary
	var spectrum []float64
	var perChunk strings.Builder
	for i := 0; ; i++ {
		chunk, err := r.ReadChunk128()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Errorf("Failed reading %s after %d samples: %s", path, r.SamplesRead(), err.Error())
			return "", exitCode(err)
		}
		if cfg.Input.Normalize {
			iq.NormalizeComplex128(chunk, cfg.Input.Encoding)
		}

		c := stats.Compute(i, chunk)
		summary.Add(c)
		if cli.Chunks {
			fmt.Fprintf(&perChunk, "  %6d  %8d  DC %.4f  RMS %.4f  %7.2f dB  peak %.4f\n",
				c.Index, c.Samples, c.DCOffset(), c.RMS, c.PowerDB, c.Peak)
		}
		if cli.Spectrum && spectrum == nil {
			if spectrum, err = stats.Spectrum(chunk, cfg.TUI.FFTSize); err != nil {
				log.Errorf("Could not compute spectrum: %s", err.Error())
			}
		}
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(path))
	s.WriteString("\n")
	fmt.Fprintf(&s, "%s %s (%s)\n", labelStyle.Render("Encoding:       "), cfg.Input.Encoding, compression)
	fmt.Fprintf(&s, "%s %d\n", labelStyle.Render("Samples:        "), summary.Samples)
	fmt.Fprintf(&s, "%s %d of %d samples\n", labelStyle.Render("Chunks:         "), summary.Chunks, cfg.Input.ChunkSize)
	fmt.Fprintf(&s, "%s %.6f\n", labelStyle.Render("DC offset:      "), summary.DCOffset())
	fmt.Fprintf(&s, "%s %.2f dB\n", labelStyle.Render("Mean power:     "), summary.MeanPowerDB())
	fmt.Fprintf(&s, "%s %.6f", labelStyle.Render("Peak magnitude: "), summary.Peak)
	if len(spectrum) > 0 {
		peak := 0
		for i, v := range spectrum {
			if v > spectrum[peak] {
				peak = i
			}
		}
		fmt.Fprintf(&s, "\n%s bin %+d of %d, %.2f dB", labelStyle.Render("Spectrum peak:  "), peak-len(spectrum)/2, len(spectrum), spectrum[peak])
	}
	if perChunk.Len() > 0 {
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Chunks:"))
		s.WriteString("\n")
		s.WriteString(strings.TrimRight(perChunk.String(), "\n"))
	}

	rc := RC_SUCCESS
	if dropped := r.DroppedBytes(); dropped > 0 {
		s.WriteString("\n")
		s.WriteString(warnStyle.Render(fmt.Sprintf("%d trailing bytes did not form a whole sample and were dropped", dropped)))
		rc = RC_TRUNCATED
	}

	return boxStyle.Render(s.String()), rc
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, iq.ErrInvalidConfig):
		return RC_INVALID_CONFIG
	case errors.Is(err, iq.ErrFileOpen):
		return RC_IO_ERROR
	case errors.Is(err, iq.ErrRead):
		return RC_READ_ERROR
	case errors.Is(err, iq.ErrDecode):
		return RC_DECODE_ERROR
	default:
		return RC_IO_ERROR
	}
}
