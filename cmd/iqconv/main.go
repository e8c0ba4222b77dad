package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/iqtools/config"
	"github.com/jrwynneiii/iqtools/iq"
)

var cli struct {
	Verbose        bool   `help:"Prints debug output by default"`
	Config         string `help:"Path to an HCL config file"`
	File           string `arg:"" help:"Path to a raw IQ capture"`
	OutputFile     string `arg:"" help:"File path to output file"`
	Encoding       string `short:"e" help:"Sample encoding of the input (u8, s8, s16, u16, f32, f64)"`
	ChunkSize      int    `help:"Complex samples read per chunk"`
	Zstd           bool   `help:"Input capture is zstd compressed (implied by a .zst extension)"`
	Format         string `help:"Output format: raw or wav"`
	OutputEncoding string `short:"o" help:"Sample encoding of raw output"`
	Normalize      bool   `help:"Rescale integer samples onto [-1, 1] before writing"`
	Compress       bool   `help:"Compress raw output with zstd"`
	SampleRate     int    `help:"Sample rate recorded in the wav header"`
}

// applyFlags overlays any command-line flags that were set onto cfg.
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
	if cli.Zstd {
		cfg.Input.Compression = iq.CompressionZstd
	}
	if cli.Format != "" {
		cfg.Output.Format = cli.Format
	}
	if cli.OutputEncoding != "" {
		enc, err := iq.ParseEncoding(cli.OutputEncoding)
		if err != nil {
			return err
		}
		cfg.Output.Encoding = enc
	}
	if cli.Normalize {
		cfg.Input.Normalize = true
	}
	if cli.Compress {
		cfg.Output.Compress = true
	}
	if cli.SampleRate != 0 {
		cfg.Output.SampleRate = cli.SampleRate
	}
	return cfg.Validate()
}

func main() {
	_ = kong.Parse(&cli)
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatalf("Could not load config: %s", err.Error())
	}
	if !cli.Verbose {
		log.SetLevel(cfg.Level())
	}
	if err := applyFlags(&cfg); err != nil {
		log.Fatalf("Invalid options: %s", err.Error())
	}

	n, err := convert(cfg, cli.File, cli.OutputFile)
	if err != nil {
		log.Fatalf("Conversion failed: %s", err.Error())
	}
	log.Infof("Wrote %d samples to %s", n, cli.OutputFile)
}

type sampleWriter interface {
	WriteComplex64([]complex64) error
	Close() error
}

// convert streams the capture at in to a new file at out and returns the
// number of samples written. It refuses to overwrite an existing file.
func convert(cfg config.Config, in, out string) (int64, error) {
	compression := cfg.Input.Compression
	if compression == iq.CompressionNone {
		compression = iq.CompressionFromPath(in)
	}

	r, err := iq.New(in, cfg.Input.ChunkSize, cfg.Input.Encoding, iq.WithCompression(compression))
	if err != nil {
		return 0, err
	}
	defer r.Close()

	outputfile, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return 0, fmt.Errorf("output file %s exists, cowardly not overwriting it", out)
	} else if err != nil {
		return 0, fmt.Errorf("could not open output file: %w", err)
	}
	defer outputfile.Close()

	normalize := cfg.Input.Normalize
	var w sampleWriter
	var written func() int64
	switch cfg.Output.Format {
	case config.FormatWAV:
		// wav samples are always in [-1, 1]
		normalize = true
		ww, err := iq.NewWAVWriter(outputfile, cfg.Output.SampleRate)
		if err != nil {
			return 0, err
		}
		w, written = ww, ww.SamplesWritten
	default:
		var opts []iq.WriterOption
		if cfg.Output.Compress {
			opts = append(opts, iq.WithOutputCompression(iq.CompressionZstd))
		}
		if normalize && cfg.Output.Encoding.Width() <= 2 {
			opts = append(opts, iq.WithDenormalize())
		}
		rw, err := iq.NewWriter(outputfile, cfg.Output.Encoding, opts...)
		if err != nil {
			return 0, err
		}
		w, written = rw, rw.SamplesWritten
	}

	log.Debugf("Writing output file...")
	for {
		samples, err := r.ReadChunk64()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = w.Close()
			return written(), err
		}
		if normalize {
			iq.NormalizeComplex64(samples, cfg.Input.Encoding)
		}
		if err := w.WriteComplex64(samples); err != nil {
			_ = w.Close()
			return written(), err
		}
		log.Debugf("Wrote chunk of %d samples to output file", len(samples))
	}

	if dropped := r.DroppedBytes(); dropped > 0 {
		log.Warnf("Dropped %d trailing bytes that did not form a whole sample", dropped)
	}
	if err := w.Close(); err != nil {
		return written(), err
	}
	return written(), outputfile.Close()
}
