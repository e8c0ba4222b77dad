package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/iqtools/config"
	"github.com/jrwynneiii/iqtools/iq"
	"github.com/jrwynneiii/iqtools/stats"
	"github.com/jrwynneiii/iqtools/tui"
)

var cli struct {
	Verbose   bool          `help:"Prints debug output by default"`
	Config    string        `help:"Path to an HCL config file"`
	Path      string        `arg:"" help:"Path to a raw IQ capture, or a directory of captures to browse"`
	Encoding  string        `short:"e" help:"Sample encoding of the capture (u8, s8, s16, u16, f32, f64)"`
	ChunkSize int           `help:"Complex samples read per chunk"`
	FFTSize   int           `help:"Spectrum size in bins (power of two)"`
	Normalize bool          `help:"Rescale integer samples onto [-1, 1]"`
	Interval  time.Duration `help:"Delay between chunks when streaming" default:"0s"`
	NoTui     bool          `help:"Disable the TUI and just use the cli"`
}

// captureExts are the file extensions listed when browsing a directory.
var captureExts = []string{".cu8", ".cs8", ".cs16", ".cu16", ".cf32", ".cf64", ".fc32", ".raw", ".iq", ".bin", ".zst"}

func main() {
	_ = kong.Parse(&cli)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatalf("Could not load config: %s", err.Error())
	}
	log.SetLevel(cfg.Level())
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cli.Encoding != "" {
		if cfg.Input.Encoding, err = iq.ParseEncoding(cli.Encoding); err != nil {
			log.Fatalf("%s", err.Error())
		}
	}
	if cli.ChunkSize != 0 {
		cfg.Input.ChunkSize = cli.ChunkSize
	}
	if cli.FFTSize != 0 {
		cfg.TUI.FFTSize = cli.FFTSize
	}
	if cli.Normalize {
		cfg.Input.Normalize = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid options: %s", err.Error())
	}

	st, err := os.Stat(cli.Path)
	if err != nil {
		log.Fatalf("Could not stat %s: %s", cli.Path, err.Error())
	}
	if st.IsDir() {
		files, err := listCaptures(cli.Path)
		if err != nil {
			log.Fatalf("Error reading directory: %s", err.Error())
		}
		if len(files) == 0 {
			log.Fatalf("No IQ captures found")
		}
		tui.StartCaptureViewerUI(files, cli.Path, cfg.Input, cfg.TUI)
		return
	}

	compression := cfg.Input.Compression
	if compression == iq.CompressionNone {
		compression = iq.CompressionFromPath(cli.Path)
	}
	r, err := iq.New(cli.Path, cfg.Input.ChunkSize, cfg.Input.Encoding, iq.WithCompression(compression))
	if err != nil {
		log.Fatalf("Could not open capture: %s", err.Error())
	}

	frames := make(chan tui.Frame, 8)
	go produce(r, cfg, frames, cli.Interval)

	if cli.NoTui {
		for f := range frames {
			c := f.Chunk
			log.Infof("Chunk %d: %d samples\tDC: %.4f\tRMS: %.4f\tPower: %.2f dB\tPeak: %.4f", c.Index, c.Samples, c.DCOffset(), c.RMS, c.PowerDB, c.Peak)
		}
		return
	}

	info := tui.CaptureInfo{Path: cli.Path, Encoding: cfg.Input.Encoding, ChunkSize: cfg.Input.ChunkSize}
	tui.StartIQViewUI(frames, info, cfg.TUI)
}

// produce owns r: it streams the capture into frames, then closes the reader
// and the channel once reading has stopped.
func produce(r *iq.Reader, cfg config.Config, frames chan<- tui.Frame, interval time.Duration) {
	defer close(frames)
	status := stream(r, cfg, frames, interval)
	if err := r.Close(); err != nil {
		log.Warnf("Could not close %s: %s", r.Path(), err.Error())
	}
	if status.Err != nil {
		log.Errorf("Stopped reading %s: %s", r.Path(), status.Err.Error())
	} else {
		log.Infof("Finished reading %s: %d samples in %d chunks", r.Path(), status.Summary.Samples, status.Summary.Chunks)
	}
}

// stream reads r to the end, publishing a frame per chunk and keeping the
// shared capture status current. The final status is returned.
func stream(r *iq.Reader, cfg config.Config, frames chan<- tui.Frame, interval time.Duration) tui.CaptureStatus {
	var status tui.CaptureStatus
	for i := 0; ; i++ {
		chunk, err := r.ReadChunk128()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			status.Err = err
			tui.WriteCaptureStatus(status)
			return status
		}
		if cfg.Input.Normalize {
			iq.NormalizeComplex128(chunk, cfg.Input.Encoding)
		}

		f := tui.Frame{
			Chunk:     stats.Compute(i, chunk),
			Magnitude: stats.Magnitudes(chunk, cfg.TUI.FFTSize),
		}
		if f.Spectrum, err = stats.Spectrum(chunk, cfg.TUI.FFTSize); err != nil {
			log.Warnf("Could not compute spectrum for chunk %d: %s", i, err.Error())
		}
		status.Summary.Add(f.Chunk)
		tui.WriteCaptureStatus(status)

		frames <- f
		if interval > 0 {
			time.Sleep(interval)
		}
	}

	status.Done = true
	status.DroppedBytes = r.DroppedBytes()
	tui.WriteCaptureStatus(status)
	return status
}

func listCaptures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range captureExts {
			if ext == want {
				files = append(files, e.Name())
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
