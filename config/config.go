package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/iqtools/iq"
	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix selects the environment variables overlaid on the config file.
// A double underscore separates nesting levels: IQTOOLS_INPUT__CHUNK_SIZE.
const EnvPrefix = "IQTOOLS_"

const (
	FormatRaw = "raw"
	FormatWAV = "wav"
)

type Config struct {
	LogLevel string     `json:"log_level" hcl:"log_level"`
	Input    InputConf  `json:"input" hcl:"input"`
	Output   OutputConf `json:"output" hcl:"output"`
	TUI      TuiConf    `json:"tui" hcl:"tui"`
}

type InputConf struct {
	Encoding    iq.Encoding    `json:"encoding" hcl:"encoding"`
	ChunkSize   int            `json:"chunk_size" hcl:"chunk_size"`
	Compression iq.Compression `json:"compression" hcl:"compression"`
	Normalize   bool           `json:"normalize" hcl:"normalize"`
}

type OutputConf struct {
	Format     string      `json:"format" hcl:"format"`
	Encoding   iq.Encoding `json:"encoding" hcl:"encoding"`
	Compress   bool        `json:"compress" hcl:"compress"`
	SampleRate int         `json:"sample_rate" hcl:"sample_rate"`
}

type TuiConf struct {
	EnableLogOutput bool `json:"enable_log_output" hcl:"enable_log_output"`
	RefreshMs       int  `json:"refresh_ms" hcl:"refresh_ms"`
	FFTSize         int  `json:"fft_size" hcl:"fft_size"`
	HistoryLen      int  `json:"history_len" hcl:"history_len"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Input: InputConf{
			Encoding:    iq.Uint8,
			ChunkSize:   65536,
			Compression: iq.CompressionNone,
		},
		Output: OutputConf{
			Format:     FormatRaw,
			Encoding:   iq.Float32,
			SampleRate: 2048000,
		},
		TUI: TuiConf{
			EnableLogOutput: true,
			RefreshMs:       500,
			FFTSize:         1024,
			HistoryLen:      120,
		},
	}
}

// Load builds a Config from the defaults, the HCL file at path (skipped when
// path is empty) and IQTOOLS_ environment variables, in that order.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		log.Debugf("Loading config file: %s", path)
		if err := k.Load(file.Provider(path), hcl.Parser(true)); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "hcl"}); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envKey(k, v string) (string, any) {
	k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	return strings.ReplaceAll(k, "__", "."), v
}

func (c Config) Validate() error {
	if c.Input.ChunkSize <= 0 {
		return fmt.Errorf("%w: input.chunk_size must be positive, got %d", iq.ErrInvalidConfig, c.Input.ChunkSize)
	}
	if !c.Input.Encoding.Valid() {
		return fmt.Errorf("%w: input.encoding is not set", iq.ErrInvalidConfig)
	}
	if limit := iq.MaxChunkBytes / c.Input.Encoding.SampleWidth(); c.Input.ChunkSize > limit {
		return fmt.Errorf("%w: input.chunk_size %d exceeds %d for %s", iq.ErrInvalidConfig, c.Input.ChunkSize, limit, c.Input.Encoding)
	}
	switch c.Output.Format {
	case FormatRaw:
		if !c.Output.Encoding.Valid() {
			return fmt.Errorf("%w: output.encoding is not set", iq.ErrInvalidConfig)
		}
	case FormatWAV:
		if c.Output.SampleRate <= 0 {
			return fmt.Errorf("%w: output.sample_rate must be positive for wav output", iq.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown output.format %q", iq.ErrInvalidConfig, c.Output.Format)
	}
	if n := c.TUI.FFTSize; n < 2 || n&(n-1) != 0 {
		return fmt.Errorf("%w: tui.fft_size must be a power of two, got %d", iq.ErrInvalidConfig, n)
	}
	if c.TUI.RefreshMs <= 0 {
		return fmt.Errorf("%w: tui.refresh_ms must be positive, got %d", iq.ErrInvalidConfig, c.TUI.RefreshMs)
	}
	if c.TUI.HistoryLen <= 0 {
		return fmt.Errorf("%w: tui.history_len must be positive, got %d", iq.ErrInvalidConfig, c.TUI.HistoryLen)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", iq.ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
