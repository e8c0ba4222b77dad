package iq

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Compression selects a byte-stream compressor wrapped around a raw capture.
// The decompressed stream is still a headerless run of I/Q components.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Compression) UnmarshalText(text []byte) error {
	parsed, err := ParseCompression(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "raw":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, s)
	}
}

// CompressionFromPath guesses the compressor from a file extension.
func CompressionFromPath(path string) Compression {
	if strings.EqualFold(filepath.Ext(path), ".zst") {
		return CompressionZstd
	}
	return CompressionNone
}
