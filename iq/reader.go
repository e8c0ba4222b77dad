package iq

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"
	"github.com/charmbracelet/log"
)

// MaxChunkBytes bounds the raw buffer a single chunk may request.
const MaxChunkBytes = 1 << 30

// Reader streams a raw I/Q capture in fixed-size chunks of complex samples.
// A Reader is not safe for concurrent use.
type Reader struct {
	path         string
	file         *os.File
	decompressor io.ReadCloser
	src          io.Reader
	encoding     Encoding
	chunkSize    int
	buf          []byte
	samplesRead  int64
	dropped      int
	done         bool
	closed       bool
}

type options struct {
	compression Compression
}

// Option customises a Reader at construction.
type Option func(*options)

// WithCompression reads the capture through a decompressor.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// New opens the capture at path for chunked reading. samplesPerChunk is the
// number of complex samples returned by a full chunk. No data is read until
// the first ReadChunk64 or ReadChunk128 call.
func New(path string, samplesPerChunk int, enc Encoding, opts ...Option) (*Reader, error) {
	if samplesPerChunk <= 0 {
		return nil, fmt.Errorf("%w: samples per chunk must be positive, got %d", ErrInvalidConfig, samplesPerChunk)
	}
	if !enc.Valid() {
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrInvalidConfig, uint8(enc))
	}
	if limit := MaxChunkBytes / enc.SampleWidth(); samplesPerChunk > limit {
		return nil, fmt.Errorf("%w: %d samples per chunk exceeds the %s limit of %d", ErrInvalidConfig, samplesPerChunk, enc, limit)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.compression != CompressionNone && o.compression != CompressionZstd {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidConfig, uint8(o.compression))
	}

	log.Debugf("Opening IQ capture: %s (%s, %d samples per chunk)", path, enc, samplesPerChunk)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrFileOpen, path)
	}

	r := &Reader{
		path:      path,
		file:      f,
		src:       f,
		encoding:  enc,
		chunkSize: samplesPerChunk,
		buf:       make([]byte, samplesPerChunk*enc.SampleWidth()),
	}

	if o.compression == CompressionZstd {
		log.Debugf("Capture is zstd compressed...decompressing")
		r.decompressor = zstd.NewReader(f)
		r.src = r.decompressor
	}

	return r, nil
}

// ReadChunk64 returns the next chunk as single-precision samples.
// It returns io.EOF, and no samples, once the capture is exhausted.
func (r *Reader) ReadChunk64() ([]complex64, error) {
	return readChunk(r, pair64)
}

// ReadChunk128 returns the next chunk as double-precision samples.
// It returns io.EOF, and no samples, once the capture is exhausted.
func (r *Reader) ReadChunk128() ([]complex128, error) {
	return readChunk(r, pair128)
}

func readChunk[F Float, C complex64 | complex128](r *Reader, pair func(re, im F) C) ([]C, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(r.src, r.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		r.done = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.done = true
	default:
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	sw := r.encoding.SampleWidth()
	whole := n - n%sw
	if tail := n - whole; tail > 0 {
		log.Debugf("Dropping %d trailing bytes of a partial %s sample in %s", tail, r.encoding, r.path)
		r.dropped += tail
	}
	if whole == 0 {
		return nil, io.EOF
	}

	samples, err := decodeSamples(r.buf[:whole], r.encoding, pair)
	if err != nil {
		return nil, err
	}
	r.samplesRead += int64(len(samples))
	return samples, nil
}

// Close releases the capture. Calling Close more than once is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if r.decompressor != nil {
		errs = append(errs, r.decompressor.Close())
	}
	errs = append(errs, r.file.Close())
	return errors.Join(errs...)
}

// Done reports whether the end of the capture has been reached.
func (r *Reader) Done() bool { return r.done }

func (r *Reader) Path() string { return r.path }

func (r *Reader) Encoding() Encoding { return r.encoding }

// ChunkSize is the number of complex samples in a full chunk.
func (r *Reader) ChunkSize() int { return r.chunkSize }

// ChunkBytes is the number of raw bytes requested per chunk.
func (r *Reader) ChunkBytes() int { return len(r.buf) }

// SamplesRead is the number of complex samples returned so far.
func (r *Reader) SamplesRead() int64 { return r.samplesRead }

// DroppedBytes is the number of trailing bytes discarded because they did
// not form a whole sample.
func (r *Reader) DroppedBytes() int { return r.dropped }
