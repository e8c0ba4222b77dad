package iq

import "errors"

var (
	// ErrInvalidConfig is returned by New for a non-positive chunk size or an unknown encoding.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFileOpen is returned by New when the capture cannot be opened.
	ErrFileOpen = errors.New("could not open capture")

	// ErrRead is returned when the underlying read fails for a reason other than end of file.
	ErrRead = errors.New("read failure")

	// ErrDecode is returned when a byte slice does not match the width of its encoding.
	ErrDecode = errors.New("decode failure")

	// ErrClosed is returned by reads on a closed Reader.
	ErrClosed = errors.New("reader closed")
)
