package iq

// Scale returns the offset and divisor that map the native range of enc onto
// roughly [-1, 1] via (x - offset) / scale. Float encodings map to (0, 1).
func Scale(enc Encoding) (offset, scale float64) {
	switch enc {
	case Uint8:
		return 127.5, 127.5
	case Int8:
		return 0, 128
	case Int16:
		return 0, 32768
	case Uint16:
		return 32767.5, 32767.5
	default:
		return 0, 1
	}
}

// NormalizeComplex64 rescales samples decoded from enc in place so that
// integer captures span [-1, 1]. The decoder never does this on its own.
func NormalizeComplex64(samples []complex64, enc Encoding) {
	offset, scale := Scale(enc)
	if offset == 0 && scale == 1 {
		return
	}
	o, s := float32(offset), float32(scale)
	for i, v := range samples {
		samples[i] = complex((real(v)-o)/s, (imag(v)-o)/s)
	}
}

// NormalizeComplex128 is NormalizeComplex64 at double precision.
func NormalizeComplex128(samples []complex128, enc Encoding) {
	offset, scale := Scale(enc)
	if offset == 0 && scale == 1 {
		return
	}
	for i, v := range samples {
		samples[i] = complex((real(v)-offset)/scale, (imag(v)-offset)/scale)
	}
}
