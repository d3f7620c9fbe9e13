package fits

import (
	"encoding/binary"
	"math"
)

// Bitpix is the per-pixel numeric encoding declared by the BITPIX
// card. Positive codes are integers scaled by BSCALE/BZERO, negative
// codes are raw IEEE floats, plus two nonstandard byte variants kept
// for old map files.
type Bitpix int

const (
	BitpixU8  Bitpix = 8   // unsigned byte, scaled
	BitpixI16 Bitpix = 16  // signed 16-bit, scaled
	BitpixI32 Bitpix = 32  // signed 32-bit, scaled
	BitpixI64 Bitpix = 64  // signed 64-bit, scaled
	BitpixF32 Bitpix = -32 // IEEE float32, unscaled
	BitpixF64 Bitpix = -64 // IEEE float64, unscaled
	BitpixU8R Bitpix = -8  // unsigned byte, unscaled
)

// Size returns the element width in bytes, or 0 for an unknown code.
// -16 is recognized for offset arithmetic even though it carries no
// value conversion.
func (b Bitpix) Size() int {
	switch b {
	case BitpixU8, BitpixU8R:
		return 1
	case BitpixI16, -16:
		return 2
	case BitpixI32, BitpixF32:
		return 4
	case BitpixI64, BitpixF64:
		return 8
	default:
		return 0
	}
}

// Float reports whether the encoding is an IEEE float, which is never
// scaled by BSCALE/BZERO.
func (b Bitpix) Float() bool {
	return b == BitpixF32 || b == BitpixF64
}

// Value decodes one big-endian element from raw, applying the linear
// scale and offset for integer encodings.
func (b Bitpix) Value(raw []byte, bscale, bzero float64) (float64, error) {
	switch b {
	case BitpixF32:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(raw))), nil
	case BitpixF64:
		return math.Float64frombits(binary.BigEndian.Uint64(raw)), nil
	case BitpixU8:
		return float64(raw[0])*bscale + bzero, nil
	case BitpixU8R:
		return float64(raw[0]), nil
	case BitpixI16:
		return float64(int16(binary.BigEndian.Uint16(raw)))*bscale + bzero, nil
	case BitpixI32:
		return float64(int32(binary.BigEndian.Uint32(raw)))*bscale + bzero, nil
	case BitpixI64:
		return float64(int64(binary.BigEndian.Uint64(raw)))*bscale + bzero, nil
	default:
		return 0, ErrUnsupportedBitpix
	}
}

// Put encodes v as one big-endian element into dst. Integer encodings
// store the value as written; undoing any scale is the caller's
// concern.
func (b Bitpix) Put(dst []byte, v float64) error {
	switch b {
	case BitpixF32:
		binary.BigEndian.PutUint32(dst, math.Float32bits(float32(v)))
	case BitpixF64:
		binary.BigEndian.PutUint64(dst, math.Float64bits(v))
	case BitpixU8, BitpixU8R:
		dst[0] = byte(int64(v))
	case BitpixI16:
		binary.BigEndian.PutUint16(dst, uint16(int16(v)))
	case BitpixI32:
		binary.BigEndian.PutUint32(dst, uint32(int32(v)))
	case BitpixI64:
		binary.BigEndian.PutUint64(dst, uint64(int64(v)))
	default:
		return ErrUnsupportedBitpix
	}
	return nil
}
