package fits

import "errors"

var (
	// ErrUnsupportedBitpix marks a BITPIX code with no known element
	// width or conversion.
	ErrUnsupportedBitpix = errors.New("fits: unsupported BITPIX")

	// ErrTruncated marks a read that ended before the requested
	// elements were delivered.
	ErrTruncated = errors.New("fits: truncated data")

	// ErrBadHeader marks a header region that is not a sequence of
	// 2880-byte blocks terminated by an END card.
	ErrBadHeader = errors.New("fits: malformed header")

	// ErrMissingCard marks a required card with no defaultable value.
	ErrMissingCard = errors.New("fits: missing card")

	// ErrOutOfRange marks a window or point outside the axis extents.
	ErrOutOfRange = errors.New("fits: out of range")
)
