package fits

import (
	"context"
	"fmt"
	"io"
	"os"
)

// File is the access a reader or writer needs from an open map file.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Opener abstracts how map files are opened so a bounded handle pool
// can be injected. OpenRead must fail when the path does not exist;
// OpenWrite truncates.
type Opener interface {
	OpenRead(path string) (File, error)
	OpenWrite(path string) (File, error)
}

type osOpener struct{}

func (osOpener) OpenRead(path string) (File, error)  { return os.Open(path) }
func (osOpener) OpenWrite(path string) (File, error) { return os.Create(path) }

// DefaultOpener opens files directly through the os package.
var DefaultOpener Opener = osOpener{}

// IO performs header and pixel access against map files.
type IO struct {
	opener Opener
}

// NewIO returns an IO using the given opener, or DefaultOpener when
// nil.
func NewIO(opener Opener) *IO {
	if opener == nil {
		opener = DefaultOpener
	}
	return &IO{opener: opener}
}

// ReadHeaderFrom reads header blocks from r until the END card. Cards
// following END in its block are consumed and discarded, blank-label
// cards are purged, and missing geometry cards are synthesized (the
// labels are recorded in Header.Synthesized). On return r is
// positioned at the start of the data region.
func ReadHeaderFrom(r io.Reader) (*Header, error) {
	h := &Header{}
	block := make([]byte, BlockSize)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fmt.Errorf("%w: no END card: %v", ErrBadHeader, err)
		}
		for i := 0; i < CardsPerBlock; i++ {
			var c Card
			copy(c[:], block[i*CardLen:(i+1)*CardLen])
			if c.HasLabel(LabelEnd) {
				h.PurgeBlankLabels()
				h.Add(EndCard())
				h.AddRequiredCards()
				return h, nil
			}
			if !c.IsBlank() {
				h.Add(c)
			}
		}
	}
}

// ReadHeader reads only the header of the named file.
func (fio *IO) ReadHeader(path string) (*Header, error) {
	f, err := fio.opener.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	h, err := ReadHeaderFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	return h, nil
}

// skipHeader advances f past the header region without retaining it
// and returns the data region offset.
func skipHeader(f File) (int64, error) {
	block := make([]byte, BlockSize)
	off := int64(0)
	for {
		if _, err := io.ReadFull(f, block); err != nil {
			return 0, fmt.Errorf("%w: no END card: %v", ErrBadHeader, err)
		}
		off += BlockSize
		for i := 0; i < CardsPerBlock; i++ {
			var c Card
			copy(c[:], block[i*CardLen:(i+1)*CardLen])
			if c.HasLabel(LabelEnd) {
				return off, nil
			}
		}
	}
}

// geometry resolves the element encoding and axis extents a pixel read
// needs from an already-read header.
func geometry(h *Header) (Bitpix, []int64, float64, float64, error) {
	bp, err := h.Bitpix()
	if err != nil {
		return 0, nil, 0, 0, err
	}
	bscale, bzero := h.Scaling()
	return bp, h.Axes(), bscale, bzero, nil
}

// ReadPoint reads the single element at loc (one zero-based index per
// axis, first axis fastest-varying) and returns it converted to
// float32. A read past the end of the data region is ErrTruncated.
func (fio *IO) ReadPoint(ctx context.Context, path string, h *Header, loc []int64) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	bp, extents, bscale, bzero, err := geometry(h)
	if err != nil {
		return 0, err
	}
	if len(loc) != len(extents) {
		return 0, fmt.Errorf("fits: point has %d coordinates, header declares %d axes", len(loc), len(extents))
	}

	// Row-major flattening against the axis extents.
	iloc := int64(0)
	mult := int64(1)
	for k, x := range loc {
		if x < 0 || x >= extents[k] {
			return 0, fmt.Errorf("%w: point %v on axis %d extent %d", ErrOutOfRange, loc, k+1, extents[k])
		}
		iloc += x * mult
		mult *= extents[k]
	}

	f, err := fio.opener.OpenRead(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	dataStart, err := skipHeader(f)
	if err != nil {
		return 0, err
	}
	size := int64(bp.Size())
	if _, err := f.Seek(dataStart+size*iloc, io.SeekStart); err != nil {
		return 0, err
	}
	raw := make([]byte, size)
	if _, err := io.ReadFull(f, raw); err != nil {
		return 0, fmt.Errorf("%w: point %v in %s", ErrTruncated, loc, path)
	}
	v, err := bp.Value(raw, bscale, bzero)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

// ReadSubimage reads the hyper-rectangular window [start, end]
// (inclusive per axis) and returns the elements converted to float32
// in row-major order. When the file holds fewer elements than the
// window requires, the shortfall is returned as a deficit count with a
// nil error; the caller decides whether partial data is acceptable.
func (fio *IO) ReadSubimage(ctx context.Context, path string, h *Header, start, end []int64) ([]float32, int64, error) {
	bp, extents, bscale, bzero, err := geometry(h)
	if err != nil {
		return nil, 0, err
	}
	rank := len(extents)
	if rank == 0 {
		return nil, 0, fmt.Errorf("%w: header declares no axes", ErrOutOfRange)
	}
	if len(start) != rank || len(end) != rank {
		return nil, 0, fmt.Errorf("fits: window has %d/%d coordinates, header declares %d axes", len(start), len(end), rank)
	}
	expect := int64(1)
	for k := 0; k < rank; k++ {
		if start[k] < 0 || end[k] < start[k] || end[k] >= extents[k] {
			return nil, 0, fmt.Errorf("%w: window [%d,%d] on axis %d extent %d", ErrOutOfRange, start[k], end[k], k+1, extents[k])
		}
		expect *= end[k] - start[k] + 1
	}

	f, err := fio.opener.OpenRead(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = f.Close() }()

	dataStart, err := skipHeader(f)
	if err != nil {
		return nil, 0, err
	}

	size := int64(bp.Size())
	run := end[0] - start[0] + 1
	raw := make([]byte, run*size)
	vals := make([]float32, 0, expect)
	got := int64(0)

	// Iterative multi-index walk: for every combination of outer-axis
	// indices, seek to the contiguous innermost run and read it whole.
	idx := make([]int64, rank)
	copy(idx, start)
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		// Linear element offset of the run start.
		iloc := int64(0)
		mult := int64(1)
		for k := 0; k < rank; k++ {
			iloc += idx[k] * mult
			mult *= extents[k]
		}
		if _, err := f.Seek(dataStart+size*iloc, io.SeekStart); err != nil {
			return nil, 0, err
		}
		n, err := io.ReadFull(f, raw)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, 0, err
		}
		for e := int64(0); e < int64(n)/size; e++ {
			v, verr := bp.Value(raw[e*size:(e+1)*size], bscale, bzero)
			if verr != nil {
				return nil, 0, verr
			}
			vals = append(vals, float32(v))
			got++
		}

		// Advance the outer-axis odometer.
		k := 1
		for ; k < rank; k++ {
			idx[k]++
			if idx[k] <= end[k] {
				break
			}
			idx[k] = start[k]
		}
		if k >= rank {
			break
		}
	}

	// Truncated files surface as a deficit, not a failure.
	if got < expect {
		vals = append(vals, make([]float32, expect-got)...)
	}
	return vals, expect - got, nil
}
