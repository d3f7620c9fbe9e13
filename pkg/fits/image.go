package fits

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Image is a fully decoded map: the parsed header plus every element
// converted to float32 in row-major order.
type Image struct {
	Header *Header
	Data   []float32
}

// ReadImage loads an entire map file. The file is mapped read-only
// where mmap is available and fully read otherwise; either way the
// decoded image owns its data and the file is closed before return. A
// data region shorter than the header promises is ErrTruncated.
func ReadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: %s: file size %d", ErrBadHeader, path, size64)
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		img, derr := decodeImage(data, path)
		_ = unix.Munmap(data)
		return img, derr
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return decodeImage(data, path)
}

// ReadImage loads an entire map file through the opener, so whole-image
// reads count against a bounded handle pool like every other access.
func (fio *IO) ReadImage(path string) (*Image, error) {
	f, err := fio.opener.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return decodeImage(data, path)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func decodeImage(data []byte, path string) (*Image, error) {
	// Header blocks up to and including the END card's block.
	hdrLen := 0
	var h *Header
	for hdrLen < len(data) {
		end := hdrLen + BlockSize
		if end > len(data) {
			return nil, fmt.Errorf("%w: %s: no END card", ErrBadHeader, path)
		}
		hdrLen = end
		found := false
		for i := hdrLen - BlockSize; i < hdrLen; i += CardLen {
			var c Card
			copy(c[:], data[i:i+CardLen])
			if c.HasLabel(LabelEnd) {
				found = true
				break
			}
		}
		if found {
			var err error
			h, err = ReadHeaderFrom(bytes.NewReader(data[:hdrLen]))
			if err != nil {
				return nil, err
			}
			break
		}
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s: no END card", ErrBadHeader, path)
	}

	bp, err := h.Bitpix()
	if err != nil {
		return nil, err
	}
	bscale, bzero := h.Scaling()
	n := h.NData()
	size := int64(bp.Size())
	if int64(len(data)-hdrLen) < n*size {
		return nil, fmt.Errorf("%w: %s: %d data bytes, need %d", ErrTruncated, path, len(data)-hdrLen, n*size)
	}

	vals := make([]float32, n)
	for e := int64(0); e < n; e++ {
		off := int64(hdrLen) + e*size
		v, err := bp.Value(data[off:off+size], bscale, bzero)
		if err != nil {
			return nil, err
		}
		vals[e] = float32(v)
	}
	return &Image{Header: h, Data: vals}, nil
}

// WriteImage writes the header and data to the named file. The data is
// encoded per the header's BITPIX and the data region is zero-padded
// to a whole number of blocks.
func (fio *IO) WriteImage(path string, h *Header, data []float32) error {
	bp, err := h.Bitpix()
	if err != nil {
		return err
	}
	if n := h.NData(); n != int64(len(data)) {
		return fmt.Errorf("fits: header declares %d elements, got %d", n, len(data))
	}

	f, err := fio.opener.OpenWrite(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(h.Bytes()); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}

	size := bp.Size()
	dataLen := len(data) * size
	padded := (dataLen + BlockSize - 1) / BlockSize * BlockSize
	out := make([]byte, padded)
	for i, v := range data {
		if err := bp.Put(out[i*size:(i+1)*size], float64(v)); err != nil {
			return err
		}
	}
	if _, err := f.Write(out); err != nil {
		return fmt.Errorf("write data %s: %w", path, err)
	}
	return nil
}
