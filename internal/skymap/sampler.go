// Package skymap samples all-sky maps stored as one FITS image per
// hemisphere. Points at galactic latitude b >= 0 resolve against the
// northern image, the rest against the southern one, and results come
// back in input order.
package skymap

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sambenfield/galmap/internal/logger"
	"github.com/sambenfield/galmap/internal/projection"
	"github.com/sambenfield/galmap/pkg/fits"
)

// ErrIncomplete marks a map file that holds fewer data elements than
// its header promises. Partial map data never degrades silently into
// zero-valued samples.
var ErrIncomplete = errors.New("skymap: incomplete map data")

// Map names the two hemisphere files of one all-sky quantity.
type Map struct {
	North string
	South string
}

// Options selects how samples are drawn.
type Options struct {
	// Interpolate selects bilinear interpolation over the four
	// surrounding pixels instead of the nearest pixel.
	Interpolate bool

	// Bulk reads one bounding-box subimage per hemisphere instead of
	// touching the file once per point. Faster for dense batches,
	// heavier on memory for scattered ones.
	Bulk bool
}

// Sampler draws map values at galactic coordinates.
type Sampler struct {
	io  *fits.IO
	tr  *projection.Transform
	log logger.Logger
}

// NewSampler returns a Sampler reading through fio, or through a
// direct opener when fio is nil.
func NewSampler(fio *fits.IO, log logger.Logger) *Sampler {
	if fio == nil {
		fio = fits.NewIO(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sampler{io: fio, tr: projection.New(log), log: log}
}

// Values samples the map at each (gall[i], galb[i]) pair, in degrees,
// and returns one value per input point in input order.
func (s *Sampler) Values(ctx context.Context, m Map, gall, galb []float64, opts Options) ([]float32, error) {
	if len(gall) != len(galb) {
		return nil, fmt.Errorf("skymap: %d longitudes but %d latitudes", len(gall), len(galb))
	}
	out := make([]float32, len(gall))

	// Partition the batch by hemisphere; each side's header is read at
	// most once.
	for _, hemi := range []struct {
		name  string
		path  string
		north bool
	}{
		{"north", m.North, true},
		{"south", m.South, false},
	} {
		var idx []int
		for i, b := range galb {
			if (b >= 0.0) == hemi.north {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}

		h, err := s.io.ReadHeader(hemi.path)
		if err != nil {
			return nil, err
		}
		if len(h.Synthesized) > 0 {
			s.log.Warn("map header missing geometry cards, defaults applied",
				"path", hemi.path, "cards", h.Synthesized)
		}
		axes := h.Axes()
		if len(axes) != 2 {
			return nil, fmt.Errorf("skymap: %s: map has %d axes, need 2", hemi.path, len(axes))
		}

		if opts.Bulk {
			err = s.bulk(ctx, hemi.path, h, axes, gall, galb, idx, out, opts.Interpolate)
		} else {
			err = s.perPoint(ctx, hemi.path, h, axes, gall, galb, idx, out, opts.Interpolate)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// interpCell resolves the lower pixel of the interpolation cell along
// one axis together with its weight. The weight is 1 at the pixel
// center and decays to 0 at the next center; outside the image both
// collapse onto the edge cell.
func interpCell(xr float64, n int64) (int64, float64) {
	x := int64(math.Floor(xr))
	d := float64(x) - xr + 1.0
	if x < 0 {
		x, d = 0, 1.0
	}
	if x >= n-1 {
		x, d = n-2, 0.0
	}
	return x, d
}

func (s *Sampler) perPoint(ctx context.Context, path string, h *fits.Header, axes []int64, gall, galb []float64, idx []int, out []float32, interp bool) error {
	for _, i := range idx {
		if !interp {
			ix, iy, err := s.tr.NearestPixel(h, gall[i], galb[i])
			if err != nil {
				return err
			}
			v, err := s.io.ReadPoint(ctx, path, h, []int64{ix, iy})
			if err != nil {
				return err
			}
			out[i] = v
			s.log.Debug("sampled", "l", gall[i], "b", galb[i], "path", path,
				"x", ix, "y", iy, "value", v)
			continue
		}

		xr, yr, err := s.tr.FractionalPixel(h, gall[i], galb[i])
		if err != nil {
			return err
		}
		xPix, dx := interpCell(xr, axes[0])
		yPix, dy := interpCell(yr, axes[1])

		cell, deficit, err := s.io.ReadSubimage(ctx, path, h,
			[]int64{xPix, yPix}, []int64{xPix + 1, yPix + 1})
		if err != nil {
			return err
		}
		if deficit > 0 {
			return fmt.Errorf("%w: %s: %d elements short", ErrIncomplete, path, deficit)
		}
		out[i] = float32(dx*dy)*cell[0] +
			float32((1-dx)*dy)*cell[1] +
			float32(dx*(1-dy))*cell[2] +
			float32((1-dx)*(1-dy))*cell[3]
		s.log.Debug("sampled", "l", gall[i], "b", galb[i], "path", path,
			"xr", xr, "yr", yr, "value", out[i])
	}
	return nil
}

func (s *Sampler) bulk(ctx context.Context, path string, h *fits.Header, axes []int64, gall, galb []float64, idx []int, out []float32, interp bool) error {
	xPix := make([]int64, len(idx))
	yPix := make([]int64, len(idx))
	var dx, dy []float64
	if interp {
		dx = make([]float64, len(idx))
		dy = make([]float64, len(idx))
	}

	for ii, i := range idx {
		if !interp {
			var err error
			xPix[ii], yPix[ii], err = s.tr.NearestPixel(h, gall[i], galb[i])
			if err != nil {
				return err
			}
			continue
		}
		xr, yr, err := s.tr.FractionalPixel(h, gall[i], galb[i])
		if err != nil {
			return err
		}
		xPix[ii], dx[ii] = interpCell(xr, axes[0])
		yPix[ii], dy[ii] = interpCell(yr, axes[1])
	}

	// Smallest window covering every point, one extra pixel each way
	// when interpolating.
	x0, x1 := minMax(xPix)
	y0, y1 := minMax(yPix)
	if interp {
		x1++
		y1++
	}
	sub, deficit, err := s.io.ReadSubimage(ctx, path, h, []int64{x0, y0}, []int64{x1, y1})
	if err != nil {
		return err
	}
	if deficit > 0 {
		return fmt.Errorf("%w: %s: %d elements short", ErrIncomplete, path, deficit)
	}
	xsize := x1 - x0 + 1

	for ii, i := range idx {
		px := xPix[ii] - x0
		py := yPix[ii] - y0
		if !interp {
			out[i] = sub[px+py*xsize]
			s.log.Debug("sampled", "l", gall[i], "b", galb[i], "path", path,
				"x", xPix[ii], "y", yPix[ii], "value", out[i])
			continue
		}
		out[i] = float32(dx[ii]*dy[ii])*sub[px+py*xsize] +
			float32((1-dx[ii])*dy[ii])*sub[px+1+py*xsize] +
			float32(dx[ii]*(1-dy[ii]))*sub[px+(py+1)*xsize] +
			float32((1-dx[ii])*(1-dy[ii]))*sub[px+1+(py+1)*xsize]
		s.log.Debug("sampled", "l", gall[i], "b", galb[i], "path", path,
			"x", xPix[ii], "y", yPix[ii], "value", out[i])
	}
	return nil
}

func minMax(v []int64) (int64, int64) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
