package skymap

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sambenfield/galmap/pkg/fits"
)

// writeLambertMap writes a 6x6 polar cap map whose header places b=90
// (or b=-90 for the south cap) at pixel (2,2) with a 2-pixel radius to
// the equator.
func writeLambertMap(t *testing.T, path string, nsgp int64, value func(x, y int) float32) {
	t.Helper()

	h := fits.NewHeader()
	h.SetInt(fits.LabelBitpix, -32)
	h.SetInt(fits.LabelNaxis, 2)
	h.SetInt("NAXIS1", 6)
	h.SetInt("NAXIS2", 6)
	h.SetStr(fits.LabelCtype1, "LAMBERT--X")
	h.SetStr(fits.LabelCtype2, "LAMBERT--Y")
	h.SetReal(fits.LabelCrval1, 0)
	h.SetReal(fits.LabelCrval2, 0)
	h.SetReal(fits.LabelCrpix1, 3)
	h.SetReal(fits.LabelCrpix2, 3)
	h.SetInt(fits.LabelLamNSGP, nsgp)
	h.SetReal(fits.LabelLamScal, 2)

	data := make([]float32, 36)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			data[x+6*y] = value(x, y)
		}
	}
	if err := fits.NewIO(nil).WriteImage(path, h, data); err != nil {
		t.Fatalf("write map: %v", err)
	}
}

func coordMap(t *testing.T, dir string) Map {
	t.Helper()
	m := Map{
		North: filepath.Join(dir, "north.fits"),
		South: filepath.Join(dir, "south.fits"),
	}
	coord := func(x, y int) float32 { return float32(x + 10*y) }
	writeLambertMap(t, m.North, 1, coord)
	writeLambertMap(t, m.South, -1, coord)
	return m
}

func TestNearestSampling(t *testing.T) {
	t.Parallel()

	m := coordMap(t, t.TempDir())
	s := NewSampler(nil, nil)

	// l=0,b=0 lands on pixel (4,2); the pole on (2,2).
	vals, err := s.Values(context.Background(), m,
		[]float64{0, 0}, []float64{0, 90}, Options{})
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if vals[0] != 24 {
		t.Fatalf("equator: got %v want 24", vals[0])
	}
	if vals[1] != 22 {
		t.Fatalf("pole: got %v want 22", vals[1])
	}
}

func TestInterpolationDegeneratesAtPixelCenters(t *testing.T) {
	t.Parallel()

	m := coordMap(t, t.TempDir())
	s := NewSampler(nil, nil)

	// l=0,b=0 projects onto the exact pixel center (4,2), so the
	// bilinear weights collapse onto one pixel.
	near, err := s.Values(context.Background(), m,
		[]float64{0}, []float64{0}, Options{})
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	interp, err := s.Values(context.Background(), m,
		[]float64{0}, []float64{0}, Options{Interpolate: true})
	if err != nil {
		t.Fatalf("interpolate: %v", err)
	}
	if near[0] != interp[0] {
		t.Fatalf("degenerate interpolation: got %v want %v", interp[0], near[0])
	}
}

func TestInterpolationBlendsNeighbors(t *testing.T) {
	t.Parallel()

	m := coordMap(t, t.TempDir())
	s := NewSampler(nil, nil)

	// A point off the pixel grid: every weight is in (0,1) and the
	// blend stays inside the surrounding values.
	l, b := 30.0, 40.0
	vals, err := s.Values(context.Background(), m,
		[]float64{l}, []float64{b}, Options{Interpolate: true})
	if err != nil {
		t.Fatalf("interpolate: %v", err)
	}
	if vals[0] <= 0 || vals[0] >= 55 {
		t.Fatalf("blend out of range: %v", vals[0])
	}

	// Check against the closed form. rho*cos/sin give the fractional
	// pixel, the blend is separable in x and y for coordinate data.
	const radeg = 180 / math.Pi
	rho := math.Sqrt(1 - math.Sin(b/radeg))
	xr := rho*math.Cos(l/radeg)*2 + 2
	yr := -rho*math.Sin(l/radeg)*2 + 2
	want := float32(xr + 10*yr)
	if math.Abs(float64(vals[0]-want)) > 1e-4 {
		t.Fatalf("blend: got %v want %v", vals[0], want)
	}
}

// writeCornerMap writes a 2x2 north cap holding [[1,2],[3,4]] with a
// unit pixel scale, so the pole projects onto fractional pixel
// (crpix-1, crpix-1).
func writeCornerMap(t *testing.T, path string, crpix float64) {
	t.Helper()

	h := fits.NewHeader()
	h.SetInt(fits.LabelBitpix, -32)
	h.SetInt(fits.LabelNaxis, 2)
	h.SetInt("NAXIS1", 2)
	h.SetInt("NAXIS2", 2)
	h.SetStr(fits.LabelCtype1, "LAMBERT--X")
	h.SetStr(fits.LabelCtype2, "LAMBERT--Y")
	h.SetReal(fits.LabelCrval1, 0)
	h.SetReal(fits.LabelCrval2, 0)
	h.SetReal(fits.LabelCrpix1, crpix)
	h.SetReal(fits.LabelCrpix2, crpix)
	h.SetInt(fits.LabelLamNSGP, 1)
	h.SetReal(fits.LabelLamScal, 1)

	if err := fits.NewIO(nil).WriteImage(path, h, []float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("write map: %v", err)
	}
}

func TestPoleBlendsAllFourCorners(t *testing.T) {
	t.Parallel()

	// Pole at (0.5, 0.5): every corner carries weight 1/4.
	path := filepath.Join(t.TempDir(), "north.fits")
	writeCornerMap(t, path, 1.5)
	m := Map{North: path}
	s := NewSampler(nil, nil)

	for _, bulk := range []bool{false, true} {
		vals, err := s.Values(context.Background(), m,
			[]float64{0}, []float64{90}, Options{Interpolate: true, Bulk: bulk})
		if err != nil {
			t.Fatalf("interpolate (bulk=%v): %v", bulk, err)
		}
		if vals[0] != 2.5 {
			t.Fatalf("bulk=%v blend: got %v want 2.5", bulk, vals[0])
		}
	}

	// Nearest rounds (0.5, 0.5) up to the stored value at (1,1).
	vals, err := s.Values(context.Background(), m,
		[]float64{0}, []float64{90}, Options{})
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if vals[0] != 4 {
		t.Fatalf("nearest: got %v want 4", vals[0])
	}
}

func TestInterpolationCellClampsAtImageEdges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewSampler(nil, nil)

	// Pole on the last pixel center (1,1): the cell base clamps down a
	// pixel with zero weight, leaving the stored corner value. Pole half
	// a pixel left of the image: the base clamps to pixel 0 with full
	// weight.
	high := filepath.Join(dir, "high.fits")
	writeCornerMap(t, high, 2)
	low := filepath.Join(dir, "low.fits")
	writeCornerMap(t, low, 0.5)

	cases := []struct {
		name string
		path string
		want float32
	}{
		{"upper edge", high, 4},
		{"lower edge", low, 1},
	}
	for _, tc := range cases {
		for _, bulk := range []bool{false, true} {
			vals, err := s.Values(context.Background(), Map{North: tc.path},
				[]float64{0}, []float64{90}, Options{Interpolate: true, Bulk: bulk})
			if err != nil {
				t.Fatalf("%s (bulk=%v): %v", tc.name, bulk, err)
			}
			if vals[0] != tc.want {
				t.Fatalf("%s (bulk=%v): got %v want %v", tc.name, bulk, vals[0], tc.want)
			}
		}
	}
}

func TestHemisphereRouting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := Map{
		North: filepath.Join(dir, "north.fits"),
		South: filepath.Join(dir, "south.fits"),
	}
	writeLambertMap(t, m.North, 1, func(x, y int) float32 { return 1 })
	writeLambertMap(t, m.South, -1, func(x, y int) float32 { return 2 })

	s := NewSampler(nil, nil)
	vals, err := s.Values(context.Background(), m,
		[]float64{10, 20, 30, 40}, []float64{45, -45, 0, -0.001}, Options{})
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	// b=0 belongs to the north.
	want := []float32{1, 2, 1, 2}
	for i := range want {
		if vals[i] != want[i] {
			t.Fatalf("point %d: got %v want %v", i, vals[i], want[i])
		}
	}
}

func TestBulkMatchesPerPoint(t *testing.T) {
	t.Parallel()

	m := coordMap(t, t.TempDir())
	s := NewSampler(nil, nil)

	gall := []float64{0, 45, 90, 180, 270, 30, 200, 10}
	galb := []float64{0, 30, 60, -20, -80, 90, -5, 15}

	for _, interp := range []bool{false, true} {
		perPoint, err := s.Values(context.Background(), m, gall, galb,
			Options{Interpolate: interp})
		if err != nil {
			t.Fatalf("per point (interp=%v): %v", interp, err)
		}
		bulk, err := s.Values(context.Background(), m, gall, galb,
			Options{Interpolate: interp, Bulk: true})
		if err != nil {
			t.Fatalf("bulk (interp=%v): %v", interp, err)
		}
		for i := range perPoint {
			if perPoint[i] != bulk[i] {
				t.Fatalf("interp=%v point %d: per-point %v bulk %v",
					interp, i, perPoint[i], bulk[i])
			}
		}
	}
}

func TestMismatchedInputs(t *testing.T) {
	t.Parallel()

	s := NewSampler(nil, nil)
	if _, err := s.Values(context.Background(), Map{}, []float64{1, 2}, []float64{1}, Options{}); err == nil {
		t.Fatalf("mismatched slice lengths accepted")
	}
}

func TestTruncatedMapFails(t *testing.T) {
	t.Parallel()

	m := coordMap(t, t.TempDir())
	// Keep the header and the first two rows of the north map.
	if err := os.Truncate(m.North, fits.BlockSize+12*4); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	s := NewSampler(nil, nil)
	if _, err := s.Values(context.Background(), m,
		[]float64{0}, []float64{0}, Options{Interpolate: true}); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("interpolated read of truncated map: got %v want ErrIncomplete", err)
	}
	if _, err := s.Values(context.Background(), m,
		[]float64{0}, []float64{0}, Options{Interpolate: true, Bulk: true}); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("bulk read of truncated map: got %v want ErrIncomplete", err)
	}
	if _, err := s.Values(context.Background(), m,
		[]float64{0}, []float64{0}, Options{}); !errors.Is(err, fits.ErrTruncated) {
		t.Fatalf("nearest read of truncated map: got %v want ErrTruncated", err)
	}
}

func TestMissingMapFile(t *testing.T) {
	t.Parallel()

	s := NewSampler(nil, nil)
	m := Map{North: filepath.Join(t.TempDir(), "absent.fits")}
	if _, err := s.Values(context.Background(), m, []float64{0}, []float64{10}, Options{}); err == nil {
		t.Fatalf("missing map accepted")
	}
}
