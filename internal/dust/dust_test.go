package dust

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sambenfield/galmap/internal/skymap"
	"github.com/sambenfield/galmap/pkg/fits"
)

func writeCapMap(t *testing.T, path string, nsgp int64, v float32) {
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
	for i := range data {
		data[i] = v
	}
	if err := fits.NewIO(nil).WriteImage(path, h, data); err != nil {
		t.Fatalf("write map: %v", err)
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	writeCapMap(t, filepath.Join(dir, "SFD_dust_4096_ngp.fits"), 1, 0.25)
	writeCapMap(t, filepath.Join(dir, "SFD_dust_4096_sgp.fits"), -1, 0.5)
	writeCapMap(t, filepath.Join(dir, "SFD_mask_4096_ngp.fits"), 1, 3)
	writeCapMap(t, filepath.Join(dir, "SFD_mask_4096_sgp.fits"), -1, 5)
	return NewCatalog(dir, nil, nil)
}

func TestMapFileNames(t *testing.T) {
	t.Parallel()

	c := NewCatalog("/maps", nil, nil)
	m, err := c.Map(Ebv)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if !strings.HasSuffix(m.North, "SFD_dust_4096_ngp.fits") {
		t.Fatalf("north file: %q", m.North)
	}
	if !strings.HasSuffix(m.South, "SFD_dust_4096_sgp.fits") {
		t.Fatalf("south file: %q", m.South)
	}
	if _, err := c.Map(Product("nope")); err == nil {
		t.Fatalf("unknown product accepted")
	}
}

func TestValuesRoutesByHemisphere(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)
	vals, err := c.Values(context.Background(), Ebv,
		[]float64{10, 10}, []float64{30, -30}, skymap.Options{})
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if vals[0] != 0.25 || vals[1] != 0.5 {
		t.Fatalf("got %v, want [0.25 0.5]", vals)
	}
}

func TestMaskIsNeverInterpolated(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)
	// Interpolation on a constant map returns the constant either way;
	// the point here is that the request does not fail and returns the
	// raw bit value.
	vals, err := c.Values(context.Background(), Mask,
		[]float64{10}, []float64{30}, skymap.Options{Interpolate: true})
	if err != nil {
		t.Fatalf("mask values: %v", err)
	}
	if vals[0] != 3 {
		t.Fatalf("mask value: got %v want 3", vals[0])
	}
}

func TestExtinctionScalesBands(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)
	// The north galactic pole in equatorial coordinates.
	ext, err := c.Extinction(context.Background(), 192.85948, 27.12825, skymap.Options{})
	if err != nil {
		t.Fatalf("extinction: %v", err)
	}
	if math.Abs(ext.EBV-0.25) > 1e-6 {
		t.Fatalf("ebv: got %v want 0.25", ext.EBV)
	}
	if math.Abs(ext.EBVErr-0.25/6) > 1e-9 {
		t.Fatalf("ebv err: got %v", ext.EBVErr)
	}
	for _, b := range Bands {
		if math.Abs(ext.Bands[b.Name]-b.RV*0.25) > 1e-6 {
			t.Fatalf("band %s: got %v want %v", b.Name, ext.Bands[b.Name], b.RV*0.25)
		}
	}
}

func TestEquatorialToGalactic(t *testing.T) {
	t.Parallel()

	// The equatorial position of the north galactic pole.
	_, b := EquatorialToGalactic(192.85948, 27.12825)
	if math.Abs(b-90) > 0.001 {
		t.Fatalf("NGP latitude: got %v want 90", b)
	}

	// The galactic center.
	l, b := EquatorialToGalactic(266.40500, -28.93617)
	if math.Abs(b) > 0.01 {
		t.Fatalf("galactic center latitude: got %v", b)
	}
	if l > 0.01 && l < 359.99 {
		t.Fatalf("galactic center longitude: got %v", l)
	}

	// Longitude is always normalized into [0,360).
	l, _ = EquatorialToGalactic(0, 0)
	if l < 0 || l >= 360 {
		t.Fatalf("longitude out of range: %v", l)
	}
}
