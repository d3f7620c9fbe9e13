// Package dust resolves Milky Way dust quantities from the SFD98
// all-sky maps: reddening, 100-micron emission, the X and temperature
// correction maps and the processing mask, each stored as a north and
// south polar cap pair.
package dust

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sambenfield/galmap/internal/logger"
	"github.com/sambenfield/galmap/internal/skymap"
	"github.com/sambenfield/galmap/pkg/fits"
)

// Product names one published map quantity.
type Product string

const (
	Ebv  Product = "Ebv"  // E(B-V) reddening in magnitudes
	I100 Product = "I100" // 100-micron emission in MJy/sr
	Xmap Product = "X"    // X correction factor
	Temp Product = "T"    // dust temperature in K
	Mask Product = "mask" // processing mask bits
)

// fileNames maps each product to its hemisphere file pair.
var fileNames = map[Product][2]string{
	Ebv:  {"SFD_dust_4096_ngp.fits", "SFD_dust_4096_sgp.fits"},
	I100: {"SFD_i100_4096_ngp.fits", "SFD_i100_4096_sgp.fits"},
	Xmap: {"SFD_xmap_ngp.fits", "SFD_xmap_sgp.fits"},
	Temp: {"SFD_temp_ngp.fits", "SFD_temp_sgp.fits"},
	Mask: {"SFD_mask_4096_ngp.fits", "SFD_mask_4096_sgp.fits"},
}

// Products lists the known products in their published order.
var Products = []Product{Ebv, I100, Xmap, Temp, Mask}

// Band holds the E(B-V) to extinction coefficient of one filter.
type Band struct {
	Name string
	RV   float64
}

// Bands are the ugriz extinction coefficients applied to E(B-V).
var Bands = []Band{
	{"u", 5.155},
	{"g", 3.793},
	{"r", 2.751},
	{"i", 2.086},
	{"z", 1.479},
}

// Catalog resolves product files under one map directory and samples
// them.
type Catalog struct {
	dir     string
	sampler *skymap.Sampler
	log     logger.Logger
}

// NewCatalog returns a Catalog rooted at dir. A nil sampler gets a
// default one reading files directly.
func NewCatalog(dir string, sampler *skymap.Sampler, log logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	if sampler == nil {
		sampler = skymap.NewSampler(fits.NewIO(nil), log)
	}
	return &Catalog{dir: dir, sampler: sampler, log: log}
}

// Dir returns the map directory.
func (c *Catalog) Dir() string { return c.dir }

// Map returns the hemisphere file pair of a product.
func (c *Catalog) Map(p Product) (skymap.Map, error) {
	pair, ok := fileNames[p]
	if !ok {
		return skymap.Map{}, fmt.Errorf("dust: unknown map product %q", p)
	}
	return skymap.Map{
		North: filepath.Join(c.dir, pair[0]),
		South: filepath.Join(c.dir, pair[1]),
	}, nil
}

// Values samples a product at galactic coordinates, in degrees.
// The mask holds bit flags, so it is always read nearest-pixel.
func (c *Catalog) Values(ctx context.Context, p Product, gall, galb []float64, opts skymap.Options) ([]float32, error) {
	m, err := c.Map(p)
	if err != nil {
		return nil, err
	}
	if p == Mask && opts.Interpolate {
		c.log.Debug("mask is never interpolated, using nearest pixel")
		opts.Interpolate = false
	}
	return c.sampler.Values(ctx, m, gall, galb, opts)
}

// EBV samples E(B-V) at equatorial J2000 coordinates, in degrees.
func (c *Catalog) EBV(ctx context.Context, ra, dec []float64, opts skymap.Options) ([]float32, error) {
	if len(ra) != len(dec) {
		return nil, fmt.Errorf("dust: %d RA values but %d Dec values", len(ra), len(dec))
	}
	gall := make([]float64, len(ra))
	galb := make([]float64, len(ra))
	for i := range ra {
		gall[i], galb[i] = EquatorialToGalactic(ra[i], dec[i])
	}
	return c.Values(ctx, Ebv, gall, galb, opts)
}

// Extinction holds the dust column toward one line of sight.
type Extinction struct {
	EBV    float64            // E(B-V) in magnitudes
	EBVErr float64            // one sixth of E(B-V)
	Bands  map[string]float64 // per-filter extinction in magnitudes
}

// Extinction evaluates E(B-V) and the ugriz extinctions toward one
// equatorial J2000 position.
func (c *Catalog) Extinction(ctx context.Context, ra, dec float64, opts skymap.Options) (Extinction, error) {
	vals, err := c.EBV(ctx, []float64{ra}, []float64{dec}, opts)
	if err != nil {
		return Extinction{}, err
	}
	ebv := float64(vals[0])
	ext := Extinction{
		EBV:    ebv,
		EBVErr: ebv / 6.0,
		Bands:  make(map[string]float64, len(Bands)),
	}
	for _, b := range Bands {
		ext.Bands[b.Name] = b.RV * ebv
	}
	return ext, nil
}
