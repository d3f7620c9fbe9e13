// Package projection converts galactic (l,b) coordinates into pixel
// positions on the two sky projections the dust maps are published in:
// the polar Lambert azimuthal equal-area convention with its private
// header keys, and the standard ZEA convention.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/sambenfield/galmap/internal/logger"
	"github.com/sambenfield/galmap/pkg/fits"
)

// ErrUnsupported marks a header whose CTYPE pair names a projection
// this package cannot invert.
var ErrUnsupported = errors.New("projection: unsupported CTYPE pair")

const radeg = 180 / math.Pi

// Transform resolves pixel positions against a map header.
type Transform struct {
	log logger.Logger
}

// New returns a Transform logging through log, or silently when log is
// nil.
func New(log logger.Logger) *Transform {
	if log == nil {
		log = logger.Nop()
	}
	return &Transform{log: log}
}

func realCard(h *fits.Header, label string) (float64, error) {
	v, ok := h.Real(label)
	if !ok {
		return 0, fmt.Errorf("%w: %s", fits.ErrMissingCard, label)
	}
	return v, nil
}

// FractionalPixel maps galactic (l,b) in degrees to the zero-indexed
// fractional pixel position declared by the header's projection.
func (t *Transform) FractionalPixel(h *fits.Header, gall, galb float64) (float64, float64, error) {
	ctype1, _ := h.Str(fits.LabelCtype1)
	ctype2, _ := h.Str(fits.LabelCtype2)

	crval1, err := realCard(h, fits.LabelCrval1)
	if err != nil {
		return 0, 0, err
	}
	crval2, err := realCard(h, fits.LabelCrval2)
	if err != nil {
		return 0, 0, err
	}
	crpix1, err := realCard(h, fits.LabelCrpix1)
	if err != nil {
		return 0, 0, err
	}
	crpix2, err := realCard(h, fits.LabelCrpix2)
	if err != nil {
		return 0, 0, err
	}

	switch {
	case ctype1 == "LAMBERT--X" && ctype2 == "LAMBERT--Y":
		nsgp, ok := h.Int(fits.LabelLamNSGP)
		if !ok {
			return 0, 0, fmt.Errorf("%w: %s", fits.ErrMissingCard, fits.LabelLamNSGP)
		}
		scale, err := realCard(h, fits.LabelLamScal)
		if err != nil {
			return 0, 0, err
		}
		xr, yr := lambertXY(gall, galb, int(nsgp), scale)
		return xr + crpix1 - crval1 - 1.0, yr + crpix2 - crval2 - 1.0, nil

	case ctype1 == "GLON-ZEA" && ctype2 == "GLAT-ZEA":
		return t.zeaPixel(h, gall, galb, crval1, crval2, crpix1, crpix2)

	default:
		return 0, 0, fmt.Errorf("%w: %q/%q", ErrUnsupported, ctype1, ctype2)
	}
}

// NearestPixel maps galactic (l,b) to the nearest zero-indexed pixel,
// clamped into the image so boundary coordinates such as l=0,b=0 stay
// addressable.
func (t *Transform) NearestPixel(h *fits.Header, gall, galb float64) (int64, int64, error) {
	xr, yr, err := t.FractionalPixel(h, gall, galb)
	if err != nil {
		return 0, 0, err
	}
	axes := h.Axes()
	if len(axes) < 2 {
		return 0, 0, fmt.Errorf("projection: header declares %d axes, need 2", len(axes))
	}
	ix := int64(math.Floor(xr + 0.5))
	iy := int64(math.Floor(yr + 0.5))
	if ix < 0 {
		ix = 0
	}
	if iy < 0 {
		iy = 0
	}
	if ix >= axes[0] {
		ix = axes[0] - 1
	}
	if iy >= axes[1] {
		iy = axes[1] - 1
	}
	return ix, iy, nil
}

// lambertXY projects (l,b) onto the polar Lambert plane. Longitude
// runs clockwise from the X axis for the north cap and counter-
// clockwise for the south cap.
func lambertXY(gall, galb float64, nsgp int, scale float64) (float64, float64) {
	rho := math.Sqrt(1.0 - float64(nsgp)*math.Sin(galb/radeg))
	x := rho * math.Cos(gall/radeg) * scale
	y := -float64(nsgp) * rho * math.Sin(gall/radeg) * scale
	return x, y
}

func (t *Transform) zeaPixel(h *fits.Header, gall, galb, crval1, crval2, crpix1, crpix2 float64) (float64, float64, error) {
	var cd11, cd12, cd21, cd22 float64
	cdelt1, ok1 := h.Real(fits.LabelCdelt1)
	cdelt2, ok2 := h.Real(fits.LabelCdelt2)
	if ok1 && ok2 {
		cd11, cd12, cd21, cd22 = cdelt1, 0, 0, cdelt2
	} else {
		var err error
		if cd11, err = realCard(h, fits.LabelCD1_1); err != nil {
			return 0, 0, err
		}
		if cd12, err = realCard(h, fits.LabelCD1_2); err != nil {
			return 0, 0, err
		}
		if cd21, err = realCard(h, fits.LabelCD2_1); err != nil {
			return 0, 0, err
		}
		if cd22, err = realCard(h, fits.LabelCD2_2); err != nil {
			return 0, 0, err
		}
	}
	lonpole, ok := h.Real(fits.LabelLonpole)
	if !ok {
		lonpole = 180.0
	}

	// Native rotation. Only exact polar CRVAL2 has a closed form; an
	// oblique reference value falls back to the north-pole branch.
	var theta, phi float64
	switch {
	case crval2 > 89.9999:
		theta = galb
		phi = gall + 180.0 + lonpole - crval1
	case crval2 < -89.9999:
		theta = -galb
		phi = lonpole + crval1 - gall
	default:
		t.log.Warn("oblique ZEA reference value, assuming north polar projection", "crval2", crval2)
		theta = galb
		phi = gall + 180.0 + lonpole - crval1
	}
	phi -= 360.0 * math.Floor(phi/360.0)

	rTheta := 2.0 * radeg * math.Sin((0.5/radeg)*(90.0-theta))
	xr := rTheta * math.Sin(phi/radeg)
	yr := -rTheta * math.Cos(phi/radeg)

	denom := cd11*cd22 - cd12*cd21
	if denom == 0 {
		return 0, 0, fmt.Errorf("projection: singular CD matrix")
	}
	x := (cd22*xr-cd12*yr)/denom + (crpix1 - 1.0)
	y := (cd11*yr-cd21*xr)/denom + (crpix2 - 1.0)
	return x, y, nil
}
