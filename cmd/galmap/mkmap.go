package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/sambenfield/galmap/internal/dust"
	"github.com/sambenfield/galmap/pkg/fits"
)

func mkmapCmd() *cli.Command {
	var (
		product    string
		projection string
		size       int64
		value      float64
	)

	return &cli.Command{
		Name:  "mkmap",
		Usage: "Write a synthetic hemisphere map pair for testing",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "product",
				Usage:       "map product to generate (Ebv, I100, X, T, mask)",
				Value:       "Ebv",
				Destination: &product,
			},
			&cli.StringFlag{
				Name:        "projection",
				Usage:       "sky projection (lambert, zea)",
				Value:       "lambert",
				Destination: &projection,
			},
			&cli.Int64Flag{
				Name:        "size",
				Usage:       "image width and height in pixels",
				Value:       64,
				Destination: &size,
			},
			&cli.FloatFlag{
				Name:        "value",
				Usage:       "constant pixel value",
				Value:       0.0,
				Destination: &value,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommonConfig(cmd, LoadConfig())
			log := buildLogger()

			if size < 2 {
				return fmt.Errorf("--size must be at least 2")
			}
			catalog := dust.NewCatalog(mapsDir, nil, log)
			m, err := catalog.Map(dust.Product(product))
			if err != nil {
				return err
			}
			for _, hemi := range []struct {
				path string
				nsgp int64
			}{
				{m.North, 1},
				{m.South, -1},
			} {
				switch projection {
				case "lambert":
					err = writeSyntheticCap(hemi.path, hemi.nsgp, size, float32(value))
				case "zea":
					err = writeSyntheticZea(hemi.path, hemi.nsgp, size, float32(value))
				default:
					return fmt.Errorf("unknown projection %q", projection)
				}
				if err != nil {
					return err
				}
				log.Info("wrote map", "path", filepath.Base(hemi.path),
					"projection", projection, "size", size)
			}
			return nil
		},
	}
}

// writeSyntheticCap writes one polar cap image with the pole at the
// image center and the equator on the inscribed circle.
func writeSyntheticCap(path string, nsgp, n int64, value float32) error {
	h := fits.NewHeader()
	h.SetInt(fits.LabelBitpix, int64(fits.BitpixF32))
	h.SetInt(fits.LabelNaxis, 2)
	h.SetInt("NAXIS1", n)
	h.SetInt("NAXIS2", n)
	h.SetStr(fits.LabelCtype1, "LAMBERT--X")
	h.SetStr(fits.LabelCtype2, "LAMBERT--Y")
	h.SetReal(fits.LabelCrval1, 0)
	h.SetReal(fits.LabelCrval2, 0)
	h.SetReal(fits.LabelCrpix1, float64(n)/2+0.5)
	h.SetReal(fits.LabelCrpix2, float64(n)/2+0.5)
	h.SetInt(fits.LabelLamNSGP, nsgp)
	h.SetReal(fits.LabelLamScal, float64(n)/2-0.5)
	h.AddComment("synthetic test map, not survey data")

	data := make([]float32, n*n)
	for i := range data {
		data[i] = value
	}
	return fits.NewIO(nil).WriteImage(path, h, data)
}

// writeSyntheticZea writes one polar cap in the standard zenithal
// equal-area convention. The pixel scale is chosen so the equator sits
// on the inscribed circle.
func writeSyntheticZea(path string, nsgp, n int64, value float32) error {
	// Native radius of the equator: 2*radeg*sin(45 deg).
	equator := 2.0 * (180.0 / math.Pi) * math.Sin(math.Pi/4)
	cdelt := 2.0 * equator / float64(n)

	h := fits.NewHeader()
	h.SetInt(fits.LabelBitpix, int64(fits.BitpixF32))
	h.SetInt(fits.LabelNaxis, 2)
	h.SetInt("NAXIS1", n)
	h.SetInt("NAXIS2", n)
	h.SetStr(fits.LabelCtype1, "GLON-ZEA")
	h.SetStr(fits.LabelCtype2, "GLAT-ZEA")
	h.SetReal(fits.LabelCrval1, 0)
	h.SetReal(fits.LabelCrval2, float64(nsgp)*90.0)
	h.SetReal(fits.LabelCrpix1, float64(n)/2+0.5)
	h.SetReal(fits.LabelCrpix2, float64(n)/2+0.5)
	h.SetReal(fits.LabelCdelt1, -cdelt)
	h.SetReal(fits.LabelCdelt2, cdelt)
	h.SetReal(fits.LabelLonpole, 180)
	h.AddComment("synthetic test map, not survey data")

	data := make([]float32, n*n)
	for i := range data {
		data[i] = value
	}
	return fits.NewIO(nil).WriteImage(path, h, data)
}
