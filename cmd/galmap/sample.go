package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/sambenfield/galmap/internal/dust"
	"github.com/sambenfield/galmap/internal/skymap"
)

func sampleCmd() *cli.Command {
	var (
		mapName string
		lList   string
		bList   string
		raList  string
		decList string
		interp  bool
		bulk    bool
		asJSON  bool
	)

	return &cli.Command{
		Name:  "sample",
		Usage: "Sample a dust map at sky positions",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "map",
				Usage:       "map product (Ebv, I100, X, T, mask)",
				Value:       "Ebv",
				Destination: &mapName,
			},
			&cli.StringFlag{
				Name:        "l",
				Usage:       "comma-separated galactic longitudes in degrees",
				Destination: &lList,
			},
			&cli.StringFlag{
				Name:        "b",
				Usage:       "comma-separated galactic latitudes in degrees",
				Destination: &bList,
			},
			&cli.StringFlag{
				Name:        "ra",
				Usage:       "comma-separated J2000 right ascensions in degrees",
				Destination: &raList,
			},
			&cli.StringFlag{
				Name:        "dec",
				Usage:       "comma-separated J2000 declinations in degrees",
				Destination: &decList,
			},
			&cli.BoolFlag{
				Name:        "interp",
				Usage:       "bilinear interpolation instead of nearest pixel",
				Value:       true,
				Destination: &interp,
			},
			&cli.BoolFlag{
				Name:        "bulk",
				Usage:       "read one bounding-box subimage per hemisphere",
				Destination: &bulk,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print results as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			if cfg.DefaultMap != "" && !cmd.IsSet("map") {
				mapName = cfg.DefaultMap
			}
			log := buildLogger()

			gall, galb, err := resolvePositions(lList, bList, raList, decList)
			if err != nil {
				return err
			}

			catalog := dust.NewCatalog(mapsDir, skymap.NewSampler(nil, log), log)
			opts := skymap.Options{Interpolate: interp, Bulk: bulk}
			vals, err := catalog.Values(ctx, dust.Product(mapName), gall, galb, opts)
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"map":    mapName,
					"l":      gall,
					"b":      galb,
					"values": vals,
				})
			}
			for i, v := range vals {
				fmt.Printf("%8.3f %7.3f %12.5e\n", gall[i], galb[i], v)
			}
			return nil
		},
	}
}

func extinctCmd() *cli.Command {
	var (
		ra     float64
		dec    float64
		interp bool
		asJSON bool
	)

	return &cli.Command{
		Name:  "extinct",
		Usage: "E(B-V) and ugriz extinction toward one position",
		Flags: append(commonFlags(),
			&cli.FloatFlag{
				Name:        "ra",
				Usage:       "J2000 right ascension in degrees",
				Destination: &ra,
			},
			&cli.FloatFlag{
				Name:        "dec",
				Usage:       "J2000 declination in degrees",
				Destination: &dec,
			},
			&cli.BoolFlag{
				Name:        "interp",
				Usage:       "bilinear interpolation instead of nearest pixel",
				Value:       true,
				Destination: &interp,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print results as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommonConfig(cmd, LoadConfig())
			log := buildLogger()

			catalog := dust.NewCatalog(mapsDir, skymap.NewSampler(nil, log), log)
			ext, err := catalog.Extinction(ctx, ra, dec, skymap.Options{Interpolate: interp})
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"ebv":     ext.EBV,
					"ebv_err": ext.EBVErr,
					"bands":   ext.Bands,
				})
			}
			fmt.Printf("E(B-V) = %.5f +/- %.5f\n", ext.EBV, ext.EBVErr)
			for _, band := range dust.Bands {
				fmt.Printf("A_%s = %.5f\n", band.Name, ext.Bands[band.Name])
			}
			return nil
		},
	}
}

// resolvePositions turns the coordinate flags into galactic (l,b)
// slices. Galactic and equatorial inputs are mutually exclusive.
func resolvePositions(lList, bList, raList, decList string) ([]float64, []float64, error) {
	galactic := lList != "" || bList != ""
	equatorial := raList != "" || decList != ""
	switch {
	case galactic && equatorial:
		return nil, nil, fmt.Errorf("--l/--b and --ra/--dec are mutually exclusive")
	case !galactic && !equatorial:
		return nil, nil, fmt.Errorf("no positions given, use --l/--b or --ra/--dec")
	}

	if galactic {
		gall, err := parseFloats(lList)
		if err != nil {
			return nil, nil, fmt.Errorf("--l: %w", err)
		}
		galb, err := parseFloats(bList)
		if err != nil {
			return nil, nil, fmt.Errorf("--b: %w", err)
		}
		if len(gall) != len(galb) {
			return nil, nil, fmt.Errorf("--l has %d values, --b has %d", len(gall), len(galb))
		}
		return gall, galb, nil
	}

	ra, err := parseFloats(raList)
	if err != nil {
		return nil, nil, fmt.Errorf("--ra: %w", err)
	}
	dec, err := parseFloats(decList)
	if err != nil {
		return nil, nil, fmt.Errorf("--dec: %w", err)
	}
	if len(ra) != len(dec) {
		return nil, nil, fmt.Errorf("--ra has %d values, --dec has %d", len(ra), len(dec))
	}
	gall := make([]float64, len(ra))
	galb := make([]float64, len(ra))
	for i := range ra {
		gall[i], galb[i] = dust.EquatorialToGalactic(ra[i], dec[i])
	}
	return gall, galb, nil
}

func parseFloats(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", p)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}
