package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/sambenfield/galmap/internal/api"
	"github.com/sambenfield/galmap/internal/dust"
	"github.com/sambenfield/galmap/internal/iopool"
	"github.com/sambenfield/galmap/internal/skymap"
	"github.com/sambenfield/galmap/pkg/fits"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		rps         float64
		maxOpen     int64
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the map sampling REST API",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.FloatFlag{
				Name:        "rate-limit",
				Usage:       "requests per second, 0 to disable",
				Value:       0,
				Destination: &rps,
			},
			&cli.Int64Flag{
				Name:        "max-open",
				Usage:       "map file handles open at once",
				Value:       16,
				Destination: &maxOpen,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			applyServeConfig(cmd, cfg, &addr, &rps, &maxOpen)
			log := buildLogger()

			pool := iopool.New(int(maxOpen), nil)
			sampler := skymap.NewSampler(fits.NewIO(pool), log)
			catalog := dust.NewCatalog(mapsDir, sampler, log)
			server := api.NewServer(catalog, log, rps)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "maps_dir", mapsDir)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
