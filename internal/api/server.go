// Package api exposes the dust map catalog over HTTP.
package api

import (
	"errors"
	"net/http"
	"os"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/sambenfield/galmap/internal/dust"
	"github.com/sambenfield/galmap/internal/logger"
	"github.com/sambenfield/galmap/internal/skymap"
	"github.com/sambenfield/galmap/pkg/fits"
)

// Server handles the map sampling endpoints.
type Server struct {
	catalog *dust.Catalog
	log     logger.Logger
	limiter *rate.Limiter
}

// NewServer returns a Server over the given catalog. A positive rps
// enables request rate limiting with a burst of twice the rate.
func NewServer(catalog *dust.Catalog, log logger.Logger, rps float64) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{catalog: catalog, log: log}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), int(2*rps)+1)
	}
	return s
}

// Register attaches the endpoints to e.
func (s *Server) Register(e *echo.Echo) {
	e.Use(s.rateLimit)
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/maps", s.handleMaps)
	e.POST("/v1/sample", s.handleSample)
	e.POST("/v1/extinction", s.handleExtinction)
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if s.limiter != nil && !s.limiter.Allow() {
			return writeError(c, http.StatusTooManyRequests, "rate_limited", "too many requests")
		}
		return next(c)
	}
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, ErrorBody{Error: APIError{Type: errType, Message: msg}})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMaps(c *echo.Context) error {
	out := MapsResponse{Dir: s.catalog.Dir()}
	for _, p := range dust.Products {
		m, err := s.catalog.Map(p)
		if err != nil {
			return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
		}
		out.Maps = append(out.Maps, MapInfo{Name: string(p), North: m.North, South: m.South})
	}
	return writeJSON(c, http.StatusOK, out)
}

func (s *Server) handleSample(c *echo.Context) error {
	var req SampleRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return writeBadRequest(c, "malformed JSON body")
	}
	if req.Map == "" {
		req.Map = string(dust.Ebv)
	}

	galactic := len(req.L) > 0 || len(req.B) > 0
	equatorial := len(req.RA) > 0 || len(req.Dec) > 0
	switch {
	case galactic && equatorial:
		return writeBadRequest(c, "l/b and ra/dec are mutually exclusive")
	case !galactic && !equatorial:
		return writeBadRequest(c, "no positions given")
	case galactic && len(req.L) != len(req.B):
		return writeBadRequest(c, "l and b must have the same length")
	case equatorial && len(req.RA) != len(req.Dec):
		return writeBadRequest(c, "ra and dec must have the same length")
	}

	gall, galb := req.L, req.B
	if equatorial {
		gall = make([]float64, len(req.RA))
		galb = make([]float64, len(req.RA))
		for i := range req.RA {
			gall[i], galb[i] = dust.EquatorialToGalactic(req.RA[i], req.Dec[i])
		}
	}

	id := uuid.NewString()
	log := s.log.With("request_id", id)
	opts := skymap.Options{Interpolate: req.Interpolate, Bulk: req.Bulk}
	vals, err := s.catalog.Values(c.Request().Context(), dust.Product(req.Map), gall, galb, opts)
	if err != nil {
		return s.sampleError(c, log, req.Map, err)
	}
	log.Info("sampled map", "map", req.Map, "points", len(vals))
	return writeJSON(c, http.StatusOK, SampleResponse{ID: id, Map: req.Map, Values: vals})
}

func (s *Server) handleExtinction(c *echo.Context) error {
	var req ExtinctionRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return writeBadRequest(c, "malformed JSON body")
	}

	id := uuid.NewString()
	opts := skymap.Options{Interpolate: req.Interpolate}
	ext, err := s.catalog.Extinction(c.Request().Context(), req.RA, req.Dec, opts)
	if err != nil {
		return s.sampleError(c, s.log.With("request_id", id), string(dust.Ebv), err)
	}
	return writeJSON(c, http.StatusOK, ExtinctionResponse{
		ID:     id,
		EBV:    ext.EBV,
		EBVErr: ext.EBVErr,
		Bands:  ext.Bands,
	})
}

func (s *Server) sampleError(c *echo.Context, log logger.Logger, mapName string, err error) error {
	log.Error("sample failed", "map", mapName, "error", err)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return writeError(c, http.StatusNotFound, "not_found_error", "map file not found")
	case errors.Is(err, skymap.ErrIncomplete), errors.Is(err, fits.ErrTruncated):
		return writeError(c, http.StatusBadGateway, "map_data_error", err.Error())
	default:
		return writeBadRequest(c, err.Error())
	}
}
