// Package api serves the engine's views over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/helpers"
	"github.com/spektr-org/portemission/schema"
)

// Source yields the dataset a request is served from. It is called once per
// request; implementations cache.
type Source func(ctx context.Context) (engine.Dataset, error)

// Server is the HTTP surface.
type Server struct {
	source  Source
	metrics *Metrics
	opts    []engine.Option
	router  *gin.Engine
}

// NewServer wires routes. opts are the configured engine defaults; request
// parameters are applied after them.
func NewServer(source Source, metrics *Metrics, opts ...engine.Option) *Server {
	s := &Server{source: source, metrics: metrics, opts: opts}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(), metrics.middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/schema", s.getSchema)
		v1.GET("/views", s.listViews)
		v1.GET("/filters", s.getFilters)
		v1.GET("/views/:view", s.getView)
		v1.GET("/export", s.getExport)
		v1.GET("/brief", s.getBrief)
	}
	s.router = router
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx ends, then drains for up to grace.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("🚀 api: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 api: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) getSchema(c *gin.Context) {
	c.JSON(http.StatusOK, schema.Emission())
}

func (s *Server) listViews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"views": engine.Views})
}

// filtersResponse is the widest selection for the served dataset.
type filtersResponse struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Zones       []string `json:"zones"`
	VesselTypes []string `json:"vessel_types"`
	FuelTypes   []string `json:"fuel_types"`
	Records     int      `json:"records"`
}

func (s *Server) getFilters(c *gin.Context) {
	ds, ok := s.dataset(c)
	if !ok {
		return
	}
	f := engine.DefaultFilters(ds)
	resp := filtersResponse{
		VesselTypes: f.VesselTypes(),
		Zones:       make([]string, 0),
		FuelTypes:   make([]string, 0),
		Records:     ds.Len(),
	}
	if !ds.IsEmpty() {
		resp.Start = f.Start().Format(time.DateOnly)
		resp.End = f.End().Format(time.DateOnly)
	}
	for _, z := range f.Zones() {
		resp.Zones = append(resp.Zones, string(z))
	}
	for _, fuel := range f.FuelTypes() {
		resp.FuelTypes = append(resp.FuelTypes, string(fuel))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getView(c *gin.Context) {
	result, ok := s.run(c, c.Param("view"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getBrief(c *gin.Context) {
	result, ok := s.run(c, engine.ViewSummary)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="executive_brief.txt"`)
	c.String(http.StatusOK, result.Reply)
}

func (s *Server) getExport(c *gin.Context) {
	ds, ok := s.dataset(c)
	if !ok {
		return
	}
	filters, err := filterParams(c).Build(ds)
	if err != nil {
		s.fail(c, err)
		return
	}
	slice := engine.Apply(ds, filters.Resolve(engine.DefaultFilters(ds)))

	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="port_emissions.csv"`)
		c.Status(http.StatusOK)
		err = helpers.WriteCSV(c.Writer, slice)
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="port_emissions.xlsx"`)
		c.Status(http.StatusOK)
		err = helpers.WriteXLSX(c.Writer, slice)
	default:
		s.fail(c, fmt.Errorf("%w: format %q must be csv or xlsx", engine.ErrInvalidArgument, format))
		return
	}
	if err != nil {
		log.Printf("❌ api: export failed rid=%s: %v", c.GetString(requestIDKey), err)
	}
}

// ============================================================================
// PLUMBING
// ============================================================================

// run resolves the dataset, parses parameters and dispatches view.
func (s *Server) run(c *gin.Context, view string) (*engine.Result, bool) {
	ds, ok := s.dataset(c)
	if !ok {
		return nil, false
	}
	filters, err := filterParams(c).Build(ds)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	extra, err := OptionParams{
		Threshold: c.Query("threshold"),
		Sigma:     c.Query("sigma"),
		Top:       c.Query("top"),
	}.Options()
	if err != nil {
		s.fail(c, err)
		return nil, false
	}

	opts := append(append([]engine.Option(nil), s.opts...), extra...)
	result, err := engine.Run(engine.Query{View: view, Filters: filters, Title: c.Query("title")}, ds, opts...)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	s.metrics.observeView(view, result.Type)
	return result, true
}

func (s *Server) dataset(c *gin.Context) (engine.Dataset, bool) {
	ds, err := s.source(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return engine.Dataset{}, false
	}
	s.metrics.datasetRows.Set(float64(ds.Len()))
	return ds, true
}

func filterParams(c *gin.Context) FilterParams {
	return FilterParams{
		Start:       c.Query("start"),
		End:         c.Query("end"),
		Zones:       c.QueryArray("zone"),
		VesselTypes: c.QueryArray("vessel_type"),
		FuelTypes:   c.QueryArray("fuel_type"),
	}
}

// fail maps ErrInvalidArgument to 400 and everything else to 500.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrInvalidArgument) {
		status = http.StatusBadRequest
	} else {
		log.Printf("❌ api: %s rid=%s: %v", c.Request.URL.Path, c.GetString(requestIDKey), err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"error":      err.Error(),
		"request_id": c.GetString(requestIDKey),
	})
}
