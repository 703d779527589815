package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/model"
	"github.com/sells-group/poverty-mapper/internal/render"
)

var servePort int

const (
	contentTypeGeoJSON = "application/geo+json"
	contentTypeJSON    = "application/json"
)

// mapServer serves render passes over HTTP. Passes are serialized; rendered
// bodies are cached per selection.
type mapServer struct {
	mu    sync.Mutex
	base  model.Selection
	build func(ctx context.Context, sel model.Selection) (*render.Map, error)
	cache *render.ResponseCache
}

func newMapServer(base model.Selection, cache *render.ResponseCache, build func(ctx context.Context, sel model.Selection) (*render.Map, error)) *mapServer {
	return &mapServer{base: base, build: build, cache: cache}
}

func (s *mapServer) routes(allowOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/map.geojson", s.handleMap)
	r.Get("/legend", s.handleLegend)
	r.Get("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.cache.Stats())
	})
	return r
}

// selection reads year, country and region query overrides.
func (s *mapServer) selection(r *http.Request) (model.Selection, error) {
	sel := s.base
	q := r.URL.Query()
	if q.Has("year") {
		y, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			return sel, eris.Errorf("invalid year %q", q.Get("year"))
		}
		sel.Year = y
	}
	if q.Has("country") {
		sel.Country = q.Get("country")
	}
	if q.Has("region") {
		sel.Region = q.Get("region")
	}
	return sel, nil
}

func selectionKey(kind string, sel model.Selection) string {
	return fmt.Sprintf("%s|%d|%s|%s", kind, sel.Year, sel.Country, sel.Region)
}

func (s *mapServer) handleMap(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "geojson", contentTypeGeoJSON, render.WriteGeoJSON)
}

func (s *mapServer) handleLegend(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "legend", contentTypeJSON, render.WriteLegend)
}

func (s *mapServer) serveCached(w http.ResponseWriter, r *http.Request, kind, contentType string, write func(w io.Writer, m *render.Map) error) {
	sel, err := s.selection(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	key := selectionKey(kind, sel)
	if data, ct, ok := s.cache.Get(key); ok {
		w.Header().Set("Content-Type", ct)
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(data)
		return
	}

	s.mu.Lock()
	m, err := s.build(r.Context(), sel)
	s.mu.Unlock()
	if err != nil {
		status := statusFor(err)
		zap.L().Error("render pass failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, m); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.cache.Put(key, contentType, buf.Bytes())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(buf.Bytes())
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var empty *model.EmptyRowSetError
	var unavailable *model.SourceUnavailableError
	switch {
	case errors.As(err, &empty):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wealth tile map as GeoJSON over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rc := render.NewResponseCache(cfg.Server.CacheSize, time.Duration(cfg.Server.CacheTTLSecs)*time.Second)
		ms := newMapServer(cfg.Selection, rc, func(ctx context.Context, sel model.Selection) (*render.Map, error) {
			return buildMap(ctx, cfg, sel)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           ms.routes(cfg.Server.AllowOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
