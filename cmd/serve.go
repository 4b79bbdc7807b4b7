package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridscape/hexsight/internal/analysis"
)

const (
	defaultRadiusKM = 2.0
	minRadiusKM     = 0.5
	maxRadiusKM     = 10.0
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hexsight_http_requests_total",
		Help: "HTTP requests by path and status code.",
	}, []string{"path", "code"})

	analyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "hexsight_analyze_duration_seconds",
		Help: "Latency of full region analyses.",
	})
)

// regionAnalyzer is the handler-facing surface of *analysis.Analyzer.
type regionAnalyzer interface {
	Analyze(ctx context.Context, lat, lon, radiusKM float64) (*analysis.Result, error)
	HexagonGeoJSON(lat, lon, radiusKM float64) ([]byte, error)
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		api, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(api),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
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

func newRouter(api regionAnalyzer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api/health", handleHealth(api))
	r.Post("/api/analyze", handleAnalyze(api))
	r.Get("/api/hexagon-geojson", handleHexagonGeoJSON(api))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		httpRequests.WithLabelValues(r.URL.Path, strconv.Itoa(ww.Status())).Inc()
	})
}

func handleHealth(api regionAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":               "ok",
			"analyzer_initialized": api != nil,
		})
	}
}

func handleAnalyze(api regionAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Lat    float64 `json:"latitude"`
			Lon    float64 `json:"longitude"`
			Radius float64 `json:"radius_km"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Radius == 0 {
			req.Radius = defaultRadiusKM
		}
		if err := validateRegion(req.Lat, req.Lon, req.Radius); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		start := time.Now()
		res, err := api.Analyze(r.Context(), req.Lat, req.Lon, req.Radius)
		if err != nil {
			if errors.Is(err, analysis.ErrOutsideCoverage) {
				writeError(w, http.StatusUnprocessableEntity, "requested region is outside raster coverage")
				return
			}
			zap.L().Error("analysis request failed",
				zap.Float64("lat", req.Lat),
				zap.Float64("lon", req.Lon),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		analyzeDuration.Observe(time.Since(start).Seconds())

		writeJSON(w, http.StatusOK, res.Map())
	}
}

func handleHexagonGeoJSON(api regionAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, err := parseFloatParam(r, "lat")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lon, err := parseFloatParam(r, "lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		radius := defaultRadiusKM
		if raw := r.URL.Query().Get("radius"); raw != "" {
			radius, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "radius must be a number")
				return
			}
		}
		if err := validateRegion(lat, lon, radius); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		data, err := api.HexagonGeoJSON(lat, lon, radius)
		if err != nil {
			zap.L().Error("hexagon geojson request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "hexagon computation failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func validateRegion(lat, lon, radiusKM float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("lon must be between -180 and 180")
	}
	if radiusKM < minRadiusKM || radiusKM > maxRadiusKM {
		return fmt.Errorf("radius must be between %g and %g km", minRadiusKM, maxRadiusKM)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
