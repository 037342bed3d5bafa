package api

import (
	"bufio"
	"log/slog"
	"net"
	"net/http"
	"time"

	"geotrail/pkg/logging"
	"geotrail/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, sessions *SessionHandler, geoH *GeographyHandler, entities *EntityHandler, fences *GeofenceHandler, routes *RouteHandler, cfg *ConfigHandler, shutdown func()) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     NewMux(sessions, geoH, entities, fences, routes, cfg, shutdown),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: frame streams stay open for the whole playback.
		IdleTimeout: 60 * time.Second,
	}
}

// NewMux registers every route. A nil shutdown disables the shutdown endpoint.
func NewMux(sessions *SessionHandler, geoH *GeographyHandler, entities *EntityHandler, fences *GeofenceHandler, routes *RouteHandler, cfg *ConfigHandler, shutdown func()) *http.ServeMux {
	mux := http.NewServeMux()

	// 1. Health and meta
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 2. Playback sessions
	mux.HandleFunc("POST /api/sessions", sessions.HandleCreate)
	mux.HandleFunc("GET /api/sessions", sessions.HandleList)
	mux.HandleFunc("GET /api/sessions/{id}", sessions.HandleGet)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessions.HandleDelete)
	mux.HandleFunc("POST /api/sessions/{id}/restart", sessions.HandleRestart)
	mux.HandleFunc("GET /api/sessions/{id}/path", sessions.HandlePath)
	mux.HandleFunc("GET /api/sessions/{id}/stream", sessions.HandleStream)

	// 3. Geodesy
	mux.HandleFunc("POST /api/geo/distance", geoH.HandleDistance)
	mux.HandleFunc("POST /api/geo/polygon", geoH.HandlePolygon)

	// 4. Live entities
	mux.HandleFunc("GET /api/entities", entities.HandleList)
	mux.HandleFunc("GET /api/entities/{id}", entities.HandleGet)
	mux.HandleFunc("DELETE /api/entities/{id}", entities.HandleDelete)
	mux.HandleFunc("POST /api/entities/{id}/position", entities.HandlePosition)
	mux.HandleFunc("POST /api/entities/{id}/error", entities.HandleError)

	// 5. Geofences
	mux.HandleFunc("GET /api/geofences", fences.HandleList)
	mux.HandleFunc("POST /api/geofences", fences.HandleAdd)
	mux.HandleFunc("GET /api/geofences/events", fences.HandleEvents)
	mux.HandleFunc("DELETE /api/geofences/{id}", fences.HandleDelete)

	// 6. Route comparison
	mux.HandleFunc("POST /api/route/analyze", routes.HandleAnalyze)
	mux.HandleFunc("GET /api/route/reports", routes.HandleReports)
	mux.HandleFunc("GET /api/route/reports/{id}", routes.HandleReport)

	// 7. Runtime tuning
	mux.HandleFunc("/api/config/tuning", cfg.HandleTuning)

	// 8. Shutdown
	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// Let the response flush first
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": version.Version})
}

// RequestLogging logs every request to the request log.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Hijack passes through so WebSocket upgrades work behind the middleware.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	s.status = http.StatusSwitchingProtocols
	return http.NewResponseController(s.ResponseWriter).Hijack()
}
