package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/KaramelBytes/choropleth-cli/internal/binding"
	"github.com/KaramelBytes/choropleth-cli/internal/classify"
	"github.com/KaramelBytes/choropleth-cli/internal/colorscale"
	"github.com/KaramelBytes/choropleth-cli/internal/config"
	"github.com/KaramelBytes/choropleth-cli/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Server exposes the binding pipeline over HTTP. Sessions live in memory
// only.
type Server struct {
	cfg     *config.Global
	schemes *colorscale.Registry

	mu       sync.RWMutex
	sessions map[string]*binding.Session
}

// New builds a server from loaded configuration.
func New(cfg *config.Global, schemes *colorscale.Registry) *Server {
	return &Server{cfg: cfg, schemes: schemes, sessions: make(map[string]*binding.Session)}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/schemes", s.listSchemes)
		r.Get("/schemes/{id}", s.getScheme)
		r.Get("/methods", s.listMethods)
		r.Post("/regions", s.extractRegions)
		r.Post("/match", s.matchNames)
		r.Post("/bind", s.bind)

		r.Post("/sessions", s.createSession)
		r.Get("/sessions/{id}", s.getSession)
		r.Patch("/sessions/{id}", s.updateSession)
		r.Delete("/sessions/{id}", s.deleteSession)
		r.Get("/sessions/{id}/export", s.exportSession)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("server: request failed", zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig), errors.Is(err, table.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, table.ErrWrongFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, binding.ErrColumnNotFound), errors.Is(err, binding.ErrInvalidTable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, classify.ErrInvalidBucketCount),
		errors.Is(err, classify.ErrInvalidBreaks),
		errors.Is(err, classify.ErrUnknownMethod),
		errors.Is(err, colorscale.ErrUnknownScheme),
		errors.Is(err, colorscale.ErrInvalidScheme):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
