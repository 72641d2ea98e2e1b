// Package api exposes the detection engine over HTTP: a thin transport
// for the data processor's cleaned datasets in and ranked anomaly
// records out. No parsing, persistence or rendering happens here.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"godrift/app"
	"godrift/domain/core"
	"godrift/internal"
	"godrift/internal/config"
	apperrors "godrift/internal/errors"
)

// Server routes detection requests to the service.
type Server struct {
	service *app.DetectionService
	cfg     config.DetectionConfig
	logger  *internal.Logger
}

// NewServer creates an HTTP server around a detection service.
func NewServer(service *app.DetectionService, cfg config.DetectionConfig, logger *internal.Logger) *Server {
	return &Server{service: service, cfg: cfg, logger: logger}
}

// Router builds the chi routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/detect", s.handleDetect)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var payload DatasetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.InvalidInput("malformed dataset payload"))
		return
	}

	req, err := payload.ToRequest(s.cfg.Parameters, s.cfg.RunTimeout)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.service.Run(r.Context(), req)
	if err != nil {
		if core.IsInvalidParameter(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Error("detection request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}
