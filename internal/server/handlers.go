package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/normanking/lipsyncd/internal/audio"
	"github.com/normanking/lipsyncd/internal/journal"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Services  map[string]ServiceHealth `json:"services"`
	Timestamp string                   `json:"timestamp"`
}

// ServiceHealth represents a service health status
type ServiceHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the JSON body of failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// JobsResponse represents the recent jobs list
type JobsResponse struct {
	Jobs []*journal.Job `json:"jobs"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// processHandler accepts a multipart WAV upload and responds with the
// converted event timeline
func (s *Server) processHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	maxBytes := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if !audio.IsWAVPath(header.Filename) {
		writeError(w, http.StatusBadRequest, "only .wav files are supported")
		return
	}

	tmp, err := os.CreateTemp("", "lipsyncd-*.wav")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "failed to buffer upload")
		return
	}
	tmp.Close()

	result, err := s.engine.ProcessUpload(r.Context(), tmp.Name(), header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, audio.ErrUnsupportedAudio),
			errors.Is(err, audio.ErrInvalidWAV),
			errors.Is(err, audio.ErrEmptyAudio):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.Header().Set("X-Job-ID", result.JobID)
	writeJSON(w, http.StatusOK, result.Events)
}

// healthHandler handles health check requests
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	services := map[string]ServiceHealth{
		"http": {Healthy: true, Message: "HTTP server running"},
	}

	if provider := s.engine.Provider(); provider != nil {
		if err := provider.Health(r.Context()); err != nil {
			services[provider.Name()] = ServiceHealth{Healthy: false, Message: err.Error()}
		} else {
			services[provider.Name()] = ServiceHealth{Healthy: true}
		}
	}

	if s.journal != nil {
		services["journal"] = ServiceHealth{Healthy: true}
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   version,
		Uptime:    time.Since(s.startTime).String(),
		Services:  services,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// jobsHandler serves the journal: GET /jobs/ lists recent jobs,
// GET /jobs/{id} returns one, GET /jobs/{id}/events its timeline
func (s *Server) jobsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	if rest == "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		jobs, err := s.journal.Recent(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if jobs == nil {
			jobs = []*journal.Job{}
		}
		writeJSON(w, http.StatusOK, JobsResponse{Jobs: jobs})
		return
	}

	id, sub, _ := strings.Cut(rest, "/")
	switch sub {
	case "":
		job, err := s.journal.Get(id)
		if err != nil {
			if errors.Is(err, journal.ErrJobNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, job)

	case "events":
		events, err := s.journal.EventsFor(id)
		if err != nil {
			if errors.Is(err, journal.ErrJobNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, events)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
