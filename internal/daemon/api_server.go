package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"podforge/internal/api"
	"podforge/internal/config"
	"podforge/internal/logging"
	"podforge/internal/services"
)

type apiServer struct {
	bind     string
	audioDir string
	logger   *slog.Logger
	daemon   *Daemon
	svc      *api.PodcastService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:     bind,
		audioDir: cfg.Paths.AudioDir,
		logger:   logger,
		daemon:   d,
		svc:      api.NewPodcastService(d.store, d.workflow),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/create-podcast", srv.handleCreatePodcast)
	mux.HandleFunc("/api/podcasts", srv.handleListPodcasts)
	mux.HandleFunc("/api/podcast/", srv.handleGetPodcast)
	mux.HandleFunc("/api/voices", srv.handleListVoices)
	mux.HandleFunc("/api/voice-preview/", srv.handleVoicePreview)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/audio/", srv.handleAudio)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type createPodcastRequest struct {
	Topic string   `json:"topic"`
	Hosts []string `json:"hosts"`
}

func (s *apiServer) handleCreatePodcast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req createPodcastRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
	}
	resp, err := s.svc.Create(r.Context(), req.Topic, req.Hosts)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleListPodcasts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	list, err := s.svc.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *apiServer) handleGetPodcast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/podcast/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "podcast not found")
		return
	}
	podcast, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, podcast)
}

func (s *apiServer) handleListVoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.Voices())
}

func (s *apiServer) handleVoicePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.previews == nil {
		s.writeError(w, http.StatusServiceUnavailable, "voice previews unavailable")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/voice-preview/")
	if name == "" || strings.Contains(name, "/") {
		s.writeError(w, http.StatusNotFound, "unknown voice")
		return
	}
	entry, err := s.daemon.previews.Generate(r.Context(), name)
	if errors.Is(err, services.ErrUnknownVoice) {
		s.writeServiceError(w, err)
		return
	}
	if err != nil {
		// Synthesis failures keep the preview response shape; the web
		// client branches on the success flag, not the status code.
		status := services.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.log().Error("voice preview failed", logging.Error(err))
		}
		s.writeJSON(w, status, api.PreviewResponse{
			Success: false,
			Error:   services.FailureMessage(err),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, api.PreviewResponse{
		Success:      true,
		MetadataPath: entry.MetadataPath,
		Simulated:    entry.Simulated,
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		Workflow:     api.FromStatusSummary(status.Workflow),
	})
}

// handleAudio serves generated files by bare name only; paths with
// separators or traversal are rejected.
func (s *apiServer) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/audio/")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}
	http.ServeFile(w, r, filepath.Join(s.audioDir, name))
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log().Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, services.FailureMessage(err))
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
