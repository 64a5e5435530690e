package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"vlooo/internal/apierr"
	"vlooo/internal/config"
	"vlooo/internal/gateway"
	"vlooo/internal/logging"
)

// Server is the local API proxy in front of the conversion backend.
type Server struct {
	bind     string
	logger   *slog.Logger
	client   *gateway.Client
	validate *validator.Validate
	limiter  *rate.Limiter

	listener net.Listener
	server   *http.Server
}

// NewServer builds the proxy from configuration. The returned server does
// not listen until Start.
func NewServer(cfg *config.Config, client *gateway.Client, logger *slog.Logger) (*Server, error) {
	if cfg == nil || client == nil {
		return nil, errors.New("proxy requires config and gateway client")
	}
	bind := strings.TrimSpace(cfg.Proxy.Bind)
	if bind == "" {
		return nil, errors.New("proxy bind address not configured")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	perSecond := cfg.Proxy.RatePerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	burst := cfg.Proxy.RateBurst
	if burst <= 0 {
		burst = 20
	}

	srv := &Server{
		bind:     bind,
		logger:   logger.With(logging.String(logging.FieldComponent, "proxy")),
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
	}

	requestTimeout := 60 * time.Second
	if cfg.Proxy.RequestTimeout > 0 {
		requestTimeout = time.Duration(cfg.Proxy.RequestTimeout) * time.Second
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(srv.logRequests)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(srv.limitRate)

	router.Get("/api/health", srv.handleHealth)
	router.Post("/api/parse-ppt", srv.handleParsePPT)
	router.Post("/api/generate-script", srv.handleGenerateScript)
	router.Post("/api/generate-tts", srv.handleGenerateTTS)
	router.Get("/api/generate-tts", srv.handleListVoices)
	router.Post("/api/render-video", srv.handleRenderVideo)
	router.Get("/api/project-status/{projectID}", srv.handleProjectStatus)
	router.Delete("/api/project/{projectID}", srv.handleDeleteProject)

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start begins serving and shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("proxy listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("proxy server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("proxy listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listen address, useful when binding to port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, draining in-flight requests briefly.
func (s *Server) Stop() {
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

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	envelope, err := apierr.Success(payload)
	if err != nil {
		s.writeError(w, apierr.New(apierr.CodeInternalServerError, "failed to encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		s.logger.Warn("write response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, apiErr *apierr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	if err := json.NewEncoder(w).Encode(apierr.Failure(apiErr)); err != nil {
		s.logger.Warn("write error response failed", logging.Error(err))
	}
}

// writeFailure classifies an arbitrary error before writing it out. Backend
// errors already carry a code; anything else becomes a 500.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	if apiErr, ok := apierr.FromError(err); ok {
		s.writeError(w, apiErr)
		return
	}
	s.writeError(w, apierr.New(apierr.CodeInternalServerError, err.Error()))
}
