package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP surface: health check plus the /v1 routes.
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := chi.NewRouter()
	router.Use(RequestID)
	router.Use(AccessLog(logger))
	router.Use(Recoverer(logger))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Route("/v1", h.RegisterRoutes)
	return router
}

// Server owns the listener and the http.Server for the router.
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   *zap.Logger
}

// NewServer binds addr immediately so Addr is valid before Start.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: lis,
		logger:   logger.Named("http-server"),
	}, nil
}

func (s *Server) Start() {
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.listener.Addr().String()))
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
