package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/config"
	handler "github.com/operacoevilla-web/avalia-o-desempenho/internal/grpc"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/httpapi"
	grpcsrv "github.com/operacoevilla-web/avalia-o-desempenho/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	services   *Services
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	services, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	grpcHandlers := handler.NewGRPCHandlers(services.Evaluations, logger, cfg.GenAITimeout+30*time.Second)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithRequestID(true),
		grpcsrv.WithRecovery(true),
	)
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterEvaluationServer(s, grpcHandlers)
	})

	router := httpapi.NewRouter(httpapi.NewHandler(services.Evaluations, logger), logger)
	httpServer, err := httpapi.NewServer(cfg.HTTPAddr, router, logger)
	if err != nil {
		_ = grpcServer.Shutdown(ctx)
		services.Close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return &App{
		logger:     logger,
		services:   services,
		grpcServer: grpcServer,
		httpServer: httpServer,
	}, nil
}

// Start launches both servers and returns immediately.
func (a *App) Start() {
	a.logger.Info("application starting")
	a.grpcServer.Start()
	a.httpServer.Start()
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.Shutdown(ctx)
	_ = a.logger.Sync()
	return err
}

// Shutdown stops both servers, then closes the backend.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}
	if err := a.services.Close(); err != nil {
		a.logger.Error("backend shutdown error", zap.Error(err))
	}

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			a.logger.Warn("shutdown completed but deadline exceeded")
		}
		return ctx.Err()
	default:
		a.logger.Info("graceful shutdown completed successfully")
	}
	return nil
}

// GRPCAddr returns a dialable loopback address for the gRPC listener.
func (a *App) GRPCAddr() string {
	if tcp, ok := a.grpcServer.Addr().(*net.TCPAddr); ok {
		return net.JoinHostPort("127.0.0.1", strconv.Itoa(tcp.Port))
	}
	return a.grpcServer.Addr().String()
}

func (a *App) HTTPAddr() string { return a.httpServer.Addr().String() }
