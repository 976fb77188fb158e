package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
)

// Server is the lifecycle shared by the operations and metrics servers.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer starts the HTTP server with graceful shutdown support.
// Loads and validates configuration, initializes the DI container, and starts the
// Gin HTTP server. Blocks until receiving SIGINT/SIGTERM or encountering a fatal
// error. On shutdown signal, stops the servers within ServerShutdownTimeout.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("vault_dir", cfg.VaultDataDir),
		slog.String("cipher_algorithm", cfg.VaultCipherAlgorithm),
	)

	defer closeContainer(container, logger)

	// Prepare the vault directory and derive the master key up front so that a
	// broken host fails at startup instead of on the first request.
	if _, err := container.RecordRepository(); err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	if err := container.ReadinessProbe()(ctx); err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	servers := []namedServer{{name: "api", server: server}}
	if metricsServer != nil {
		servers = append(servers, namedServer{name: "metrics", server: metricsServer})
	}

	return serve(ctx, servers, cfg.ServerShutdownTimeout, logger)
}

type namedServer struct {
	name   string
	server Server
}

// serve starts every server and blocks until ctx is done or one of them fails,
// then shuts all of them down.
func serve(ctx context.Context, servers []namedServer, shutdownTimeout time.Duration, logger *slog.Logger) error {
	serverErr := make(chan error, len(servers))
	for _, s := range servers {
		go func() {
			if err := s.server.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("%s server error: %w", s.name, err)
			}
		}()
	}

	var errs []error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		errs = append(errs, err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", s.name, err))
		}
	}

	return errors.Join(errs...)
}
