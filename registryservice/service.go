// Package registryservice assembles the token registry HTTP service.
package registryservice

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-push-registration/internal/api"
	"github.com/tinywideclouds/go-push-registration/pkg/registry"
	"github.com/tinywideclouds/go-push-registration/registryservice/config"
)

type Wrapper struct {
	*microservice.BaseServer
	logger *slog.Logger
}

// New assembles the service. validator may be nil to skip provider checks.
func New(
	cfg *config.Config,
	tokenStore registry.TokenStore,
	validator registry.TokenValidator,
	events registry.EventPublisher,
	authMiddleware func(http.Handler) http.Handler,
	logger *slog.Logger,
) (*Wrapper, error) {

	// 1. Base Server
	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	// 2. API (Token Registration)
	tokenAPI := api.NewTokenAPI(tokenStore, validator, events, logger)

	// 3. Routes
	mux := baseServer.Mux()
	corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)

	protected := func(h http.HandlerFunc) http.Handler {
		return corsMiddleware(authMiddleware(h))
	}

	mux.Handle("OPTIONS /tokens", corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	mux.Handle("PUT /tokens", protected(tokenAPI.RegisterToken))
	mux.Handle("DELETE /tokens", protected(tokenAPI.UnregisterToken))
	mux.Handle("GET /tokens", protected(tokenAPI.ListTokens))

	return &Wrapper{
		BaseServer: baseServer,
		logger:     logger,
	}, nil
}

func (w *Wrapper) Start(_ context.Context) error {
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		return err
	}
	w.logger.Info("Service shutdown complete.")
	return nil
}
