// Package pushagent runs push registration on a device and hands the
// resulting token to the registry.
package pushagent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// Registrar is satisfied by *registration.Flow.
type Registrar interface {
	Register(ctx context.Context) (registration.Outcome, error)
}

// TokenUploader delivers an issued token to the backend that will address
// pushes to this device.
type TokenUploader interface {
	Upload(ctx context.Context, token string, platform registration.Platform) error
}

type Agent struct {
	flow     Registrar
	platform registration.Platform
	uploader TokenUploader
	logger   *slog.Logger
}

// New builds an Agent. uploader may be nil, in which case tokens are only
// returned to the caller.
func New(flow Registrar, platform registration.Platform, uploader TokenUploader, logger *slog.Logger) *Agent {
	return &Agent{
		flow:     flow,
		platform: platform,
		uploader: uploader,
		logger:   logger.With("component", "PushAgent"),
	}
}

// Run performs one registration attempt. A failed upload is reported as an
// error alongside the Token outcome, since the token itself was issued.
func (a *Agent) Run(ctx context.Context) (registration.Outcome, error) {
	outcome, err := a.flow.Register(ctx)
	if err != nil {
		return outcome, err
	}

	a.logger.Info("Registration finished", "outcome", outcome.Kind.String())
	if outcome.Kind != registration.OutcomeToken || a.uploader == nil {
		return outcome, nil
	}

	if err := a.uploader.Upload(ctx, outcome.Token, a.platform); err != nil {
		a.logger.Error("Token upload failed", "err", err)
		return outcome, fmt.Errorf("token issued but upload failed: %w", err)
	}
	a.logger.Info("Token uploaded to registry")
	return outcome, nil
}
