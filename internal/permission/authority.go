// Package permission implements the Permission Authority on top of a
// persisted grant state and a user-facing prompt.
package permission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// StatusStore persists the grant state for one installation.
type StatusStore interface {
	// Load returns StatusUndetermined when nothing has been stored yet.
	Load(ctx context.Context) (registration.PermissionStatus, error)
	Save(ctx context.Context, status registration.PermissionStatus) error
}

// Prompter asks the user whether notifications may be shown.
type Prompter interface {
	Prompt(ctx context.Context) (bool, error)
}

// Authority answers status queries from the store and only prompts the user
// when the state is still open.
type Authority struct {
	store         StatusStore
	prompter      Prompter
	allowReprompt bool
	logger        *slog.Logger
}

// Option configures an Authority.
type Option func(*Authority)

// WithReprompt lets RequestStatus prompt again after a previous denial.
// Mobile OSes do not re-prompt once the user said no, so this is off by default.
func WithReprompt() Option {
	return func(a *Authority) { a.allowReprompt = true }
}

func NewAuthority(store StatusStore, prompter Prompter, logger *slog.Logger, opts ...Option) *Authority {
	a := &Authority{
		store:    store,
		prompter: prompter,
		logger:   logger.With("component", "PermissionAuthority"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authority) QueryStatus(ctx context.Context) (registration.PermissionStatus, error) {
	return a.store.Load(ctx)
}

func (a *Authority) RequestStatus(ctx context.Context) (registration.PermissionStatus, error) {
	current, err := a.store.Load(ctx)
	if err != nil {
		return "", err
	}
	if current == registration.StatusGranted {
		return current, nil
	}
	if current == registration.StatusDenied && !a.allowReprompt {
		a.logger.Debug("Previously denied, not prompting again")
		return current, nil
	}

	allowed, err := a.prompter.Prompt(ctx)
	if err != nil {
		return "", fmt.Errorf("permission prompt failed: %w", err)
	}

	result := registration.StatusDenied
	if allowed {
		result = registration.StatusGranted
	}
	if err := a.store.Save(ctx, result); err != nil {
		return "", fmt.Errorf("failed to persist permission status: %w", err)
	}
	a.logger.Info("Permission prompt answered", "status", result)
	return result, nil
}
