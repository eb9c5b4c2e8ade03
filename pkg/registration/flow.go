package registration

import (
	"context"
	"errors"
	"log/slog"
)

// Flow runs the push registration handshake. It keeps no state between calls,
// so a single Flow may be shared and invoked concurrently.
type Flow struct {
	adapter   PlatformAdapter
	authority PermissionAuthority
	channels  ChannelProvisioner
	issuer    TokenIssuer
	notices   NoticePresenter
	logger    *slog.Logger
}

// NewFlow assembles a Flow. channels may be nil when the adapter never
// requires a notification channel.
func NewFlow(
	adapter PlatformAdapter,
	authority PermissionAuthority,
	channels ChannelProvisioner,
	issuer TokenIssuer,
	notices NoticePresenter,
	logger *slog.Logger,
) (*Flow, error) {
	if adapter == nil || authority == nil || issuer == nil || notices == nil {
		return nil, errors.New("registration: adapter, authority, issuer and notices are required")
	}
	if adapter.RequiresChannel() && channels == nil {
		return nil, errors.New("registration: platform requires a channel provisioner")
	}
	return &Flow{
		adapter:   adapter,
		authority: authority,
		channels:  channels,
		issuer:    issuer,
		notices:   notices,
		logger:    logger.With("component", "RegistrationFlow"),
	}, nil
}

// Register runs one registration attempt.
//
// Unsupported and Denied are outcomes, not errors. Any collaborator failure is
// returned unchanged, both as the error and inside an OutcomeError.
func (f *Flow) Register(ctx context.Context) (Outcome, error) {
	platform := f.adapter.Platform()
	log := f.logger.With("platform", string(platform))

	if !f.adapter.SupportsPush() {
		log.Info("Push not supported on platform")
		return UnsupportedOutcome(), nil
	}

	status, err := f.authority.QueryStatus(ctx)
	if err != nil {
		log.Error("Permission status query failed", "err", err)
		return ErrorOutcome(err), err
	}
	log.Debug("Permission status queried", "status", status)

	if status != StatusGranted {
		status, err = f.authority.RequestStatus(ctx)
		if err != nil {
			log.Error("Permission request failed", "err", err)
			return ErrorOutcome(err), err
		}
		log.Debug("Permission requested", "status", status)
	}

	if status != StatusGranted {
		log.Info("Push permission denied", "status", status)
		f.notices.Present(ctx, DeniedNotice)
		return DeniedOutcome(), nil
	}

	if f.adapter.RequiresChannel() {
		if err := f.channels.EnsureChannel(ctx, DefaultChannelID, DefaultChannel()); err != nil {
			log.Error("Channel provisioning failed", "channel", DefaultChannelID, "err", err)
			return ErrorOutcome(err), err
		}
	}

	token, err := f.issuer.FetchToken(ctx)
	if err != nil {
		log.Error("Push token fetch failed", "err", err)
		return ErrorOutcome(err), err
	}

	log.Info("Push token issued")
	return TokenOutcome(token), nil
}
