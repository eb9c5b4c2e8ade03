package registration

import "context"

// PermissionAuthority is the OS store that governs the notification grant.
type PermissionAuthority interface {
	// QueryStatus returns the current status without prompting the user.
	QueryStatus(ctx context.Context) (PermissionStatus, error)

	// RequestStatus asks the user for permission and returns the resulting status.
	RequestStatus(ctx context.Context) (PermissionStatus, error)
}

// ChannelProvisioner registers notification channels (Android only).
// EnsureChannel must be idempotent.
type ChannelProvisioner interface {
	EnsureChannel(ctx context.Context, id string, cfg ChannelConfig) error
}

// TokenIssuer mints the device push token. It fails when no valid push
// credential configuration exists.
type TokenIssuer interface {
	FetchToken(ctx context.Context) (string, error)
}

// NoticePresenter shows a blocking alert to the user.
type NoticePresenter interface {
	Present(ctx context.Context, notice Notice)
}

// PlatformAdapter answers the capability questions the flow needs about the
// current platform.
type PlatformAdapter interface {
	Platform() Platform
	// SupportsPush reports whether the platform can receive push at all.
	SupportsPush() bool
	// RequiresChannel reports whether a notification channel must exist
	// before a token is requested.
	RequiresChannel() bool
}
