// Package registry contains the public contracts of the token registry: the
// backend that remembers which push tokens a user's devices registered.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// ErrInvalidToken is returned by a TokenValidator when the push provider
// reports the token as malformed or no longer registered.
var ErrInvalidToken = errors.New("push token rejected by provider")

// DeviceToken is one registered push token.
type DeviceToken struct {
	Token     string                `json:"token"`
	Platform  registration.Platform `json:"platform"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// TokenStore defines the contract for managing user device tokens.
type TokenStore interface {
	// Register adds or updates a device token for a user. Registering the same
	// token twice is an upsert.
	Register(ctx context.Context, user urn.URN, token DeviceToken) error

	// Unregister removes a token. Removing an unknown token is not an error.
	Unregister(ctx context.Context, user urn.URN, token string) error

	// Fetch returns all tokens currently registered for a user.
	Fetch(ctx context.Context, user urn.URN) ([]DeviceToken, error)
}

// TokenValidator checks a token with its push provider before it is stored.
type TokenValidator interface {
	Validate(ctx context.Context, token DeviceToken) error
}

// Event types published on the registration topic.
const (
	EventTokenRegistered   = "token.registered"
	EventTokenUnregistered = "token.unregistered"
)

// TokenEvent announces a registry change. The raw token is never published,
// only its fingerprint.
type TokenEvent struct {
	Type        string                `json:"type"`
	UserURN     string                `json:"user_urn"`
	Platform    registration.Platform `json:"platform,omitempty"`
	Fingerprint string                `json:"fingerprint"`
	OccurredAt  time.Time             `json:"occurred_at"`
}

// EventPublisher emits registry events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event TokenEvent) error
}

// Fingerprint is the stable, non-reversible id of a token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
