// Package fcm checks Android push tokens against Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"firebase.google.com/go/v4/messaging"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
	"github.com/tinywideclouds/go-push-registration/pkg/registry"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it.
type MessagingClient interface {
	SendDryRun(ctx context.Context, msg *messaging.Message) (string, error)
}

// Validator verifies native FCM registration tokens with a dry-run send,
// which FCM validates fully but never delivers.
type Validator struct {
	client MessagingClient
	logger *slog.Logger
}

func NewValidator(client MessagingClient, logger *slog.Logger) *Validator {
	return &Validator{
		client: client,
		logger: logger.With("component", "FCMValidator"),
	}
}

// Validate returns nil for tokens FCM does not own: non-Android tokens and
// push-service tokens, which are checked by the service that minted them.
func (v *Validator) Validate(ctx context.Context, token registry.DeviceToken) error {
	if token.Platform != registration.PlatformAndroid || isServiceToken(token.Token) {
		return nil
	}

	_, err := v.client.SendDryRun(ctx, &messaging.Message{
		Token: token.Token,
		Data:  map[string]string{"kind": "registration_check"},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: registration.DefaultChannelID,
			},
		},
	})
	if err == nil {
		return nil
	}

	if messaging.IsInvalidArgument(err) || messaging.IsRegistrationTokenNotRegistered(err) {
		v.logger.Info("FCM rejected token", "fingerprint", registry.Fingerprint(token.Token), "err", err)
		return fmt.Errorf("%w: %v", registry.ErrInvalidToken, err)
	}
	return fmt.Errorf("fcm dry run failed: %w", err)
}

func isServiceToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}
