//go:build integration

package channel_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/go-test/emulators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinywideclouds/go-push-registration/internal/channel"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

func TestFirestoreProvisioner_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	projectID := "test-channel-registry"
	conn := emulators.SetupFirestoreEmulator(t, ctx, emulators.GetDefaultFirestoreConfig(projectID))
	client, err := firestore.NewClient(ctx, projectID, conn.ClientOptions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	p := channel.NewFirestoreProvisioner(client, "install-integ")

	t.Run("Unknown channel", func(t *testing.T) {
		_, err := p.Channel(ctx, "default")
		require.ErrorIs(t, err, channel.ErrChannelNotFound)
	})

	t.Run("Provision twice", func(t *testing.T) {
		require.NoError(t, p.EnsureChannel(ctx, registration.DefaultChannelID, registration.DefaultChannel()))
		require.NoError(t, p.EnsureChannel(ctx, registration.DefaultChannelID, registration.DefaultChannel()))

		cfg, err := p.Channel(ctx, registration.DefaultChannelID)
		require.NoError(t, err)
		assert.Equal(t, registration.DefaultChannel(), cfg)

		docs, err := client.Collection("installations").Doc("install-integ").Collection("channels").Documents(ctx).GetAll()
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}
