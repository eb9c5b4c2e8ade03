// Package channel provisions Android notification channels.
package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// ErrChannelNotFound is returned by lookups for a channel that was never provisioned.
var ErrChannelNotFound = errors.New("channel not found")

// FirestoreProvisioner keeps the channel registry of one installation in
// Firestore so the backend knows which channels a device can receive on.
type FirestoreProvisioner struct {
	client         *firestore.Client
	installationID string
}

func NewFirestoreProvisioner(client *firestore.Client, installationID string) *FirestoreProvisioner {
	return &FirestoreProvisioner{client: client, installationID: installationID}
}

type channelRecord struct {
	Name             string    `firestore:"name"`
	Importance       int       `firestore:"importance"`
	Sound            string    `firestore:"sound,omitempty"`
	VibrationPattern []int     `firestore:"vibration_pattern,omitempty"`
	LightColor       string    `firestore:"light_color,omitempty"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

// EnsureChannel upserts the channel document. Repeating the call with the same
// config leaves the registry unchanged apart from updated_at.
func (p *FirestoreProvisioner) EnsureChannel(ctx context.Context, id string, cfg registration.ChannelConfig) error {
	record := channelRecord{
		Name:             cfg.Name,
		Importance:       int(cfg.Importance),
		Sound:            cfg.Sound,
		VibrationPattern: cfg.VibrationPattern,
		LightColor:       cfg.LightColor,
		UpdatedAt:        time.Now(),
	}
	if _, err := p.channelRef(id).Set(ctx, record); err != nil {
		return fmt.Errorf("failed to provision channel %s: %w", id, err)
	}
	return nil
}

// Channel reads back a provisioned channel.
func (p *FirestoreProvisioner) Channel(ctx context.Context, id string) (registration.ChannelConfig, error) {
	doc, err := p.channelRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return registration.ChannelConfig{}, ErrChannelNotFound
		}
		return registration.ChannelConfig{}, fmt.Errorf("failed to read channel %s: %w", id, err)
	}
	var record channelRecord
	if err := doc.DataTo(&record); err != nil {
		return registration.ChannelConfig{}, fmt.Errorf("corrupt channel record %s: %w", id, err)
	}
	return registration.ChannelConfig{
		Name:             record.Name,
		Importance:       registration.Importance(record.Importance),
		Sound:            record.Sound,
		VibrationPattern: record.VibrationPattern,
		LightColor:       record.LightColor,
	}, nil
}

// channelRef: installations/{installationID}/channels/{channelID}
func (p *FirestoreProvisioner) channelRef(id string) *firestore.DocumentRef {
	return p.client.Collection("installations").Doc(p.installationID).Collection("channels").Doc(id)
}
