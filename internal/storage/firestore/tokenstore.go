package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
	"github.com/tinywideclouds/go-push-registration/pkg/registry"
)

// FirestoreStore implements registry.TokenStore using Google Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// deviceRecord is the internal DB representation.
type deviceRecord struct {
	Platform  string    `firestore:"platform"`
	Token     string    `firestore:"token"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (s *FirestoreStore) Register(ctx context.Context, user urn.URN, token registry.DeviceToken) error {
	// Fingerprint as doc id: deduplicates re-registrations and avoids hot-spotting.
	docID := registry.Fingerprint(token.Token)

	updatedAt := token.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	record := deviceRecord{
		Platform:  string(token.Platform),
		Token:     token.Token,
		UpdatedAt: updatedAt,
	}

	if _, err := s.deviceRef(user, docID).Set(ctx, record); err != nil {
		return fmt.Errorf("failed to store device token: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Unregister(ctx context.Context, user urn.URN, token string) error {
	_, err := s.deviceRef(user, registry.Fingerprint(token)).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete device token: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Fetch(ctx context.Context, user urn.URN) ([]registry.DeviceToken, error) {
	iter := s.devicesCollection(user).Documents(ctx)
	defer iter.Stop()

	tokens := make([]registry.DeviceToken, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore iteration failed: %w", err)
		}

		var record deviceRecord
		if err := doc.DataTo(&record); err != nil || record.Token == "" {
			// Corrupt rows are skipped rather than failing the whole lookup.
			continue
		}
		tokens = append(tokens, registry.DeviceToken{
			Token:     record.Token,
			Platform:  registration.Platform(record.Platform),
			UpdatedAt: record.UpdatedAt,
		})
	}

	return tokens, nil
}

// deviceRef: users/{userID}/devices/{fingerprint}
func (s *FirestoreStore) deviceRef(user urn.URN, docID string) *firestore.DocumentRef {
	return s.devicesCollection(user).Doc(docID)
}

func (s *FirestoreStore) devicesCollection(user urn.URN) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(user.String()).Collection("devices")
}
