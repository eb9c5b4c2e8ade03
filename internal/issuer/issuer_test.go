package issuer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-registration/internal/issuer"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var got map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"expoPushToken":"ExponentPushToken[abc]"}}`))
		}))
		defer server.Close()

		iss := issuer.NewHTTPIssuer(issuer.Config{
			Endpoint:  server.URL,
			ProjectID: "wellness-project",
			DeviceID:  "device-1",
		}, registration.PlatformAndroid, server.Client(), newTestLogger())

		token, err := iss.FetchToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ExponentPushToken[abc]", token)
		assert.Equal(t, "fcm", got["type"])
		assert.Equal(t, "device-1", got["deviceId"])
		assert.Equal(t, "wellness-project", got["projectId"])
	})

	t.Run("iOS asks for apns", func(t *testing.T) {
		var got map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"data":{"expoPushToken":"ExponentPushToken[ios]"}}`))
		}))
		defer server.Close()

		iss := issuer.NewHTTPIssuer(issuer.Config{Endpoint: server.URL, ProjectID: "p"},
			registration.PlatformIOS, server.Client(), newTestLogger())

		_, err := iss.FetchToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "apns", got["type"])
		assert.NotEmpty(t, got["deviceId"])
	})

	t.Run("Missing project id never calls out", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer server.Close()

		iss := issuer.NewHTTPIssuer(issuer.Config{Endpoint: server.URL},
			registration.PlatformAndroid, server.Client(), newTestLogger())

		_, err := iss.FetchToken(ctx)
		require.ErrorIs(t, err, issuer.ErrMissingProjectID)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("Rejected request carries service errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"code":"VALIDATION_ERROR","message":"no credentials"}]}`))
		}))
		defer server.Close()

		iss := issuer.NewHTTPIssuer(issuer.Config{Endpoint: server.URL, ProjectID: "p"},
			registration.PlatformAndroid, server.Client(), newTestLogger())

		_, err := iss.FetchToken(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
		assert.Contains(t, err.Error(), "no credentials")
	})

	t.Run("Empty token is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{}}`))
		}))
		defer server.Close()

		iss := issuer.NewHTTPIssuer(issuer.Config{Endpoint: server.URL, ProjectID: "p"},
			registration.PlatformAndroid, server.Client(), newTestLogger())

		_, err := iss.FetchToken(ctx)
		assert.Error(t, err)
	})
}
