// Package issuer fetches push tokens from the push service token endpoint.
package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// ErrMissingProjectID means no push credential configuration exists, so no
// token can be minted.
var ErrMissingProjectID = errors.New("push credentials not configured: missing project id")

// Config holds the push service settings the token endpoint needs.
type Config struct {
	Endpoint      string
	ProjectID     string
	ApplicationID string
	// DeviceID identifies this installation. A random id is used when empty.
	DeviceID    string
	Development bool
}

// HTTPIssuer implements registration.TokenIssuer against the token endpoint.
type HTTPIssuer struct {
	cfg        Config
	tokenType  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPIssuer(cfg Config, platform registration.Platform, httpClient *http.Client, logger *slog.Logger) *HTTPIssuer {
	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPIssuer{
		cfg:        cfg,
		tokenType:  tokenType(platform),
		httpClient: httpClient,
		logger:     logger.With("component", "TokenIssuer"),
	}
}

// tokenType is the native credential family the push service should bind to.
func tokenType(p registration.Platform) string {
	if p == registration.PlatformIOS {
		return "apns"
	}
	return "fcm"
}

type tokenRequest struct {
	Type        string `json:"type"`
	DeviceID    string `json:"deviceId"`
	ProjectID   string `json:"projectId"`
	AppID       string `json:"appId,omitempty"`
	Development bool   `json:"development"`
}

type tokenResponse struct {
	Data struct {
		ExpoPushToken string `json:"expoPushToken"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (i *HTTPIssuer) FetchToken(ctx context.Context) (string, error) {
	if i.cfg.ProjectID == "" {
		return "", ErrMissingProjectID
	}

	body, err := json.Marshal(tokenRequest{
		Type:        i.tokenType,
		DeviceID:    i.cfg.DeviceID,
		ProjectID:   i.cfg.ProjectID,
		AppID:       i.cfg.ApplicationID,
		Development: i.cfg.Development,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	var parsed tokenResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Code, e.Message))
		}
		i.logger.Warn("Token endpoint rejected request", "status", resp.StatusCode)
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.Join(msgs, "; "))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("invalid token response: %w", decodeErr)
	}
	if parsed.Data.ExpoPushToken == "" {
		return "", errors.New("token endpoint returned an empty token")
	}

	i.logger.Debug("Token fetched", "device_id", i.cfg.DeviceID, "type", i.tokenType)
	return parsed.Data.ExpoPushToken, nil
}
