// Package registryclient uploads issued push tokens to the token registry.
package registryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// ErrUnauthorized is returned when the registry rejects the access token.
var ErrUnauthorized = errors.New("registry rejected credentials")

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *slog.Logger
}

func New(baseURL, accessToken string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  httpClient,
		logger:      logger.With("component", "RegistryClient"),
	}
}

type registerRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Upload stores token against the authenticated user. Re-uploading the same
// token is harmless.
func (c *Client) Upload(ctx context.Context, token string, platform registration.Platform) error {
	body, err := json.Marshal(registerRequest{Token: token, Platform: string(platform)})
	if err != nil {
		return fmt.Errorf("failed to marshal registry request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tokens", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build registry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var parsed errorResponse
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
			msg = parsed.Error
		}
		c.logger.Warn("Registry rejected token", "status", resp.StatusCode, "reason", msg)
		return fmt.Errorf("registry returned %d: %s", resp.StatusCode, msg)
	}

	c.logger.Debug("Token uploaded", "platform", platform)
	return nil
}
