package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"

	"github.com/tinywideclouds/go-push-registration/internal/platform"
	"github.com/tinywideclouds/go-push-registration/pkg/registry"
)

type TokenAPI struct {
	Store     registry.TokenStore
	Validator registry.TokenValidator // optional
	Events    registry.EventPublisher
	Logger    *slog.Logger
}

func NewTokenAPI(store registry.TokenStore, validator registry.TokenValidator, events registry.EventPublisher, logger *slog.Logger) *TokenAPI {
	return &TokenAPI{
		Store:     store,
		Validator: validator,
		Events:    events,
		Logger:    logger.With("component", "TokenAPI"),
	}
}

type RegisterTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UnregisterTokenRequest struct {
	Token string `json:"token"`
}

type ListTokensResponse struct {
	Tokens []registry.DeviceToken `json:"tokens"`
}

// RegisterToken handles PUT /tokens.
func (api *TokenAPI) RegisterToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userURN, ok := api.userFromContext(w, r)
	if !ok {
		return
	}

	var req RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Token == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing token")
		return
	}

	p, err := platform.Parse(req.Platform)
	if err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "unknown platform")
		return
	}
	if !platform.New(p).SupportsPush() {
		response.WriteJSONError(w, http.StatusBadRequest, "platform does not support push")
		return
	}

	token := registry.DeviceToken{Token: req.Token, Platform: p, UpdatedAt: time.Now().UTC()}

	if api.Validator != nil {
		if err := api.Validator.Validate(ctx, token); err != nil {
			if errors.Is(err, registry.ErrInvalidToken) {
				response.WriteJSONError(w, http.StatusUnprocessableEntity, "token rejected by push provider")
				return
			}
			api.Logger.Error("RegisterToken: validation failed", "err", err)
			response.WriteJSONError(w, http.StatusBadGateway, "token validation unavailable")
			return
		}
	}

	if err := api.Store.Register(ctx, userURN, token); err != nil {
		api.Logger.Error("RegisterToken: storage failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}
	api.Logger.Info("RegisterToken: token registered", "user", userURN, "platform", p)

	api.publish(r, registry.TokenEvent{
		Type:        registry.EventTokenRegistered,
		UserURN:     userURN.String(),
		Platform:    p,
		Fingerprint: registry.Fingerprint(req.Token),
		OccurredAt:  token.UpdatedAt,
	})

	w.WriteHeader(http.StatusNoContent)
}

// UnregisterToken handles DELETE /tokens. It is idempotent.
func (api *TokenAPI) UnregisterToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userURN, ok := api.userFromContext(w, r)
	if !ok {
		return
	}

	var req UnregisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Token == "" {
		response.WriteJSONError(w, http.StatusBadRequest, "missing token")
		return
	}

	if err := api.Store.Unregister(ctx, userURN, req.Token); err != nil {
		api.Logger.Error("UnregisterToken: storage failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "failed to unregister token")
		return
	}
	api.Logger.Info("UnregisterToken: token removed", "user", userURN)

	api.publish(r, registry.TokenEvent{
		Type:        registry.EventTokenUnregistered,
		UserURN:     userURN.String(),
		Fingerprint: registry.Fingerprint(req.Token),
		OccurredAt:  time.Now().UTC(),
	})

	w.WriteHeader(http.StatusNoContent)
}

// ListTokens handles GET /tokens.
func (api *TokenAPI) ListTokens(w http.ResponseWriter, r *http.Request) {
	userURN, ok := api.userFromContext(w, r)
	if !ok {
		return
	}

	tokens, err := api.Store.Fetch(r.Context(), userURN)
	if err != nil {
		api.Logger.Error("ListTokens: storage failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "storage failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ListTokensResponse{Tokens: tokens}); err != nil {
		api.Logger.Warn("ListTokens: failed to write response", "err", err)
	}
}

func (api *TokenAPI) userFromContext(w http.ResponseWriter, r *http.Request) (urn.URN, bool) {
	var none urn.URN
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return none, false
	}
	userURN, err := urn.Parse(userID)
	if err != nil {
		response.WriteJSONError(w, http.StatusUnauthorized, "invalid user identity")
		return none, false
	}
	return userURN, true
}

// publish is best effort: the registry write already succeeded.
func (api *TokenAPI) publish(r *http.Request, event registry.TokenEvent) {
	if api.Events == nil {
		return
	}
	if err := api.Events.Publish(r.Context(), event); err != nil {
		api.Logger.Warn("Failed to publish registry event", "type", event.Type, "err", err)
	}
}
