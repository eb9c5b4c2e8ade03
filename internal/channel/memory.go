package channel

import (
	"context"
	"sync"

	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// MemoryProvisioner is an in-process channel registry.
type MemoryProvisioner struct {
	mu       sync.RWMutex
	channels map[string]registration.ChannelConfig
}

func NewMemoryProvisioner() *MemoryProvisioner {
	return &MemoryProvisioner{channels: make(map[string]registration.ChannelConfig)}
}

func (p *MemoryProvisioner) EnsureChannel(_ context.Context, id string, cfg registration.ChannelConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[id] = cfg
	return nil
}

func (p *MemoryProvisioner) Channel(_ context.Context, id string) (registration.ChannelConfig, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg, ok := p.channels[id]
	if !ok {
		return registration.ChannelConfig{}, ErrChannelNotFound
	}
	return cfg, nil
}
