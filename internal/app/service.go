package app

import (
	"fmt"

	"github.com/shrimpsizemoose/roster/internal/cache"
	"github.com/shrimpsizemoose/roster/internal/gateway"
)

// Service bundles what the roster client needs to talk to the API.
type Service struct {
	Config  *Config
	Gateway *gateway.Client
	Cache   cache.SnapshotCache
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	gw, err := gateway.NewClient(config.API.BaseURL, config.API.Timeout.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to init api client: %w", err)
	}

	snapshots, err := NewCache(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init cache: %w", err)
	}

	return &Service{
		Config:  config,
		Gateway: gw,
		Cache:   snapshots,
	}, nil
}

func (s *Service) Close() error {
	if s.Cache == nil {
		return nil
	}
	if err := s.Cache.Close(); err != nil {
		return fmt.Errorf("errors while closing: cache: %w", err)
	}
	return nil
}
