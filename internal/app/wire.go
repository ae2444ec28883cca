package app

import (
	"log/slog"

	"github.com/mama165/sdk-go/logs"

	"kyro/internal/domain"
	"kyro/internal/protocol/channel"
	"kyro/internal/protocol/ratchet"
	"kyro/internal/services/manager"
)

// Wire bundles the logger and services for the CLI.
type Wire struct {
	Config   Config
	Log      *slog.Logger
	Channels *manager.Manager
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)
	return &Wire{
		Config:   cfg,
		Log:      log,
		Channels: manager.New(log, cfg.ChannelOptions()...),
	}, nil
}

// ChannelOptions translates the ratchet limits into channel options.
func (c Config) ChannelOptions() []channel.Option {
	return []channel.Option{
		channel.WithRatchetOptions(
			ratchet.WithMaxSkipped(c.MaxSkipped),
			ratchet.WithMaxSkipAhead(uint32(c.MaxSkipAhead)),
		),
	}
}

// Service exposes the manager through the domain contract.
func (w *Wire) Service() domain.ChannelService { return w.Channels }
