package app_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"kyro/internal/app"
	"kyro/internal/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	for _, key := range []string{"KYRO_MAX_SKIPPED", "KYRO_MAX_SKIP_AHEAD", "KYRO_LOG_LEVEL"} {
		t.Setenv(key, "")
		req.NoError(os.Unsetenv(key))
	}

	cfg, err := app.LoadConfig()
	req.NoError(err)
	req.Equal(1000, cfg.MaxSkipped)
	req.Equal(65536, cfg.MaxSkipAhead)
	req.Equal("INFO", cfg.LogLevel)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	req := require.New(t)
	t.Setenv("KYRO_MAX_SKIPPED", "5")
	t.Setenv("KYRO_MAX_SKIP_AHEAD", "10")
	t.Setenv("KYRO_LOG_LEVEL", "DEBUG")

	cfg, err := app.LoadConfig()
	req.NoError(err)
	req.Equal(app.Config{MaxSkipped: 5, MaxSkipAhead: 10, LogLevel: "DEBUG"}, cfg)
}

func TestLoadConfig_RejectsNegative(t *testing.T) {
	t.Setenv("KYRO_MAX_SKIPPED", "-1")
	_, err := app.LoadConfig()
	require.Error(t, err)
}

func TestNewWire_BuildsWorkingManager(t *testing.T) {
	req := require.New(t)
	w, err := app.NewWire(app.Config{MaxSkipped: 10, MaxSkipAhead: 100, LogLevel: "DEBUG"})
	req.NoError(err)

	var root domain.RootKey
	id, err := w.Service().CreateChannel(root)
	req.NoError(err)
	req.NoError(w.Channels.JoinChannel(id, "alice"))
	req.Equal([]domain.ChannelID{id}, w.Channels.ChannelsFor("alice"))
}
