// Package snapcast implements the player provider for the snapclient
// playback engine of a Snapcast multi-room setup.
package snapcast

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/sydlexius/zonecast/internal/audio"
	"github.com/sydlexius/zonecast/internal/provider"
)

const (
	ProviderType = "snapcast"
	displayName  = "Snapcast client"
	binaryName   = "snapclient"

	defaultHost = "127.0.0.1"
	defaultPort = 1704
)

// Player implements provider.PlayerProvider for snapclient. Snapcast does
// its own clock-synced streaming; zonecast only validates and fills the
// client-side configuration.
type Player struct {
	audio    *audio.Manager
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// New creates a snapcast player provider.
func New(mgr *audio.Manager, logger *slog.Logger) *Player {
	return &Player{
		audio:    mgr,
		logger:   logger.With(slog.String("provider", ProviderType)),
		lookPath: exec.LookPath,
	}
}

// ProviderType returns the provider identifier.
func (p *Player) ProviderType() string { return ProviderType }

// DisplayName returns the human-readable backend name.
func (p *Player) DisplayName() string { return displayName }

// BinaryName returns the playback engine binary name.
func (p *Player) BinaryName() string { return binaryName }

// IsAvailable reports whether the snapclient binary is in PATH.
func (p *Player) IsAvailable() bool {
	_, err := p.lookPath(binaryName)
	return err == nil
}

// ValidateConfig checks a player configuration against the fields
// snapclient understands.
func (p *Player) ValidateConfig(cfg provider.Config) (bool, string) {
	if _, ok := cfg.String("name"); !ok {
		return false, "player name is required"
	}
	if typ, ok := cfg.String(provider.ConfigKeyProvider); ok && typ != ProviderType {
		return false, fmt.Sprintf("config names provider %q, not %s", typ, ProviderType)
	}
	if device, ok := cfg.String("device"); ok && !p.audio.HasDevice(device) {
		return false, fmt.Sprintf("unknown audio device: %s", device)
	}
	if port, ok := cfg.Int("port"); ok && (port < 1 || port > 65535) {
		return false, fmt.Sprintf("port %d out of range 1-65535", port)
	}
	if latency, ok := cfg.Int("latency_ms"); ok && (latency < 0 || latency > 10000) {
		return false, fmt.Sprintf("latency %dms out of range 0-10000", latency)
	}
	return true, ""
}

// DefaultConfig returns a configuration pointing at a local snapserver with
// the host's preferred output device.
func (p *Player) DefaultConfig() provider.Config {
	device := ""
	if d, ok := p.audio.DefaultDevice(); ok {
		device = d.ID
	}
	return provider.Config{
		provider.ConfigKeyProvider: ProviderType,
		"name":                     "",
		"device":                   device,
		"host":                     defaultHost,
		"port":                     defaultPort,
		"latency_ms":               0,
		"volume":                   50,
	}
}
