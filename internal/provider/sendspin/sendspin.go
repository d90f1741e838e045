// Package sendspin implements the player provider for the sendspin
// playback engine. Sendspin clients negotiate their own settings with the
// server, so this provider also implements provider.ConfigPreparer to fill
// in the server address and a stable client id instead of relying on the
// registry's plain default merge.
package sendspin

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/google/uuid"

	"github.com/sydlexius/zonecast/internal/audio"
	"github.com/sydlexius/zonecast/internal/provider"
)

const (
	ProviderType = "sendspin"
	displayName  = "Sendspin"
	binaryName   = "sendspin"

	defaultServer = "ws://127.0.0.1:8927"

	// Sync delay bounds in milliseconds, matching the engine's limits.
	minSyncDelay = -2000
	maxSyncDelay = 2000
)

// Player implements provider.PlayerProvider and provider.ConfigPreparer
// for sendspin.
type Player struct {
	audio    *audio.Manager
	logger   *slog.Logger
	lookPath func(string) (string, error)
	newID    func() string
}

// New creates a sendspin player provider.
func New(mgr *audio.Manager, logger *slog.Logger) *Player {
	return &Player{
		audio:    mgr,
		logger:   logger.With(slog.String("provider", ProviderType)),
		lookPath: exec.LookPath,
		newID:    uuid.NewString,
	}
}

// ProviderType returns the provider identifier.
func (p *Player) ProviderType() string { return ProviderType }

// DisplayName returns the human-readable backend name.
func (p *Player) DisplayName() string { return displayName }

// BinaryName returns the playback engine binary name.
func (p *Player) BinaryName() string { return binaryName }

// IsAvailable reports whether the sendspin binary is in PATH.
func (p *Player) IsAvailable() bool {
	_, err := p.lookPath(binaryName)
	return err == nil
}

// ValidateConfig checks a player configuration against the fields sendspin
// understands.
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
	if delay, ok := cfg.Int("sync_delay_ms"); ok && (delay < minSyncDelay || delay > maxSyncDelay) {
		return false, fmt.Sprintf("sync delay %dms out of range %d-%d", delay, minSyncDelay, maxSyncDelay)
	}
	if volume, ok := cfg.Int("volume"); ok && (volume < 0 || volume > 100) {
		return false, fmt.Sprintf("volume %d out of range 0-100", volume)
	}
	return true, ""
}

// DefaultConfig returns a configuration with sendspin defaults and the
// host's preferred output device.
func (p *Player) DefaultConfig() provider.Config {
	device := ""
	if d, ok := p.audio.DefaultDevice(); ok {
		device = d.ID
	}
	return provider.Config{
		provider.ConfigKeyProvider: ProviderType,
		"name":                     "",
		"device":                   device,
		"server":                   defaultServer,
		"sync_delay_ms":            0,
		"volume":                   50,
	}
}

// PrepareConfig lays the caller's values over the defaults and fills in a
// generated client id when the config does not carry one yet.
func (p *Player) PrepareConfig(cfg provider.Config) provider.Config {
	out := p.DefaultConfig()
	for k, v := range cfg {
		out[k] = v
	}
	if _, ok := out.String("client_id"); !ok {
		out["client_id"] = p.newID()
	}
	return out
}
