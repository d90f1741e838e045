// Package squeezelite implements the player provider for the squeezelite
// playback engine (Lyrion/LMS ecosystem).
package squeezelite

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/sydlexius/zonecast/internal/audio"
	"github.com/sydlexius/zonecast/internal/provider"
)

const (
	ProviderType = "squeezelite"
	displayName  = "Squeezelite"
	binaryName   = "squeezelite"
)

// Supported output sample rates, matching squeezelite's -r flag.
var sampleRates = map[int]bool{
	44100: true, 48000: true, 88200: true, 96000: true, 176400: true, 192000: true,
}

// Player implements provider.PlayerProvider for squeezelite. It is purely
// config-side: zonecast never spawns the engine binary itself.
type Player struct {
	audio    *audio.Manager
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

// New creates a squeezelite player provider.
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

// IsAvailable reports whether the squeezelite binary is in PATH.
func (p *Player) IsAvailable() bool {
	_, err := p.lookPath(binaryName)
	return err == nil
}

// ValidateConfig checks a player configuration against the fields
// squeezelite understands.
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
	if volume, ok := cfg.Int("volume"); ok && (volume < 0 || volume > 100) {
		return false, fmt.Sprintf("volume %d out of range 0-100", volume)
	}
	if rate, ok := cfg.Int("sample_rate"); ok && !sampleRates[rate] {
		return false, fmt.Sprintf("unsupported sample rate: %d", rate)
	}
	return true, ""
}

// DefaultConfig returns a configuration with squeezelite defaults and the
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
		"volume":                   50,
		"sample_rate":              48000,
	}
}
