// Package provider contains the player provider registry and the capability
// interface player backend adapters must implement. Each sub-package here
// implements that interface for a specific playback engine.
package provider

import (
	"log/slog"

	"github.com/sydlexius/zonecast/internal/audio"
)

// ConfigKeyProvider is the reserved player-config key naming the backend type.
const ConfigKeyProvider = "provider"

// DefaultProviderName is the provider type a fresh registry falls back to
// when a player configuration does not name one.
const DefaultProviderName = "squeezelite"

// Config is a player configuration. Apart from ConfigKeyProvider its keys are
// provider-specific and opaque to the registry.
type Config map[string]any

// Clone returns a shallow copy of the configuration.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// String returns the non-empty string stored under key. The second return
// is false when the key is missing, holds another type, or is empty.
func (c Config) String(key string) (string, bool) {
	v, ok := c[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Int returns the integer stored under key. JSON decoding produces float64
// and YAML produces int, so both are accepted.
func (c Config) Int(key string) (int, bool) {
	switch v := c[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// PlayerProvider is the interface all player backend adapters must implement.
type PlayerProvider interface {
	// ProviderType returns the unique provider type identifier.
	ProviderType() string

	// DisplayName returns a human-readable name for the backend.
	DisplayName() string

	// BinaryName returns the name of the playback engine binary.
	BinaryName() string

	// IsAvailable reports whether the playback engine can run on this host.
	IsAvailable() bool

	// ValidateConfig checks a player configuration. On failure the second
	// return carries a message describing the first problem found.
	ValidateConfig(cfg Config) (bool, string)

	// DefaultConfig returns a complete configuration with engine defaults.
	DefaultConfig() Config
}

// ConfigPreparer is an optional interface providers can implement to take
// over config preparation. Providers that do not implement it get the
// registry's default behavior of merging the caller's values over
// DefaultConfig.
type ConfigPreparer interface {
	PlayerProvider
	PrepareConfig(cfg Config) Config
}

// Factory constructs a player provider bound to the given audio manager.
// The registry stores factories for lazy construction but never invokes
// them; that is the owning coordinator's job.
type Factory func(mgr *audio.Manager, logger *slog.Logger) PlayerProvider

// ProviderInfo is the wire-level summary of a registered provider.
type ProviderInfo struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Binary      string `json:"binary"`
	Available   bool   `json:"available"`
}
