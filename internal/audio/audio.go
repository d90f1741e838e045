package audio

import (
	"log/slog"
	"sync"
)

// Device describes a configured audio output device.
type Device struct {
	ID      string `json:"id" yaml:"id"`             // ALSA identifier, e.g. "hw:0,0"
	Name    string `json:"name" yaml:"name"`         // human-readable label
	Default bool   `json:"default" yaml:"default"`   // preferred device for new players
}

// Manager holds the inventory of audio output devices players may bind to.
// The inventory comes from configuration; zonecast never opens a device
// itself, the player engines do.
type Manager struct {
	mu      sync.RWMutex
	devices []Device
	logger  *slog.Logger
}

// NewManager creates a manager with the given device inventory.
func NewManager(devices []Device, logger *slog.Logger) *Manager {
	return &Manager{
		devices: append([]Device(nil), devices...),
		logger:  logger.With(slog.String("component", "audio")),
	}
}

// Devices returns a copy of the device inventory.
func (m *Manager) Devices() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Device(nil), m.devices...)
}

// HasDevice reports whether a device with the given ID is configured.
func (m *Manager) HasDevice(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.devices {
		if d.ID == id {
			return true
		}
	}
	return false
}

// DefaultDevice returns the device marked as default, falling back to the
// first configured device. The second return is false when the inventory is
// empty.
func (m *Manager) DefaultDevice() (Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.devices {
		if d.Default {
			return d, true
		}
	}
	if len(m.devices) > 0 {
		return m.devices[0], true
	}
	return Device{}, false
}

// Reload replaces the device inventory, e.g. after a config reload.
func (m *Manager) Reload(devices []Device) {
	m.mu.Lock()
	m.devices = append([]Device(nil), devices...)
	count := len(m.devices)
	m.mu.Unlock()
	m.logger.Info("audio device inventory reloaded", slog.Int("devices", count))
}
