package squeezelite

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sydlexius/zonecast/internal/audio"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testPlayer(found bool) *Player {
	mgr := audio.NewManager([]audio.Device{
		{ID: "hw:0,0", Name: "Onboard analog", Default: true},
		{ID: "hw:1,0", Name: "USB DAC"},
	}, testLogger())
	p := New(mgr, testLogger())
	p.lookPath = func(string) (string, error) {
		if found {
			return "/usr/bin/squeezelite", nil
		}
		return "", errors.New("not found")
	}
	return p
}

func TestDescriptiveAttributes(t *testing.T) {
	p := testPlayer(true)
	if p.ProviderType() != "squeezelite" {
		t.Errorf("ProviderType = %q", p.ProviderType())
	}
	if p.DisplayName() != "Squeezelite" {
		t.Errorf("DisplayName = %q", p.DisplayName())
	}
	if p.BinaryName() != "squeezelite" {
		t.Errorf("BinaryName = %q", p.BinaryName())
	}
}

func TestIsAvailable(t *testing.T) {
	if !testPlayer(true).IsAvailable() {
		t.Error("IsAvailable = false with binary in PATH")
	}
	if testPlayer(false).IsAvailable() {
		t.Error("IsAvailable = true with binary missing")
	}
}

func TestValidateConfig(t *testing.T) {
	p := testPlayer(true)

	tests := []struct {
		name    string
		cfg     map[string]any
		valid   bool
		wantMsg string
	}{
		{
			name:  "complete config",
			cfg:   map[string]any{"name": "Kitchen", "device": "hw:0,0", "provider": "squeezelite"},
			valid: true,
		},
		{
			name:    "missing name",
			cfg:     map[string]any{"provider": "squeezelite"},
			valid:   false,
			wantMsg: "name",
		},
		{
			name:    "foreign provider type",
			cfg:     map[string]any{"name": "Kitchen", "provider": "snapcast"},
			valid:   false,
			wantMsg: "snapcast",
		},
		{
			name:    "unknown device",
			cfg:     map[string]any{"name": "Kitchen", "device": "hw:9,9"},
			valid:   false,
			wantMsg: "device",
		},
		{
			name:    "volume out of range",
			cfg:     map[string]any{"name": "Kitchen", "volume": 150},
			valid:   false,
			wantMsg: "volume",
		},
		{
			name:  "volume as json float",
			cfg:   map[string]any{"name": "Kitchen", "volume": float64(80)},
			valid: true,
		},
		{
			name:    "unsupported sample rate",
			cfg:     map[string]any{"name": "Kitchen", "sample_rate": 11025},
			valid:   false,
			wantMsg: "sample rate",
		},
		{
			name:  "no optional fields",
			cfg:   map[string]any{"name": "Kitchen"},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := p.ValidateConfig(tt.cfg)
			if valid != tt.valid {
				t.Fatalf("valid = %v, want %v (msg %q)", valid, tt.valid, msg)
			}
			if tt.wantMsg != "" && !strings.Contains(strings.ToLower(msg), tt.wantMsg) {
				t.Errorf("msg = %q, want substring %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := testPlayer(true).DefaultConfig()

	if cfg["provider"] != "squeezelite" {
		t.Errorf("provider = %v", cfg["provider"])
	}
	if cfg["device"] != "hw:0,0" {
		t.Errorf("device = %v, want the default audio device", cfg["device"])
	}
	if cfg["volume"] != 50 {
		t.Errorf("volume = %v, want 50", cfg["volume"])
	}
}

func TestDefaultConfigNoDevices(t *testing.T) {
	mgr := audio.NewManager(nil, testLogger())
	p := New(mgr, testLogger())

	if cfg := p.DefaultConfig(); cfg["device"] != "" {
		t.Errorf("device = %v, want empty with no inventory", cfg["device"])
	}
}
