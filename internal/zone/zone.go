// Package zone manages the set of player zones and their provider configs.
package zone

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/zonecast/internal/event"
	"github.com/sydlexius/zonecast/internal/provider"
)

// ErrNotFound is returned when a zone ID does not exist.
var ErrNotFound = errors.New("zone not found")

// Zone is a named player bound to a provider configuration.
type Zone struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Provider  string          `json:"provider"`
	Config    provider.Config `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Service manages zones in memory. All methods are safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	zones    map[string]*Zone
	order    []string
	registry *provider.Registry
	bus      *event.Bus
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a zone service backed by the given provider registry.
func NewService(registry *provider.Registry, bus *event.Bus, logger *slog.Logger) *Service {
	return &Service{
		zones:    make(map[string]*Zone),
		registry: registry,
		bus:      bus,
		logger:   logger.With(slog.String("component", "zone")),
		now:      time.Now,
	}
}

// Create validates the player config against its provider, prepares it, and
// stores a new zone.
func (s *Service) Create(name string, cfg provider.Config) (*Zone, error) {
	if name == "" {
		return nil, fmt.Errorf("zone name is required")
	}

	valid, msg := s.registry.ValidatePlayerConfig(cfg)
	if !valid {
		return nil, fmt.Errorf("invalid player config: %s", msg)
	}
	prepared := s.registry.PreparePlayerConfig(cfg)

	now := s.now().UTC()
	z := &Zone{
		ID:        uuid.NewString(),
		Name:      name,
		Provider:  s.providerName(prepared),
		Config:    prepared,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.zones[z.ID] = z
	s.order = append(s.order, z.ID)
	s.mu.Unlock()

	s.logger.Info("zone created", "id", z.ID, "name", z.Name, "provider", z.Provider)
	s.publish(event.ZoneCreated, z)
	return z.clone(), nil
}

// Update replaces a zone's name and config after re-validation.
func (s *Service) Update(id, name string, cfg provider.Config) (*Zone, error) {
	if name == "" {
		return nil, fmt.Errorf("zone name is required")
	}

	valid, msg := s.registry.ValidatePlayerConfig(cfg)
	if !valid {
		return nil, fmt.Errorf("invalid player config: %s", msg)
	}
	prepared := s.registry.PreparePlayerConfig(cfg)

	s.mu.Lock()
	z, ok := s.zones[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	z.Name = name
	z.Provider = s.providerName(prepared)
	z.Config = prepared
	z.UpdatedAt = s.now().UTC()
	updated := z.clone()
	s.mu.Unlock()

	s.logger.Info("zone updated", "id", id, "name", name)
	s.publish(event.ZoneUpdated, updated)
	return updated, nil
}

// Delete removes a zone.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	z, ok := s.zones[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.zones, id)
	for i, zid := range s.order {
		if zid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	removed := z.clone()
	s.mu.Unlock()

	s.logger.Info("zone removed", "id", id, "name", removed.Name)
	s.publish(event.ZoneRemoved, removed)
	return nil
}

// Get returns the zone with the given ID.
func (s *Service) Get(id string) (*Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.zones[id]
	if !ok {
		return nil, ErrNotFound
	}
	return z.clone(), nil
}

// List returns all zones in creation order.
func (s *Service) List() []*Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Zone, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.zones[id].clone())
	}
	return out
}

// Count returns the number of zones.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones)
}

func (s *Service) providerName(cfg provider.Config) string {
	if name, ok := cfg.String(provider.ConfigKeyProvider); ok {
		return name
	}
	return s.registry.DefaultProvider()
}

func (s *Service) publish(t event.Type, z *Zone) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Type: t,
		Data: map[string]any{
			"id":       z.ID,
			"name":     z.Name,
			"provider": z.Provider,
		},
	})
}

func (z *Zone) clone() *Zone {
	c := *z
	c.Config = z.Config.Clone()
	return &c
}
