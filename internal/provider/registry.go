package provider

import (
	"fmt"
	"sync"
)

// Registry binds provider type names to live provider instances and, for
// lazy construction, to provider factories. Instance and factory mappings
// are independent; registering under a name in one never touches the other.
// Lookups that miss return nil rather than an error.
//
// All registration is expected to happen during startup, before the HTTP
// layer starts serving; the mutex exists because the default provider can
// change at runtime (config reload) while handlers read.
type Registry struct {
	mu              sync.RWMutex
	providers       map[string]PlayerProvider
	order           []string
	factories       map[string]Factory
	defaultProvider string
}

// NewRegistry creates an empty registry with DefaultProviderName configured
// as the default provider type.
func NewRegistry() *Registry {
	return &Registry{
		providers:       make(map[string]PlayerProvider),
		factories:       make(map[string]Factory),
		defaultProvider: DefaultProviderName,
	}
}

// RegisterFactory stores a provider factory under the given type name,
// replacing any factory previously stored there.
func (r *Registry) RegisterFactory(providerType string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[providerType] = fn
}

// Register stores a provider instance under the given type name. A later
// Register for the same name replaces the instance but keeps its position
// in enumeration order.
func (r *Registry) Register(providerType string, p PlayerProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[providerType]; !exists {
		r.order = append(r.order, providerType)
	}
	r.providers[providerType] = p
}

// Get returns the provider instance registered under the given type name,
// or nil. Lookups are case-sensitive.
func (r *Registry) Get(providerType string) PlayerProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[providerType]
}

// GetFactory returns the factory registered under the given type name, or nil.
func (r *Registry) GetFactory(providerType string) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[providerType]
}

// GetOrDefault resolves a provider by type name. A nil name selects the
// configured default provider.
func (r *Registry) GetOrDefault(providerType *string) PlayerProvider {
	if providerType == nil {
		return r.Get(r.DefaultProvider())
	}
	return r.Get(*providerType)
}

// GetForPlayer resolves the provider responsible for a player configuration.
// A missing ConfigKeyProvider key selects the default provider. A key that
// is present but holds no usable name (an explicit null) resolves to
// nothing: it is an unknown provider, not a request for the default.
func (r *Registry) GetForPlayer(cfg Config) PlayerProvider {
	raw, ok := cfg[ConfigKeyProvider]
	if !ok {
		return r.GetOrDefault(nil)
	}
	name, ok := raw.(string)
	if !ok {
		return nil
	}
	return r.Get(name)
}

// HasProvider reports whether an instance is registered under the given type
// name. Factories are not consulted.
func (r *Registry) HasProvider(providerType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[providerType]
	return ok
}

// DefaultProvider returns the configured default provider type.
func (r *Registry) DefaultProvider() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultProvider
}

// SetDefaultProvider changes the default provider type. The name does not
// have to be registered (yet); an empty name is ignored so the registry
// always has a default to fall back to.
func (r *Registry) SetDefaultProvider(providerType string) {
	if providerType == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultProvider = providerType
}

// ListProviders returns the registered provider type names in registration
// order. With availableOnly set, providers whose playback engine is missing
// on this host are filtered out.
func (r *Registry) ListProviders(availableOnly bool) []string {
	names := []string{}
	for _, e := range r.entries() {
		if availableOnly && !e.p.IsAvailable() {
			continue
		}
		names = append(names, e.name)
	}
	return names
}

// DefaultAvailableProvider returns the type name of the provider new players
// should use: the configured default when it is registered and available,
// otherwise the first available provider in registration order. The second
// return is false when no registered provider is available.
func (r *Registry) DefaultAvailableProvider() (string, bool) {
	def := r.DefaultProvider()
	if p := r.Get(def); p != nil && p.IsAvailable() {
		return def, true
	}
	for _, e := range r.entries() {
		if e.p.IsAvailable() {
			return e.name, true
		}
	}
	return "", false
}

// Info returns a summary record per registered provider, with the same
// ordering and filtering rules as ListProviders.
func (r *Registry) Info(availableOnly bool) []ProviderInfo {
	infos := []ProviderInfo{}
	for _, e := range r.entries() {
		available := e.p.IsAvailable()
		if availableOnly && !available {
			continue
		}
		infos = append(infos, ProviderInfo{
			Type:        e.name,
			DisplayName: e.p.DisplayName(),
			Binary:      e.p.BinaryName(),
			Available:   available,
		})
	}
	return infos
}

// ValidatePlayerConfig resolves the provider for a player configuration and
// delegates validation to it, returning the provider's verdict verbatim.
// An unresolvable provider is a validation failure. The registry does not
// recover panics raised inside the provider; they reach the caller as-is.
func (r *Registry) ValidatePlayerConfig(cfg Config) (bool, string) {
	p := r.GetForPlayer(cfg)
	if p == nil {
		return false, fmt.Sprintf("Unknown provider: %s", r.requestedProvider(cfg))
	}
	return p.ValidateConfig(cfg)
}

// PreparePlayerConfig fills a player configuration with provider defaults.
// Unlike validation, an unresolvable provider is not an error: preparation
// is best-effort enrichment, so the config is handed back untouched.
// Providers implementing ConfigPreparer take over entirely; for the rest the
// caller's values are laid over the provider's DefaultConfig.
func (r *Registry) PreparePlayerConfig(cfg Config) Config {
	p := r.GetForPlayer(cfg)
	if p == nil {
		return cfg
	}
	if preparer, ok := p.(ConfigPreparer); ok {
		return preparer.PrepareConfig(cfg)
	}
	merged := p.DefaultConfig().Clone()
	for k, v := range cfg {
		merged[k] = v
	}
	return merged
}

// Clear removes every registered instance. Factories and the default
// provider setting are left as they are.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = make(map[string]PlayerProvider)
	r.order = nil
}

type entry struct {
	name string
	p    PlayerProvider
}

// entries snapshots the instance mapping in registration order so that
// delegated IsAvailable calls happen outside the registry lock.
func (r *Registry) entries() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, entry{name: name, p: r.providers[name]})
	}
	return out
}

// requestedProvider names the provider a config asked for, for error
// messages: the explicit key value, the default when the key was absent, or
// "none" for an explicit null.
func (r *Registry) requestedProvider(cfg Config) string {
	raw, ok := cfg[ConfigKeyProvider]
	if !ok {
		return r.DefaultProvider()
	}
	if name, ok := raw.(string); ok {
		return name
	}
	return "none"
}
