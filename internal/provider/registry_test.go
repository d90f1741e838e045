package provider

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/sydlexius/zonecast/internal/audio"
)

// stubProvider is a minimal PlayerProvider for testing. It does not
// implement ConfigPreparer, so the registry's merge fallback applies.
type stubProvider struct {
	typ       string
	display   string
	binary    string
	available bool
	valid     bool
	errMsg    string
	defaults  Config

	validateFn func(Config) (bool, string)
	lastSeen   Config
}

func (s *stubProvider) ProviderType() string { return s.typ }
func (s *stubProvider) DisplayName() string  { return s.display }
func (s *stubProvider) BinaryName() string   { return s.binary }
func (s *stubProvider) IsAvailable() bool    { return s.available }
func (s *stubProvider) DefaultConfig() Config {
	return s.defaults.Clone()
}
func (s *stubProvider) ValidateConfig(cfg Config) (bool, string) {
	s.lastSeen = cfg
	if s.validateFn != nil {
		return s.validateFn(cfg)
	}
	return s.valid, s.errMsg
}

// stubPreparer additionally implements ConfigPreparer.
type stubPreparer struct {
	stubProvider
	prepared Config
	result   Config
}

func (s *stubPreparer) PrepareConfig(cfg Config) Config {
	s.prepared = cfg
	return s.result
}

func newStub() *stubProvider {
	return &stubProvider{
		typ:       "mock",
		display:   "Mock Provider",
		binary:    "mock-binary",
		available: true,
		valid:     true,
		defaults:  Config{"provider": "mock", "volume": 75},
	}
}

func newUnavailableStub() *stubProvider {
	return &stubProvider{
		typ:      "unavailable",
		display:  "Unavailable Provider",
		binary:   "unavailable-binary",
		defaults: Config{"provider": "unavailable"},
	}
}

// populated returns a registry with one available and one unavailable stub.
func populated(t *testing.T) (*Registry, *stubProvider, *stubProvider) {
	t.Helper()
	reg := NewRegistry()
	mock := newStub()
	unavail := newUnavailableStub()
	reg.Register("mock", mock)
	reg.Register("unavailable", unavail)
	return reg, mock, unavail
}

func str(s string) *string { return &s }

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if got := reg.ListProviders(false); len(got) != 0 {
		t.Errorf("ListProviders on fresh registry = %v, want empty", got)
	}
	if reg.DefaultProvider() != DefaultProviderName {
		t.Errorf("DefaultProvider = %q, want %q", reg.DefaultProvider(), DefaultProviderName)
	}
	if DefaultProviderName != "squeezelite" {
		t.Errorf("DefaultProviderName = %q, want squeezelite", DefaultProviderName)
	}
}

func TestRegisterFactory(t *testing.T) {
	reg := NewRegistry()

	first := Factory(func(_ *audio.Manager, _ *slog.Logger) PlayerProvider { return &stubProvider{typ: "first"} })
	second := Factory(func(_ *audio.Manager, _ *slog.Logger) PlayerProvider { return &stubProvider{typ: "second"} })

	reg.RegisterFactory("testprovider", first)
	if fn := reg.GetFactory("testprovider"); fn == nil {
		t.Fatal("GetFactory returned nil after RegisterFactory")
	} else if p := fn(nil, nil); p.ProviderType() != "first" {
		t.Errorf("factory built %q, want first", p.ProviderType())
	}

	// Overwrite semantics: last registration wins.
	reg.RegisterFactory("testprovider", second)
	if p := reg.GetFactory("testprovider")(nil, nil); p.ProviderType() != "second" {
		t.Errorf("factory built %q, want second", p.ProviderType())
	}
}

func TestRegisterFactoryDoesNotAffectInstances(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()

	reg.Register("testprovider", mock)
	reg.RegisterFactory("testprovider", func(_ *audio.Manager, _ *slog.Logger) PlayerProvider { return newStub() })

	if reg.Get("testprovider") != PlayerProvider(mock) {
		t.Error("RegisterFactory must not touch the instance mapping")
	}
}

func TestRegister(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()

	reg.Register("mock", mock)
	if !reg.HasProvider("mock") {
		t.Fatal("HasProvider = false after Register")
	}
	if reg.Get("mock") != PlayerProvider(mock) {
		t.Error("Get returned a different instance than registered")
	}
}

func TestRegisterOverwrites(t *testing.T) {
	reg := NewRegistry()
	first := newStub()
	second := newStub()

	reg.Register("mock", first)
	reg.Register("mock", second)

	if reg.Get("mock") != PlayerProvider(second) {
		t.Error("last registration must win")
	}
	if got := reg.ListProviders(false); len(got) != 1 {
		t.Errorf("ListProviders = %v, want exactly one entry after overwrite", got)
	}
}

func TestRegisterMultiple(t *testing.T) {
	reg, _, _ := populated(t)

	got := reg.ListProviders(false)
	if len(got) != 2 {
		t.Fatalf("ListProviders = %v, want 2 entries", got)
	}
	if !reg.HasProvider("mock") || !reg.HasProvider("unavailable") {
		t.Error("both registered providers should be present")
	}
}

func TestGet(t *testing.T) {
	reg, mock, _ := populated(t)

	if reg.Get("mock") != PlayerProvider(mock) {
		t.Error("Get(mock) returned wrong instance")
	}
	if reg.Get("nonexistent") != nil {
		t.Error("Get of unregistered name must return nil")
	}
	if NewRegistry().Get("any") != nil {
		t.Error("Get on empty registry must return nil")
	}
}

func TestGetCaseSensitive(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()
	reg.Register("Mock", mock)

	if reg.Get("Mock") != PlayerProvider(mock) {
		t.Error("Get(Mock) should find the provider")
	}
	if reg.Get("mock") != nil {
		t.Error("lookup must be case-sensitive")
	}
	if reg.HasProvider("mock") {
		t.Error("HasProvider must be case-sensitive")
	}
}

func TestGetOrDefault(t *testing.T) {
	reg, mock, _ := populated(t)

	if reg.GetOrDefault(str("mock")) != PlayerProvider(mock) {
		t.Error("GetOrDefault with explicit name returned wrong instance")
	}
	if reg.GetOrDefault(str("nonexistent")) != nil {
		t.Error("GetOrDefault with unknown name must return nil")
	}
	// Default (squeezelite) is not registered in the populated registry.
	if reg.GetOrDefault(nil) != nil {
		t.Error("GetOrDefault(nil) must return nil when the default is unregistered")
	}
}

func TestGetOrDefaultUsesDefault(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()
	reg.Register("squeezelite", mock)

	if reg.GetOrDefault(nil) != PlayerProvider(mock) {
		t.Error("GetOrDefault(nil) should resolve the default provider")
	}
}

func TestSetDefaultProviderChangesResolution(t *testing.T) {
	reg, mock, _ := populated(t)

	reg.SetDefaultProvider("mock")

	if reg.DefaultProvider() != "mock" {
		t.Fatalf("DefaultProvider = %q, want mock", reg.DefaultProvider())
	}
	if reg.GetOrDefault(nil) != PlayerProvider(mock) {
		t.Error("GetOrDefault(nil) should follow the new default without re-registration")
	}
}

func TestSetDefaultProviderIgnoresEmptyName(t *testing.T) {
	reg := NewRegistry()

	reg.SetDefaultProvider("")

	if reg.DefaultProvider() != DefaultProviderName {
		t.Errorf("DefaultProvider = %q, want %q (empty name ignored)", reg.DefaultProvider(), DefaultProviderName)
	}
}

func TestGetForPlayer(t *testing.T) {
	reg, mock, _ := populated(t)

	if got := reg.GetForPlayer(Config{"name": "Test", "provider": "mock"}); got != PlayerProvider(mock) {
		t.Error("GetForPlayer should use the provider key")
	}
	if got := reg.GetForPlayer(Config{"name": "Test", "provider": "unknown"}); got != nil {
		t.Error("GetForPlayer with unknown provider must return nil")
	}
}

func TestGetForPlayerMissingKeyUsesDefault(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()
	reg.Register("squeezelite", mock)

	if reg.GetForPlayer(Config{"name": "Test"}) != PlayerProvider(mock) {
		t.Error("missing provider key should resolve the default provider")
	}
	if reg.GetForPlayer(Config{}) != PlayerProvider(mock) {
		t.Error("empty config should resolve the default provider")
	}
}

func TestGetForPlayerExplicitNull(t *testing.T) {
	reg := NewRegistry()
	reg.Register("squeezelite", newStub())

	// A provider key that is present but null is an unknown provider, not a
	// request for the default.
	if got := reg.GetForPlayer(Config{"name": "Test", "provider": nil}); got != nil {
		t.Error("explicit null provider must resolve to nil, not the default")
	}
}

func TestHasProvider(t *testing.T) {
	reg, _, _ := populated(t)

	if !reg.HasProvider("mock") {
		t.Error("HasProvider(mock) = false, want true")
	}
	if reg.HasProvider("nonexistent") {
		t.Error("HasProvider(nonexistent) = true, want false")
	}
	if NewRegistry().HasProvider("any") {
		t.Error("HasProvider on empty registry = true, want false")
	}
}

func TestHasProviderIgnoresFactories(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory("lazy", func(_ *audio.Manager, _ *slog.Logger) PlayerProvider { return newStub() })

	if reg.HasProvider("lazy") {
		t.Error("HasProvider must not consult the factory mapping")
	}
	if got := reg.ListProviders(false); len(got) != 0 {
		t.Errorf("ListProviders = %v, factory-only entries must not enumerate", got)
	}
}

func TestListProviders(t *testing.T) {
	reg, _, _ := populated(t)

	all := reg.ListProviders(false)
	if !reflect.DeepEqual(all, []string{"mock", "unavailable"}) {
		t.Errorf("ListProviders(false) = %v, want registration order [mock unavailable]", all)
	}

	available := reg.ListProviders(true)
	if !reflect.DeepEqual(available, []string{"mock"}) {
		t.Errorf("ListProviders(true) = %v, want [mock]", available)
	}
}

func TestListProvidersAllUnavailable(t *testing.T) {
	reg := NewRegistry()
	reg.Register("unavailable1", newUnavailableStub())
	reg.Register("unavailable2", newUnavailableStub())

	if got := reg.ListProviders(false); len(got) != 2 {
		t.Errorf("ListProviders(false) = %v, want 2 entries", got)
	}
	if got := reg.ListProviders(true); len(got) != 0 {
		t.Errorf("ListProviders(true) = %v, want empty", got)
	}
}

func TestDefaultAvailableProvider(t *testing.T) {
	reg := NewRegistry()
	reg.Register("squeezelite", newStub())

	got, ok := reg.DefaultAvailableProvider()
	if !ok || got != "squeezelite" {
		t.Errorf("DefaultAvailableProvider = %q, %v; want squeezelite, true", got, ok)
	}
}

func TestDefaultAvailableProviderPrefersDefault(t *testing.T) {
	reg := NewRegistry()
	// Another available provider registered before the default.
	reg.Register("mock", newStub())
	squeeze := newStub()
	squeeze.typ = "squeezelite"
	reg.Register("squeezelite", squeeze)

	got, ok := reg.DefaultAvailableProvider()
	if !ok || got != "squeezelite" {
		t.Errorf("DefaultAvailableProvider = %q, %v; default must win over other available providers", got, ok)
	}
}

func TestDefaultAvailableProviderFallsBack(t *testing.T) {
	reg := NewRegistry()
	squeeze := newUnavailableStub()
	squeeze.typ = "squeezelite"
	reg.Register("squeezelite", squeeze)
	reg.Register("mock", newStub())

	got, ok := reg.DefaultAvailableProvider()
	if !ok || got != "mock" {
		t.Errorf("DefaultAvailableProvider = %q, %v; want first available fallback mock", got, ok)
	}
}

func TestDefaultAvailableProviderNoneAvailable(t *testing.T) {
	reg := NewRegistry()
	reg.Register("unavailable", newUnavailableStub())

	if got, ok := reg.DefaultAvailableProvider(); ok {
		t.Errorf("DefaultAvailableProvider = %q, want none", got)
	}

	if _, ok := NewRegistry().DefaultAvailableProvider(); ok {
		t.Error("DefaultAvailableProvider on empty registry must report none")
	}
}

func TestInfo(t *testing.T) {
	reg, _, _ := populated(t)

	available := reg.Info(true)
	if len(available) != 1 {
		t.Fatalf("Info(true) returned %d records, want 1", len(available))
	}
	want := ProviderInfo{
		Type:        "mock",
		DisplayName: "Mock Provider",
		Binary:      "mock-binary",
		Available:   true,
	}
	if available[0] != want {
		t.Errorf("Info record = %+v, want %+v", available[0], want)
	}

	if all := reg.Info(false); len(all) != 2 {
		t.Errorf("Info(false) returned %d records, want 2", len(all))
	}

	if got := NewRegistry().Info(true); len(got) != 0 {
		t.Errorf("Info on empty registry = %v, want empty", got)
	}
}

func TestValidatePlayerConfig(t *testing.T) {
	reg, mock, _ := populated(t)

	cfg := Config{"name": "Test", "provider": "mock"}
	valid, msg := reg.ValidatePlayerConfig(cfg)
	if !valid || msg != "" {
		t.Errorf("ValidatePlayerConfig = %v, %q; want true, empty", valid, msg)
	}
	if !reflect.DeepEqual(mock.lastSeen, cfg) {
		t.Error("provider must receive the original config")
	}
}

func TestValidatePlayerConfigInvalid(t *testing.T) {
	reg, mock, _ := populated(t)
	mock.valid = false
	mock.errMsg = "Name is required"

	valid, msg := reg.ValidatePlayerConfig(Config{"provider": "mock"})
	if valid || msg != "Name is required" {
		t.Errorf("ValidatePlayerConfig = %v, %q; provider verdict must pass through verbatim", valid, msg)
	}
}

func TestValidatePlayerConfigUnknownProvider(t *testing.T) {
	reg, _, _ := populated(t)

	valid, msg := reg.ValidatePlayerConfig(Config{"name": "Test", "provider": "unknown"})
	if valid {
		t.Error("unknown provider must fail validation")
	}
	if !strings.Contains(strings.ToLower(msg), "unknown provider") {
		t.Errorf("message = %q, want it to identify the provider as unknown", msg)
	}
	if !strings.Contains(msg, "unknown") {
		t.Errorf("message = %q, want it to name the requested provider", msg)
	}
}

func TestValidatePlayerConfigDefaultNotRegistered(t *testing.T) {
	reg, _, _ := populated(t)

	// No provider key, and the default (squeezelite) is not registered.
	valid, msg := reg.ValidatePlayerConfig(Config{"name": "Test"})
	if valid {
		t.Error("unregistered default must fail validation")
	}
	if !strings.Contains(strings.ToLower(msg), "unknown provider") {
		t.Errorf("message = %q, want unknown provider", msg)
	}
	if !strings.Contains(msg, "squeezelite") {
		t.Errorf("message = %q, want it to name the default provider", msg)
	}
}

func TestValidatePlayerConfigExplicitNullMessage(t *testing.T) {
	reg := NewRegistry()
	reg.Register("squeezelite", newStub())

	valid, msg := reg.ValidatePlayerConfig(Config{"provider": nil})
	if valid {
		t.Error("explicit null provider must fail validation")
	}
	if !strings.Contains(msg, "none") {
		t.Errorf("message = %q, want it to report none", msg)
	}
}

func TestValidatePlayerConfigUsesDefault(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()
	reg.Register("squeezelite", mock)

	cfg := Config{"name": "Test"}
	valid, _ := reg.ValidatePlayerConfig(cfg)
	if !valid {
		t.Error("validation via default provider should succeed")
	}
	if !reflect.DeepEqual(mock.lastSeen, cfg) {
		t.Error("default provider must receive the original config")
	}
}

func TestValidatePlayerConfigPanicPropagates(t *testing.T) {
	reg, mock, _ := populated(t)
	mock.validateFn = func(Config) (bool, string) {
		panic("unexpected error")
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("panic inside the provider must reach the caller")
		}
		if r != "unexpected error" {
			t.Errorf("recovered %v, want the provider's panic value unchanged", r)
		}
	}()
	reg.ValidatePlayerConfig(Config{"name": "Test", "provider": "mock"})
}

func TestPreparePlayerConfigDelegates(t *testing.T) {
	reg := NewRegistry()
	prep := &stubPreparer{
		stubProvider: *newStub(),
		result:       Config{"name": "Test", "provider": "mock", "volume": 75},
	}
	reg.Register("mock", prep)

	cfg := Config{"name": "Test", "provider": "mock"}
	got := reg.PreparePlayerConfig(cfg)

	if !reflect.DeepEqual(prep.prepared, cfg) {
		t.Error("preparer must receive the original config")
	}
	if !reflect.DeepEqual(got, Config{"name": "Test", "provider": "mock", "volume": 75}) {
		t.Errorf("PreparePlayerConfig = %v, preparer result must pass through verbatim", got)
	}
}

func TestPreparePlayerConfigUnknownProviderPassThrough(t *testing.T) {
	reg, _, _ := populated(t)

	cfg := Config{"name": "Test", "provider": "unknown"}
	got := reg.PreparePlayerConfig(cfg)

	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("PreparePlayerConfig = %v, want the input unchanged", got)
	}

	// The designed asymmetry: the same config fails validation.
	if valid, _ := reg.ValidatePlayerConfig(cfg); valid {
		t.Error("the same unknown-provider config must fail validation")
	}
}

func TestPreparePlayerConfigMergeFallback(t *testing.T) {
	reg := NewRegistry()
	stub := newStub()
	stub.typ = "test"
	stub.defaults = Config{"provider": "test", "volume": 50}
	reg.Register("test", stub)

	cfg := Config{"name": "Test", "provider": "test"}
	got := reg.PreparePlayerConfig(cfg)

	want := Config{"name": "Test", "provider": "test", "volume": 50}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PreparePlayerConfig = %v, want %v", got, want)
	}
	// Caller values win over defaults.
	stub.defaults["name"] = "Default Name"
	if got := reg.PreparePlayerConfig(cfg); got["name"] != "Test" {
		t.Errorf("name = %v, caller-supplied values must override defaults", got["name"])
	}
	// The input config itself stays untouched.
	if _, ok := cfg["volume"]; ok {
		t.Error("merge must not mutate the caller's config")
	}
}

func TestPreparePlayerConfigUsesDefault(t *testing.T) {
	reg := NewRegistry()
	prep := &stubPreparer{
		stubProvider: *newStub(),
		result:       Config{"prepared": true},
	}
	reg.Register("squeezelite", prep)

	got := reg.PreparePlayerConfig(Config{"name": "Test"})
	if !reflect.DeepEqual(got, Config{"prepared": true}) {
		t.Errorf("PreparePlayerConfig = %v, default provider's preparer must be used", got)
	}
}

func TestClear(t *testing.T) {
	reg, _, _ := populated(t)

	reg.Clear()
	if got := reg.ListProviders(false); len(got) != 0 {
		t.Errorf("ListProviders after Clear = %v, want empty", got)
	}

	// Idempotent.
	reg.Clear()

	reg.Register("new_provider", newStub())
	if !reg.HasProvider("new_provider") {
		t.Error("registration after Clear must work")
	}
}

func TestClearPreservesDefaultAndFactories(t *testing.T) {
	reg, _, _ := populated(t)
	reg.SetDefaultProvider("custom")
	reg.RegisterFactory("lazy", func(_ *audio.Manager, _ *slog.Logger) PlayerProvider { return newStub() })

	reg.Clear()

	if reg.DefaultProvider() != "custom" {
		t.Errorf("DefaultProvider = %q after Clear, want custom", reg.DefaultProvider())
	}
	if reg.GetFactory("lazy") == nil {
		t.Error("Clear must not touch the factory mapping")
	}
}

func TestEdgeCaseTypeNames(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()

	reg.Register("test-provider_v2.0", mock)
	if !reg.HasProvider("test-provider_v2.0") || reg.Get("test-provider_v2.0") != PlayerProvider(mock) {
		t.Error("special characters in type names must round-trip")
	}

	empty := newStub()
	reg.Register("", empty)
	if !reg.HasProvider("") || reg.Get("") != PlayerProvider(empty) {
		t.Error("the empty string is a valid type name")
	}
}

func TestLookupStableAcrossModification(t *testing.T) {
	reg := NewRegistry()
	mock := newStub()
	reg.Register("mock", mock)
	first := reg.Get("mock")

	reg.Register("another", newStub())

	if second := reg.Get("mock"); first != second || second != PlayerProvider(mock) {
		t.Error("lookups must stay consistent after unrelated registrations")
	}
}

func TestLastWriteWins(t *testing.T) {
	reg := NewRegistry()
	p1, p2, p3 := newStub(), newStub(), newStub()

	reg.Register("same", p1)
	reg.Register("same", p2)
	reg.Register("same", p3)

	if reg.Get("same") != PlayerProvider(p3) {
		t.Error("the last registered instance must win")
	}
}
