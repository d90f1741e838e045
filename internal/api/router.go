package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sydlexius/zonecast/internal/api/middleware"
	"github.com/sydlexius/zonecast/internal/audio"
	"github.com/sydlexius/zonecast/internal/event"
	"github.com/sydlexius/zonecast/internal/provider"
	"github.com/sydlexius/zonecast/internal/zone"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	ProviderRegistry *provider.Registry
	ZoneService      *zone.Service
	AudioManager     *audio.Manager
	EventBus         *event.Bus
	Logger           *slog.Logger
	BasePath         string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	providerRegistry *provider.Registry
	zoneService      *zone.Service
	audioManager     *audio.Manager
	eventBus         *event.Bus
	logger           *slog.Logger
	basePath         string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		providerRegistry: deps.ProviderRegistry,
		zoneService:      deps.ZoneService,
		audioManager:     deps.AudioManager,
		eventBus:         deps.EventBus,
		logger:           deps.Logger,
		basePath:         deps.BasePath,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)

	// Provider routes
	mux.HandleFunc("GET "+bp+"/api/v1/providers", r.handleListProviders)
	mux.HandleFunc("GET "+bp+"/api/v1/providers/default", r.handleGetDefaultProvider)
	mux.HandleFunc("PUT "+bp+"/api/v1/providers/default", r.handleSetDefaultProvider)

	// Player config routes
	mux.HandleFunc("POST "+bp+"/api/v1/players/validate", r.handleValidatePlayerConfig)
	mux.HandleFunc("POST "+bp+"/api/v1/players/prepare", r.handlePreparePlayerConfig)

	// Zone routes
	mux.HandleFunc("GET "+bp+"/api/v1/zones", r.handleListZones)
	mux.HandleFunc("POST "+bp+"/api/v1/zones", r.handleCreateZone)
	mux.HandleFunc("GET "+bp+"/api/v1/zones/{id}", r.handleGetZone)
	mux.HandleFunc("PUT "+bp+"/api/v1/zones/{id}", r.handleUpdateZone)
	mux.HandleFunc("DELETE "+bp+"/api/v1/zones/{id}", r.handleDeleteZone)

	// Audio routes
	mux.HandleFunc("GET "+bp+"/api/v1/audio/devices", r.handleListAudioDevices)

	rl := middleware.NewWriteRateLimiter(ctx)
	return middleware.Logging(r.logger)(rl.Middleware(mux))
}

func (r *Router) publishDefaultChanged(name string) {
	r.eventBus.Publish(event.Event{
		Type: event.DefaultProviderChanged,
		Data: map[string]any{"provider": name},
	})
}
