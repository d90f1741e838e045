package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sydlexius/zonecast/internal/api"
	"github.com/sydlexius/zonecast/internal/audio"
	"github.com/sydlexius/zonecast/internal/config"
	"github.com/sydlexius/zonecast/internal/event"
	"github.com/sydlexius/zonecast/internal/logging"
	"github.com/sydlexius/zonecast/internal/provider"
	"github.com/sydlexius/zonecast/internal/provider/sendspin"
	"github.com/sydlexius/zonecast/internal/provider/snapcast"
	"github.com/sydlexius/zonecast/internal/provider/squeezelite"
	"github.com/sydlexius/zonecast/internal/version"
	"github.com/sydlexius/zonecast/internal/watcher"
	"github.com/sydlexius/zonecast/internal/webhook"
	"github.com/sydlexius/zonecast/internal/zone"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("ZC_CONFIG_PATH")
	if configPath == "" {
		configPath = "/data/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up structured logging via the logging Manager
	logCfg := logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	}
	logManager, logger := logging.NewManager(logCfg)
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	// Audio device inventory
	audioManager := audio.NewManager(cfg.Audio.Devices, logger)

	// Provider registry: register the player engines and their factories
	registry := provider.NewRegistry()
	registry.SetDefaultProvider(cfg.Players.DefaultProvider)

	registry.Register(squeezelite.ProviderType, squeezelite.New(audioManager, logger))
	registry.Register(snapcast.ProviderType, snapcast.New(audioManager, logger))
	registry.Register(sendspin.ProviderType, sendspin.New(audioManager, logger))

	registry.RegisterFactory(squeezelite.ProviderType, func(m *audio.Manager, l *slog.Logger) provider.PlayerProvider {
		return squeezelite.New(m, l)
	})
	registry.RegisterFactory(snapcast.ProviderType, func(m *audio.Manager, l *slog.Logger) provider.PlayerProvider {
		return snapcast.New(m, l)
	})
	registry.RegisterFactory(sendspin.ProviderType, func(m *audio.Manager, l *slog.Logger) provider.PlayerProvider {
		return sendspin.New(m, l)
	})

	// Initialize event bus
	eventBus := event.NewBus(logger, 256)
	go eventBus.Start()
	defer eventBus.Stop()

	// Webhook dispatcher: subscribe to all event types
	webhookDispatcher := webhook.NewDispatcher(cfg.Players.WebhookURLs, logger)
	for _, eventType := range []event.Type{
		event.ZoneCreated, event.ZoneUpdated, event.ZoneRemoved,
		event.DefaultProviderChanged, event.ConfigReloaded,
	} {
		eventBus.Subscribe(eventType, webhookDispatcher.HandleEvent)
	}

	// Zone service
	zoneService := zone.NewService(registry, eventBus, logger)

	logger.Info("starting zonecast",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("default_provider", registry.DefaultProvider()),
		slog.Any("providers", registry.ListProviders(false)),
	)

	// Set up HTTP router
	router := api.NewRouter(api.RouterDeps{
		ProviderRegistry: registry,
		ZoneService:      zoneService,
		AudioManager:     audioManager,
		EventBus:         eventBus,
		Logger:           logger,
		BasePath:         cfg.Server.BasePath,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(ctx),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Watch the config file and push changed settings into running components
	applyFn := func(newCfg *config.Config) error {
		logManager.SetLevel(newCfg.Logging.Level)
		audioManager.Reload(newCfg.Audio.Devices)
		if newCfg.Players.DefaultProvider != registry.DefaultProvider() {
			registry.SetDefaultProvider(newCfg.Players.DefaultProvider)
			eventBus.Publish(event.Event{
				Type: event.DefaultProviderChanged,
				Data: map[string]any{"provider": newCfg.Players.DefaultProvider},
			})
		}
		return nil
	}
	watcherService := watcher.NewService(configPath, applyFn, eventBus, logger)
	go watcherService.Start(ctx)

	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
