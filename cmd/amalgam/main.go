package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mantonx/amalgam/internal/amalgamation/persistence"
	"github.com/mantonx/amalgam/internal/config"
	"github.com/mantonx/amalgam/internal/database"
	"github.com/mantonx/amalgam/internal/logger"
	"github.com/mantonx/amalgam/internal/modules/preferencesmodule"
	"github.com/mantonx/amalgam/internal/scraper/cookies"
	"github.com/mantonx/amalgam/internal/server"
	"github.com/mantonx/amalgam/internal/sources"
)

func main() {
	fmt.Println("=======================================")
	fmt.Println("  Amalgam - Metadata Preferences       ")
	fmt.Println("=======================================")

	configPath := os.Getenv(config.ConfigPathEnv)
	if configPath == "" {
		if _, err := os.Stat("./amalgam.yaml"); err == nil {
			configPath = "./amalgam.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.Get()

	logger.Configure(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if configPath != "" {
		logger.Info("Configuration loaded", "path", configPath)
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		log.Fatalf("Failed to register sources: %v", err)
	}

	store, fileStore, err := openStore(cfg, registry)
	if err != nil {
		log.Fatalf("Failed to open preference storage: %v", err)
	}

	prefs := preferencesmodule.New(store, registry)
	if err := prefs.Init(); err != nil {
		log.Fatalf("Failed to load amalgamation preferences: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Storage.Watch && fileStore != nil {
		if err := persistence.NewWatcher(fileStore).Start(ctx, prefs.HandleSettingsChange); err != nil {
			logger.Warn("Settings file watcher disabled", "error", err)
		} else {
			logger.Info("Watching settings file", "path", fileStore.Path())
		}
	}

	srv := server.New(cfg, server.SetupRouter(cfg, prefs))

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		cancel()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	<-ctx.Done()
	logger.Info("Server stopped")
}

// openStore picks the preference store for the configured backend. The file
// store is also returned when it is the one in use so it can be watched.
func openStore(cfg *config.Config, registry *sources.Registry) (persistence.Store, *persistence.FileStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendDatabase:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using database preference storage", "type", cfg.Database.Type)
		return persistence.NewDatabaseStore(db, cfg.Storage.SettingsFile, registry), nil, nil
	default:
		fs := persistence.NewFileStore(cfg.Storage.SettingsPath(), registry)
		logger.Info("Using settings file", "path", fs.Path())
		return fs, fs, nil
	}
}

// newRegistry registers the built-in sources. Remote sources fetch through
// a client carrying the configured cookie jar.
func newRegistry(cfg *config.Config) (*sources.Registry, error) {
	client := &http.Client{Timeout: sources.DefaultRequestTimeout}
	jar, err := loadCookies(cfg.Scraper.CookieJar)
	if err != nil {
		logger.Warn("Cookie jar not loaded", "path", cfg.Scraper.CookieJar, "error", err)
	} else if jar != nil {
		client.Jar = jar
	}

	registry := sources.NewRegistry()
	if err := sources.RegisterBuiltins(registry, sources.WithHTTPClient(client)); err != nil {
		return nil, err
	}
	return registry, nil
}

// loadCookies reads a Netscape cookie file into a jar. No path gives a nil
// jar.
func loadCookies(path string) (http.CookieJar, error) {
	if path == "" {
		return nil, nil
	}

	store := cookies.NewStore()
	if err := store.LoadCookieJar(path); err != nil {
		return nil, err
	}
	jar, err := store.Jar()
	if err != nil {
		return nil, err
	}
	logger.Info("Cookie jar loaded", "hosts", len(store.Hosts()))
	return jar, nil
}
