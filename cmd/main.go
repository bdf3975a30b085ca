package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/glucodeck/glucodeck/internal/api"
	"github.com/glucodeck/glucodeck/internal/config"
	"github.com/glucodeck/glucodeck/internal/metrics"
	"github.com/glucodeck/glucodeck/internal/render"
	"github.com/glucodeck/glucodeck/internal/scheduler"
	"github.com/glucodeck/glucodeck/internal/streamdeck"
)

// Command glucodeck is a button-deck plugin that polls a Nightscout-compatible
// glucose source and renders the latest reading on the button face.
//
// The host launches the binary with the standard registration flags:
//
//	glucodeck -port 28196 -pluginUUID <uuid> -registerEvent registerPlugin -info <json>
//
// Plugin-level options (logging, metrics, HTTP timeout) load from an optional
// YAML file next to the binary; per-button options come from the host's
// settings store with every event.
func main() {
	cfg := parseFlags()

	appConfig, err := config.Load(cfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	if appConfig.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(appConfig.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	metrics.Register()
	if appConfig.Metrics.Addr != "" {
		go metrics.Serve(appConfig.Metrics.Addr, logger)
	}

	conn, err := streamdeck.Connect(cfg.Port, cfg.PluginUUID, cfg.RegisterEvent, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to host: %v", err)
	}
	// Errors also land in the host's plugin log.
	logger.AddHook(streamdeck.NewLogHook(conn))

	encoder, err := render.NewEncoder(cfg.CacheSize)
	if err != nil {
		logger.Fatalf("Failed to create image encoder: %v", err)
	}

	timeout := time.Duration(appConfig.HTTP.TimeoutSeconds) * time.Second
	clients := func(s config.Settings) scheduler.Fetcher {
		return api.NewClient(s.URL, s.Secret, timeout, logger)
	}
	registry := scheduler.NewRegistry(clients, conn, encoder, logger)

	go handleShutdown(conn, logger)

	runEventLoop(conn, registry, logger)

	registry.Shutdown()
	logger.Info("Plugin stopped")
}

// runEventLoop dispatches host events until the connection closes.
func runEventLoop(conn *streamdeck.Conn, registry *scheduler.Registry, logger *logrus.Logger) {
	for {
		ev, err := conn.ReadEvent()
		if err != nil {
			logger.WithError(err).Info("Host connection closed")
			return
		}

		settings := config.ParseSettings(ev.Settings())

		switch ev.Event {
		case streamdeck.EventWillAppear:
			registry.Create(ev.Context, settings)
		case streamdeck.EventWillDisappear:
			registry.Destroy(ev.Context)
		case streamdeck.EventKeyDown:
			registry.HandleKeyDown(ev.Context, time.Now())
		case streamdeck.EventKeyUp:
			registry.HandleKeyUp(ev.Context, settings, time.Now())
		case streamdeck.EventDidReceiveSettings:
			registry.UpdateSettings(ev.Context, settings)
		default:
			logger.WithField("event", ev.Event).Debug("Ignoring host event")
		}
	}
}

type Config struct {
	Port          int
	PluginUUID    string
	RegisterEvent string
	Info          string
	ConfigPath    string
	CacheSize     int
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.IntVar(&cfg.Port, "port", 0, "WebSocket port assigned by the host")
	flag.StringVar(&cfg.PluginUUID, "pluginUUID", "", "Plugin UUID assigned by the host")
	flag.StringVar(&cfg.RegisterEvent, "registerEvent", "", "Registration event name")
	flag.StringVar(&cfg.Info, "info", "", "Host environment info JSON")
	flag.StringVar(&cfg.ConfigPath, "config", "glucodeck.yaml", "Path to plugin config file")
	flag.IntVar(&cfg.CacheSize, "cache-size", 256, "Size of the rendered-image LRU cache")

	flag.Parse()

	return cfg
}

// Handle graceful shutdown: closing the connection unblocks the event loop,
// which tears down every instance before exit.
func handleShutdown(conn *streamdeck.Conn, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("Received signal, shutting down")
	conn.Close()
}
