// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	_ "board-bridge/docs"
	"board-bridge/internal/bridge"
	"board-bridge/internal/config"
	serialscan "board-bridge/internal/discovery/serial"
	"board-bridge/internal/handler"
	"board-bridge/internal/publisher/mqtt"
	"board-bridge/internal/routes"
	"board-bridge/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	manager   *bridge.Manager
	scanner   *serialscan.Scanner
	eventBus  *handler.EventBus
	publisher *mqtt.Publisher

	cancelBus context.CancelFunc
	busDone   chan struct{}
}

// @title Board Bridge API
// @version 1.0.0
// @description Serial bridge between a microcontroller board and HTTP/WebSocket clients

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8084
// @BasePath /
func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("BOARD_BRIDGE_CONFIG"), "path to config file")
	pflag.Parse()

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, cfg.App.Name)
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	app.initializeBridge()

	if err := app.initializePublisher(); err != nil {
		return nil, fmt.Errorf("failed to initialize mqtt publisher: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeBridge creates the serial manager, port scanner and event bus
func (app *Application) initializeBridge() {
	app.manager = bridge.NewManager(
		bridge.NewSerialOpener(app.config.Serial.ReadTimeout),
		bridge.Options{
			PollInterval:  app.config.Serial.PollInterval,
			IndicatorHold: app.config.Bridge.IndicatorHold,
			EventBuffer:   app.config.Serial.EventBuffer,
			Logger:        app.logger,
		},
	)
	app.scanner = serialscan.NewScanner(app.logger)
	app.eventBus = handler.NewEventBus(app.logger)

	app.logger.Info("Bridge initialized",
		zap.Duration("poll_interval", app.config.Serial.PollInterval),
		zap.Duration("indicator_hold", app.config.Bridge.IndicatorHold),
		zap.String("default_mode", app.config.Bridge.DefaultMode),
	)
}

// initializePublisher connects the MQTT publisher when enabled. A broker
// that cannot be reached at startup is logged; the client keeps retrying.
func (app *Application) initializePublisher() error {
	if !app.config.MQTT.Enabled {
		return nil
	}

	publisher, err := mqtt.New(mqtt.Options{
		BrokerURL:   app.config.MQTT.BrokerURL,
		TopicPrefix: app.config.MQTT.TopicPrefix,
		ClientID:    app.config.MQTT.ClientID,
		QoS:         app.config.MQTT.QoS,
		Timeout:     app.config.MQTT.Timeout,
	}, app.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.config.MQTT.Timeout)
	defer cancel()
	if err := publisher.Connect(ctx); err != nil {
		app.logger.Warn("MQTT broker unavailable", zap.Error(err))
	}

	app.publisher = publisher
	app.eventBus.AddSink(publisher)
	return nil
}

func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.manager,
		app.scanner,
		app.eventBus,
		app.publisherStats(),
	)

	router, err := routerManager.SetupRouter()
	if err != nil {
		return err
	}

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized", zap.String("address", app.config.GetServerAddr()))
	return nil
}

// publisherStats keeps a disabled publisher out of the health check
func (app *Application) publisherStats() handler.PublisherStats {
	if app.publisher == nil {
		return nil
	}
	return app.publisher
}

// startBackgroundServices starts the event bus and the optional auto-connect
func (app *Application) startBackgroundServices() {
	ctx, cancel := context.WithCancel(context.Background())
	app.cancelBus = cancel
	app.busDone = make(chan struct{})

	go app.watchConnectionLoss(ctx, app.eventBus.Subscribe(bridge.EventConnectionLost))

	go func() {
		defer close(app.busDone)
		app.eventBus.Run(ctx, app.manager.Events())
	}()

	if app.config.Serial.AutoConnect {
		openCtx, openCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer openCancel()
		if err := app.manager.Open(openCtx, app.config.Serial.Port, app.config.Serial.BaudRate); err != nil {
			app.logger.Warn("Auto-connect failed",
				zap.String("port", app.config.Serial.Port),
				zap.Error(err),
			)
		}
	}

	app.logger.Info("Background services started")
}

// watchConnectionLoss logs every lost serial link through the bridge logger
func (app *Application) watchConnectionLoss(ctx context.Context, lost <-chan bridge.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-lost:
			if event.Conn == nil {
				continue
			}
			utils.NewBridgeLogger(app.logger, event.Conn.Port).
				LogConnection("lost", event.Conn.BaudRate, errors.New(event.Conn.Error))
		}
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, app.config.App.Name)
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// The port goes first so the final CONNECTION_CLOSED still reaches sinks
	if err := app.manager.Close(); err != nil {
		app.logger.Error("Serial port close error", zap.Error(err))
	}

	if app.cancelBus != nil {
		app.cancelBus()
		<-app.busDone
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("MQTT publisher close error", zap.Error(err))
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start runs the HTTP server until a shutdown signal arrives
func (app *Application) Start() error {
	app.startBackgroundServices()

	go func() {
		app.logger.Info("Starting HTTP server", zap.String("address", app.server.Addr))

		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()
	return nil
}
