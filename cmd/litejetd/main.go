// LiteJet Core - serial panel daemon
//
// litejetd owns the serial connection to a LiteJet lighting panel and
// exposes it over MQTT: inbound JSON commands become panel operations,
// panel events become retained state topics, and load level history is
// kept in SQLite with optional InfluxDB telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/openlitejet/litejet-core/migrations"

	"github.com/openlitejet/litejet-core/internal/bridge"
	"github.com/openlitejet/litejet-core/internal/history"
	"github.com/openlitejet/litejet-core/internal/infrastructure/config"
	"github.com/openlitejet/litejet-core/internal/infrastructure/database"
	"github.com/openlitejet/litejet-core/internal/infrastructure/influxdb"
	"github.com/openlitejet/litejet-core/internal/infrastructure/logging"
	"github.com/openlitejet/litejet-core/internal/infrastructure/mqtt"
	"github.com/openlitejet/litejet-core/internal/litejet"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting LiteJet Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	historyRepo := history.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	mqttClient.SetLogger(log.With("component", "mqtt"))
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Open the panel session
	engine, err := openEngine(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening panel session: %w", err)
	}
	defer func() {
		log.Info("closing panel session")
		if closeErr := engine.Close(); closeErr != nil {
			log.Error("error closing panel session", "error", closeErr)
		}
	}()

	// Start the MQTT bridge (if enabled)
	if cfg.Bridge.Enabled {
		mqttBridge, bridgeErr := startBridge(ctx, cfg, engine, mqttClient, historyRepo, influxClient, log)
		if bridgeErr != nil {
			return fmt.Errorf("starting bridge: %w", bridgeErr)
		}
		defer func() {
			log.Info("stopping bridge")
			mqttBridge.Stop()
		}()
	} else {
		log.Info("bridge disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Bridge
	// 2. Panel session
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("LiteJet Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LITEJET_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LITEJET_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openEngine opens the serial port and starts a panel session.
func openEngine(ctx context.Context, cfg *config.Config, log *logging.Logger) (*litejet.Client, error) {
	transport, err := litejet.OpenSerial(litejet.SerialConfig{
		Device:   cfg.Serial.Device,
		BaudRate: cfg.Serial.BaudRate,
	})
	if err != nil {
		return nil, fmt.Errorf("opening serial port: %w", err)
	}
	log.Info("serial port opened",
		"device", cfg.Serial.Device,
		"baud_rate", cfg.Serial.BaudRate,
	)

	// Stamp the configured reply window over the default command table.
	// Write-complete commands carry no timeout and are left alone.
	table := litejet.DefaultCommandTable()
	if d := cfg.GetCommandTimeout(); d > 0 {
		for family, spec := range table {
			if spec.Timeout > 0 {
				spec.Timeout = d
				table[family] = spec
			}
		}
	}

	engine, err := litejet.Open(ctx, litejet.Config{
		Transport:     transport,
		Table:         table,
		QueueSize:     cfg.Engine.QueueSize,
		SkipHandshake: cfg.Engine.SkipHandshake,
		Logger:        log,
	})
	if err != nil {
		return nil, fmt.Errorf("opening panel session: %w", err)
	}
	log.Info("panel session open")

	return engine, nil
}

// startBridge creates and starts the MQTT bridge.
func startBridge(ctx context.Context, cfg *config.Config, engine *litejet.Client, mqttClient *mqtt.Client, historyRepo *history.SQLiteRepository, influxClient *influxdb.Client, log *logging.Logger) (*bridge.Bridge, error) {
	opts := bridge.Options{
		Engine:         engine,
		MQTT:           mqttClient,
		History:        historyRepo,
		Logger:         log,
		Version:        version,
		HealthInterval: cfg.GetHealthInterval(),
		NamesOnStart:   cfg.Bridge.NamesOnStart,
		Retention:      cfg.GetRetention(),
	}

	// Assign through the interface only when the client exists; a typed
	// nil would defeat the bridge's nil checks.
	if influxClient != nil {
		opts.Metrics = influxClient
	}

	b, err := bridge.New(opts)
	if err != nil {
		return nil, fmt.Errorf("creating bridge: %w", err)
	}

	if err := b.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting bridge: %w", err)
	}
	log.Info("bridge started")

	return b, nil
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Panel health is verified during Open - the session handshake
	// fails if the panel does not answer.

	return nil
}
