package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/openlitejet/litejet-core/internal/infrastructure/mqtt"
	"github.com/openlitejet/litejet-core/internal/litejet"
)

// bridgeID identifies this bridge in health snapshots.
const bridgeID = "litejet"

// StatsWriter receives engine counters alongside each health snapshot.
// Satisfied by *influxdb.Client.
type StatsWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]interface{})
}

// HealthReporter publishes periodic health snapshots to MQTT.
type HealthReporter struct {
	version   string
	startTime time.Time
	interval  time.Duration
	publisher Publisher
	engine    Engine
	stats     StatsWriter
	topics    mqtt.Topics
	logger    Logger

	// Shutdown coordination (stopOnce prevents double-close panics).
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	// Version is the daemon version reported in snapshots.
	Version string

	// Interval is how often to publish. Default: 30 seconds.
	Interval time.Duration

	// Publisher is the MQTT client for publishing snapshots.
	Publisher Publisher

	// Engine provides connection state and counters.
	Engine Engine

	// Stats is optional time-series output for the engine counters
	// carried in each snapshot.
	Stats StatsWriter

	// Logger is optional.
	Logger Logger
}

// NewHealthReporter creates a health reporter. Call Start to begin
// reporting.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}

	return &HealthReporter{
		version:   cfg.Version,
		startTime: time.Now(),
		interval:  interval,
		publisher: cfg.Publisher,
		engine:    cfg.Engine,
		stats:     cfg.Stats,
		logger:    cfg.Logger,
		done:      make(chan struct{}),
	}
}

// Start begins periodic health reporting. Call Stop to shut down.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.reportLoop(ctx)
}

// Stop gracefully stops health reporting. Publishes a final
// "stopping" status before returning. Safe to call multiple times.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		// Best-effort during shutdown, nothing we can do if it fails.
		//nolint:errcheck
		h.publishStatus(HealthStopping, "")
	})
}

// PublishStarting publishes a "starting" status during initialization.
func (h *HealthReporter) PublishStarting() error {
	return h.publishStatus(HealthStarting, "bridge starting")
}

// PublishNow publishes the current health status immediately. Useful
// after a significant event such as a lost panel connection.
func (h *HealthReporter) PublishNow() error {
	status, reason := h.determineStatus()
	return h.publishStatus(status, reason)
}

// reportLoop runs the periodic health reporting.
func (h *HealthReporter) reportLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	if err := h.PublishNow(); err != nil {
		h.logError("failed to publish initial health", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.logError("failed to publish health", err)
			}
		}
	}
}

// determineStatus evaluates the current bridge status.
func (h *HealthReporter) determineStatus() (HealthStatus, string) {
	if h.publisher == nil || !h.publisher.IsConnected() {
		return HealthDegraded, "MQTT disconnected"
	}

	if h.engine == nil || !h.engine.IsConnected() {
		return HealthDegraded, "panel disconnected"
	}

	return HealthHealthy, ""
}

// publishStatus publishes a health snapshot.
func (h *HealthReporter) publishStatus(status HealthStatus, reason string) error {
	if h.publisher == nil {
		return nil
	}

	var stats litejet.Stats
	if h.engine != nil {
		stats = h.engine.Stats()
	}

	msg := NewHealthMessage(bridgeID, h.version, status, stats, h.startTime)
	if reason != "" {
		msg.Reason = reason
	}

	if h.stats != nil {
		h.stats.WritePoint("engine_stats",
			map[string]string{"bridge": bridgeID},
			map[string]interface{}{
				"lines_received":    stats.LinesReceived,
				"commands_sent":     stats.CommandsSent,
				"events_dispatched": stats.EventsDispatched,
				"anomalies":         stats.Anomalies,
			})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return h.publisher.Publish(h.topics.Health(), payload, 1, true)
}

// logError logs an error if a logger is set.
func (h *HealthReporter) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, "error", err)
	}
}
