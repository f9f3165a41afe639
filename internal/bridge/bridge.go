package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/openlitejet/litejet-core/internal/infrastructure/mqtt"
	"github.com/openlitejet/litejet-core/internal/litejet"
)

// Bridge operation constants.
const (
	// topicParts is the number of parts in a command topic
	// (litejet/command/{kind}/{number}).
	topicParts = 4

	// commandTimeout is the timeout for executing a panel command.
	// Ramped set commands stretch this internally to cover the ramp.
	commandTimeout = 30 * time.Second

	// interQueryDelay is the delay between serial queries during
	// startup sync and discovery, to keep the command queue free for
	// interactive traffic.
	interQueryDelay = 50 * time.Millisecond

	// pruneInterval is how often history retention is enforced.
	pruneInterval = time.Hour
)

// Engine is the panel session the bridge drives. Satisfied by
// *litejet.Client.
type Engine interface {
	ActivateLoad(ctx context.Context, load int) error
	DeactivateLoad(ctx context.Context, load int) error
	ActivateLoadAt(ctx context.Context, load, level int, seconds float64) error
	ActivateScene(ctx context.Context, scene int) error
	DeactivateScene(ctx context.Context, scene int) error
	PressButton(ctx context.Context, button int) error
	ReleaseButton(ctx context.Context, button int) error
	QueryLoadLevel(ctx context.Context, load int) (int, error)
	AllLoadStates(ctx context.Context) (map[int]bool, error)
	LoadName(ctx context.Context, load int) (string, error)
	SceneName(ctx context.Context, scene int) (string, error)
	Loads() []int
	Scenes() []int
	Subscribe(fn func(litejet.Event)) func()
	Stats() litejet.Stats
	IsConnected() bool
}

// Publisher is the MQTT surface the bridge uses. Satisfied by
// *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Recorder persists load level history. Satisfied by
// *history.SQLiteRepository. Optional - if nil, the bridge operates
// without local history.
type Recorder interface {
	RecordLevel(ctx context.Context, load, level int, source string) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Metrics receives time-series writes. Satisfied by *influxdb.Client.
// Optional - if nil, the bridge operates without telemetry.
type Metrics interface {
	WriteLoadLevel(load, level int)
	WriteButtonEvent(button int, pressed bool)
	WriteSceneActivation(scene int)
}

// Logger is the minimal structured logging surface the bridge needs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// Engine is the panel session. Required.
	Engine Engine

	// MQTT is the broker connection. Required.
	MQTT Publisher

	// History is optional load level persistence.
	History Recorder

	// Metrics is optional time-series telemetry.
	Metrics Metrics

	// Logger is optional structured logging.
	Logger Logger

	// Version is the daemon version reported in health snapshots.
	Version string

	// HealthInterval is how often health snapshots are published.
	// Default: 30 seconds.
	HealthInterval time.Duration

	// NamesOnStart preloads load and scene names from the panel and
	// publishes a discovery announcement after Start.
	NamesOnStart bool

	// Retention is how long history entries are kept. Zero disables
	// pruning.
	Retention time.Duration
}

// Bridge connects a LiteJet panel session to MQTT. It translates
// inbound JSON commands to panel operations, publishes panel events as
// retained state topics, and reports health on an interval.
//
// Thread Safety: all methods are safe for concurrent use.
type Bridge struct {
	engine  Engine
	mqtt    Publisher
	history Recorder
	metrics Metrics
	logger  Logger
	topics  mqtt.Topics
	health  *HealthReporter

	namesOnStart bool
	retention    time.Duration

	// Last published level per load, for change suppression. The panel
	// repeats level notifications on scene activation.
	lastLevels   map[int]int
	lastLevelsMu sync.Mutex

	// Shutdown coordination.
	done        chan struct{}
	wg          sync.WaitGroup
	stopOnce    sync.Once
	ctx         context.Context
	ctxCancel   context.CancelFunc
	unsubscribe func()
}

// New creates a bridge. Call Start to begin operation.
func New(opts Options) (*Bridge, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if opts.MQTT == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &Bridge{
		engine:       opts.Engine,
		mqtt:         opts.MQTT,
		history:      opts.History,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		namesOnStart: opts.NamesOnStart,
		retention:    opts.Retention,
		lastLevels:   make(map[int]int),
		done:         make(chan struct{}),
		ctx:          ctx,
		ctxCancel:    cancel,
	}

	healthCfg := HealthReporterConfig{
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTT,
		Engine:    opts.Engine,
		Logger:    opts.Logger,
	}
	// Metrics sinks that also take raw points get the engine counters
	// carried in each health snapshot.
	if sw, ok := opts.Metrics.(StatsWriter); ok {
		healthCfg.Stats = sw
	}
	b.health = NewHealthReporter(healthCfg)

	return b, nil
}

// Start begins bridge operation. It subscribes to command topics,
// attaches to the engine's event stream, publishes initial state for
// every load, and starts health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	commandTopic := b.topics.AllCommands()
	if err := b.mqtt.Subscribe(commandTopic, 1, b.handleMQTTMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	b.unsubscribe = b.engine.Subscribe(b.handleEvent)

	b.health.Start(ctx)

	// Populate retained state and discovery in the background; these
	// walk the panel over the serial line and must not block startup.
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.syncLoads(b.ctx)
		if b.namesOnStart {
			b.announceDevices(b.ctx)
		}
	}()

	if b.history != nil && b.retention > 0 {
		b.wg.Add(1)
		go b.pruneLoop()
	}

	b.logInfo("bridge started")
	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.ctxCancel()

		if b.unsubscribe != nil {
			b.unsubscribe()
		}
		if err := b.mqtt.Unsubscribe(b.topics.AllCommands()); err != nil {
			b.logError("failed to unsubscribe from commands", err)
		}

		// Stops the report loop and publishes a final "stopping" status.
		b.health.Stop()

		b.wg.Wait()
		b.logInfo("bridge stopped")
	})
}

// syncLoads publishes the current level of every load as retained
// state. The bitmap dump gives on/off for the whole board in one
// command; exact levels are then queried only for loads that are on.
func (b *Bridge) syncLoads(ctx context.Context) {
	states, err := b.engine.AllLoadStates(ctx)
	if err != nil {
		b.logError("initial load sync failed", err)
		return
	}

	for _, load := range b.engine.Loads() {
		level := 0
		if states[load] {
			level, err = b.engine.QueryLoadLevel(ctx, load)
			if err != nil {
				b.logError("level query failed", err, "load", load)
				continue
			}
		}

		b.publishLoadState(load, level)
		b.recordLevel(load, level, sourceQuery)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interQueryDelay):
		}
	}

	b.logInfo("initial load sync complete", "loads", len(b.engine.Loads()))
}

// announceDevices queries the panel-programmed names and publishes a
// retained discovery announcement.
func (b *Bridge) announceDevices(ctx context.Context) {
	msg := DiscoveryMessage{
		Timestamp: time.Now().UTC(),
		Loads:     make(map[int]string),
		Scenes:    make(map[int]string),
	}

	for _, load := range b.engine.Loads() {
		name, err := b.engine.LoadName(ctx, load)
		if err != nil {
			b.logError("load name query failed", err, "load", load)
			return
		}
		msg.Loads[load] = name

		select {
		case <-ctx.Done():
			return
		case <-time.After(interQueryDelay):
		}
	}

	for _, scene := range b.engine.Scenes() {
		name, err := b.engine.SceneName(ctx, scene)
		if err != nil {
			b.logError("scene name query failed", err, "scene", scene)
			return
		}
		msg.Scenes[scene] = name

		select {
		case <-ctx.Done():
			return
		case <-time.After(interQueryDelay):
		}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal discovery", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.Discovery(), payload, 1, true); err != nil {
		b.logError("failed to publish discovery", err)
		return
	}

	b.logInfo("published discovery",
		"loads", len(msg.Loads),
		"scenes", len(msg.Scenes))
}

// pruneLoop enforces history retention on an interval.
func (b *Bridge) pruneLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			deleted, err := b.history.Prune(b.ctx, b.retention)
			if err != nil {
				b.logError("history prune failed", err)
				continue
			}
			if deleted > 0 {
				b.logInfo("pruned history", "deleted", deleted)
			}
		}
	}
}

// handleMQTTMessage routes an inbound command to the panel.
func (b *Bridge) handleMQTTMessage(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	if len(parts) != topicParts || parts[1] != "command" {
		return fmt.Errorf("invalid command topic: %s", topic)
	}

	kind := parts[2]
	number, err := strconv.Atoi(parts[3])
	if err != nil {
		return fmt.Errorf("invalid device number in topic %s: %w", topic, err)
	}

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.publishAckError(CommandMessage{}, kind, number, ErrCodeInvalidParameters,
			fmt.Sprintf("malformed payload: %v", err))
		return fmt.Errorf("parse command: %w", err)
	}

	b.logInfo("received command",
		"kind", kind,
		"number", number,
		"command", cmd.Command)

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	switch kind {
	case KindLoad:
		err = b.executeLoadCommand(ctx, cmd, number)
	case KindScene:
		err = b.executeSceneCommand(ctx, cmd, number)
	case KindButton:
		err = b.executeButtonCommand(ctx, cmd, number)
	default:
		b.publishAckError(cmd, kind, number, ErrCodeInvalidCommand,
			fmt.Sprintf("unknown device kind: %s", kind))
		return fmt.Errorf("unknown device kind: %s", kind)
	}

	if err != nil {
		b.publishAckError(cmd, kind, number, errorCode(err), err.Error())
		return err
	}

	b.publishAck(cmd, kind, number, AckAccepted)
	return nil
}

// executeLoadCommand runs a load command on the panel.
func (b *Bridge) executeLoadCommand(ctx context.Context, cmd CommandMessage, load int) error {
	switch cmd.Command {
	case "on":
		return b.engine.ActivateLoad(ctx, load)
	case "off":
		return b.engine.DeactivateLoad(ctx, load)
	case "set":
		return b.engine.ActivateLoadAt(ctx, load, cmd.Level, cmd.Seconds)
	default:
		return fmt.Errorf("unknown load command: %s", cmd.Command)
	}
}

// executeSceneCommand runs a scene command on the panel.
func (b *Bridge) executeSceneCommand(ctx context.Context, cmd CommandMessage, scene int) error {
	switch cmd.Command {
	case "on":
		if err := b.engine.ActivateScene(ctx, scene); err != nil {
			return err
		}
		b.publishSceneState(scene, true)
		return nil
	case "off":
		if err := b.engine.DeactivateScene(ctx, scene); err != nil {
			return err
		}
		b.publishSceneState(scene, false)
		return nil
	default:
		return fmt.Errorf("unknown scene command: %s", cmd.Command)
	}
}

// executeButtonCommand runs a button command on the panel.
func (b *Bridge) executeButtonCommand(ctx context.Context, cmd CommandMessage, button int) error {
	switch cmd.Command {
	case "press":
		return b.engine.PressButton(ctx, button)
	case "release":
		return b.engine.ReleaseButton(ctx, button)
	default:
		return fmt.Errorf("unknown button command: %s", cmd.Command)
	}
}

// errorCode maps an engine error to an ack error code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, litejet.ErrTimeout):
		return ErrCodeTimeout
	case errors.Is(err, litejet.ErrInvalidArgument):
		return ErrCodeInvalidParameters
	case errors.Is(err, litejet.ErrDisconnected):
		return ErrCodePanelUnreachable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	default:
		return ErrCodeBridgeError
	}
}

// handleEvent publishes a panel event to MQTT.
func (b *Bridge) handleEvent(ev litejet.Event) {
	switch ev.Kind {
	case litejet.EventLoadLevelChanged:
		if b.levelUnchanged(ev.Index, ev.Level) {
			return
		}
		b.publishLoadState(ev.Index, ev.Level)
		b.recordLevel(ev.Index, ev.Level, sourceEvent)
		if b.metrics != nil {
			b.metrics.WriteLoadLevel(ev.Index, ev.Level)
		}

	case litejet.EventButtonPressed, litejet.EventButtonReleased:
		pressed := ev.Kind == litejet.EventButtonPressed
		b.publishButtonState(ev.Index, pressed)
		if b.metrics != nil {
			b.metrics.WriteButtonEvent(ev.Index, pressed)
		}

	case litejet.EventSceneActivated:
		b.publishSceneState(ev.Index, true)
		if b.metrics != nil {
			b.metrics.WriteSceneActivation(ev.Index)
		}

	case litejet.EventConnectionLost:
		b.logError("panel connection lost", nil)
		if err := b.health.PublishNow(); err != nil {
			b.logError("failed to publish health", err)
		}
	}
}

// levelUnchanged reports whether the level matches the last published
// value for the load, updating the cache when it differs.
func (b *Bridge) levelUnchanged(load, level int) bool {
	b.lastLevelsMu.Lock()
	defer b.lastLevelsMu.Unlock()

	if cached, ok := b.lastLevels[load]; ok && cached == level {
		return true
	}
	b.lastLevels[load] = level
	return false
}

// publishLoadState publishes a retained load state message.
func (b *Bridge) publishLoadState(load, level int) {
	b.lastLevelsMu.Lock()
	b.lastLevels[load] = level
	b.lastLevelsMu.Unlock()

	msg := NewLoadStateMessage(load, level)
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal load state", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.LoadState(load), payload, 1, true); err != nil {
		b.logError("failed to publish load state", err)
	}
}

// publishButtonState publishes a button edge. Not retained - edges are
// momentary.
func (b *Bridge) publishButtonState(button int, pressed bool) {
	msg := NewButtonStateMessage(button, pressed)
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal button state", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.ButtonState(button), payload, 1, false); err != nil {
		b.logError("failed to publish button state", err)
	}
}

// publishSceneState publishes a retained scene state message.
func (b *Bridge) publishSceneState(scene int, active bool) {
	msg := NewSceneStateMessage(scene, active)
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal scene state", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.SceneState(scene), payload, 1, true); err != nil {
		b.logError("failed to publish scene state", err)
	}
}

// publishAck publishes a command acknowledgment.
func (b *Bridge) publishAck(cmd CommandMessage, kind string, number int, status AckStatus) {
	ack := NewAckMessage(cmd, kind, number, status)

	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.Ack(kind, number), payload, 1, false); err != nil {
		b.logError("failed to publish ack", err)
	}
}

// publishAckError publishes a failed command acknowledgment.
func (b *Bridge) publishAckError(cmd CommandMessage, kind string, number int, code, message string) {
	ack := NewAckError(cmd, kind, number, code, message)

	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack error", err)
		return
	}
	if err := b.mqtt.Publish(b.topics.Ack(kind, number), payload, 1, false); err != nil {
		b.logError("failed to publish ack error", err)
	}

	b.logError("command failed",
		fmt.Errorf("code=%s message=%s", code, message))
}

// recordLevel persists a level change if history is configured.
func (b *Bridge) recordLevel(load, level int, source string) {
	if b.history == nil {
		return
	}
	if err := b.history.RecordLevel(b.ctx, load, level, source); err != nil {
		b.logError("failed to record history", err)
	}
}

// History source names matching the history package constants. Kept
// local so the bridge does not import history for two strings.
const (
	sourceEvent = "event"
	sourceQuery = "query"
)

// logInfo logs an info message if a logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if b.logger != nil {
		b.logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is set.
func (b *Bridge) logError(msg string, err error, keysAndValues ...any) {
	if b.logger != nil {
		args := append([]any{"error", err}, keysAndValues...)
		b.logger.Error(msg, args...)
	}
}
