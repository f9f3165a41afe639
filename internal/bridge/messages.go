package bridge

import (
	"time"

	"github.com/openlitejet/litejet-core/internal/litejet"
)

// MQTT message types for the LiteJet bridge surface.
//
// Inbound commands arrive on litejet/command/{kind}/{number} and are
// acknowledged on litejet/ack/{kind}/{number}. State updates go out
// retained on litejet/state/{kind}/{number}.

// Device kinds used in topics and acks.
const (
	KindLoad   = "load"
	KindScene  = "scene"
	KindButton = "button"
)

// CommandMessage is a JSON command received from MQTT.
// Topic: litejet/command/{kind}/{number}
type CommandMessage struct {
	// ID uniquely identifies this command for correlation with acks.
	ID string `json:"id,omitempty"`

	// Command is the command name.
	// Loads: "on", "off", "set". Scenes: "on", "off".
	// Buttons: "press", "release".
	Command string `json:"command"`

	// Level is the target level for "set" (0-99).
	Level int `json:"level,omitempty"`

	// Seconds is the ramp duration for "set". Zero means the panel's
	// fastest rate.
	Seconds float64 `json:"seconds,omitempty"`

	// Source indicates where the command originated.
	Source string `json:"source,omitempty"`
}

// AckStatus represents the acknowledgment status of a command.
type AckStatus string

const (
	// AckAccepted indicates the command was executed on the panel.
	AckAccepted AckStatus = "accepted"

	// AckFailed indicates the command could not be executed.
	AckFailed AckStatus = "failed"

	// AckTimeout indicates the panel did not confirm within the timeout.
	AckTimeout AckStatus = "timeout"
)

// Error codes for command failures.
const (
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodePanelUnreachable  = "PANEL_UNREACHABLE"
	ErrCodeBridgeError       = "BRIDGE_ERROR"
)

// AckMessage acknowledges a command.
// Topic: litejet/ack/{kind}/{number}
type AckMessage struct {
	// CommandID is the ID from the original command (may be empty).
	CommandID string `json:"command_id,omitempty"`

	// Timestamp is when the acknowledgment was sent (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Kind is the device kind (load, scene, button).
	Kind string `json:"kind"`

	// Number is the device number on the panel.
	Number int `json:"number"`

	// Status indicates the acknowledgment status.
	Status AckStatus `json:"status"`

	// Error contains details if status is "failed" or "timeout".
	Error *AckError `json:"error,omitempty"`
}

// AckError contains error details for failed commands.
type AckError struct {
	// Code is the error code (e.g., "TIMEOUT", "INVALID_PARAMETERS").
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`
}

// LoadStateMessage reports a load's level.
// Topic: litejet/state/load/{number} (QoS 1, retained)
type LoadStateMessage struct {
	Load      int       `json:"load"`
	Level     int       `json:"level"`
	On        bool      `json:"on"`
	Timestamp time.Time `json:"timestamp"`
}

// ButtonStateMessage reports a keypad switch edge.
// Topic: litejet/state/button/{number} (QoS 1, not retained -
// press/release edges are momentary)
type ButtonStateMessage struct {
	Button    int       `json:"button"`
	Pressed   bool      `json:"pressed"`
	Timestamp time.Time `json:"timestamp"`
}

// SceneStateMessage reports a scene firing.
// Topic: litejet/state/scene/{number} (QoS 1, retained)
type SceneStateMessage struct {
	Scene     int       `json:"scene"`
	Active    bool      `json:"active"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is operating with issues.
	HealthDegraded HealthStatus = "degraded"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is a periodic health snapshot.
// Topic: litejet/health (QoS 1, retained)
type HealthMessage struct {
	// Bridge is the bridge identifier.
	Bridge string `json:"bridge"`

	// Timestamp is when the snapshot was generated (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the current operational status.
	Status HealthStatus `json:"status"`

	// Version is the daemon version.
	Version string `json:"version"`

	// UptimeSeconds is how long the bridge has been running.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// SerialConnected reports whether the panel session is alive.
	SerialConnected bool `json:"serial_connected"`

	// Statistics contains engine counters.
	Statistics *EngineStatistics `json:"statistics,omitempty"`

	// Reason explains the status (especially for degraded).
	Reason string `json:"reason,omitempty"`
}

// EngineStatistics carries the engine counters in health snapshots.
type EngineStatistics struct {
	LinesReceived    uint64 `json:"lines_received"`
	CommandsSent     uint64 `json:"commands_sent"`
	EventsDispatched uint64 `json:"events_dispatched"`
	Anomalies        uint64 `json:"anomalies"`
}

// DiscoveryMessage announces the panel's configured devices with their
// programmed names.
// Topic: litejet/discovery (QoS 1, retained)
type DiscoveryMessage struct {
	// Timestamp is when discovery was performed (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Loads maps load number to its panel-programmed name.
	Loads map[int]string `json:"loads,omitempty"`

	// Scenes maps scene number to its panel-programmed name.
	Scenes map[int]string `json:"scenes,omitempty"`
}

// NewAckMessage creates an acknowledgment for a command.
func NewAckMessage(cmd CommandMessage, kind string, number int, status AckStatus) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Number:    number,
		Status:    status,
	}
}

// NewAckError creates an acknowledgment with error details.
func NewAckError(cmd CommandMessage, kind string, number int, code, message string) AckMessage {
	status := AckFailed
	if code == ErrCodeTimeout {
		status = AckTimeout
	}
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Number:    number,
		Status:    status,
		Error: &AckError{
			Code:    code,
			Message: message,
		},
	}
}

// NewLoadStateMessage creates a load state message.
func NewLoadStateMessage(load, level int) LoadStateMessage {
	return LoadStateMessage{
		Load:      load,
		Level:     level,
		On:        level > 0,
		Timestamp: time.Now().UTC(),
	}
}

// NewButtonStateMessage creates a button state message.
func NewButtonStateMessage(button int, pressed bool) ButtonStateMessage {
	return ButtonStateMessage{
		Button:    button,
		Pressed:   pressed,
		Timestamp: time.Now().UTC(),
	}
}

// NewSceneStateMessage creates a scene state message.
func NewSceneStateMessage(scene int, active bool) SceneStateMessage {
	return SceneStateMessage{
		Scene:     scene,
		Active:    active,
		Timestamp: time.Now().UTC(),
	}
}

// NewHealthMessage creates a health snapshot from engine counters.
func NewHealthMessage(bridgeID, version string, status HealthStatus, stats litejet.Stats, startTime time.Time) HealthMessage {
	return HealthMessage{
		Bridge:          bridgeID,
		Timestamp:       time.Now().UTC(),
		Status:          status,
		Version:         version,
		UptimeSeconds:   int64(time.Since(startTime).Seconds()),
		SerialConnected: stats.Connected,
		Statistics: &EngineStatistics{
			LinesReceived:    stats.LinesReceived,
			CommandsSent:     stats.CommandsSent,
			EventsDispatched: stats.EventsDispatched,
			Anomalies:        stats.Anomalies,
		},
	}
}
