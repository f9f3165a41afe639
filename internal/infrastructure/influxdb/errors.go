package influxdb

import "errors"

// Sentinel errors for InfluxDB operations, matched with errors.Is.
var (
	// ErrNotConnected indicates the client is not connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates the influxdb config section is disabled.
	// The daemon treats this as "run without telemetry", not a fault.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
