package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLoadLevel records a load's dimmer level change.
//
// This is the primary telemetry stream: one point per level change,
// tagged by load number. The write is non-blocking; data is batched
// and sent asynchronously.
//
// Parameters:
//   - load: Load number on the board
//   - level: New dimmer level (0 = off)
//
// Example:
//
//	client.WriteLoadLevel(5, 80)
func (c *Client) WriteLoadLevel(load, level int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"load_level",
		map[string]string{
			"load": strconv.Itoa(load),
		},
		map[string]interface{}{
			"level": level,
			"on":    level > 0,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteButtonEvent records a keypad switch press or release.
//
// Parameters:
//   - button: Switch number on the board
//   - pressed: true for press, false for release
func (c *Client) WriteButtonEvent(button int, pressed bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"button_event",
		map[string]string{
			"button": strconv.Itoa(button),
		},
		map[string]interface{}{
			"pressed": pressed,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSceneActivation records a scene firing.
//
// Parameters:
//   - scene: Scene number on the board
func (c *Client) WriteSceneActivation(scene int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"scene_activation",
		map[string]string{
			"scene": strconv.Itoa(scene),
		},
		map[string]interface{}{
			"activated": true,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and
// fields. The health reporter uses it for the engine_stats measurement
// carrying the session counters.
//
//	client.WritePoint("engine_stats",
//	    map[string]string{"bridge": "litejet"},
//	    map[string]interface{}{"lines_received": 1042, "anomalies": 3})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
