package litejet

import "time"

// Board limits for a single LiteJet 48 MCP. Device numbers are
// 1-based on the wire.
const (
	FirstLoad   = 1
	LastLoad    = 40
	FirstScene  = 1
	LastScene   = 41
	FirstButton = 1
	LastButton  = 96
	FirstSwitch = 1
	LastSwitch  = 138

	// MinLevel and MaxLevel bound the dimmer range. The wire field is
	// two decimal digits, so full brightness is 99, not 100.
	MinLevel = 0
	MaxLevel = 99

	// DefaultOnLevel is the level assumed for a load the panel reports
	// as simply "on" without an accompanying level.
	DefaultOnLevel = 99
)

// Load output hardware classes. Relays, fan controllers, and low-voltage
// relay boards each have their own fade-rate table.
const (
	firstRelayLoad = 1
	lastRelayLoad  = 24
	firstFanLoad   = 25
	lastFanLoad    = 28
	firstLVRBLoad  = 29
	lastLVRBLoad   = 40
)

// Fade-rate tables, indexed by wire rate code. The value is the ramp
// duration in seconds that the code selects on that hardware class.
var (
	relayRateSeconds = []float64{
		0, 1, 2, 3, 4, 5, 6, 7, 9, 11, 13, 16, 19, 23, 28, 34,
		41, 49, 60, 75, 90, 110, 140, 175, 210, 250, 300, 380, 450, 550, 675, 800,
	}

	lvrbRateSeconds = []float64{
		0, 0.25, 0.50, 0.75, 1.00, 1.50, 2.00, 2.50, 3, 4, 5, 6, 7, 8, 10, 12,
		14, 16, 18, 20, 25, 30, 45, 60, 90, 120, 300, 600, 900, 1200, 1800, 2700,
	}

	// Fan controllers do not ramp.
	fanRateSeconds = []float64{0}
)

func rateTableForLoad(load int) []float64 {
	switch {
	case load >= firstFanLoad && load <= lastFanLoad:
		return fanRateSeconds
	case load >= firstLVRBLoad && load <= lastLVRBLoad:
		return lvrbRateSeconds
	default:
		return relayRateSeconds
	}
}

// secondsToRate maps a requested ramp duration to the nearest supported
// rate code at or above the request. Durations beyond the table's last
// entry clamp to the slowest rate.
func secondsToRate(seconds float64, table []float64) int {
	for code, s := range table {
		if seconds <= s {
			return code
		}
	}
	return len(table) - 1
}

// rampDuration returns the actual ramp time the given load will take for
// the requested duration, after quantization to its hardware's table.
func rampDuration(load int, seconds float64) time.Duration {
	table := rateTableForLoad(load)
	code := secondsToRate(seconds, table)
	return time.Duration(table[code] * float64(time.Second))
}

func validLoad(n int) bool   { return n >= FirstLoad && n <= LastLoad }
func validScene(n int) bool  { return n >= FirstScene && n <= LastScene }
func validButton(n int) bool { return n >= FirstButton && n <= LastButton }
func validLevel(n int) bool  { return n >= MinLevel && n <= MaxLevel }
