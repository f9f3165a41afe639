package litejet

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CompletionMode says how the engine decides an in-flight command is done.
type CompletionMode int

const (
	// CompleteOnWrite resolves as soon as the line is on the wire. The
	// panel sends no reply for these families.
	CompleteOnWrite CompletionMode = iota

	// CompleteOnReply resolves when the next non-notification line
	// matching the family's reply shape arrives.
	CompleteOnReply

	// CompleteOnEvent resolves when a decoded notification event
	// satisfies the command's confirmation predicate. The line that
	// carried the event still reaches the store and subscribers.
	CompleteOnEvent
)

// ReplyShape constrains which lines may complete a CompleteOnReply
// command. A non-matching line while such a command is in flight is
// counted as an anomaly and the command keeps waiting.
type ReplyShape int

const (
	// ReplyText accepts any line (device names).
	ReplyText ReplyShape = iota

	// ReplyNumber accepts decimal digits only (load level).
	ReplyNumber

	// ReplyBitmap accepts an even-length run of hex digits (state dumps).
	ReplyBitmap
)

// CommandSpec describes one command family's wire behavior. The family
// is keyed by its letter code; encodings follow the MCP RS-232 dialect
// ("^" + letter + zero-padded arguments, CR terminated).
type CommandSpec struct {
	Mode    CompletionMode
	Shape   ReplyShape
	Timeout time.Duration
}

const defaultCommandTimeout = 5 * time.Second

// rampGrace is added on top of the quantized ramp duration when waiting
// for a set-level command's confirming event.
const rampGrace = 2 * time.Second

// DefaultCommandTable returns the command table for stock MCP firmware.
// Firmware dialects that differ (other reply shapes, other windows)
// supply their own table via Config.
func DefaultCommandTable() map[byte]CommandSpec {
	return map[byte]CommandSpec{
		'A': {Mode: CompleteOnEvent, Timeout: defaultCommandTimeout},                     // activate load
		'B': {Mode: CompleteOnEvent, Timeout: defaultCommandTimeout},                     // deactivate load
		'C': {Mode: CompleteOnWrite},                                                     // activate scene
		'D': {Mode: CompleteOnWrite},                                                     // deactivate scene
		'E': {Mode: CompleteOnEvent, Timeout: defaultCommandTimeout},                     // set load level and rate
		'F': {Mode: CompleteOnReply, Shape: ReplyNumber, Timeout: defaultCommandTimeout}, // get load level
		'G': {Mode: CompleteOnReply, Shape: ReplyBitmap, Timeout: defaultCommandTimeout}, // get all load states
		'H': {Mode: CompleteOnReply, Shape: ReplyBitmap, Timeout: defaultCommandTimeout}, // get all switch states
		'I': {Mode: CompleteOnWrite},                                                     // press switch
		'J': {Mode: CompleteOnWrite},                                                     // release switch
		'K': {Mode: CompleteOnReply, Shape: ReplyText, Timeout: defaultCommandTimeout},   // get switch name
		'L': {Mode: CompleteOnReply, Shape: ReplyText, Timeout: defaultCommandTimeout},   // get load name
		'M': {Mode: CompleteOnReply, Shape: ReplyText, Timeout: defaultCommandTimeout},   // get scene name
	}
}

func encodeCommand(code byte) string {
	return fmt.Sprintf("^%c", code)
}

func encodeIndexCommand(code byte, index int) string {
	return fmt.Sprintf("^%c%03d", code, index)
}

func encodeLevelCommand(index, level, rate int) string {
	return fmt.Sprintf("^E%03d%02d%02d", index, level, rate)
}

func matchesShape(shape ReplyShape, line string) bool {
	switch shape {
	case ReplyNumber:
		if line == "" {
			return false
		}
		for i := 0; i < len(line); i++ {
			if line[i] < '0' || line[i] > '9' {
				return false
			}
		}
		return true
	case ReplyBitmap:
		if line == "" || len(line)%2 != 0 {
			return false
		}
		for i := 0; i < len(line); i++ {
			if !isHexDigit(line[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func parseLevelReply(line string) (int, error) {
	level, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || !validLevel(level) {
		return 0, fmt.Errorf("%w: level reply %q", ErrInvalidReply, line)
	}
	return level, nil
}

// parseBitmapReply unpacks a hex state dump into per-device booleans.
// Each pair of hex digits is one byte; bit 0 of the first byte is the
// first device, little-endian within each byte.
func parseBitmapReply(line string, first, last int) (map[int]bool, error) {
	need := ((last - first) / 8 + 1) * 2
	if len(line) < need {
		return nil, fmt.Errorf("%w: state dump %q shorter than %d digits", ErrInvalidReply, line, need)
	}
	states := make(map[int]bool, last-first+1)
	device := first
	for i := 0; i+1 < len(line) && device <= last; i += 2 {
		b, err := strconv.ParseUint(line[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: state dump byte %q", ErrInvalidReply, line[i:i+2])
		}
		for bit := 0; bit < 8 && device <= last; bit++ {
			states[device] = b&(1<<bit) != 0
			device++
		}
	}
	return states, nil
}
