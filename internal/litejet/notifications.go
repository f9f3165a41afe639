package litejet

import (
	"fmt"
	"strconv"
)

// EventKind identifies the class of an unsolicited panel notification.
type EventKind int

const (
	// EventLoadLevelChanged reports a load's new dimmer level (0 means
	// off). Index is the load number.
	EventLoadLevelChanged EventKind = iota

	// EventButtonPressed and EventButtonReleased report keypad edges.
	// Index is the switch number.
	EventButtonPressed
	EventButtonReleased

	// EventSceneActivated reports a scene firing. Index is the scene
	// number. Only some firmware revisions emit it.
	EventSceneActivated

	// EventConnectionLost is synthesized locally when the transport
	// dies; it never comes off the wire. Index and Level are zero.
	EventConnectionLost
)

func (k EventKind) String() string {
	switch k {
	case EventLoadLevelChanged:
		return "load_level_changed"
	case EventButtonPressed:
		return "button_pressed"
	case EventButtonReleased:
		return "button_released"
	case EventSceneActivated:
		return "scene_activated"
	case EventConnectionLost:
		return "connection_lost"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one decoded notification, delivered to subscribers in wire
// order after the state store has absorbed it.
type Event struct {
	Kind  EventKind
	Index int
	Level int
}

func (e Event) String() string {
	if e.Kind == EventLoadLevelChanged {
		return fmt.Sprintf("%s index=%d level=%d", e.Kind, e.Index, e.Level)
	}
	return fmt.Sprintf("%s index=%d", e.Kind, e.Index)
}

// decodeNotification classifies a line as an unsolicited notification.
// Every inbound line is offered here before reply matching, so a reply
// can never be mistaken for an event nor vice versa.
//
// Stock firmware emits two notification layouts:
//
//	Xnnn     press (P), release (R), load full-on (N), load off (F)
//	^Knnnll  load level change, ll in decimal percent
//
// Some revisions also emit Snnn on scene activation.
func decodeNotification(line string) (Event, bool) {
	switch len(line) {
	case 4:
		index, ok := parseIndex(line[1:])
		if !ok {
			return Event{}, false
		}
		switch line[0] {
		case 'P':
			return Event{Kind: EventButtonPressed, Index: index}, true
		case 'R':
			return Event{Kind: EventButtonReleased, Index: index}, true
		case 'N':
			return Event{Kind: EventLoadLevelChanged, Index: index, Level: DefaultOnLevel}, true
		case 'F':
			return Event{Kind: EventLoadLevelChanged, Index: index, Level: 0}, true
		case 'S':
			return Event{Kind: EventSceneActivated, Index: index}, true
		}
		return Event{}, false
	case 7:
		if line[0] != '^' || line[1] != 'K' {
			return Event{}, false
		}
		index, ok := parseIndex(line[2:5])
		if !ok {
			return Event{}, false
		}
		level, ok := parseIndex(line[5:7])
		if !ok {
			return Event{}, false
		}
		return Event{Kind: EventLoadLevelChanged, Index: index, Level: level}, true
	}
	return Event{}, false
}

func parseIndex(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
