package mqtt

import "fmt"

// Topic prefixes for the LiteJet MQTT surface.
//
// Device topics use the flat scheme: litejet/{category}/{kind}/{number}
// where kind is load, scene, or button.
const (
	// TopicPrefix is the base for all LiteJet topics.
	TopicPrefix = "litejet"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "litejet/system"
)

// Topics provides builders for LiteJet MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.LoadState(5)
//	// Returns: "litejet/state/load/5"
type Topics struct{}

// =============================================================================
// Device Topics
// =============================================================================

// LoadState returns the topic for a load's level updates.
//
// Example: litejet/state/load/5
func (Topics) LoadState(load int) string {
	return fmt.Sprintf("%s/state/load/%d", TopicPrefix, load)
}

// ButtonState returns the topic for a keypad switch's press/release updates.
//
// Example: litejet/state/button/12
func (Topics) ButtonState(button int) string {
	return fmt.Sprintf("%s/state/button/%d", TopicPrefix, button)
}

// SceneState returns the topic for scene activation updates.
//
// Example: litejet/state/scene/3
func (Topics) SceneState(scene int) string {
	return fmt.Sprintf("%s/state/scene/%d", TopicPrefix, scene)
}

// LoadCommand returns the topic the bridge listens on for load commands.
//
// Example: litejet/command/load/5
func (Topics) LoadCommand(load int) string {
	return fmt.Sprintf("%s/command/load/%d", TopicPrefix, load)
}

// SceneCommand returns the topic the bridge listens on for scene commands.
//
// Example: litejet/command/scene/3
func (Topics) SceneCommand(scene int) string {
	return fmt.Sprintf("%s/command/scene/%d", TopicPrefix, scene)
}

// ButtonCommand returns the topic the bridge listens on for button commands.
//
// Example: litejet/command/button/12
func (Topics) ButtonCommand(button int) string {
	return fmt.Sprintf("%s/command/button/%d", TopicPrefix, button)
}

// Ack returns the topic for command acknowledgements.
//
// Example: litejet/ack/load/5
func (Topics) Ack(kind string, number int) string {
	return fmt.Sprintf("%s/ack/%s/%d", TopicPrefix, kind, number)
}

// Health returns the topic for bridge health snapshots.
//
// Example: litejet/health
func (Topics) Health() string {
	return fmt.Sprintf("%s/health", TopicPrefix)
}

// Discovery returns the topic the bridge announces devices on.
//
// Example: litejet/discovery
func (Topics) Discovery() string {
	return fmt.Sprintf("%s/discovery", TopicPrefix)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the daemon status topic, also used for the LWT.
//
// Example: litejet/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllCommands returns a pattern matching every inbound command topic.
//
// Pattern: litejet/command/+/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+/+", TopicPrefix)
}

// AllStates returns a pattern matching every device state topic.
//
// Pattern: litejet/state/+/+
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/state/+/+", TopicPrefix)
}

// AllTopics returns a pattern matching all LiteJet topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: litejet/#
func (Topics) AllTopics() string {
	return "litejet/#"
}
