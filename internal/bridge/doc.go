// Package bridge connects a LiteJet panel session to an MQTT broker.
//
// The bridge translates in both directions:
//
//   - Inbound: JSON commands on litejet/command/{kind}/{number} become
//     panel operations. Every command is acknowledged on the matching
//     litejet/ack/{kind}/{number} topic with accepted, failed, or
//     timeout status.
//
//   - Outbound: panel events (level changes, keypad edges, scene
//     firings) are published as retained state messages on
//     litejet/state/{kind}/{number}, so new subscribers see the board
//     state without waiting for traffic.
//
// On start the bridge walks the board once to seed the retained state
// topics, and optionally publishes the panel-programmed load and scene
// names on litejet/discovery. Health snapshots with engine counters go
// out on litejet/health at a configurable interval.
//
// Level changes are also written to the local history store and, when
// configured, to InfluxDB.
package bridge
