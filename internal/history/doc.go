// Package history persists load level changes to SQLite.
//
// The bridge records every observed level change here so that recent
// activity can be inspected locally even when InfluxDB is disabled or
// unreachable. Entries are pruned on a retention schedule configured
// in the database section of the config file.
package history
