// Package litejet implements the serial protocol engine for LiteJet
// lighting controllers.
//
// A LiteJet master control panel (MCP) is reached over a single RS-232
// line carrying CR-terminated ASCII. The same half-duplex stream
// interleaves replies to commands we send with unsolicited notification
// lines the panel pushes when loads change or buttons are pressed. There
// are no sequence numbers and no framing beyond the line terminator, so
// correctness depends on ordering discipline: one command in flight at a
// time, one reader consuming lines in order, and a classifier deciding
// line by line whether it belongs to the in-flight command or to the
// event stream.
//
// # Architecture
//
//	callers ──► command queue ──► transport ──► MCP
//	                 ▲                │
//	                 │ resolve        │ lines
//	          correlator ◄── classifier ◄── reader goroutine
//	                              │
//	                              ▼
//	                    state store + subscribers
//
// Exactly one goroutine reads from the transport and exactly one
// (the queue worker) writes to it. Each inbound line is first decoded
// as a notification; only a line that is not a notification can complete
// the in-flight command. Actuation commands (activate, deactivate, ramp)
// are instead confirmed by the state-change event they provoke, so the
// confirming line is still consumed exactly once, by the dispatcher.
//
// # Command Table
//
// Wire encodings, completion modes, and timeouts are firmware-defined
// and live in a table (see DefaultCommandTable) rather than in call
// sites. Firmware revisions that speak a different dialect supply a
// different table.
//
// # State
//
// The store is a best-effort cache, eventually consistent with the
// panel: it is updated from notifications and from successful query
// replies. Callers needing strong consistency must issue a query
// command rather than trust the cache.
//
// # Thread Safety
//
// All exported methods on Client and StateStore are safe for concurrent
// use from multiple goroutines.
package litejet
