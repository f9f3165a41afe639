package litejet

import "errors"

var (
	// ErrConnectionFailed indicates the engine could not establish a
	// session with the panel, either because the serial device could
	// not be opened or the startup handshake got no answer.
	ErrConnectionFailed = errors.New("litejet: connection failed")

	// ErrDisconnected indicates the transport is gone. The condition is
	// fatal for the Client instance; callers must open a new one.
	ErrDisconnected = errors.New("litejet: disconnected")

	// ErrTimeout indicates the in-flight command's reply or confirming
	// event did not arrive within the command family's window.
	ErrTimeout = errors.New("litejet: command timed out")

	// ErrInvalidArgument indicates a device number, level, or rate
	// outside the board's valid range. Nothing was written to the wire.
	ErrInvalidArgument = errors.New("litejet: invalid argument")

	// ErrInvalidReply indicates the panel answered the in-flight
	// command with a line that does not parse as the expected reply.
	ErrInvalidReply = errors.New("litejet: invalid reply")
)
