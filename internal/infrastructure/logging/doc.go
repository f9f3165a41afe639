// Package logging provides the daemon's structured logger, a thin
// wrapper over log/slog.
//
// Every record carries service=litejet and the build version. The
// engine, bridge, and mqtt packages each declare their own minimal
// Logger interface; logging.Logger satisfies all of them, and child
// loggers tag the component:
//
//	log := logging.New(cfg.Logging, version)
//	engineLog := log.With("component", "engine")
//	engineLog.Info("panel connected", "device", "/dev/ttyUSB0")
//
// Configured from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// JSON is the production format; text is for watching a terminal
// during development. Never log broker credentials or API tokens.
package logging
