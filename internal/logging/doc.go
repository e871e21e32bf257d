// Package logging provides structured logging for tourguide.
//
// This package wraps a zap logger with convenience functions for the log
// lines the tour engine, the browser host and the WebSocket bridge emit.
//
// # Log Levels
//
//   - Debug: Placement results, viewport snapshots, resolver attempts
//   - Info: Tour lifecycle (activated, step changed, completed, skipped), connections
//   - Warn: Non-fatal degradation (target not found, store unavailable)
//   - Error: Startup failures, browser disconnects
//
// # Structured Logging
//
//	logging.Info("Tour activated",
//	    zap.String("tour", "kindness-intro"),
//	    zap.Int("steps", 7),
//	)
//
// # Specialized Logging
//
//	logging.LogStep(storageKey, index, stepID)
//	logging.LogResolve(stepID, attempts, found)
//	logging.LogPlacement(stepID, layout, side, top, left)
//	logging.LogIntent(source, intent)
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is passed, TOURGUIDE_LOG_LEVEL is consulted; when that is
// unset too, logging is silent so the terminal preview stays clean.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
