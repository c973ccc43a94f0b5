// Package logging wraps the standard library slog package with bondctl
// defaults: structured JSON records to stderr, module/version context on
// every record, LOG_LEVEL environment configuration, and source location
// tracking for debug logs.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("bondctl", version)
//	    slog.Info("starting", "version", version)
//	}
//
// Supported levels (case-insensitive): DEBUG, INFO (default), WARN/WARNING,
// ERROR.
package logging
