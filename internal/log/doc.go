// Package log provides slog loggers that redact credentials.
//
// The crawl service API key, the web form password (or its bcrypt hash) and
// HTTP authorization headers all pass through the same process. SecureHandler
// masks them before any handler writes a record, so logs can be shared.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, log.Level(verbose, slog.LevelWarn))
//	logger.Info("crawl started", "url", u, "api_key", key) // api_key=***REDACTED***
//	slog.SetDefault(logger)
package log
