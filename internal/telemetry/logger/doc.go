// Package logger provides structured logging for gymadmin.
//
//   - logger.go: slog-backed Logger, runtime level control
//   - context.go: request ID propagation
//   - redact.go: bearer token and password redaction
//
// Logs go to stderr so that command output on stdout stays machine-readable.
package logger
