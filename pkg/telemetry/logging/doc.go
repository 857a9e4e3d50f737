// Package logging provides structured logging for the Ganymede
// guardrail service, built on log/slog.
//
// The logger optionally redacts sensitive values before they are
// written: when redaction is enabled, every string attribute and the
// message itself pass through the same pattern table the guardrail
// masker uses, so a PII value that leaks into a log call never reaches
// the log stream.
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//
// Request-scoped fields travel through context; see WithRequestID and
// RequestID.
package logging
