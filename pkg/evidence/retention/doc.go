// Package retention enforces verdict storage limits.
//
// The Pruner deletes records in two phases: age-based (older than the
// retention window) and count-based (oldest records beyond the cap).
// The Scheduler runs the pruner on a cron expression, typically
// off-peak ("0 3 * * *").
package retention
