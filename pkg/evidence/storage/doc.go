// Package storage provides verdict storage backends.
//
// Two backends implement evidence.Storage:
//
//   - MemoryStorage keeps records in a slice; meant for tests and for
//     deployments that only want recent-history introspection.
//   - SQLiteStorage persists records to a single SQLite file with WAL
//     mode for concurrent readers.
package storage
