// Package store provides the SQLite-backed relational access bridge.
//
// A Store owns one database handle and runs caller-supplied SQL with
// positional parameters taken from the untyped value model:
//   - Execute: mutating statements, returns rows affected
//   - Query: read statements, returns every row materialized as value.Row
//
// Store failures are apperr.CodeDatabase errors carrying the driver's message
// verbatim. A failed statement leaves the handle usable.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Store does no locking of its own. The process state container in
// internal/app serializes access to the one live Store.
package store
