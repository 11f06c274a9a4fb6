// Package store provides SQLite-backed durable storage for user records.
//
// The store is the authority behind the HTTP API: it assigns record IDs,
// enforces ID uniqueness, and answers list, page and search queries.
//
// # Invariants
//
//   - Record IDs are assigned here (UUIDv7 by default) and never rewritten
//   - No two rows share an id (PRIMARY KEY on users.id)
//   - List results are ordered by insertion (seq ASC), so repeated reads of
//     an unchanged table return identical slices
//   - Missing rows surface as ErrNotFound, never as a zero Record
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
