// Package catalog provides a SQLite-backed record of interned texts.
//
// Symbols are process-local addresses and are never stored. The catalog keeps
// texts only:
//   - Snapshots: one row per Snapshot call, labelled, with the registry ID
//   - Texts: every distinct text ever snapshotted, with the snapshot that
//     first contained it
//   - Table sites: the texts of each registration table, in declaration order
//
// A later process can Warm a fresh registry from the catalog so known texts
// are interned up front under a single write lock.
//
// # Deterministic Query Results
//
// Snapshots order by id, texts by text COLLATE BINARY, table sites by
// position. Identical catalogs always read back identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package catalog
