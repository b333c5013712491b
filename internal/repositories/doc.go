// Package repositories implements the SQLite credential store.
//
// The store is the single source of truth for the persistent-login subsystem;
// there is no in-memory caching layer. Two repositories cover the two
// relations:
//   - [CredentialRepository] : users(id, refresh_token) with idempotent upsert
//     and cascading delete of the user's remember-me tokens
//   - [TokenRepository] : tokens(token, owner_id) with atomic single-use
//     consumption
//
// All failures surface as wrapped [shared.ErrStore] or [shared.ErrNotFound]
// values; callers decide per call site whether a failure aborts the request.
// Atomicity lives in SQLite transaction semantics, not in process-local
// locks, so correctness holds across service instances sharing a database
// file.
package repositories
