// Package ttlstore provides a keyed store with per-key time-to-live semantics.
//
// Every Put re-arms the key's TTL window; a key whose window has elapsed is
// treated as absent. Three backends are provided: an in-memory map (default),
// a SQLite file for single-node persistence, and Redis for deployments that
// already run one. Callers that need enumeration maintain their own
// list-valued index keys; the store itself has no scan API.
package ttlstore
