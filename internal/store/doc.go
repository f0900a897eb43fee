// Package store persists the two user settings (RPC endpoint and fee payer
// secret) in a small SQLite database and guards reclaim runs with a file lock.
//
// Nothing else is persisted: loaded keys, scan results and summaries live only
// for the duration of a run.
package store
