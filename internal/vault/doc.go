// Package vault holds the credential entry model and the store that turns
// it into persisted, encrypted state.
//
// A Vault lives in memory only. Every save serializes the full entry set,
// derives a key under a fresh salt, encrypts, optionally shards, and
// replaces the old persisted state in a single transaction. Every unlock
// failure collapses into one uniform error so the error itself cannot be
// used as an oracle.
package vault
