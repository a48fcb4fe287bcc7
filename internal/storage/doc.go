// Package storage persists vault state in a single BBolt database file.
//
// Layout:
//   - config bucket: format version, vault ID, timestamps (unencrypted)
//   - vault bucket: the current encrypted blob
//   - shards bucket: shard set from the last sharded save
//
// Blob and shard replacement happens inside one write transaction, so a
// reader never observes a torn state and a failed save leaves the previous
// state intact. Only opaque ciphertext ever reaches this package.
package storage
