// Package shard splits an encrypted vault blob into N fragments with
// reconstruction threshold M using Shamir's Secret Sharing over GF(256).
//
// Any M distinct shards rebuild the blob byte-for-byte; fewer than M reveal
// nothing about it (information-theoretic guarantee of the scheme). The
// field arithmetic comes from a reviewed implementation rather than being
// reimplemented here, since subtle arithmetic bugs silently break that
// guarantee.
//
// Sharding provides secrecy, not authenticity. Tampered shards that survive
// the metadata and digest checks still produce a blob that fails
// authenticated decryption one layer up.
package shard
