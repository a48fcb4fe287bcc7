package shard

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/corvus-ch/shamir"

	"github.com/sentryvault/sentryvault/internal/crypto"
)

const (
	// MaxShares is the share-count ceiling of the GF(256) sharing scheme.
	MaxShares = 255

	FilePermSecure = 0600
)

var (
	ErrInvalidShard     = errors.New("invalid shard set")
	ErrInvalidThreshold = errors.New("invalid sharding parameters")
)

// Shard is one fragment of an encrypted blob. The payload alone is
// indistinguishable from random data while fewer than Threshold distinct
// shards are available. Parent carries the SHA-256 of the original blob so
// shards from different vault generations cannot be silently mixed.
type Shard struct {
	Index       byte   `json:"index"`
	Threshold   uint8  `json:"threshold"`
	Total       uint8  `json:"total"`
	BlobVersion int    `json:"blob_version"`
	Parent      []byte `json:"parent"`
	Payload     []byte `json:"payload"`
}

// Split splits blob bytes into n shards with reconstruction threshold m.
// Requires 1 <= m <= n <= 255. Each call uses fresh random coefficients, so
// two splits of the same blob produce unlinkable shard sets.
//
// m == 1 degenerates to replication: every shard carries the full blob.
func Split(blob []byte, n, m, blobVersion int) ([]Shard, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty blob", ErrInvalidThreshold)
	}
	if m < 1 || n < m || n > MaxShares {
		return nil, fmt.Errorf("%w: need 1 <= m <= n <= %d, got n=%d m=%d", ErrInvalidThreshold, MaxShares, n, m)
	}

	digest := sha256.Sum256(blob)

	if m == 1 {
		shards := make([]Shard, 0, n)
		for i := 1; i <= n; i++ {
			payload := make([]byte, len(blob))
			copy(payload, blob)
			shards = append(shards, Shard{
				Index:       byte(i),
				Threshold:   1,
				Total:       uint8(n),
				BlobVersion: blobVersion,
				Parent:      digest[:],
				Payload:     payload,
			})
		}
		return shards, nil
	}

	parts, err := shamir.Split(blob, n, m)
	if err != nil {
		return nil, fmt.Errorf("failed to split blob: %w", err)
	}

	shards := make([]Shard, 0, n)
	for index, payload := range parts {
		shards = append(shards, Shard{
			Index:       index,
			Threshold:   uint8(m),
			Total:       uint8(n),
			BlobVersion: blobVersion,
			Parent:      digest[:],
			Payload:     payload,
		})
	}
	return shards, nil
}

// Reconstruct rebuilds the original blob from any set of shards with at
// least Threshold distinct indices. Duplicate indices, mixed shard sets and
// insufficient counts fail with ErrInvalidShard before any algebra runs.
// Authenticity of the rebuilt blob remains the cipher layer's job.
func Reconstruct(shards []Shard) ([]byte, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: no shards", ErrInvalidShard)
	}

	first := shards[0]
	seen := make(map[byte]bool, len(shards))
	for _, s := range shards {
		if s.Index == 0 {
			return nil, fmt.Errorf("%w: shard index 0", ErrInvalidShard)
		}
		if seen[s.Index] {
			return nil, fmt.Errorf("%w: duplicate shard index %d", ErrInvalidShard, s.Index)
		}
		seen[s.Index] = true

		if s.Threshold != first.Threshold || s.Total != first.Total {
			return nil, fmt.Errorf("%w: mismatched sharding parameters", ErrInvalidShard)
		}
		if !crypto.ConstantTimeCompare(s.Parent, first.Parent) {
			return nil, fmt.Errorf("%w: shards belong to different blobs", ErrInvalidShard)
		}
	}

	if len(seen) < int(first.Threshold) {
		return nil, fmt.Errorf("%w: need %d distinct shards, have %d", ErrInvalidShard, first.Threshold, len(seen))
	}

	var blob []byte
	if first.Threshold == 1 {
		blob = make([]byte, len(first.Payload))
		copy(blob, first.Payload)
	} else {
		parts := make(map[byte][]byte, len(shards))
		for _, s := range shards {
			parts[s.Index] = s.Payload
		}
		var err error
		blob, err = shamir.Combine(parts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidShard, err)
		}
	}

	// Shards from two splits of the same blob pass the metadata checks but
	// combine to garbage; the digest catches that before the caller tries
	// to decrypt.
	digest := sha256.Sum256(blob)
	if !crypto.ConstantTimeCompare(digest[:], first.Parent) {
		return nil, fmt.Errorf("%w: reconstructed blob does not match parent digest", ErrInvalidShard)
	}

	return blob, nil
}

// WriteFile stores a single shard as JSON
func WriteFile(path string, s Shard) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode shard: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermSecure); err != nil {
		return fmt.Errorf("failed to write shard file: %w", err)
	}
	return nil
}

// ReadFile loads a single shard from a JSON file
func ReadFile(path string) (Shard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Shard{}, fmt.Errorf("failed to read shard file: %w", err)
	}
	var s Shard
	if err := json.Unmarshal(data, &s); err != nil {
		return Shard{}, fmt.Errorf("%w: malformed shard file %s", ErrInvalidShard, path)
	}
	if s.Index == 0 || s.Threshold == 0 || s.Total == 0 || len(s.Payload) == 0 {
		return Shard{}, fmt.Errorf("%w: incomplete shard file %s", ErrInvalidShard, path)
	}
	return s, nil
}
