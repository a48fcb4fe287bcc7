package vault

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/shard"
)

// FormatVersion is the current encrypted blob format version
const FormatVersion = 1

// KDFAlgo identifies the key derivation function in blob headers
const KDFAlgo = "argon2id"

var ErrMalformedBlob = errors.New("malformed vault blob")

// KDFHeader carries everything needed to re-derive the key from the
// passphrase. Salt and costs are not secret and travel with the blob.
type KDFHeader struct {
	Algo        string `json:"algo"`
	Memory      uint32 `json:"m"`
	Time        uint32 `json:"t"`
	Parallelism uint8  `json:"p"`
	Salt        []byte `json:"salt"`
}

// Params converts the header back into derivation parameters
func (h KDFHeader) Params() crypto.Params {
	return crypto.Params{
		Memory:      h.Memory,
		Time:        h.Time,
		Parallelism: h.Parallelism,
	}
}

// Blob is the self-describing encrypted representation of a vault:
// format version, derivation parameters, per-encryption nonce and the
// authenticated ciphertext (GCM tag included). Decryption never depends on
// state outside the blob itself.
type Blob struct {
	Version    int       `json:"version"`
	KDF        KDFHeader `json:"kdf"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
}

// Marshal encodes the blob for persistence or sharding
func (b *Blob) Marshal() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blob: %w", err)
	}
	return data, nil
}

// UnmarshalBlob decodes and validates a persisted blob
func UnmarshalBlob(data []byte) (*Blob, error) {
	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedBlob, b.Version)
	}
	if b.KDF.Algo != KDFAlgo {
		return nil, fmt.Errorf("%w: unknown KDF %q", ErrMalformedBlob, b.KDF.Algo)
	}
	if len(b.KDF.Salt) < crypto.MinSaltSize {
		return nil, fmt.Errorf("%w: missing salt", ErrMalformedBlob)
	}
	if len(b.Nonce) != crypto.NonceSize {
		return nil, fmt.Errorf("%w: bad nonce length %d", ErrMalformedBlob, len(b.Nonce))
	}
	if len(b.Ciphertext) < crypto.TagSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrMalformedBlob)
	}
	return &b, nil
}

// Digest returns the SHA-256 of the encoded blob, used to tie shards to
// their parent blob
func (b *Blob) Digest() ([]byte, error) {
	data, err := b.Marshal()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// encodeShard serializes a shard for the storage layer
func encodeShard(s shard.Shard) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shard: %w", err)
	}
	return data, nil
}

// decodeShard deserializes a stored shard
func decodeShard(data []byte) (shard.Shard, error) {
	var s shard.Shard
	if err := json.Unmarshal(data, &s); err != nil {
		return shard.Shard{}, fmt.Errorf("%w: stored shard", shard.ErrInvalidShard)
	}
	return s, nil
}

// sealed reassembles the nonce-prefixed ciphertext the cipher layer expects
func (b *Blob) sealed() []byte {
	out := make([]byte, 0, len(b.Nonce)+len(b.Ciphertext))
	out = append(out, b.Nonce...)
	out = append(out, b.Ciphertext...)
	return out
}

// newBlob wraps cipher output (nonce||ciphertext) into a blob header
func newBlob(params crypto.Params, salt, sealed []byte) *Blob {
	return &Blob{
		Version: FormatVersion,
		KDF: KDFHeader{
			Algo:        KDFAlgo,
			Memory:      params.Memory,
			Time:        params.Time,
			Parallelism: params.Parallelism,
			Salt:        salt,
		},
		Nonce:      sealed[:crypto.NonceSize],
		Ciphertext: sealed[crypto.NonceSize:],
	}
}
