package vault

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sentryvault/sentryvault/internal/crypto"
)

func testBlobValue(t *testing.T) *Blob {
	t.Helper()
	salt, err := crypto.NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	sealed, err := crypto.GenerateRandom(crypto.NonceSize + crypto.TagSize + 40)
	if err != nil {
		t.Fatalf("GenerateRandom failed: %v", err)
	}
	return newBlob(crypto.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1}, salt, sealed)
}

func TestBlobRoundTripExact(t *testing.T) {
	blob := testBlobValue(t)

	data, err := blob.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := UnmarshalBlob(data)
	if err != nil {
		t.Fatalf("UnmarshalBlob failed: %v", err)
	}

	data2, err := got.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("Blob encoding does not round-trip byte-for-byte")
	}
	if got.KDF.Algo != KDFAlgo || got.KDF.Memory != 8*1024 || got.KDF.Time != 1 {
		t.Errorf("KDF header mangled: %+v", got.KDF)
	}
}

func TestUnmarshalBlobRejectsMalformed(t *testing.T) {
	blob := testBlobValue(t)

	mutations := []struct {
		name   string
		mutate func(b *Blob)
	}{
		{"future version", func(b *Blob) { b.Version = 99 }},
		{"unknown kdf", func(b *Blob) { b.KDF.Algo = "md5" }},
		{"missing salt", func(b *Blob) { b.KDF.Salt = nil }},
		{"bad nonce length", func(b *Blob) { b.Nonce = b.Nonce[:4] }},
		{"truncated ciphertext", func(b *Blob) { b.Ciphertext = b.Ciphertext[:4] }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			bad := *blob
			tt.mutate(&bad)
			data, err := bad.Marshal()
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if _, err := UnmarshalBlob(data); !errors.Is(err, ErrMalformedBlob) {
				t.Errorf("Expected ErrMalformedBlob, got %v", err)
			}
		})
	}

	if _, err := UnmarshalBlob([]byte("not json")); !errors.Is(err, ErrMalformedBlob) {
		t.Errorf("Expected ErrMalformedBlob for garbage, got %v", err)
	}
}

func TestBlobDigestStable(t *testing.T) {
	blob := testBlobValue(t)

	d1, err := blob.Digest()
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	d2, err := blob.Digest()
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Error("Digest should be deterministic")
	}

	other := testBlobValue(t)
	d3, _ := other.Digest()
	if bytes.Equal(d1, d3) {
		t.Error("Different blobs should have different digests")
	}
}
