package crypto

import (
	"bytes"
	"errors"
	"testing"
)

// testParams keeps derivation fast in tests. Validity bounds still apply.
func testParams() Params {
	return Params{Memory: 8 * 1024, Time: 1, Parallelism: 1}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("Failed to generate salt: %v", err)
	}

	key1, err := DeriveKey([]byte("correct horse"), salt, testParams())
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	key2, err := DeriveKey([]byte("correct horse"), salt, testParams())
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if !bytes.Equal(key1, key2) {
		t.Error("Same passphrase, salt and params should yield identical keys")
	}
	if len(key1) != KeySize {
		t.Errorf("Expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKeyDifferentSalt(t *testing.T) {
	salt1, _ := NewSalt()
	salt2, _ := NewSalt()

	key1, err := DeriveKey([]byte("passphrase"), salt1, testParams())
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	key2, err := DeriveKey([]byte("passphrase"), salt2, testParams())
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if bytes.Equal(key1, key2) {
		t.Error("Different salts should yield different keys")
	}
}

func TestDeriveKeyInvalidParams(t *testing.T) {
	salt, _ := NewSalt()

	tests := []struct {
		name       string
		passphrase []byte
		salt       []byte
		params     Params
	}{
		{"empty passphrase", nil, salt, testParams()},
		{"short salt", []byte("pw"), []byte("tooshort"), testParams()},
		{"zero time cost", []byte("pw"), salt, Params{Memory: 8 * 1024, Time: 0, Parallelism: 1}},
		{"low memory cost", []byte("pw"), salt, Params{Memory: 1024, Time: 1, Parallelism: 1}},
		{"zero parallelism", []byte("pw"), salt, Params{Memory: 8 * 1024, Time: 1, Parallelism: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveKey(tt.passphrase, tt.salt, tt.params)
			if !errors.Is(err, ErrDerivation) {
				t.Errorf("Expected ErrDerivation, got %v", err)
			}
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateRandom(KeySize)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	enc := NewEncryptor(key)
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}

	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Round trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptUniqueNonce(t *testing.T) {
	key, _ := GenerateRandom(KeySize)
	enc := NewEncryptor(key)
	plaintext := []byte("same plaintext")

	ct1, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	ct2, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if bytes.Equal(ct1[:NonceSize], ct2[:NonceSize]) {
		t.Error("Two encryptions should use different nonces")
	}
	if bytes.Equal(ct1, ct2) {
		t.Error("Two encryptions of the same plaintext should differ")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	key, _ := GenerateRandom(KeySize)
	enc := NewEncryptor(key)

	ciphertext, err := enc.Encrypt([]byte("sensitive payload"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip a single bit at every position: nonce, body and tag must all be
	// covered by authentication.
	for i := range ciphertext {
		tampered := make([]byte, len(ciphertext))
		copy(tampered, ciphertext)
		tampered[i] ^= 0x01

		if _, err := enc.Decrypt(tampered); !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("Bit flip at byte %d: expected ErrAuthFailed, got %v", i, err)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	key1, _ := GenerateRandom(KeySize)
	key2, _ := GenerateRandom(KeySize)

	ciphertext, err := NewEncryptor(key1).Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := NewEncryptor(key2).Decrypt(ciphertext); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed with wrong key, got %v", err)
	}
}

func TestDecryptTooShort(t *testing.T) {
	key, _ := GenerateRandom(KeySize)
	enc := NewEncryptor(key)

	if _, err := enc.Decrypt([]byte("short")); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Expected ErrInvalidCiphertext, got %v", err)
	}
}

func TestClearBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	ClearBytes(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("Byte %d not cleared: %d", i, v)
		}
	}
}

func TestEncryptorDestroy(t *testing.T) {
	key, _ := GenerateRandom(KeySize)
	enc := NewEncryptor(key)
	enc.Destroy()

	for i, v := range key {
		if v != 0 {
			t.Fatalf("Key byte %d not cleared after Destroy: %d", i, v)
		}
	}
}
