package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 32 // Salt size in bytes
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size

	// Lower bounds for derivation parameters. Anything below is rejected
	// rather than silently accepted with weaker settings.
	MinSaltSize  = 16
	MinMemoryKiB = 8 * 1024
)

// Default Argon2id costs. Tuned so a single derivation takes hundreds of
// milliseconds on commodity hardware.
const (
	DefaultMemory      = 512 * 1024 // KiB
	DefaultTime        = 3
	DefaultParallelism = 8
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrDerivation        = errors.New("invalid derivation parameters")
)

// Params holds Argon2id cost parameters. They are stored unencrypted next to
// the salt so a blob can always be decrypted without external configuration.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
}

// DefaultParams returns the default Argon2id costs
func DefaultParams() Params {
	return Params{
		Memory:      DefaultMemory,
		Time:        DefaultTime,
		Parallelism: DefaultParallelism,
	}
}

// Validate checks that parameters are within the accepted safe range
func (p Params) Validate() error {
	if p.Time == 0 {
		return fmt.Errorf("%w: time cost must be at least 1", ErrDerivation)
	}
	if p.Memory < MinMemoryKiB {
		return fmt.Errorf("%w: memory cost below %d KiB", ErrDerivation, MinMemoryKiB)
	}
	if p.Parallelism == 0 {
		return fmt.Errorf("%w: parallelism must be at least 1", ErrDerivation)
	}
	return nil
}

// NewSalt generates a random salt for a new vault
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an encryption key from a passphrase using Argon2id.
// Identical (passphrase, salt, params) always yield identical key bytes.
// The caller is responsible for calling ClearBytes on the returned key.
func DeriveKey(passphrase, salt []byte, p Params) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", ErrDerivation)
	}
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: salt shorter than %d bytes", ErrDerivation, MinSaltSize)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	key := argon2.IDKey(passphrase, salt, p.Time, p.Memory, p.Parallelism, KeySize)
	return key, nil
}

// Encryptor provides authenticated encryption
type Encryptor struct {
	key []byte
}

// NewEncryptor creates a new encryptor with the given key
func NewEncryptor(key []byte) *Encryptor {
	return &Encryptor{
		key: key,
	}
}

// Encrypt encrypts plaintext using AES-256-GCM. A fresh random nonce is
// generated per call and prepended to the ciphertext.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Encrypt and authenticate
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, NonceSize+len(ciphertext))
	copy(result, nonce)
	copy(result[NonceSize:], ciphertext)

	return result, nil
}

// Decrypt decrypts ciphertext using AES-256-GCM. Any modification to the
// nonce, ciphertext or tag fails with ErrAuthFailed and no further detail.
func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := ciphertext[:NonceSize]
	ciphertext = ciphertext[NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// Destroy clears the encryptor's key from memory
func (e *Encryptor) Destroy() {
	ClearBytes(e.key)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
