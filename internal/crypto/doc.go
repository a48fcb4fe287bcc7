// Package crypto provides cryptographic operations for sentryvault.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the passphrase via Argon2id
//   - 12-byte random nonce per encryption operation
//   - Authenticated encryption prevents tampering
//
// Key derivation uses Argon2id with:
//   - 32-byte random salt (stored unencrypted)
//   - 512 MiB memory, 3 iterations, 8 lanes by default
//
// The cost parameters are deliberately expensive to slow offline guessing
// and are validated against lower bounds; out-of-range values fail closed.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Encryptor.Destroy() when done with encryption operations
package crypto
