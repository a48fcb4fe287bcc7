// Package guard is the advisory policy gate consulted before vault
// decryption: a configurable daily time window plus a rolling
// failed-attempt limit. Denials only slow an attacker with access to the
// unlock surface; they add nothing to, and take nothing from, the
// encryption underneath.
package guard
