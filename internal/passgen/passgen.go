package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?"

	MinLength     = 8
	DefaultLength = 16
)

var ErrBadLength = errors.New("password length too short")

// Options selects the character classes for a generated secret
type Options struct {
	Length  int
	Upper   bool
	Digits  bool
	Symbols bool
}

// DefaultOptions enables all character classes at 16 characters
func DefaultOptions() Options {
	return Options{
		Length:  DefaultLength,
		Upper:   true,
		Digits:  true,
		Symbols: true,
	}
}

// Generate produces a random secret with at least one character from every
// enabled class. Randomness comes from crypto/rand throughout.
func Generate(opts Options) (string, error) {
	if opts.Length < MinLength {
		return "", fmt.Errorf("%w: need at least %d characters", ErrBadLength, MinLength)
	}

	classes := []string{lowerChars}
	if opts.Upper {
		classes = append(classes, upperChars)
	}
	if opts.Digits {
		classes = append(classes, digitChars)
	}
	if opts.Symbols {
		classes = append(classes, symbolChars)
	}

	alphabet := strings.Join(classes, "")
	out := make([]byte, opts.Length)

	// One guaranteed pick per class, rest from the full alphabet.
	for i, class := range classes {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	for i := len(classes); i < opts.Length; i++ {
		c, err := pick(alphabet)
		if err != nil {
			return "", err
		}
		out[i] = c
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// GeneratePIN produces a numeric PIN of the given length
func GeneratePIN(length int) (string, error) {
	if length < 4 {
		return "", fmt.Errorf("%w: PIN needs at least 4 digits", ErrBadLength)
	}
	out := make([]byte, length)
	for i := range out {
		c, err := pick(digitChars)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	return string(out), nil
}

func pick(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random index: %w", err)
	}
	return alphabet[n.Int64()], nil
}

// shuffle is a Fisher-Yates shuffle driven by crypto/rand, so the
// guaranteed class picks do not sit at predictable positions
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to shuffle: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
