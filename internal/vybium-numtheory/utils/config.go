package utils

import (
	"fmt"
)

const (
	// maxBases is the number of fixed Pocklington bases available
	maxBases = 8

	// minDigitBits leaves enough distinct digit primes for every growth round
	minDigitBits = 16

	// maxDigitBits keeps digit primes and their square roots inside 32 bits
	maxDigitBits = 31
)

// MinCapacity returns the smallest arithmetic capacity that can generate a
// minBits prime: squaring a residue of the final candidate, which exceeds
// minBits by at most one digit plus one bit, and holding the 304-bit product
// of the first fifty primes.
func MinCapacity(minBits int) int {
	return max(2*(minBits+maxDigitBits+1), 320)
}

// Config represents the configuration for provable prime generation
type Config struct {
	// Requested minimum bit length of the prime
	MinBits int

	// Number of Pocklington bases to try per candidate (1..8)
	Bases int

	// Width in bits of the single-digit primes combined each round
	DigitBits int

	// Capacity of the integer arithmetic in bits (0 selects the default)
	MaxBits int

	// Random source: "crypto" for crypto/rand, "sha3" or "sha256" for a seeded hash chain
	RandomSource string

	// Hex seed for the hash-chain random sources
	Seed string
}

// DefaultConfig returns a default configuration for 256-bit primes
func DefaultConfig() *Config {
	return &Config{
		MinBits:      256,
		Bases:        8,
		DigitBits:    28,
		MaxBits:      0,
		RandomSource: "crypto",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MinBits <= 0 {
		return fmt.Errorf("minimum bit length must be positive")
	}

	if c.Bases < 1 || c.Bases > maxBases {
		return fmt.Errorf("base count must be between 1 and %d, got %d", maxBases, c.Bases)
	}

	if c.DigitBits < minDigitBits || c.DigitBits > maxDigitBits {
		return fmt.Errorf("digit width must be between %d and %d, got %d", minDigitBits, maxDigitBits, c.DigitBits)
	}

	if c.MaxBits < 0 {
		return fmt.Errorf("arithmetic capacity must not be negative")
	}
	if c.MaxBits > 0 && c.MaxBits < MinCapacity(c.MinBits) {
		return fmt.Errorf("arithmetic capacity (%d) must be at least %d for %d-bit primes",
			c.MaxBits, MinCapacity(c.MinBits), c.MinBits)
	}

	switch c.RandomSource {
	case "crypto":
		if c.Seed != "" {
			return fmt.Errorf("seed requires a hash-chain random source, got '%s'", c.RandomSource)
		}
	case "sha3", "sha256":
		if _, err := DecodeSeed(c.Seed); err != nil {
			return fmt.Errorf("random source '%s' needs a seed: %w", c.RandomSource, err)
		}
	default:
		return fmt.Errorf("random source must be 'crypto', 'sha3', or 'sha256', got '%s'", c.RandomSource)
	}

	return nil
}

// WithMinBits sets the minimum bit length
func (c *Config) WithMinBits(bits int) *Config {
	c.MinBits = bits
	return c
}

// WithBases sets the number of Pocklington bases
func (c *Config) WithBases(bases int) *Config {
	c.Bases = bases
	return c
}

// WithDigitBits sets the digit width
func (c *Config) WithDigitBits(bits int) *Config {
	c.DigitBits = bits
	return c
}

// WithMaxBits sets the arithmetic capacity
func (c *Config) WithMaxBits(bits int) *Config {
	c.MaxBits = bits
	return c
}

// WithSeed selects a seeded hash-chain random source
func (c *Config) WithSeed(source, seed string) *Config {
	c.RandomSource = source
	c.Seed = seed
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
