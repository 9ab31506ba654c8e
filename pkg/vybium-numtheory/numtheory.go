package vybiumnumtheory

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"

	"go.uber.org/zap"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/core"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/nt"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/utils"
)

// ModInverse returns c with a*c ≡ 1 (mod b), carrying the sign of a.
// The result is not reduced; see ModInverseCanonical.
func ModInverse(a, b *big.Int) (*big.Int, error) {
	c, err := nt.InvMod(core.NewArith(0), a, b)
	if err != nil {
		return nil, wrapError("modular inverse failed", err)
	}
	return c, nil
}

// ModInverseCanonical returns the inverse of a modulo |b| in [0, |b|)
func ModInverseCanonical(a, b *big.Int) (*big.Int, error) {
	c, err := nt.InvModCanonical(core.NewArith(0), a, b)
	if err != nil {
		return nil, wrapError("modular inverse failed", err)
	}
	return c, nil
}

// ProvablePrime returns a certified prime of at least minBits bits drawn from
// crypto/rand, trying up to baseCount Pocklington bases per candidate
func ProvablePrime(minBits, baseCount int) (*Prime, error) {
	g, err := NewGenerator(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return g.ProvablePrime(context.Background(), minBits, baseCount)
}

// VerifyCertificate checks a certificate without trusting how it was produced
func VerifyCertificate(c *Certificate) error {
	if c == nil {
		return &Error{Code: ErrInvalidCertificate, Message: "nil certificate"}
	}
	return wrapError("certificate verification failed", c.Verify())
}

// Generator produces provable primes for a fixed configuration
type Generator struct {
	config *Config
	inner  *nt.Generator
}

// Option customizes a Generator beyond its Config
type Option func(*generatorOptions)

type generatorOptions struct {
	logger  *zap.Logger
	metrics *Metrics
	rand    io.Reader
}

// WithLogger reports search progress at debug level
func WithLogger(l *zap.Logger) Option {
	return func(o *generatorOptions) {
		o.logger = l
	}
}

// WithMetrics counts attempts, rejections and certified rounds
func WithMetrics(m *Metrics) Option {
	return func(o *generatorOptions) {
		o.metrics = m
	}
}

// WithRandomSource overrides the random source selected by the Config
func WithRandomSource(r io.Reader) Option {
	return func(o *generatorOptions) {
		o.rand = r
	}
}

// NewGenerator creates a generator for a validated copy of config
func NewGenerator(config *Config, opts ...Option) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.Clone()
	if err := config.Validate(); err != nil {
		return nil, &Error{
			Code:    ErrInvalidConfig,
			Message: "invalid configuration",
			Cause:   err,
		}
	}

	var o generatorOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.rand == nil {
		r, err := NewRandomSource(config)
		if err != nil {
			return nil, err
		}
		o.rand = r
	}

	inner, err := nt.NewGenerator(
		nt.WithRand(o.rand),
		nt.WithDigitBits(uint(config.DigitBits)),
		nt.WithArith(core.NewArith(config.MaxBits)),
		nt.WithLogger(o.logger),
		nt.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, wrapError("failed to create generator", err)
	}

	return &Generator{config: config, inner: inner}, nil
}

// Config returns a copy of the generator's configuration
func (g *Generator) Config() *Config {
	return g.config.Clone()
}

// Generate returns a prime of the configured size
func (g *Generator) Generate(ctx context.Context) (*Prime, error) {
	return g.ProvablePrime(ctx, g.config.MinBits, g.config.Bases)
}

// ProvablePrime returns a prime of at least minBits bits, trying up to
// baseCount bases per candidate. The search stops when ctx is done.
func (g *Generator) ProvablePrime(ctx context.Context, minBits, baseCount int) (*Prime, error) {
	p, err := g.inner.ProvablePrime(ctx, minBits, baseCount)
	if err != nil {
		return nil, wrapError("provable prime generation failed", err)
	}
	return p, nil
}

// NewRandomSource returns the reader selected by config: crypto/rand, or a
// seeded hash chain that makes generation reproducible. A nil config selects
// the default source.
func NewRandomSource(config *Config) (io.Reader, error) {
	if config == nil {
		config = DefaultConfig()
	}
	switch config.RandomSource {
	case "", "crypto":
		return rand.Reader, nil
	case "sha3", "sha256":
		seed, err := utils.DecodeSeed(config.Seed)
		if err != nil {
			return nil, &Error{
				Code:    ErrInvalidConfig,
				Message: "invalid seed",
				Cause:   err,
			}
		}
		return utils.NewSeededChannel(config.RandomSource, seed), nil
	default:
		return nil, &Error{
			Code:    ErrInvalidConfig,
			Message: "unknown random source " + config.RandomSource,
		}
	}
}
