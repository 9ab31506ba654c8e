package nt

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"go.uber.org/zap"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/core"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/metrics"
)

// firstFiftyPrimesProduct is 2*3*5*...*229, the product of the first 50 primes
const firstFiftyPrimesProduct = "19078266889580195013601891820992757757219839668357012055907516904309700014933909014729740190"

// PocklingtonBases are the bases tried, in order, when certifying a candidate
var PocklingtonBases = [...]uint64{2, 3, 5, 7, 11, 13, 17, 19}

// Prime is a certified prime together with the order of its large prime-order subgroup
type Prime struct {
	P           *big.Int
	Q           *big.Int
	Certificate *Certificate
}

// Generator builds provable primes
type Generator struct {
	arith     *core.Arith
	rand      io.Reader
	digitBits uint
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Generator
type Option func(*Generator)

// WithRand sets the random source candidates are drawn from
func WithRand(r io.Reader) Option {
	return func(g *Generator) {
		g.rand = r
	}
}

// WithDigitBits sets the width of the single-digit primes
func WithDigitBits(bits uint) Option {
	return func(g *Generator) {
		g.digitBits = bits
	}
}

// WithArith sets the integer arithmetic
func WithArith(ar *core.Arith) Option {
	return func(g *Generator) {
		g.arith = ar
	}
}

// WithLogger sets the progress logger
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// WithMetrics sets the metrics the generator reports to
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// NewGenerator creates a generator. Without options it draws from crypto/rand
// with DefaultDigitBits-wide digits and logs nothing.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		rand:      rand.Reader,
		digitBits: DefaultDigitBits,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.digitBits < MinDigitBits || g.digitBits > MaxDigitBits {
		return nil, fmt.Errorf("%w: digit width %d outside %d..%d", ErrInvalidInput, g.digitBits, MinDigitBits, MaxDigitBits)
	}
	if g.rand == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidInput)
	}
	if g.arith == nil {
		g.arith = core.NewArith(0)
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g, nil
}

// DigitBits returns the width of the single-digit primes
func (g *Generator) DigitBits() uint {
	return g.digitBits
}

// ProvablePrime returns a prime p of at least k bits with a certificate of its
// primality, and q = (p-1)/2/b where b is the digit prime used in the last round.
//
// For k up to the digit width a single trial-divided digit prime is returned
// with q = (p-1)/2. Otherwise a digit prime a is grown round by round: each
// round draws a digit prime b and accepts n = 2ab+1 once n is free of the first
// fifty primes and one of the first numBases bases passes the Pocklington chain.
// Rejected candidates are retried with a fresh b. ctx is checked before every
// candidate.
func (g *Generator) ProvablePrime(ctx context.Context, k, numBases int) (*Prime, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: bit length %d must be positive", ErrInvalidInput, k)
	}
	if numBases < 1 || numBases > len(PocklingtonBases) {
		return nil, fmt.Errorf("%w: base count %d outside 1..%d", ErrInvalidInput, numBases, len(PocklingtonBases))
	}

	if k <= int(g.digitBits) {
		return g.digitPrime(k)
	}

	ar := g.arith
	v := ar.New()
	if err := ar.ParseRadix(v, firstFiftyPrimesProduct, 10); err != nil {
		return nil, fmt.Errorf("failed to load small prime product: %w", err)
	}

	seed, err := g.smallPrime()
	if err != nil {
		return nil, err
	}
	a := new(big.Int).SetUint64(uint64(seed))
	cert := &Certificate{Seed: new(big.Int).Set(a)}

	var last Step
	for ar.BitLen(a) < k {
		g.logger.Debug("growing certified prime",
			zap.Int("bits", ar.BitLen(a)),
			zap.Int("bits_left", k-ar.BitLen(a)))

		last, err = g.extend(ctx, a, v, numBases)
		if err != nil {
			return nil, err
		}
		cert.Steps = append(cert.Steps, last)
		if err := ar.Copy(a, last.N); err != nil {
			return nil, err
		}
	}

	// q = ((a - 1) / 2) / b, or (a - 1) / 2 when the seed was already wide enough
	q := ar.New()
	if err := ar.SubSmall(q, a, 1); err != nil {
		return nil, err
	}
	if err := ar.Halve(q, q); err != nil {
		return nil, err
	}
	if len(cert.Steps) > 0 {
		if err := ar.DivMod(q, nil, q, last.B); err != nil {
			return nil, err
		}
	}

	g.logger.Debug("certified prime",
		zap.Int("bits", ar.BitLen(a)),
		zap.Int("rounds", len(cert.Steps)))

	// hand the working value to the caller
	p := ar.New()
	ar.Swap(p, a)
	return &Prime{P: p, Q: q, Certificate: cert}, nil
}

// digitPrime handles bit lengths that fit in one digit
func (g *Generator) digitPrime(k int) (*Prime, error) {
	d, err := SmallPrimeTopBit(g.rand, uint(k))
	if err != nil {
		return nil, err
	}
	g.metrics.OnSmallPrime()

	p := new(big.Int).SetUint64(uint64(d))
	q := new(big.Int).SetUint64(uint64(d-1) / 2)
	return &Prime{P: p, Q: q, Certificate: &Certificate{Seed: new(big.Int).Set(p)}}, nil
}

func (g *Generator) smallPrime() (Digit, error) {
	d, err := SmallPrime(g.rand, g.digitBits)
	if err != nil {
		return 0, err
	}
	g.metrics.OnSmallPrime()
	return d, nil
}

// extend searches for a certified n = 2ab+1 built on the certified prime a.
// Only the accepted candidate survives the call.
func (g *Generator) extend(ctx context.Context, a, v *big.Int, numBases int) (Step, error) {
	ar := g.arith
	for {
		if err := ctx.Err(); err != nil {
			return Step{}, fmt.Errorf("provable prime search interrupted: %w", err)
		}
		g.metrics.OnAttempt()

		d, err := g.smallPrime()
		if err != nil {
			return Step{}, err
		}
		b := new(big.Int).SetUint64(uint64(d))

		c, n, err := candidate(ar, a, b)
		if err != nil {
			return Step{}, err
		}

		y := ar.New()
		if err := ar.GCD(y, n, v); err != nil {
			return Step{}, err
		}
		if ar.CmpSmall(y, 1) != 0 {
			g.metrics.OnGCDRejection()
			continue
		}

		for _, base := range PocklingtonBases[:numBases] {
			ok, err := pocklingtonWitness(ar, new(big.Int).SetUint64(base), a, b, c, n)
			if err != nil {
				return Step{}, err
			}
			if ok {
				g.metrics.OnCertified()
				return Step{N: n, A: new(big.Int).Set(a), B: b, Base: base}, nil
			}
		}
		g.metrics.OnChainRejection()
	}
}

// candidate returns c = ab and n = 2ab+1
func candidate(ar *core.Arith, a, b *big.Int) (c, n *big.Int, err error) {
	c = ar.New()
	if err := ar.Mul(c, a, b); err != nil {
		return nil, nil, err
	}
	n = ar.New()
	if err := ar.Double(n, c); err != nil {
		return nil, nil, err
	}
	if err := ar.AddSmall(n, n, 1); err != nil {
		return nil, nil, err
	}
	return c, n, nil
}

// pocklingtonWitness reports whether base x certifies n = 2ab+1 with c = ab.
//
// None of x^a, x^2a, x^b, x^2b, x^ab may be 1 modulo n, and x^2ab must be.
func pocklingtonWitness(ar *core.Arith, x, a, b, c, n *big.Int) (bool, error) {
	y := ar.New()
	for _, e := range []*big.Int{a, b} {
		if err := ar.ExpMod(y, x, e, n); err != nil {
			return false, err
		}
		if ar.CmpSmall(y, 1) == 0 {
			return false, nil
		}
		if err := ar.SqrMod(y, y, n); err != nil {
			return false, err
		}
		if ar.CmpSmall(y, 1) == 0 {
			return false, nil
		}
	}

	if err := ar.ExpMod(y, x, c, n); err != nil {
		return false, err
	}
	if ar.CmpSmall(y, 1) == 0 {
		return false, nil
	}
	if err := ar.SqrMod(y, y, n); err != nil {
		return false, err
	}
	return ar.CmpSmall(y, 1) == 0, nil
}
