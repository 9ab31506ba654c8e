package nt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/core"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/metrics"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/utils"
)

func seededGenerator(t *testing.T, seed string, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithRand(utils.NewSeededChannel("sha3", []byte(seed)))}, opts...)
	g, err := NewGenerator(opts...)
	require.NoError(t, err)
	return g
}

// assertPrimeResult checks the properties every ProvablePrime result must have
func assertPrimeResult(t *testing.T, res *Prime, k int) {
	t.Helper()
	require.NotNil(t, res)
	assert.GreaterOrEqual(t, res.P.BitLen(), k)
	assert.True(t, res.P.ProbablyPrime(20), "%s is not prime", res.P)

	half := new(big.Int).Rsh(new(big.Int).Sub(res.P, big.NewInt(1)), 1)
	rem := new(big.Int).Mod(half, res.Q)
	assert.Equal(t, 0, rem.Sign(), "q = %s does not divide (p-1)/2 = %s", res.Q, half)

	require.NotNil(t, res.Certificate)
	assert.NoError(t, res.Certificate.Verify())
	assert.Equal(t, 0, res.Certificate.Prime().Cmp(res.P))
}

func TestProvablePrimeSingleDigit(t *testing.T) {
	g := seededGenerator(t, "single digit")

	res, err := g.ProvablePrime(context.Background(), 8, 8)
	require.NoError(t, err)
	assertPrimeResult(t, res, 8)
	assert.Less(t, res.P.BitLen(), 16)
	assert.Empty(t, res.Certificate.Steps)

	want := new(big.Int).Rsh(new(big.Int).Sub(res.P, big.NewInt(1)), 1)
	assert.Equal(t, 0, res.Q.Cmp(want))
}

func TestProvablePrimeSizes(t *testing.T) {
	for _, k := range []int{1, 2, 28, 29, 40, 64, 100, 128, 256, 512} {
		k := k
		t.Run(fmt.Sprintf("%d bits", k), func(t *testing.T) {
			g := seededGenerator(t, "sizes")
			res, err := g.ProvablePrime(context.Background(), k, 8)
			require.NoError(t, err)
			assertPrimeResult(t, res, k)
		})
	}
}

func TestProvablePrimeQIsPreviousPrime(t *testing.T) {
	g := seededGenerator(t, "order")
	res, err := g.ProvablePrime(context.Background(), 200, 8)
	require.NoError(t, err)
	assertPrimeResult(t, res, 200)

	steps := res.Certificate.Steps
	require.NotEmpty(t, steps)
	last := steps[len(steps)-1]

	// p = 2ab+1 and q = (p-1)/2/b, so q is the prime certified before p
	assert.Equal(t, 0, res.Q.Cmp(last.A))
	assert.True(t, res.Q.ProbablyPrime(20))
	check := new(big.Int).Mul(res.Q, last.B)
	check.Lsh(check, 1).Add(check, big.NewInt(1))
	assert.Equal(t, 0, check.Cmp(res.P))
}

func TestProvablePrimeEveryBaseCount(t *testing.T) {
	for bases := 1; bases <= len(PocklingtonBases); bases++ {
		g := seededGenerator(t, "bases")
		res, err := g.ProvablePrime(context.Background(), 96, bases)
		require.NoError(t, err)
		assertPrimeResult(t, res, 96)
		for _, s := range res.Certificate.Steps {
			assert.Contains(t, PocklingtonBases[:bases], s.Base)
		}
	}
}

func TestProvablePrimeNarrowDigits(t *testing.T) {
	g := seededGenerator(t, "narrow", WithDigitBits(MinDigitBits))
	res, err := g.ProvablePrime(context.Background(), 256, 4)
	require.NoError(t, err)
	assertPrimeResult(t, res, 256)
	for _, s := range res.Certificate.Steps {
		assert.LessOrEqual(t, s.B.BitLen(), MinDigitBits+1)
	}
}

func TestProvablePrimeSeedAlreadyWideEnough(t *testing.T) {
	// all-ones samples push the digit search past 2^bits, so the seed alone
	// satisfies a request one bit wider than a digit
	for _, digitBits := range []uint{MinDigitBits, DefaultDigitBits, MaxDigitBits - 1} {
		g, err := NewGenerator(
			WithRand(bytes.NewReader(bytes.Repeat([]byte{0xff}, 64))),
			WithDigitBits(digitBits))
		require.NoError(t, err)

		k := int(digitBits) + 1
		res, err := g.ProvablePrime(context.Background(), k, 8)
		require.NoError(t, err, "digit width %d", digitBits)
		assertPrimeResult(t, res, k)
		assert.Empty(t, res.Certificate.Steps)

		want := new(big.Int).Rsh(new(big.Int).Sub(res.P, big.NewInt(1)), 1)
		assert.Equal(t, 0, res.Q.Cmp(want))
	}
}

func TestProvablePrimeDeterministic(t *testing.T) {
	first, err := seededGenerator(t, "repeat").ProvablePrime(context.Background(), 160, 8)
	require.NoError(t, err)
	second, err := seededGenerator(t, "repeat").ProvablePrime(context.Background(), 160, 8)
	require.NoError(t, err)
	other, err := seededGenerator(t, "different").ProvablePrime(context.Background(), 160, 8)
	require.NoError(t, err)

	assert.Equal(t, 0, first.P.Cmp(second.P))
	assert.Equal(t, 0, first.Q.Cmp(second.Q))
	assert.NotEqual(t, 0, first.P.Cmp(other.P))
}

func TestProvablePrimeInvalidInput(t *testing.T) {
	g := seededGenerator(t, "invalid")
	for _, tt := range [][2]int{{0, 8}, {-3, 8}, {64, 0}, {64, 9}, {64, -1}} {
		_, err := g.ProvablePrime(context.Background(), tt[0], tt[1])
		assert.True(t, errors.Is(err, ErrInvalidInput), "ProvablePrime(%d, %d): %v", tt[0], tt[1], err)
	}
}

func TestProvablePrimeCanceled(t *testing.T) {
	g := seededGenerator(t, "cancel")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := g.ProvablePrime(ctx, 128, 8)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))

	// the single-digit path does no growth rounds and ignores ctx
	res, err = g.ProvablePrime(ctx, 16, 8)
	require.NoError(t, err)
	assertPrimeResult(t, res, 16)
}

func TestProvablePrimeOutOfMemory(t *testing.T) {
	// too small to hold the product of the first fifty primes
	g := seededGenerator(t, "oom", WithArith(core.NewArith(128)))
	res, err := g.ProvablePrime(context.Background(), 64, 8)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))

	// large enough for the constant but not for the requested prime
	g = seededGenerator(t, "oom", WithArith(core.NewArith(400)))
	res, err = g.ProvablePrime(context.Background(), 512, 8)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))
}

func TestProvablePrimeRandomFailure(t *testing.T) {
	readErr := errors.New("no entropy")
	g, err := NewGenerator(WithRand(iotest.ErrReader(readErr)))
	require.NoError(t, err)

	_, err = g.ProvablePrime(context.Background(), 128, 8)
	assert.True(t, errors.Is(err, readErr))

	_, err = g.ProvablePrime(context.Background(), 8, 8)
	assert.True(t, errors.Is(err, readErr))
}

func TestProvablePrimeMetricsAndLogging(t *testing.T) {
	m := metrics.New("test")
	obsCore, logs := observer.New(zapcore.DebugLevel)
	g := seededGenerator(t, "observed", WithMetrics(m), WithLogger(zap.New(obsCore)))

	res, err := g.ProvablePrime(context.Background(), 256, 8)
	require.NoError(t, err)
	assertPrimeResult(t, res, 256)

	rounds := len(res.Certificate.Steps)
	attempts := testutil.ToFloat64(m.Attempts)
	assert.Equal(t, float64(rounds), testutil.ToFloat64(m.Certified))
	assert.Equal(t, attempts, testutil.ToFloat64(m.Certified)+
		testutil.ToFloat64(m.GCDRejections)+testutil.ToFloat64(m.ChainRejections))
	// one seed plus one digit prime per attempt
	assert.Equal(t, attempts+1, testutil.ToFloat64(m.SmallPrimes))

	assert.Equal(t, rounds, logs.FilterMessage("growing certified prime").Len())
	assert.Equal(t, 1, logs.FilterMessage("certified prime").Len())
}

func TestNewGeneratorValidation(t *testing.T) {
	for _, bits := range []uint{0, 1, 2, 4, 8, MinDigitBits - 1} {
		_, err := NewGenerator(WithDigitBits(bits))
		assert.True(t, errors.Is(err, ErrInvalidInput), "digit width %d", bits)
	}

	_, err := NewGenerator(WithDigitBits(MinDigitBits))
	assert.NoError(t, err)

	_, err = NewGenerator(WithDigitBits(MaxDigitBits + 1))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewGenerator(WithRand(nil))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	g, err := NewGenerator()
	require.NoError(t, err)
	assert.Equal(t, uint(DefaultDigitBits), g.DigitBits())
}

func TestPocklingtonWitness(t *testing.T) {
	ar := core.NewArith(0)
	witness := func(x, a, b int64) bool {
		t.Helper()
		c, n, err := candidate(ar, big.NewInt(a), big.NewInt(b))
		require.NoError(t, err)
		ok, err := pocklingtonWitness(ar, big.NewInt(x), big.NewInt(a), big.NewInt(b), c, n)
		require.NoError(t, err)
		return ok
	}

	// n = 31: 2^5 ≡ 1 so base 2 is inconclusive, 3 is a primitive root
	assert.False(t, witness(2, 3, 5))
	assert.True(t, witness(3, 3, 5))

	// n = 155 = 5 * 31 is composite, no base passes
	for _, x := range PocklingtonBases {
		assert.False(t, witness(int64(x), 7, 11), "base %d", x)
	}
}

func TestProvablePrimeWithCryptoRand(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)
	res, err := g.ProvablePrime(context.Background(), 128, 8)
	require.NoError(t, err)
	assertPrimeResult(t, res, 128)
}
