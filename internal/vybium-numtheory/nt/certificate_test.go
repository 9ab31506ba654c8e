package nt

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/utils"
)

func certifiedPrime(t *testing.T, seed string, k int) *Prime {
	t.Helper()
	g, err := NewGenerator(WithRand(utils.NewSeededChannel("sha3", []byte(seed))))
	require.NoError(t, err)
	res, err := g.ProvablePrime(context.Background(), k, 8)
	require.NoError(t, err)
	require.NotEmpty(t, res.Certificate.Steps)
	return res
}

// cloneCertificate deep-copies c so tests can tamper with it
func cloneCertificate(c *Certificate) *Certificate {
	out := &Certificate{Seed: new(big.Int).Set(c.Seed)}
	for _, s := range c.Steps {
		out.Steps = append(out.Steps, Step{
			N:    new(big.Int).Set(s.N),
			A:    new(big.Int).Set(s.A),
			B:    new(big.Int).Set(s.B),
			Base: s.Base,
		})
	}
	return out
}

func TestCertificateVerify(t *testing.T) {
	res := certifiedPrime(t, "verify", 128)
	require.NoError(t, res.Certificate.Verify())

	seedOnly := &Certificate{Seed: big.NewInt(1000003)}
	assert.NoError(t, seedOnly.Verify())
	assert.Equal(t, int64(1000003), seedOnly.Prime().Int64())
}

func TestCertificateVerifyRejectsTampering(t *testing.T) {
	res := certifiedPrime(t, "tamper", 128)

	tests := []struct {
		name   string
		tamper func(c *Certificate)
	}{
		{
			name:   "nil seed",
			tamper: func(c *Certificate) { c.Seed = nil },
		},
		{
			name:   "composite seed",
			tamper: func(c *Certificate) { c.Seed = big.NewInt(1000001) }, // 101 * 9901
		},
		{
			name:   "seed wider than a digit",
			tamper: func(c *Certificate) { c.Seed = new(big.Int).Lsh(big.NewInt(1), 40) },
		},
		{
			name:   "broken chain",
			tamper: func(c *Certificate) { c.Steps[0].A.Add(c.Steps[0].A, big.NewInt(2)) },
		},
		{
			name:   "composite factor",
			tamper: func(c *Certificate) { c.Steps[0].B.Mul(c.Steps[0].B, big.NewInt(3)) },
		},
		{
			name:   "wrong N",
			tamper: func(c *Certificate) { c.Steps[len(c.Steps)-1].N.Add(c.Steps[len(c.Steps)-1].N, big.NewInt(2)) },
		},
		{
			name:   "missing field",
			tamper: func(c *Certificate) { c.Steps[0].B = nil },
		},
		{
			// 1 is never a witness since 1^a = 1
			name:   "bad base",
			tamper: func(c *Certificate) { c.Steps[0].Base = 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cloneCertificate(res.Certificate)
			tt.tamper(c)
			err := c.Verify()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCertificate), "unexpected error: %v", err)
		})
	}

	// tampering with a clone leaves the original intact
	assert.NoError(t, res.Certificate.Verify())
}

func TestCertificateDigest(t *testing.T) {
	res := certifiedPrime(t, "digest", 96)
	again := certifiedPrime(t, "digest", 96)
	other := certifiedPrime(t, "other digest", 96)

	assert.Equal(t, res.Certificate.Digest(), again.Certificate.Digest())
	assert.NotEqual(t, res.Certificate.Digest(), other.Certificate.Digest())

	c := cloneCertificate(res.Certificate)
	c.Steps[0].Base++
	assert.NotEqual(t, res.Certificate.Digest(), c.Digest())

	// dropping the last step must change the digest even though every
	// remaining field is unchanged
	c = cloneCertificate(res.Certificate)
	c.Steps = c.Steps[:len(c.Steps)-1]
	assert.NotEqual(t, res.Certificate.Digest(), c.Digest())
}

func TestCertificateCommitment(t *testing.T) {
	res := certifiedPrime(t, "commit", 96)

	root, err := res.Certificate.Commitment()
	require.NoError(t, err)
	again, err := cloneCertificate(res.Certificate).Commitment()
	require.NoError(t, err)
	assert.Equal(t, root, again)

	c := cloneCertificate(res.Certificate)
	c.Steps[len(c.Steps)-1].B.Add(c.Steps[len(c.Steps)-1].B, big.NewInt(2))
	changed, err := c.Commitment()
	require.NoError(t, err)
	assert.NotEqual(t, root, changed)

	seedOnly, err := (&Certificate{Seed: big.NewInt(37)}).Commitment()
	require.NoError(t, err)
	assert.NotEqual(t, root, seedOnly)
}

func TestCertificateString(t *testing.T) {
	res := certifiedPrime(t, "string", 64)
	out := res.Certificate.String()

	assert.True(t, strings.HasPrefix(out, "Seed == "+res.Certificate.Seed.String()))
	assert.Equal(t, len(res.Certificate.Steps), strings.Count(out, "Certificate of primality for:"))
	assert.Contains(t, out, res.P.String())
}
