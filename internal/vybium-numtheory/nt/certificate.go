package nt

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/merkle"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/core"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/utils"
)

// Step records one growth round: N = 2AB+1 was certified by Base
type Step struct {
	N    *big.Int
	A    *big.Int
	B    *big.Int
	Base uint64
}

// Certificate is a chain of Pocklington steps starting from a single-digit prime.
// The certified prime is the N of the last step, or the seed when there are no steps.
type Certificate struct {
	Seed  *big.Int
	Steps []Step
}

// Prime returns the prime the certificate proves
func (c *Certificate) Prime() *big.Int {
	if len(c.Steps) == 0 {
		return new(big.Int).Set(c.Seed)
	}
	return new(big.Int).Set(c.Steps[len(c.Steps)-1].N)
}

// Verify checks every link of the chain independently of how it was produced.
//
// The seed and each B are checked by trial division, each A must be the
// previous prime, each N must equal 2AB+1, and the recorded base must pass the
// Pocklington chain for N.
func (c *Certificate) Verify() error {
	ar := core.NewArith(0)

	if c.Seed == nil || !isDigitPrimeInt(c.Seed) {
		return fmt.Errorf("%w: seed %v is not a single-digit prime", ErrInvalidCertificate, c.Seed)
	}

	prev := c.Seed
	for i, s := range c.Steps {
		if s.N == nil || s.A == nil || s.B == nil {
			return fmt.Errorf("%w: step %d is incomplete", ErrInvalidCertificate, i)
		}
		if s.A.Cmp(prev) != 0 {
			return fmt.Errorf("%w: step %d does not extend the previous prime", ErrInvalidCertificate, i)
		}
		if !isDigitPrimeInt(s.B) {
			return fmt.Errorf("%w: step %d factor %s is not a single-digit prime", ErrInvalidCertificate, i, s.B)
		}

		cc, n, err := candidate(ar, s.A, s.B)
		if err != nil {
			return err
		}
		if n.Cmp(s.N) != 0 {
			return fmt.Errorf("%w: step %d has N != 2AB+1", ErrInvalidCertificate, i)
		}

		ok, err := pocklingtonWitness(ar, new(big.Int).SetUint64(s.Base), s.A, s.B, cc, s.N)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: base %d does not certify step %d", ErrInvalidCertificate, s.Base, i)
		}
		prev = s.N
	}
	return nil
}

// Digest hashes the whole certificate with Tip5
func (c *Certificate) Digest() hash.Digest {
	elems := []field.Element{field.New(uint64(len(c.Steps)))}
	elems = appendInt(elems, c.Seed)
	for _, s := range c.Steps {
		elems = appendStep(elems, s)
	}
	return hashElements(elems)
}

// Commitment returns the Merkle root over the seed and the per-step digests
func (c *Certificate) Commitment() (hash.Digest, error) {
	leaves := make([]hash.Digest, utils.NextPowerOfTwo(max(len(c.Steps)+1, 2)))
	leaves[0] = hashElements(appendInt(nil, c.Seed))
	for i, s := range c.Steps {
		leaves[i+1] = hashElements(appendStep(nil, s))
	}

	tree, err := merkle.New(leaves)
	if err != nil {
		return hash.Digest{}, fmt.Errorf("failed to create Merkle tree: %w", err)
	}

	return tree.Root(), nil
}

// String renders the certificate in decimal, one block per step
func (c *Certificate) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Seed == %s\n", c.Seed)
	for _, s := range c.Steps {
		sb.WriteString("----------------------------------------------------------------\n")
		fmt.Fprintf(&sb, "Certificate of primality for:\n%s\n\n", s.N)
		fmt.Fprintf(&sb, "A == \n%s\n\n", s.A)
		fmt.Fprintf(&sb, "B == \n%s\n", s.B)
		fmt.Fprintf(&sb, "Base == %d\n", s.Base)
	}
	return sb.String()
}

func isDigitPrimeInt(x *big.Int) bool {
	return x.Sign() > 0 && x.IsUint64() && x.Uint64() <= MaxDigit && IsDigitPrime(Digit(x.Uint64()))
}

// appendInt encodes x as its limb count followed by its 32-bit limbs.
// Limbs stay below the Goldilocks modulus, so the encoding is injective.
func appendInt(elems []field.Element, x *big.Int) []field.Element {
	limbs := utils.Limbs32(x)
	elems = append(elems, field.New(uint64(len(limbs))))
	for _, l := range limbs {
		elems = append(elems, field.New(uint64(l)))
	}
	return elems
}

func appendStep(elems []field.Element, s Step) []field.Element {
	elems = appendInt(elems, s.N)
	elems = appendInt(elems, s.A)
	elems = appendInt(elems, s.B)
	return append(elems, field.New(s.Base))
}

// hashElements pads to the Tip5 rate and hashes
func hashElements(elems []field.Element) hash.Digest {
	for len(elems)%10 != 0 {
		elems = append(elems, field.Zero)
	}
	return hash.HashVarlen(elems)
}
