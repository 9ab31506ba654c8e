package nt

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/core"
)

// InvMod computes c with a*c ≡ 1 (mod b) using the binary extended Euclidean
// algorithm.
//
// The result carries the sign of a: for negative a it is the negation of the
// inverse of |a|, and it is not reduced into [0, |b|). Use InvModCanonical for
// the reduced value. ErrInvalidInput is returned when a and b are both even,
// when gcd(a, b) != 1, or when b is zero. Arithmetic failures from ar are
// returned unchanged. Neither operand is modified.
func InvMod(ar *core.Arith, a, b *big.Int) (*big.Int, error) {
	if ar.IsZero(b) {
		return nil, fmt.Errorf("%w: zero modulus", ErrInvalidInput)
	}

	// x is the modulus, y the value to invert
	x := ar.New()
	if err := ar.Abs(x, b); err != nil {
		return nil, err
	}
	y := ar.New()
	if err := ar.Abs(y, a); err != nil {
		return nil, err
	}

	if ar.IsEven(x) && ar.IsEven(y) {
		return nil, fmt.Errorf("%w: %s and %s are both even", ErrInvalidInput, a, b)
	}

	var (
		c   *big.Int
		err error
	)
	switch {
	case ar.CmpSmall(x, 1) == 0:
		// everything is congruent modulo one
		c = ar.New()
	case ar.IsEven(x):
		c, err = invertEvenModulus(ar, y, x)
	default:
		c, err = binaryInverse(ar, y, x)
	}
	if err != nil {
		return nil, err
	}

	if a.Sign() < 0 {
		c.Neg(c)
	}
	return c, nil
}

// InvModCanonical is InvMod reduced into [0, |b|)
func InvModCanonical(ar *core.Arith, a, b *big.Int) (*big.Int, error) {
	c, err := InvMod(ar, a, b)
	if err != nil {
		return nil, err
	}
	m := ar.New()
	if err := ar.Abs(m, b); err != nil {
		return nil, err
	}
	return c.Mod(c, m), nil
}

// binaryInverse returns D >= 0 with y*D ≡ 1 (mod x) for odd x > 1.
//
// Only the coefficients paired with y are tracked: B*y ≡ u and D*y ≡ v
// (mod x) hold throughout, so halving an odd coefficient first subtracts the
// odd modulus to make it even.
func binaryInverse(ar *core.Arith, y, x *big.Int) (*big.Int, error) {
	if ar.IsZero(y) {
		return nil, fmt.Errorf("%w: zero has no inverse modulo %s", ErrInvalidInput, x)
	}

	u, v := ar.New(), ar.New()
	B, D := ar.New(), ar.New()
	if err := ar.Copy(u, x); err != nil {
		return nil, err
	}
	if err := ar.Copy(v, y); err != nil {
		return nil, err
	}
	ar.SetSmall(D, 1)

	for {
		for ar.IsEven(u) {
			if err := halveWithCoefficient(ar, u, B, x); err != nil {
				return nil, err
			}
		}
		for ar.IsEven(v) {
			if err := halveWithCoefficient(ar, v, D, x); err != nil {
				return nil, err
			}
		}

		if ar.Cmp(u, v) >= 0 {
			if err := ar.Sub(u, u, v); err != nil {
				return nil, err
			}
			if err := ar.Sub(B, B, D); err != nil {
				return nil, err
			}
		} else {
			if err := ar.Sub(v, v, u); err != nil {
				return nil, err
			}
			if err := ar.Sub(D, D, B); err != nil {
				return nil, err
			}
		}

		if ar.IsZero(u) {
			break
		}
	}

	// v is now gcd(x, y)
	if ar.CmpSmall(v, 1) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, %s) = %s", ErrInvalidInput, y, x, v)
	}

	for D.Sign() < 0 {
		if err := ar.Add(D, D, x); err != nil {
			return nil, err
		}
	}
	return D, nil
}

// halveWithCoefficient halves the even value w and its coefficient k modulo x
func halveWithCoefficient(ar *core.Arith, w, k, x *big.Int) error {
	if err := ar.Halve(w, w); err != nil {
		return err
	}
	if !ar.IsEven(k) {
		if err := ar.Sub(k, k, x); err != nil {
			return err
		}
	}
	return ar.Halve(k, k)
}

// invertEvenModulus inverts odd y modulo even m by inverting m modulo y:
// if m*t ≡ 1 (mod y) then (1 - m*t)/y is an inverse of y modulo m.
func invertEvenModulus(ar *core.Arith, y, m *big.Int) (*big.Int, error) {
	if ar.CmpSmall(y, 1) == 0 {
		return big.NewInt(1), nil
	}

	r := ar.New()
	if err := ar.DivMod(nil, r, m, y); err != nil {
		return nil, err
	}
	t, err := binaryInverse(ar, r, y)
	if errors.Is(err, ErrInvalidInput) {
		return nil, fmt.Errorf("%w: %s has no inverse modulo %s", ErrInvalidInput, y, m)
	}
	if err != nil {
		return nil, err
	}

	c := ar.New()
	if err := ar.Mul(c, m, t); err != nil {
		return nil, err
	}
	if err := ar.Sub(c, big.NewInt(1), c); err != nil {
		return nil, err
	}
	if err := ar.DivMod(c, nil, c, y); err != nil {
		return nil, err
	}
	if err := ar.DivMod(nil, c, c, m); err != nil {
		return nil, err
	}
	if c.Sign() < 0 {
		if err := ar.Add(c, c, m); err != nil {
			return nil, err
		}
	}
	return c, nil
}
