package core

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrOutOfMemory is returned when a result would exceed the arithmetic's capacity
	ErrOutOfMemory = errors.New("out of memory")

	// ErrDomain is returned when an operand is outside an operation's domain
	ErrDomain = errors.New("value out of domain")
)

// DefaultMaxBits is the capacity used when NewArith is given a non-positive limit
const DefaultMaxBits = 1 << 22

// Arith performs arbitrary-precision integer arithmetic with a bounded capacity.
//
// Every operation that can grow a magnitude checks the result size against the
// capacity and reports ErrOutOfMemory instead of growing past it, so callers see
// the same result codes a fixed-arena bignum engine would produce.
type Arith struct {
	maxBits int
}

// NewArith creates an arithmetic with the given capacity in bits
func NewArith(maxBits int) *Arith {
	if maxBits <= 0 {
		maxBits = DefaultMaxBits
	}
	return &Arith{maxBits: maxBits}
}

// MaxBits returns the capacity in bits
func (ar *Arith) MaxBits() int {
	return ar.maxBits
}

// New returns a fresh zero integer
func (ar *Arith) New() *big.Int {
	return new(big.Int)
}

// fits reports ErrOutOfMemory when an integer of the given bit length cannot be held
func (ar *Arith) fits(bits int) error {
	if bits > ar.maxBits {
		return fmt.Errorf("%w: %d bits exceeds capacity of %d", ErrOutOfMemory, bits, ar.maxBits)
	}
	return nil
}

// Copy sets z = x
func (ar *Arith) Copy(z, x *big.Int) error {
	if err := ar.fits(x.BitLen()); err != nil {
		return err
	}
	z.Set(x)
	return nil
}

// Swap exchanges the contents of a and b without copying digits
func (ar *Arith) Swap(a, b *big.Int) {
	*a, *b = *b, *a
}

// Abs sets z = |x|
func (ar *Arith) Abs(z, x *big.Int) error {
	if err := ar.fits(x.BitLen()); err != nil {
		return err
	}
	z.Abs(x)
	return nil
}

// SetSmall sets z to a single-digit value
func (ar *Arith) SetSmall(z *big.Int, d uint64) {
	z.SetUint64(d)
}

// Add sets z = x + y
func (ar *Arith) Add(z, x, y *big.Int) error {
	if err := ar.fits(max(x.BitLen(), y.BitLen()) + 1); err != nil {
		return err
	}
	z.Add(x, y)
	return nil
}

// Sub sets z = x - y
func (ar *Arith) Sub(z, x, y *big.Int) error {
	if err := ar.fits(max(x.BitLen(), y.BitLen()) + 1); err != nil {
		return err
	}
	z.Sub(x, y)
	return nil
}

// Mul sets z = x * y
func (ar *Arith) Mul(z, x, y *big.Int) error {
	if err := ar.fits(x.BitLen() + y.BitLen()); err != nil {
		return err
	}
	z.Mul(x, y)
	return nil
}

// AddSmall sets z = x + d
func (ar *Arith) AddSmall(z, x *big.Int, d uint64) error {
	return ar.Add(z, x, new(big.Int).SetUint64(d))
}

// SubSmall sets z = x - d
func (ar *Arith) SubSmall(z, x *big.Int, d uint64) error {
	return ar.Sub(z, x, new(big.Int).SetUint64(d))
}

// Double sets z = 2 * x
func (ar *Arith) Double(z, x *big.Int) error {
	if err := ar.fits(x.BitLen() + 1); err != nil {
		return err
	}
	z.Lsh(x, 1)
	return nil
}

// Halve sets z = x / 2. The division must be exact; odd x is a domain error.
func (ar *Arith) Halve(z, x *big.Int) error {
	if x.Bit(0) != 0 {
		return fmt.Errorf("%w: halving odd value %s", ErrDomain, x)
	}
	// Arithmetic shift is exact for even values of either sign
	z.Rsh(x, 1)
	return nil
}

// DivMod sets q = x / y and r = x mod y with truncated division.
// Either of q or r may be nil when that result is not needed.
func (ar *Arith) DivMod(q, r, x, y *big.Int) error {
	if y.Sign() == 0 {
		return fmt.Errorf("%w: division by zero", ErrDomain)
	}
	if q == nil {
		q = new(big.Int)
	}
	if r == nil {
		r = new(big.Int)
	}
	q.QuoRem(x, y, r)
	return nil
}

// Cmp compares x and y and returns -1, 0 or +1
func (ar *Arith) Cmp(x, y *big.Int) int {
	return x.Cmp(y)
}

// CmpSmall compares x with a single-digit value and returns -1, 0 or +1
func (ar *Arith) CmpSmall(x *big.Int, d uint64) int {
	if x.Sign() < 0 {
		return -1
	}
	if !x.IsUint64() {
		return 1
	}
	v := x.Uint64()
	switch {
	case v < d:
		return -1
	case v > d:
		return 1
	default:
		return 0
	}
}

// IsEven reports whether x is even
func (ar *Arith) IsEven(x *big.Int) bool {
	return x.Bit(0) == 0
}

// IsZero reports whether x is zero
func (ar *Arith) IsZero(x *big.Int) bool {
	return x.Sign() == 0
}

// ExpMod sets z = x^e mod m for a positive modulus and non-negative exponent
func (ar *Arith) ExpMod(z, x, e, m *big.Int) error {
	if m.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive modulus", ErrDomain)
	}
	if e.Sign() < 0 {
		return fmt.Errorf("%w: negative exponent", ErrDomain)
	}
	z.Exp(x, e, m)
	return nil
}

// SqrMod sets z = x^2 mod m
func (ar *Arith) SqrMod(z, x, m *big.Int) error {
	if m.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive modulus", ErrDomain)
	}
	if err := ar.fits(2 * x.BitLen()); err != nil {
		return err
	}
	z.Mul(x, x)
	z.Mod(z, m)
	return nil
}

// GCD sets z = gcd(x, y). Both operands are taken by absolute value.
func (ar *Arith) GCD(z, x, y *big.Int) error {
	z.GCD(nil, nil, new(big.Int).Abs(x), new(big.Int).Abs(y))
	return nil
}

// BitLen returns the number of significant bits of |x|
func (ar *Arith) BitLen(x *big.Int) int {
	return x.BitLen()
}

// ParseRadix sets z to the value of s in the given base (2..62)
func (ar *Arith) ParseRadix(z *big.Int, s string, base int) error {
	if base < 2 || base > big.MaxBase {
		return fmt.Errorf("%w: unsupported radix %d", ErrDomain, base)
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return fmt.Errorf("%w: %q is not a base-%d integer", ErrDomain, s, base)
	}
	if err := ar.fits(v.BitLen()); err != nil {
		return err
	}
	z.Set(v)
	return nil
}
