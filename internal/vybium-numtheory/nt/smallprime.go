package nt

import (
	"fmt"
	"io"

	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/core"
)

// MaxDigitBits is the widest sample SmallPrime accepts. One bit of headroom
// keeps the +2 search from overflowing a Digit.
const MaxDigitBits = 31

// MinDigitBits is the narrowest digit width a Generator accepts. Narrower
// digits offer so few distinct b that every n = 2ab+1 for some a can fail,
// and the growth loop would retry them forever.
const MinDigitBits = 16

// DefaultDigitBits is the digit width used when none is configured
const DefaultDigitBits = 28

// smallPrimes are the odd primes below 30 that the wheel does not cover
var smallPrimes = [...]Digit{3, 5, 7, 11, 13, 17, 19, 23, 29}

// wheelOffsets are the residues coprime to 30
var wheelOffsets = [...]Digit{1, 7, 11, 13, 17, 19, 23, 29}

// SmallPrime returns a random prime that fits in one digit.
//
// A bits-wide value is sampled from rand, forced odd and lifted to at least 30,
// and the search then walks upward in steps of two until trial division by the
// mod-30 wheel up to the square root finds no factor. The first candidate tested
// is the sample plus two.
func SmallPrime(rand io.Reader, bits uint) (Digit, error) {
	return smallPrime(rand, bits, false)
}

// SmallPrimeTopBit is SmallPrime with the most significant sampled bit forced
// on, so the result has at least bits significant bits.
func SmallPrimeTopBit(rand io.Reader, bits uint) (Digit, error) {
	return smallPrime(rand, bits, true)
}

func smallPrime(rand io.Reader, bits uint, topBit bool) (Digit, error) {
	if bits == 0 || bits > MaxDigitBits {
		return 0, fmt.Errorf("%w: digit width %d outside 1..%d", core.ErrDomain, bits, MaxDigitBits)
	}

	r, err := sampleBits(rand, bits)
	if err != nil {
		return 0, err
	}
	if topBit {
		r |= 1 << (bits - 1)
	}

	r |= 1
	if r < 30 {
		r += 30
	}

	// a composite r has a factor no larger than y
	y := ISqrt(Word(r))
	next := (Word(y) + 1) * (Word(y) + 1)

	for {
		r += 2

		if next <= Word(r) {
			y++
			next = (Word(y) + 1) * (Word(y) + 1)
		}

		if !hasSmallFactor(r, y) {
			return r, nil
		}
	}
}

// hasSmallFactor reports whether r has a divisor in 3..29 or of the form
// 30k+off with 30k <= y.
func hasSmallFactor(r, y Digit) bool {
	for _, p := range smallPrimes {
		if r%p == 0 {
			return true
		}
	}

	for x := Digit(30); x <= y; x += 30 {
		for _, off := range wheelOffsets {
			if r%(x+off) == 0 {
				return true
			}
		}
	}
	return false
}

// sampleBits reads bits random bits from rand, most significant first
func sampleBits(rand io.Reader, bits uint) (Digit, error) {
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}

	var r Digit
	for i := uint(0); i < bits; i++ {
		bit := (buf[i/8] >> (7 - i%8)) & 1
		r = r<<1 | Digit(bit)
	}
	return r, nil
}

// IsDigitPrime reports whether d is prime by plain trial division up to its
// square root. It is independent of the wheel and used to check certificates.
func IsDigitPrime(d Digit) bool {
	if d < 2 {
		return false
	}
	if d < 4 {
		return true
	}
	if d%2 == 0 {
		return false
	}
	limit := ISqrt(Word(d))
	for f := Digit(3); f <= limit; f += 2 {
		if d%f == 0 {
			return false
		}
	}
	return true
}
