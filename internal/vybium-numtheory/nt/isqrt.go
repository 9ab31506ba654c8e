package nt

import "fmt"

// Digit is a single-limb unsigned value used by the small prime search
type Digit = uint32

// Word is the double-width intermediate for products of two digits
type Word = uint64

// MaxDigit is the largest value a Digit can hold
const MaxDigit = Word(^Digit(0))

// ISqrt returns the floor of the square root of x using Newton's method.
//
// The iteration starts from x itself, so x must not exceed MaxDigit or x1*x1
// would overflow a Word. Iterates never fall below √x, which keeps x1*x1 - x
// from wrapping; the loop settles at most one above ⌊√x⌋ and the final step
// corrects that overshoot.
func ISqrt(x Word) Digit {
	if x > MaxDigit {
		panic(fmt.Sprintf("nt: ISqrt argument %d out of range", x))
	}
	if x == 0 {
		return 0
	}

	var x1 Word
	x2 := x
	for {
		x1 = x2
		x2 = x1 - (x1*x1-x)/(2*x1)
		if x1 == x2 {
			break
		}
	}

	if x1*x1 > x {
		x1--
	}
	return Digit(x1)
}
