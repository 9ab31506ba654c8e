package utils

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"math/bits"
	"strings"
)

// NextPowerOfTwo returns the smallest power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Limbs32 splits |x| into 32-bit limbs, least significant first.
// Zero has no limbs.
func Limbs32(x *big.Int) []uint32 {
	words := new(big.Int).Abs(x).Bits()
	limbs := make([]uint32, 0, 2*len(words))
	for _, w := range words {
		v := uint64(w)
		limbs = append(limbs, uint32(v))
		if bits.UintSize == 64 {
			limbs = append(limbs, uint32(v>>32))
		}
	}
	// Drop high zero limbs so equal values always split the same way
	for len(limbs) > 0 && limbs[len(limbs)-1] == 0 {
		limbs = limbs[:len(limbs)-1]
	}
	return limbs
}

// DecodeSeed parses a hex seed, tolerating a 0x prefix
func DecodeSeed(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if s == "" {
		return nil, fmt.Errorf("empty seed")
	}
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex seed: %w", err)
	}
	return seed, nil
}
