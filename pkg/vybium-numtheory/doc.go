// Package vybiumnumtheory provides modular inversion and provable prime
// generation over arbitrary-precision integers.
//
// Modular inverses are computed with the binary extended Euclidean algorithm.
// Provable primes are grown from a random single-digit prime: each round
// multiplies the current prime a by a fresh digit prime b and certifies
// n = 2ab+1 with a Pocklington chain, so every output comes with a
// certificate that can be checked independently.
//
// # Quick Start
//
// Inverting modulo an integer:
//
//	c, err := vybiumnumtheory.ModInverse(big.NewInt(3), big.NewInt(11))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(c) // 4
//
// Generating a 256-bit provable prime:
//
//	p, err := vybiumnumtheory.ProvablePrime(256, 8)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(p.P, p.Q)
//
// Reproducible generation from a seed:
//
//	config := vybiumnumtheory.DefaultConfig().
//		WithMinBits(512).
//		WithSeed("sha3", "00112233")
//	g, err := vybiumnumtheory.NewGenerator(config, vybiumnumtheory.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//	p, err := g.Generate(ctx)
//
// # Errors
//
// Every error returned by this package is an *Error. Match codes with
// errors.Is(err, &Error{Code: ErrInvalidInput}) or IsCode. The cause chain is
// preserved, so context.Canceled can be matched directly as well.
//
// # Architecture
//
// - pkg/vybium-numtheory/: Public API (this package)
// - internal/vybium-numtheory/: Private implementation (not importable)
//
// # References
//
// - H. C. Pocklington, The determination of the prime or composite nature of
//   large numbers by Fermat's theorem, 1914
// - Knuth, TAOCP Vol. 2, 4.5.2 (binary gcd)
package vybiumnumtheory
