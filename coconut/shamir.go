package coconut

import (
	"fmt"
	"io"
	"math/big"
)

// polynomial is a degree-(t-1) polynomial over the scalar field, stored
// lowest coefficient first: coeffs[0] is the secret, coeffs[1..] are random.
type polynomial struct {
	coeffs []*big.Int
}

// samplePolynomial draws a degree-(degree) polynomial with a random
// constant term (the shared secret) and random higher coefficients, all
// read from rng. Grounded on the Shamir share construction in
// original_source/src/ttp.rs's trusted_party_SSS_keygen; the teacher's bbs
// package has no analogue since BBS+ key generation is not threshold.
func samplePolynomial(rng io.Reader, degree int) (*polynomial, error) {
	coeffs := make([]*big.Int, degree+1)
	for i := range coeffs {
		s, err := RandomScalar(rng.Read)
		if err != nil {
			return nil, fmt.Errorf("sample polynomial coefficient %d: %w", i, err)
		}
		coeffs[i] = s
	}
	return &polynomial{coeffs: coeffs}, nil
}

// evaluate computes f(x) mod Order using Horner's method.
func (f *polynomial) evaluate(x int64) *big.Int {
	order := Order()
	result := new(big.Int)
	xVal := big.NewInt(x)
	for i := len(f.coeffs) - 1; i >= 0; i-- {
		result.Mul(result, xVal)
		result.Add(result, f.coeffs[i])
		result.Mod(result, order)
	}
	return result
}

// lagrangeCoefficients computes, for each id in ids, the Lagrange basis
// coefficient lambda_i = Prod_{j in ids, j != i} j/(j-i) evaluated at x=0,
// reduced mod Order. Used both by signature-share aggregation and verify-key
// aggregation (C9), so any two subsets of the same size reconstruct the same
// master-key object.
func lagrangeCoefficients(ids []int) (map[int]*big.Int, error) {
	order := Order()
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("duplicate signer id %d in aggregation subset", id)
		}
		seen[id] = true
	}

	coeffs := make(map[int]*big.Int, len(ids))
	for _, i := range ids {
		num := big.NewInt(1)
		den := big.NewInt(1)
		for _, j := range ids {
			if j == i {
				continue
			}
			num.Mul(num, big.NewInt(int64(j)))
			num.Mod(num, order)
			diff := big.NewInt(int64(j - i))
			diff.Mod(diff, order)
			den.Mul(den, diff)
			den.Mod(den, order)
		}
		denInv := new(big.Int).ModInverse(den, order)
		if denInv == nil {
			return nil, fmt.Errorf("lagrange denominator not invertible for id %d", i)
		}
		lambda := new(big.Int).Mul(num, denInv)
		lambda.Mod(lambda, order)
		coeffs[i] = lambda
	}
	return coeffs, nil
}
