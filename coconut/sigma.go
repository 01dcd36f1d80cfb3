package coconut

import (
	"fmt"
	"io"
	"math/big"
)

// Committing accumulates the bases and blinding factors of a multi-base
// Sigma-protocol commit round: prove knowledge of exponents e_0..e_{m-1}
// such that C = Prod B_k^{e_k}. Generic over coconut.Point so the same
// toolkit serves both the G1 request proof (C7) and the G2 credential proof
// (C10) instead of being specialized per group by code generation, per
// spec's Design Notes on macro-generated PoK_VC specializations.
type Committing[P Point[P]] struct {
	bases     []P
	blindings []*big.Int
}

// NewCommitting starts an empty commit round.
func NewCommitting[P Point[P]]() *Committing[P] {
	return &Committing[P]{}
}

// CommitRandom adds a base with a freshly sampled blinding factor and
// returns the factor chosen, so the caller can retain it for GenProof.
func (c *Committing[P]) CommitRandom(base P, rng io.Reader) (*big.Int, error) {
	rho, err := RandomScalar(rng.Read)
	if err != nil {
		return nil, fmt.Errorf("commit random blinding: %w", err)
	}
	c.bases = append(c.bases, base)
	c.blindings = append(c.blindings, rho)
	return rho, nil
}

// CommitWithBlinding adds a base using an explicitly supplied blinding
// factor, rather than sampling one. This is how two independent commit
// rounds are made to share randomness for a common exponent, proving
// equality of a committed value across two proofs without revealing it
// (spec's "Shared randomness across sub-proofs").
func (c *Committing[P]) CommitWithBlinding(base P, blinding *big.Int) {
	c.bases = append(c.bases, base)
	c.blindings = append(c.blindings, blinding)
}

// Finish computes T = Prod B_k^{rho_k}, the commitment published to the
// verifier (or folded into a larger Fiat-Shamir transcript), producing a
// Committed ready for GenProof once the challenge is known.
func (c *Committing[P]) Finish() *Committed[P] {
	return &Committed[P]{
		bases:     append([]P(nil), c.bases...),
		blindings: append([]*big.Int(nil), c.blindings...),
		T:         accumulate(c.bases, c.blindings),
	}
}

// Committed is a finished commit round: the bases and blindings used, and
// the resulting commitment T. GenProof consumes it exactly once, per the
// Design Notes' ownership rule that proof randomness cannot be reused
// without leaking the witness.
type Committed[P Point[P]] struct {
	bases     []P
	blindings []*big.Int
	T         P
}

// Proof is the output of a completed Sigma-protocol: the commitment T and
// the Fiat-Shamir responses z_k = rho_k + c*e_k, one per base.
type Proof[P Point[P]] struct {
	T         P
	Responses []*big.Int
}

// GenProof computes the responses for the given secret exponents under the
// given Fiat-Shamir challenge. secrets must align positionally with the
// bases supplied to Committing; a length mismatch is BadShape.
func (cm *Committed[P]) GenProof(secrets []*big.Int, challenge *big.Int) (*Proof[P], error) {
	const op = "Committed.GenProof"
	if cm.blindings == nil {
		return nil, badShape(op, "commitment already consumed by an earlier GenProof")
	}
	if len(secrets) != len(cm.blindings) {
		return nil, badShape(op, "got %d secrets for %d committed bases", len(secrets), len(cm.blindings))
	}
	order := Order()
	responses := make([]*big.Int, len(secrets))
	for k := range secrets {
		z := new(big.Int).Mul(challenge, secrets[k])
		z.Add(z, cm.blindings[k])
		z.Mod(z, order)
		responses[k] = z
	}
	cm.blindings = nil
	return &Proof[P]{T: cm.T, Responses: responses}, nil
}

// Verify checks Prod B_k^{z_k} = T * C^c against the supplied bases and
// target commitment C. Used by both the request-proof verifier (C7) and the
// credential-proof verifier (C10), with their respective group
// instantiations.
func (pr *Proof[P]) Verify(bases []P, commitment P, challenge *big.Int) (bool, error) {
	const op = "Proof.Verify"
	if len(bases) != len(pr.Responses) {
		return false, badShape(op, "got %d bases for %d responses", len(bases), len(pr.Responses))
	}
	lhs := accumulate(bases, pr.Responses)
	rhs := pr.T.Add(commitment.ScalarMul(challenge))
	return lhs.Equal(rhs), nil
}

// accumulate computes Prod bases[k]^{exps[k]} (written additively: Sum
// bases[k]*exps[k]) without needing a group identity element, by folding
// from the first term rather than starting from a zero value.
func accumulate[P Point[P]](bases []P, exps []*big.Int) P {
	acc := bases[0].ScalarMul(exps[0])
	for i := 1; i < len(bases); i++ {
		acc = acc.Add(bases[i].ScalarMul(exps[i]))
	}
	return acc
}
