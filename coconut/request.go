package coconut

import (
	"fmt"
	"io"
	"math/big"
)

// SignatureRequest is what a Client sends to every issuer: one ElGamal
// ciphertext per hidden attribute, the plaintext values for visible
// attributes, and a Pedersen-style commitment C binding the whole request
// together. Grounded on original_source/src/client.rs's request_id call
// site and coconut/pok_sig.rs's SignatureRequest::new test usage.
type SignatureRequest struct {
	Hidden  map[int]Ciphertext
	Visible map[int]*big.Int
	C       G1Point
}

// RequestRandomness is the per-hidden-index randomness used to build a
// SignatureRequest, retained by the prover only (never serialized with the
// request) so it can feed the accompanying request proof (C7).
type RequestRandomness struct {
	R map[int]*big.Int
}

// NewSignatureRequest builds the request and returns the randomness vector
// used, which the caller must pass to NewRequestProof and then discard
// (spec's ownership rule: proof randomness is consumed once, between init
// and gen_proof, and must not be reused). hidden and visible must exactly
// partition {0..L-1}; any gap or overlap is BadShape.
func NewSignatureRequest(params *PublicParams, pk G1Point, hidden, visible map[int]*big.Int, rng io.Reader) (*SignatureRequest, *RequestRandomness, error) {
	const op = "NewSignatureRequest"
	if err := validatePartition(op, params.L, hidden, visible); err != nil {
		return nil, nil, err
	}

	r := make(map[int]*big.Int, len(hidden))
	ciphertexts := make(map[int]Ciphertext, len(hidden))
	sumM := new(big.Int)
	sumR := new(big.Int)
	order := Order()

	for k, m := range hidden {
		rk, err := RandomScalar(rng.Read)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: sample randomness for index %d: %w", op, k, err)
		}
		r[k] = rk
		ciphertexts[k] = ElGamalEncrypt(params.G, params.H, pk, m, rk)
		sumM.Add(sumM, m)
		sumM.Mod(sumM, order)
		sumR.Add(sumR, rk)
		sumR.Mod(sumR, order)
	}

	c := params.H.ScalarMul(sumM).Add(pk.ScalarMul(sumR))

	return &SignatureRequest{
			Hidden:  ciphertexts,
			Visible: copyScalarMap(visible),
			C:       c,
		}, &RequestRandomness{
			R: r,
		}, nil
}

func validatePartition(op string, L int, hidden, visible map[int]*big.Int) error {
	if len(hidden)+len(visible) != L {
		return badShape(op, "hidden (%d) + visible (%d) attributes must equal L (%d)", len(hidden), len(visible), L)
	}
	for k := range hidden {
		if k < 0 || k >= L {
			return badShape(op, "hidden index %d out of range [0,%d)", k, L)
		}
		if _, ok := visible[k]; ok {
			return badShape(op, "index %d present in both hidden and visible", k)
		}
	}
	for k := range visible {
		if k < 0 || k >= L {
			return badShape(op, "visible index %d out of range [0,%d)", k, L)
		}
	}
	return nil
}

func copyScalarMap(m map[int]*big.Int) map[int]*big.Int {
	out := make(map[int]*big.Int, len(m))
	for k, v := range m {
		out[k] = new(big.Int).Set(v)
	}
	return out
}
