package coconut

import (
	"fmt"
	"io"
	"math/big"
)

// SignerShare is the secret key package one threshold issuer holds for the
// lifetime of a protocol epoch: its Shamir share of the master x exponent
// and of each of the L master y[k] exponents, plus the G2 verify-key pieces
// derived from them. Created once by the trusted dealer (TTP) and
// distributed out of band, the way original_source/src/ttp.rs's
// serialize_server_i hands one share to each signer.
type SignerShare struct {
	ID     int
	X      *big.Int
	Y      []*big.Int
	XTilde G2Point
	YTilde []G2Point
}

// VerifyKeyShare is the public half of a SignerShare: the pieces an
// aggregator needs to combine into a VerifyKey, without the secret
// exponents.
type VerifyKeyShare struct {
	ID     int
	XTilde G2Point
	YTilde []G2Point
}

// VerifyKey is a PS verification key, either a single signer's share's
// public half or the aggregate of >= threshold shares.
type VerifyKey struct {
	XTilde G2Point
	YTilde []G2Point
}

// Public returns the verify-key half of a signer share, for handing to an
// aggregator or a relying party without exposing the secret exponents.
func (s *SignerShare) Public() *VerifyKeyShare {
	return &VerifyKeyShare{ID: s.ID, XTilde: s.XTilde, YTilde: append([]G2Point(nil), s.YTilde...)}
}

// GenerateSignerShares runs the trusted-dealer threshold key generation
// described in params.Threshold-of-params.Total: one degree-(t-1)
// polynomial for the master x exponent, and one degree-(t-1) polynomial per
// attribute slot for the master y[k] exponents, each evaluated at signer ids
// 1..n. Grounded on original_source/src/ttp.rs's trusted_party_SSS_keygen.
func GenerateSignerShares(params *PublicParams, rng io.Reader) ([]*SignerShare, error) {
	const op = "GenerateSignerShares"
	if params.Threshold > params.Total {
		return nil, badShape(op, "threshold %d exceeds total signers %d", params.Threshold, params.Total)
	}

	degree := params.Threshold - 1
	fx, err := samplePolynomial(rng, degree)
	if err != nil {
		return nil, fmt.Errorf("%s: sample x polynomial: %w", op, err)
	}
	fy := make([]*polynomial, params.L)
	for k := 0; k < params.L; k++ {
		fy[k], err = samplePolynomial(rng, degree)
		if err != nil {
			return nil, fmt.Errorf("%s: sample y[%d] polynomial: %w", op, k, err)
		}
	}

	shares := make([]*SignerShare, params.Total)
	for i := 1; i <= params.Total; i++ {
		x := fx.evaluate(int64(i))
		y := make([]*big.Int, params.L)
		yTilde := make([]G2Point, params.L)
		for k := 0; k < params.L; k++ {
			y[k] = fy[k].evaluate(int64(i))
			yTilde[k] = params.GTilde.ScalarMul(y[k])
		}
		shares[i-1] = &SignerShare{
			ID:     i,
			X:      x,
			Y:      y,
			XTilde: params.GTilde.ScalarMul(x),
			YTilde: yTilde,
		}
	}
	return shares, nil
}
