package coconut

import "math/big"

// Signature is a full Pointcheval-Sanders signature pair (sigma1, sigma2)
// on a committed attribute vector, either an individual share or the
// t-of-n aggregate.
type Signature struct {
	Sigma1 G1Point
	Sigma2 G1Point
}

// SignatureShare is one signer's unblinded contribution toward an
// aggregate Signature.
type SignatureShare struct {
	ID     int
	Sigma1 G1Point
	Sigma2 G1Point
}

// BlindSignature is the encrypted form of a signature share a signer hands
// back to the client: sigma1 is always params.H in the clear (the base
// every signer's share shares, so Lagrange-combining shares later still
// yields params.H exactly, since the interpolation coefficients sum to one
// at x=0); Tilde1/Tilde2 together form an ElGamal-style ciphertext that
// decrypts, in the exponent, to the share's sigma2.
type BlindSignature struct {
	Sigma1 G1Point
	Tilde1 G1Point
	Tilde2 G1Point
}

// BlindSign verifies the accompanying request proof and, only if it holds,
// produces a blind signature share using this signer's (x, y[]) applied
// linearly to the request's ciphertexts and visible attributes. Grounded on
// original_source/src/d_idp.rs's verify_and_blind_sign.
func (s *SignerShare) BlindSign(params *PublicParams, pk G1Point, req *SignatureRequest, proof *RequestProof) (*BlindSignature, error) {
	if err := proof.Verify(params, pk, req); err != nil {
		return nil, err
	}

	order := Order()
	var tilde1, tilde2 G1Point
	first := true

	for _, k := range sortedKeys(req.Hidden) {
		ct := req.Hidden[k]
		yk := s.Y[k]
		c1Term := ct.C1.ScalarMul(yk)
		c2Term := ct.C2.ScalarMul(yk)
		if first {
			tilde1 = c1Term
			tilde2 = c2Term
			first = false
		} else {
			tilde1 = tilde1.Add(c1Term)
			tilde2 = tilde2.Add(c2Term)
		}
	}

	visibleSum := new(big.Int)
	for _, k := range sortedVisibleKeys(req.Visible) {
		term := new(big.Int).Mul(s.Y[k], req.Visible[k])
		visibleSum.Add(visibleSum, term)
		visibleSum.Mod(visibleSum, order)
	}

	xhTerm := params.H.ScalarMul(s.X)
	visibleTerm := params.H.ScalarMul(visibleSum)

	if first {
		tilde2 = xhTerm.Add(visibleTerm)
		tilde1 = params.G.ScalarMul(new(big.Int))
	} else {
		tilde2 = tilde2.Add(xhTerm).Add(visibleTerm)
	}

	return &BlindSignature{Sigma1: params.H, Tilde1: tilde1, Tilde2: tilde2}, nil
}

// Unblind applies ElGamal decryption in the exponent to recover this
// signer's plain signature share sigma_i = (sigma1, sigma2). Returns
// DecryptFailure if the result's sigma2 is the group identity, which would
// indicate a malformed blind signature rather than a valid share.
func (bs *BlindSignature) Unblind(id int, sk *big.Int) (*SignatureShare, error) {
	const op = "BlindSignature.Unblind"
	shared := bs.Tilde1.ScalarMul(sk)
	sigma2 := bs.Tilde2.Add(shared.Neg())
	if sigma2.IsIdentity() {
		return nil, decryptFailure(op, "unblinded sigma2 is the group identity")
	}
	return &SignatureShare{ID: id, Sigma1: bs.Sigma1, Sigma2: sigma2}, nil
}
