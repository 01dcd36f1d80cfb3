package coconut

import "sort"

// AggregateSignatureShares combines >= threshold signature shares via
// Lagrange interpolation into the signature under the implicit master
// secret key. Any two subsets of size >= threshold over the same
// underlying shares produce a byte-identical result (interpolation at
// x=0 is independent of which points were used to reach it). Grounded on
// original_source/src/client.rs's verify_signatures (Signature::aggregate).
func AggregateSignatureShares(shares []*SignatureShare, threshold int) (*Signature, error) {
	const op = "AggregateSignatureShares"
	if len(shares) < threshold {
		return nil, aggregateFailure(op, "got %d shares, need at least %d", len(shares), threshold)
	}

	ids, byID, err := indexShares(op, shares)
	if err != nil {
		return nil, err
	}

	lambda, err := lagrangeCoefficients(ids)
	if err != nil {
		return nil, newError(AggregateFailure, op, err)
	}

	var sigma1, sigma2 G1Point
	for i, id := range ids {
		s := byID[id]
		t1 := s.Sigma1.ScalarMul(lambda[id])
		t2 := s.Sigma2.ScalarMul(lambda[id])
		if i == 0 {
			sigma1, sigma2 = t1, t2
		} else {
			sigma1 = sigma1.Add(t1)
			sigma2 = sigma2.Add(t2)
		}
	}

	return &Signature{Sigma1: sigma1, Sigma2: sigma2}, nil
}

// AggregateVerifyKeys combines >= threshold verify-key shares the same way,
// so the aggregated signature verifies under the aggregated key. Grounded
// on original_source/src/client.rs's Verkey::owned_aggregate.
func AggregateVerifyKeys(keys []*VerifyKeyShare, threshold int) (*VerifyKey, error) {
	const op = "AggregateVerifyKeys"
	if len(keys) < threshold {
		return nil, aggregateFailure(op, "got %d verify-key shares, need at least %d", len(keys), threshold)
	}

	ids := make([]int, 0, len(keys))
	byID := make(map[int]*VerifyKeyShare, len(keys))
	for _, k := range keys {
		if _, dup := byID[k.ID]; dup {
			return nil, aggregateFailure(op, "duplicate signer id %d", k.ID)
		}
		byID[k.ID] = k
		ids = append(ids, k.ID)
	}
	sort.Ints(ids)

	lambda, err := lagrangeCoefficients(ids)
	if err != nil {
		return nil, newError(AggregateFailure, op, err)
	}

	L := len(keys[0].YTilde)
	var xTilde G2Point
	yTilde := make([]G2Point, L)
	for i, id := range ids {
		k := byID[id]
		if len(k.YTilde) != L {
			return nil, badShape(op, "verify-key share %d has %d attribute bases, expected %d", id, len(k.YTilde), L)
		}
		xt := k.XTilde.ScalarMul(lambda[id])
		if i == 0 {
			xTilde = xt
		} else {
			xTilde = xTilde.Add(xt)
		}
		for j := 0; j < L; j++ {
			yt := k.YTilde[j].ScalarMul(lambda[id])
			if i == 0 {
				yTilde[j] = yt
			} else {
				yTilde[j] = yTilde[j].Add(yt)
			}
		}
	}

	return &VerifyKey{XTilde: xTilde, YTilde: yTilde}, nil
}

func indexShares(op string, shares []*SignatureShare) ([]int, map[int]*SignatureShare, error) {
	ids := make([]int, 0, len(shares))
	byID := make(map[int]*SignatureShare, len(shares))
	for _, s := range shares {
		if _, dup := byID[s.ID]; dup {
			return nil, nil, aggregateFailure(op, "duplicate signer id %d", s.ID)
		}
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	sort.Ints(ids)
	return ids, byID, nil
}
