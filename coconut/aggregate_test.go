package coconut

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateSignatureSharesRejectsTooFew(t *testing.T) {
	_, err := AggregateSignatureShares([]*SignatureShare{{ID: 1, Sigma1: G1Generator(), Sigma2: G1Generator()}}, 2)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, AggregateFailure, cerr.Kind)
}

func TestAggregateSignatureSharesRejectsDuplicateIDs(t *testing.T) {
	shares := []*SignatureShare{
		{ID: 1, Sigma1: G1Generator(), Sigma2: G1Generator()},
		{ID: 1, Sigma1: G1Generator(), Sigma2: G1Generator()},
	}
	_, err := AggregateSignatureShares(shares, 2)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, AggregateFailure, cerr.Kind)
}

// TestAggregateSignatureSharesCommutesAcrossSubsets checks that any two
// size->=threshold subsets of the same underlying shares aggregate to a
// byte-identical signature (spec's "subset independence" property).
func TestAggregateSignatureSharesCommutesAcrossSubsets(t *testing.T) {
	params := testParams(t, 2, 2, 4, "aggregate-commute-test")
	signerShares, err := GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)

	keys, err := ElGamalKeyGen(params.G, rand.Reader)
	require.NoError(t, err)

	messages := map[int]*big.Int{0: big.NewInt(3), 1: big.NewInt(4)}
	req, randomness, err := NewSignatureRequest(params, keys.PK, messages, nil, rand.Reader)
	require.NoError(t, err)
	proof, err := NewRequestProof(params, keys.PK, req, messages, randomness, rand.Reader)
	require.NoError(t, err)

	unblindFrom := func(ids []int) *Signature {
		shares := make([]*SignatureShare, 0, len(ids))
		for _, id := range ids {
			var share *SignerShare
			for _, s := range signerShares {
				if s.ID == id {
					share = s
					break
				}
			}
			require.NotNil(t, share)
			bs, err := share.BlindSign(params, keys.PK, req, proof)
			require.NoError(t, err)
			ss, err := bs.Unblind(id, keys.SK)
			require.NoError(t, err)
			shares = append(shares, ss)
		}
		sig, err := AggregateSignatureShares(shares, 2)
		require.NoError(t, err)
		return sig
	}

	sigA := unblindFrom([]int{1, 2})
	sigB := unblindFrom([]int{2, 4})

	require.True(t, sigA.Sigma1.Equal(sigB.Sigma1))
	require.True(t, sigA.Sigma2.Equal(sigB.Sigma2))
}

func TestAggregateVerifyKeysRejectsTooFew(t *testing.T) {
	_, err := AggregateVerifyKeys([]*VerifyKeyShare{{ID: 1, XTilde: G2Generator(), YTilde: []G2Point{G2Generator()}}}, 2)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, AggregateFailure, cerr.Kind)
}
