package coconut

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestThresholdIssuanceEndToEnd exercises a full t-of-n issuance: dealer ->
// signature request + proof -> two signers blind-sign -> client unblinds
// and aggregates -> the aggregate's sigma1 is not the identity. The pairing
// equation itself is checked only once a CredentialProof is built (see
// credential_proof_test.go), since Signature carries no verify method of
// its own.
func TestThresholdIssuanceEndToEnd(t *testing.T) {
	params := testParams(t, 3, 2, 3, "blindsign-e2e-test")
	shares, err := GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)

	keys, err := ElGamalKeyGen(params.G, rand.Reader)
	require.NoError(t, err)

	messages := map[int]*big.Int{0: big.NewInt(7), 1: big.NewInt(8), 2: big.NewInt(9)}
	hidden := map[int]*big.Int{0: messages[0], 1: messages[1]}
	visible := map[int]*big.Int{2: messages[2]}

	req, randomness, err := NewSignatureRequest(params, keys.PK, hidden, visible, rand.Reader)
	require.NoError(t, err)
	proof, err := NewRequestProof(params, keys.PK, req, hidden, randomness, rand.Reader)
	require.NoError(t, err)

	sigShares := make([]*SignatureShare, 0, 2)
	for _, s := range shares[:2] {
		bs, err := s.BlindSign(params, keys.PK, req, proof)
		require.NoError(t, err)
		ss, err := bs.Unblind(s.ID, keys.SK)
		require.NoError(t, err)
		sigShares = append(sigShares, ss)
	}

	sig, err := AggregateSignatureShares(sigShares, 2)
	require.NoError(t, err)
	require.False(t, sig.Sigma1.IsIdentity())
}

func TestBlindSignRejectsInvalidProof(t *testing.T) {
	params := testParams(t, 2, 1, 2, "blindsign-invalid-test")
	shares, err := GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)

	keys, err := ElGamalKeyGen(params.G, rand.Reader)
	require.NoError(t, err)
	hidden := map[int]*big.Int{0: big.NewInt(1), 1: big.NewInt(2)}
	req, randomness, err := NewSignatureRequest(params, keys.PK, hidden, nil, rand.Reader)
	require.NoError(t, err)
	proof, err := NewRequestProof(params, keys.PK, req, hidden, randomness, rand.Reader)
	require.NoError(t, err)

	// Corrupt the proof's challenge so Verify fails before any signing work.
	proof.Challenge = new(big.Int).Add(proof.Challenge, big.NewInt(1))

	_, err = shares[0].BlindSign(params, keys.PK, req, proof)
	requireProofRejected(t, err)
}

func TestUnblindWithWrongSecretKeyDoesNotRecoverShare(t *testing.T) {
	params := testParams(t, 2, 1, 1, "unblind-wrongkey-test")
	shares, err := GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)

	keys, err := ElGamalKeyGen(params.G, rand.Reader)
	require.NoError(t, err)
	otherKeys, err := ElGamalKeyGen(params.G, rand.Reader)
	require.NoError(t, err)

	hidden := map[int]*big.Int{0: big.NewInt(1), 1: big.NewInt(2)}
	req, randomness, err := NewSignatureRequest(params, keys.PK, hidden, nil, rand.Reader)
	require.NoError(t, err)
	proof, err := NewRequestProof(params, keys.PK, req, hidden, randomness, rand.Reader)
	require.NoError(t, err)

	bs, err := shares[0].BlindSign(params, keys.PK, req, proof)
	require.NoError(t, err)

	share, err := bs.Unblind(shares[0].ID, otherKeys.SK)
	if err == nil {
		want, err := bs.Unblind(shares[0].ID, keys.SK)
		require.NoError(t, err)
		require.False(t, share.Sigma2.Equal(want.Sigma2))
	}
}
