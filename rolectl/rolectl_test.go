package rolectl

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anupsv/coconut-threshold/coconut"
)

// TestFullIssuanceAndPresentation drives the Client/IdP/RP roles through a
// complete 2-of-3 threshold issuance followed by a selective-disclosure
// presentation, the way client.rs/d_idp.rs/rp.rs's integration tests do.
func TestFullIssuanceAndPresentation(t *testing.T) {
	params, err := coconut.NewPublicParams(3, []byte("rolectl-e2e-test"), 2, 3)
	require.NoError(t, err)

	signerShares, err := coconut.GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)
	idps := make([]*IdP, len(signerShares))
	for i, s := range signerShares {
		idps[i] = NewIdP(s, params)
	}

	messages := map[int]*big.Int{0: big.NewInt(1), 1: big.NewInt(30), 2: big.NewInt(1990)}
	client, err := NewClient(params, messages, rand.Reader)
	require.NoError(t, err)
	require.Equal(t, ClientFresh, client.State())

	hidden := map[int]*big.Int{0: messages[0], 1: messages[1]}
	visible := map[int]*big.Int{2: messages[2]}
	req, proof, err := client.RequestID(hidden, visible, rand.Reader)
	require.NoError(t, err)
	require.Equal(t, ClientRequested, client.State())

	blinded := make(map[int]*coconut.BlindSignature, 2)
	for _, idp := range idps[:2] {
		bs, err := idp.BlindSign(client.ElGamalPublicKey(), req, proof)
		require.NoError(t, err)
		blinded[idp.ID] = bs
	}
	require.NoError(t, client.VerifySignatures(blinded, 2))
	require.Equal(t, ClientSigned, client.State())

	vkShares := make([]*coconut.VerifyKeyShare, len(idps))
	for i, idp := range idps {
		vkShares[i] = idp.VerifyKeyShare()
	}
	require.NoError(t, client.AggregateVerifyKey(vkShares, 2))
	require.Equal(t, ClientVerifiable, client.State())

	vk, err := client.OfferVerifyKey()
	require.NoError(t, err)

	rp := NewRP("example.org", params)
	rp.SetVerificationKey(vk)

	credProof, err := client.ProveCredential([]int{1, 2}, "example.org", rand.Reader)
	require.NoError(t, err)
	require.NoError(t, rp.VerifyID(credProof))
}

func TestRPRejectsBeforeKeyed(t *testing.T) {
	params, err := coconut.NewPublicParams(1, []byte("rolectl-unkeyed-test"), 1, 1)
	require.NoError(t, err)
	rp := NewRP("example.org", params)
	require.Equal(t, RPUnkeyed, rp.state)

	err = rp.VerifyID(&coconut.CredentialProof{Domain: "example.org"})
	require.Error(t, err)
}

func TestRPAggregateAndStoreVerificationKey(t *testing.T) {
	params, err := coconut.NewPublicParams(2, []byte("rolectl-rp-aggregate-test"), 2, 3)
	require.NoError(t, err)
	signerShares, err := coconut.GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)

	vkShares := make([]*coconut.VerifyKeyShare, len(signerShares))
	for i, s := range signerShares {
		vkShares[i] = s.Public()
	}

	rp := NewRP("example.org", params)
	require.NoError(t, rp.AggregateAndStoreVerificationKey(vkShares, 2))
	require.Equal(t, RPKeyed, rp.state)
}

func TestClientRejectsOutOfOrderCalls(t *testing.T) {
	params, err := coconut.NewPublicParams(1, []byte("rolectl-order-test"), 1, 1)
	require.NoError(t, err)
	messages := map[int]*big.Int{0: big.NewInt(1)}
	client, err := NewClient(params, messages, rand.Reader)
	require.NoError(t, err)

	_, err = client.ProveCredential(nil, "example.org", rand.Reader)
	require.Error(t, err)

	err = client.VerifySignatures(nil, 1)
	require.Error(t, err)
}
