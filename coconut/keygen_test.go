package coconut

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSignerSharesCountAndShape(t *testing.T) {
	params, err := NewPublicParams(3, []byte("keygen-test"), 2, 4)
	require.NoError(t, err)

	shares, err := GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)
	require.Len(t, shares, 4)
	for i, s := range shares {
		require.Equal(t, i+1, s.ID)
		require.Len(t, s.Y, 3)
		require.Len(t, s.YTilde, 3)
	}
}

func TestAggregatedVerifyKeyIndependentOfSubset(t *testing.T) {
	params, err := NewPublicParams(2, []byte("keygen-subset-test"), 2, 4)
	require.NoError(t, err)
	shares, err := GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)

	pubShares := make([]*VerifyKeyShare, len(shares))
	for i, s := range shares {
		pubShares[i] = s.Public()
	}

	vk1, err := AggregateVerifyKeys(pubShares[:2], 2)
	require.NoError(t, err)
	vk2, err := AggregateVerifyKeys([]*VerifyKeyShare{pubShares[1], pubShares[3]}, 2)
	require.NoError(t, err)

	require.True(t, vk1.XTilde.Equal(vk2.XTilde))
	for k := range vk1.YTilde {
		require.True(t, vk1.YTilde[k].Equal(vk2.YTilde[k]))
	}
}

func TestSignerSharePublicOmitsSecrets(t *testing.T) {
	params, err := NewPublicParams(1, []byte("keygen-public-test"), 1, 1)
	require.NoError(t, err)
	shares, err := GenerateSignerShares(params, rand.Reader)
	require.NoError(t, err)

	pub := shares[0].Public()
	require.Equal(t, shares[0].ID, pub.ID)
	require.True(t, shares[0].XTilde.Equal(pub.XTilde))
}
