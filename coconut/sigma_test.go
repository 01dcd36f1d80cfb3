package coconut

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigmaProtocolG1RoundTrip(t *testing.T) {
	g := G1Generator()
	h, err := HashToG1([]byte("sigma-test"), "sigma-test-dst")
	require.NoError(t, err)

	x, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	y, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	commitment := g.ScalarMul(x).Add(h.ScalarMul(y))

	committing := NewCommitting[G1Point]()
	_, err = committing.CommitRandom(g, rand.Reader)
	require.NoError(t, err)
	_, err = committing.CommitRandom(h, rand.Reader)
	require.NoError(t, err)
	committed := committing.Finish()

	challenge, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	proof, err := committed.GenProof([]*big.Int{x, y}, challenge)
	require.NoError(t, err)

	ok, err := proof.Verify([]G1Point{g, h}, commitment, challenge)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSigmaProtocolG2RoundTrip(t *testing.T) {
	g := G2Generator()
	x, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	commitment := g.ScalarMul(x)

	committing := NewCommitting[G2Point]()
	_, err = committing.CommitRandom(g, rand.Reader)
	require.NoError(t, err)
	committed := committing.Finish()

	challenge, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	proof, err := committed.GenProof([]*big.Int{x}, challenge)
	require.NoError(t, err)

	ok, err := proof.Verify([]G2Point{g}, commitment, challenge)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSigmaProtocolRejectsWrongWitness(t *testing.T) {
	g := G1Generator()
	x, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	commitment := g.ScalarMul(x)

	committing := NewCommitting[G1Point]()
	_, err = committing.CommitRandom(g, rand.Reader)
	require.NoError(t, err)
	committed := committing.Finish()

	challenge, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	wrong, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	proof, err := committed.GenProof([]*big.Int{wrong}, challenge)
	require.NoError(t, err)

	ok, err := proof.Verify([]G1Point{g}, commitment, challenge)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSharedBlindingLinksTwoCommitRounds(t *testing.T) {
	g1 := G1Generator()
	g2 := G2Generator()

	s, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	c1 := NewCommitting[G1Point]()
	shared, err := c1.CommitRandom(g1, rand.Reader)
	require.NoError(t, err)
	committed1 := c1.Finish()

	c2 := NewCommitting[G2Point]()
	c2.CommitWithBlinding(g2, shared)
	committed2 := c2.Finish()

	challenge, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	p1, err := committed1.GenProof([]*big.Int{s}, challenge)
	require.NoError(t, err)
	p2, err := committed2.GenProof([]*big.Int{s}, challenge)
	require.NoError(t, err)

	require.Equal(t, 0, p1.Responses[0].Cmp(p2.Responses[0]))
}

func TestGenProofRejectsSecretCountMismatch(t *testing.T) {
	g := G1Generator()
	committing := NewCommitting[G1Point]()
	_, err := committing.CommitRandom(g, rand.Reader)
	require.NoError(t, err)
	committed := committing.Finish()

	_, err = committed.GenProof(nil, big.NewInt(1))
	requireBadShape(t, err)
}
