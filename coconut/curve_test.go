package coconut

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarMulAddConsistency(t *testing.T) {
	a, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	b, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	g := G1Generator()
	lhs := g.ScalarMul(a).Add(g.ScalarMul(b))
	rhs := g.ScalarMul(new(big.Int).Add(a, b))
	require.True(t, lhs.Equal(rhs))
}

func TestG1NegIsInverse(t *testing.T) {
	g := G1Generator()
	sum := g.Add(g.Neg())
	require.True(t, sum.IsIdentity())
}

func TestG2NegIsInverse(t *testing.T) {
	g := G2Generator()
	sum := g.Add(g.Neg())
	require.True(t, sum.IsIdentity())
}

func TestG1PointBytesRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	p := G1Generator().ScalarMul(s)

	parsed, err := ParseG1Point(p.Bytes())
	require.NoError(t, err)
	require.True(t, p.Equal(parsed))
}

func TestG2PointBytesRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	p := G2Generator().ScalarMul(s)

	parsed, err := ParseG2Point(p.Bytes())
	require.NoError(t, err)
	require.True(t, p.Equal(parsed))
}

func TestHashToG1IsDeterministic(t *testing.T) {
	p1, err := HashToG1([]byte("some message"), "test-dst")
	require.NoError(t, err)
	p2, err := HashToG1([]byte("some message"), "test-dst")
	require.NoError(t, err)
	require.True(t, p1.Equal(p2))

	p3, err := HashToG1([]byte("a different message"), "test-dst")
	require.NoError(t, err)
	require.False(t, p1.Equal(p3))
}

func TestHashToG2IsDeterministic(t *testing.T) {
	p1, err := HashToG2([]byte("some message"), "test-dst")
	require.NoError(t, err)
	p2, err := HashToG2([]byte("some message"), "test-dst")
	require.NoError(t, err)
	require.True(t, p1.Equal(p2))
}

func TestPairingBilinearity(t *testing.T) {
	a, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	b, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	g1 := G1Generator()
	g2 := G2Generator()

	lhs, err := Pair(g1.ScalarMul(a), g2.ScalarMul(b))
	require.NoError(t, err)

	ab := new(big.Int).Mul(a, b)
	rhs, err := Pair(g1, g2.ScalarMul(ab))
	require.NoError(t, err)

	require.True(t, lhs.Equal(&rhs))
}

func TestPairingCheckRejectsMismatchedLengths(t *testing.T) {
	_, err := PairingCheck([]G1Point{G1Generator()}, nil)
	require.Error(t, err)
}

func TestRandomScalarNeverZero(t *testing.T) {
	for i := 0; i < 16; i++ {
		s, err := RandomScalar(rand.Reader.Read)
		require.NoError(t, err)
		require.NotZero(t, s.Sign())
	}
}
