package coconut

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElGamalEncryptDecryptRoundTrip(t *testing.T) {
	g := G1Generator()
	h, err := HashToG1([]byte("elgamal-test"), "elgamal-h-dst")
	require.NoError(t, err)

	keys, err := ElGamalKeyGen(g, rand.Reader)
	require.NoError(t, err)

	m, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	r, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	ct := ElGamalEncrypt(g, h, keys.PK, m, r)
	decrypted, err := ElGamalDecrypt(keys.SK, ct)
	require.NoError(t, err)

	require.True(t, decrypted.Equal(h.ScalarMul(m)))
}

func TestElGamalDecryptWithWrongKeyDoesNotRecoverPlaintext(t *testing.T) {
	g := G1Generator()
	h, err := HashToG1([]byte("elgamal-test-2"), "elgamal-h-dst")
	require.NoError(t, err)

	keys, err := ElGamalKeyGen(g, rand.Reader)
	require.NoError(t, err)
	otherKeys, err := ElGamalKeyGen(g, rand.Reader)
	require.NoError(t, err)

	m := big.NewInt(42)
	r, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)

	ct := ElGamalEncrypt(g, h, keys.PK, m, r)
	decrypted, err := ElGamalDecrypt(otherKeys.SK, ct)
	if err == nil {
		require.False(t, decrypted.Equal(h.ScalarMul(m)))
	}
}

func TestElGamalDecryptRejectsIdentityResult(t *testing.T) {
	g := G1Generator()
	h, err := HashToG1([]byte("elgamal-test-3"), "elgamal-h-dst")
	require.NoError(t, err)

	sk, err := RandomScalar(rand.Reader.Read)
	require.NoError(t, err)
	pk := g.ScalarMul(sk)

	// m = 0, r = 0 makes the ciphertext decrypt to the group identity.
	ct := ElGamalEncrypt(g, h, pk, big.NewInt(0), big.NewInt(0))
	_, err = ElGamalDecrypt(sk, ct)
	requireDecryptFailure(t, err)
}

func requireDecryptFailure(t *testing.T, err error) {
	t.Helper()
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, DecryptFailure, cerr.Kind)
}
