package coconut

import (
	"fmt"
	"io"
	"math/big"
)

// ElGamalKeys is a user's per-epoch ElGamal keypair in G1, used to hide
// hidden attributes from the issuers during blind signing. Grounded on
// original_source/src/client.rs's ElGamalKeys (there typed over G2; this
// repo follows spec.md's G1 choice, since the signature request's
// ciphertexts and commitment live in G1 alongside g, h).
type ElGamalKeys struct {
	SK *big.Int
	PK G1Point
}

// ElGamalKeyGen samples sk and computes pk = base^sk.
func ElGamalKeyGen(base G1Point, rng io.Reader) (*ElGamalKeys, error) {
	sk, err := RandomScalar(rng.Read)
	if err != nil {
		return nil, fmt.Errorf("ElGamalKeyGen: %w", err)
	}
	return &ElGamalKeys{SK: sk, PK: base.ScalarMul(sk)}, nil
}

// Ciphertext is an ElGamal ciphertext (c1, c2) = (g^r, pk^r * h^m) in G1,
// one per hidden attribute in a signature request.
type Ciphertext struct {
	C1 G1Point
	C2 G1Point
}

// ElGamalEncrypt encrypts m under pk with base g and attribute base h,
// using the supplied randomness r (retained by the caller for the request
// proof, never stored in the ciphertext itself).
func ElGamalEncrypt(g, h, pk G1Point, m, r *big.Int) Ciphertext {
	c1 := g.ScalarMul(r)
	c2 := pk.ScalarMul(r).Add(h.ScalarMul(m))
	return Ciphertext{C1: c1, C2: c2}
}

// ElGamalDecrypt recovers h^m from a ciphertext, not m itself: dec(sk,
// (c1,c2)) = c2 - c1^sk. Blind signing operates on this group element
// directly; the scalar m is never recovered by any party after encryption.
// Returns DecryptFailure if the ciphertext decrypts to the group identity.
// An honest encryption of m = 0 (mod Order) decrypts to h^0, the identity,
// and is rejected the same way.
func ElGamalDecrypt(sk *big.Int, ct Ciphertext) (G1Point, error) {
	const op = "ElGamalDecrypt"
	shared := ct.C1.ScalarMul(sk)
	result := ct.C2.Add(shared.Neg())
	if result.IsIdentity() {
		return G1Point{}, decryptFailure(op, "decryption yielded the group identity")
	}
	return result, nil
}
