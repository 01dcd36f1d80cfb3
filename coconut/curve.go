// Package coconut implements a threshold anonymous credential scheme built
// on Pointcheval-Sanders short randomizable signatures over a Type-3
// bilinear pairing. A threshold of issuers jointly signs a committed set of
// attributes; the holder aggregates, rerandomizes, and later proves
// possession with selective disclosure and a domain-bound pseudonym.
package coconut

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Order is the scalar field modulus of BLS12-381, read from the library
// rather than copied by hand.
func Order() *big.Int {
	m := fr.Modulus()
	return new(big.Int).Set(m)
}

// DST1 and DST2 are package-level domain separation tags for hashing
// arbitrary messages onto G1 and G2 respectively. No function in this
// package uses them: generator and pseudonym-base derivation build their
// own DST from the params label.
const (
	DST1 = "COCONUT-THRESHOLD-CREDENTIAL-BLS12381G1_XMD:SHA-256_SSWU_RO_"
	DST2 = "COCONUT-THRESHOLD-CREDENTIAL-BLS12381G2_XMD:SHA-256_SSWU_RO_"
)

// G1Point wraps a G1 affine point so the Σ-protocol toolkit in sigma.go can
// be written once and instantiated over either pairing group.
type G1Point struct {
	P bls12381.G1Affine
}

// G2Point wraps a G2 affine point for the same reason.
type G2Point struct {
	P bls12381.G2Affine
}

// Point is the capability set the generic Σ-protocol toolkit is built
// against: additive group operations plus scalar multiplication. The
// package has no Identity constructor; points come from
// G1Generator/G2Generator, HashToG1/HashToG2, ParseG1Point/ParseG2Point and
// the group operations below.
type Point[T any] interface {
	Add(other T) T
	Neg() T
	ScalarMul(s *big.Int) T
	Equal(other T) bool
	Bytes() []byte
}

func (p G1Point) Add(other G1Point) G1Point {
	var res bls12381.G1Jac
	res.FromAffine(&p.P)
	var o bls12381.G1Jac
	o.FromAffine(&other.P)
	res.AddAssign(&o)
	var out bls12381.G1Affine
	out.FromJacobian(&res)
	return G1Point{P: out}
}

func (p G1Point) Neg() G1Point {
	var out bls12381.G1Affine
	out.Neg(&p.P)
	return G1Point{P: out}
}

func (p G1Point) ScalarMul(s *big.Int) G1Point {
	var out bls12381.G1Affine
	out.ScalarMultiplication(&p.P, reduced(s))
	return G1Point{P: out}
}

func (p G1Point) Equal(other G1Point) bool {
	return p.P.Equal(&other.P)
}

// IsIdentity reports whether p is the point at infinity.
func (p G1Point) IsIdentity() bool {
	return p.P.IsInfinity()
}

func (p G1Point) Bytes() []byte {
	b := p.P.Bytes()
	return b[:]
}

// ParseG1Point decodes a compressed G1 point produced by Bytes.
func ParseG1Point(data []byte) (G1Point, error) {
	var p bls12381.G1Affine
	if err := p.Unmarshal(data); err != nil {
		return G1Point{}, fmt.Errorf("parse G1 point: %w", err)
	}
	return G1Point{P: p}, nil
}

func (p G2Point) Add(other G2Point) G2Point {
	var res bls12381.G2Jac
	res.FromAffine(&p.P)
	var o bls12381.G2Jac
	o.FromAffine(&other.P)
	res.AddAssign(&o)
	var out bls12381.G2Affine
	out.FromJacobian(&res)
	return G2Point{P: out}
}

func (p G2Point) Neg() G2Point {
	var out bls12381.G2Affine
	out.Neg(&p.P)
	return G2Point{P: out}
}

func (p G2Point) ScalarMul(s *big.Int) G2Point {
	var out bls12381.G2Affine
	out.ScalarMultiplication(&p.P, reduced(s))
	return G2Point{P: out}
}

func (p G2Point) Equal(other G2Point) bool {
	return p.P.Equal(&other.P)
}

// IsIdentity reports whether p is the point at infinity.
func (p G2Point) IsIdentity() bool {
	return p.P.IsInfinity()
}

func (p G2Point) Bytes() []byte {
	b := p.P.Bytes()
	return b[:]
}

// ParseG2Point decodes a compressed G2 point produced by Bytes.
func ParseG2Point(data []byte) (G2Point, error) {
	var p bls12381.G2Affine
	if err := p.Unmarshal(data); err != nil {
		return G2Point{}, fmt.Errorf("parse G2 point: %w", err)
	}
	return G2Point{P: p}, nil
}

func reduced(s *big.Int) *big.Int {
	return new(big.Int).Mod(s, Order())
}

// G1Generator and G2Generator return the standard BLS12-381 base points.
func G1Generator() G1Point {
	_, _, g1, _ := bls12381.Generators()
	return G1Point{P: g1}
}

func G2Generator() G2Point {
	_, _, _, g2 := bls12381.Generators()
	return G2Point{P: g2}
}

// HashToG1 and HashToG2 derive a group element deterministically from a
// message under a domain separation tag, per RFC 9380. Used for the public
// parameter generators (g, h) and any other nothing-up-my-sleeve point a
// component needs, so that no party ever learns the discrete log relating
// two generators.
func HashToG1(msg []byte, dst string) (G1Point, error) {
	p, err := bls12381.HashToG1(msg, []byte(dst))
	if err != nil {
		return G1Point{}, fmt.Errorf("hash to G1: %w", err)
	}
	return G1Point{P: p}, nil
}

func HashToG2(msg []byte, dst string) (G2Point, error) {
	p, err := bls12381.HashToG2(msg, []byte(dst))
	if err != nil {
		return G2Point{}, fmt.Errorf("hash to G2: %w", err)
	}
	return G2Point{P: p}, nil
}

// HashToScalar derives a field element from an arbitrary byte string. Used
// throughout for Fiat-Shamir challenges: every proof's challenge is the
// output of this function applied to its canonical transcript.
func HashToScalar(data []byte) *big.Int {
	h := sha256.Sum256(data)
	n := new(big.Int).SetBytes(h[:])
	return n.Mod(n, Order())
}

// Pair evaluates the Type-3 pairing e(a, b) in GT.
func Pair(a G1Point, b G2Point) (bls12381.GT, error) {
	res, err := bls12381.Pair([]bls12381.G1Affine{a.P}, []bls12381.G2Affine{b.P})
	if err != nil {
		return bls12381.GT{}, fmt.Errorf("pairing: %w", err)
	}
	return res, nil
}

// PairingCheck reports whether the product of pairings e(a1,b1)*e(a2,b2)*...
// equals the identity in GT, i.e. whether the supplied (G1, G2) pairs
// multiply out to 1. Credential-proof verification ends in one call of
// this; request-proof verification uses no pairing.
func PairingCheck(g1s []G1Point, g2s []G2Point) (bool, error) {
	if len(g1s) != len(g2s) {
		return false, fmt.Errorf("pairing check: mismatched operand counts (%d g1, %d g2)", len(g1s), len(g2s))
	}
	a := make([]bls12381.G1Affine, len(g1s))
	b := make([]bls12381.G2Affine, len(g2s))
	for i := range g1s {
		a[i] = g1s[i].P
		b[i] = g2s[i].P
	}
	ok, err := bls12381.PairingCheck(a, b)
	if err != nil {
		return false, fmt.Errorf("pairing check: %w", err)
	}
	return ok, nil
}

// RandomScalar draws a uniformly random nonzero scalar in [1, Order) from
// the supplied collaborator. Every call site that needs randomness takes an
// io.Reader parameter rather than reaching for crypto/rand directly, so
// test code can inject determinism and production code can inject an HSM
// or other external entropy source.
func RandomScalar(read func([]byte) (int, error)) (*big.Int, error) {
	for {
		buf := make([]byte, 48)
		if _, err := read(buf); err != nil {
			return nil, fmt.Errorf("read randomness: %w", err)
		}
		n := new(big.Int).SetBytes(buf)
		n.Mod(n, Order())
		if n.Sign() != 0 {
			return n, nil
		}
	}
}
