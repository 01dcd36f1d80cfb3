package coconut

import (
	"io"
	"math/big"
	"sort"
)

// RequestProof is the Sigma-protocol proof attached to a SignatureRequest,
// proving jointly that every ciphertext encrypts the message committed into
// C, without revealing any hidden attribute or its randomness. Grounded on
// spec's 4.7 (request proof of knowledge); assembled here as one proof per
// linear equation (c1_k, c2_k for each hidden index, and the aggregate
// commitment C) all driven by a single Fiat-Shamir challenge, with the
// per-index randomness shared across its two equations the way spec's
// "shared randomness across sub-proofs" mechanism works.
type RequestProof struct {
	Order     []int
	T1        map[int]G1Point
	T2        map[int]G1Point
	TC        G1Point
	ZR        map[int]*big.Int
	ZM        map[int]*big.Int
	Challenge *big.Int
}

// NewRequestProof builds the proof that req was constructed honestly from
// hidden (the plaintext hidden attribute values) and randomness (the
// per-index ElGamal randomness retained from NewSignatureRequest).
func NewRequestProof(params *PublicParams, pk G1Point, req *SignatureRequest, hidden map[int]*big.Int, randomness *RequestRandomness, rng io.Reader) (*RequestProof, error) {
	const op = "NewRequestProof"
	if len(hidden) != len(req.Hidden) || len(randomness.R) != len(req.Hidden) {
		return nil, badShape(op, "hidden attribute and randomness maps must match the request's hidden ciphertext count")
	}

	order := sortedKeys(req.Hidden)

	rhoR := make(map[int]*big.Int, len(order))
	rhoM := make(map[int]*big.Int, len(order))
	eq1 := make(map[int]*Committed[G1Point], len(order))
	eq2 := make(map[int]*Committed[G1Point], len(order))
	t1 := make(map[int]G1Point, len(order))
	t2 := make(map[int]G1Point, len(order))

	order2 := Order()
	sumRhoM := new(big.Int)
	sumRhoR := new(big.Int)

	for _, k := range order {
		c1 := NewCommitting[G1Point]()
		rk, err := c1.CommitRandom(params.G, rng)
		if err != nil {
			return nil, err
		}
		rhoR[k] = rk
		eq1[k] = c1.Finish()
		t1[k] = eq1[k].T

		c2 := NewCommitting[G1Point]()
		c2.CommitWithBlinding(pk, rk)
		mk, err := c2.CommitRandom(params.H, rng)
		if err != nil {
			return nil, err
		}
		rhoM[k] = mk
		eq2[k] = c2.Finish()
		t2[k] = eq2[k].T

		sumRhoM.Add(sumRhoM, mk)
		sumRhoM.Mod(sumRhoM, order2)
		sumRhoR.Add(sumRhoR, rk)
		sumRhoR.Mod(sumRhoR, order2)
	}

	cC := NewCommitting[G1Point]()
	cC.CommitWithBlinding(params.H, sumRhoM)
	cC.CommitWithBlinding(pk, sumRhoR)
	eqC := cC.Finish()

	challenge := requestProofChallenge(params, pk, req, t1, t2, eqC.T, order)

	zr := make(map[int]*big.Int, len(order))
	zm := make(map[int]*big.Int, len(order))
	for _, k := range order {
		p1, err := eq1[k].GenProof([]*big.Int{randomness.R[k]}, challenge)
		if err != nil {
			return nil, err
		}
		zr[k] = p1.Responses[0]

		p2, err := eq2[k].GenProof([]*big.Int{randomness.R[k], hidden[k]}, challenge)
		if err != nil {
			return nil, err
		}
		zm[k] = p2.Responses[1]
	}

	return &RequestProof{
		Order:     order,
		T1:        t1,
		T2:        t2,
		TC:        eqC.T,
		ZR:        zr,
		ZM:        zm,
		Challenge: challenge,
	}, nil
}

// Verify recomputes the Fiat-Shamir challenge from the request and proof
// commitments, then checks every base equation. Rejection is a single
// Boolean per spec's "no partial acceptance" policy.
func (rp *RequestProof) Verify(params *PublicParams, pk G1Point, req *SignatureRequest) error {
	const op = "RequestProof.Verify"

	order := sortedKeys(req.Hidden)
	if len(order) != len(rp.Order) {
		return badShape(op, "proof order length mismatch with request")
	}
	for i, k := range order {
		if rp.Order[i] != k {
			return badShape(op, "proof order does not match request's hidden index set")
		}
	}

	challenge := requestProofChallenge(params, pk, req, rp.T1, rp.T2, rp.TC, order)
	if challenge.Cmp(rp.Challenge) != 0 {
		return proofRejected(op, "recomputed challenge does not match proof challenge")
	}

	order2 := Order()
	sumZM := new(big.Int)
	sumZR := new(big.Int)

	for _, k := range order {
		ct := req.Hidden[k]

		proof1 := &Proof[G1Point]{T: rp.T1[k], Responses: []*big.Int{rp.ZR[k]}}
		ok, err := proof1.Verify([]G1Point{params.G}, ct.C1, challenge)
		if err != nil {
			return err
		}
		if !ok {
			return proofRejected(op, "c1 equation failed for index %d", k)
		}

		proof2 := &Proof[G1Point]{T: rp.T2[k], Responses: []*big.Int{rp.ZR[k], rp.ZM[k]}}
		ok, err = proof2.Verify([]G1Point{pk, params.H}, ct.C2, challenge)
		if err != nil {
			return err
		}
		if !ok {
			return proofRejected(op, "c2 equation failed for index %d", k)
		}

		sumZM.Add(sumZM, rp.ZM[k])
		sumZM.Mod(sumZM, order2)
		sumZR.Add(sumZR, rp.ZR[k])
		sumZR.Mod(sumZR, order2)
	}

	proofC := &Proof[G1Point]{T: rp.TC, Responses: []*big.Int{sumZM, sumZR}}
	ok, err := proofC.Verify([]G1Point{params.H, pk}, req.C, challenge)
	if err != nil {
		return err
	}
	if !ok {
		return proofRejected(op, "aggregate commitment equation failed")
	}

	return nil
}

func requestProofChallenge(params *PublicParams, pk G1Point, req *SignatureRequest, t1, t2 map[int]G1Point, tc G1Point, order []int) *big.Int {
	t := newTranscript()
	for _, k := range order {
		t.g1(req.Hidden[k].C1).g1(req.Hidden[k].C2)
	}
	for _, k := range sortedVisibleKeys(req.Visible) {
		t.scalar(req.Visible[k])
	}
	t.g1(req.C)
	t.g1(pk)
	t.bytes(paramsBytes(params))
	for _, k := range order {
		t.g1(t1[k]).g1(t2[k])
	}
	t.g1(tc)
	return t.challenge()
}

func sortedKeys(m map[int]Ciphertext) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedVisibleKeys(m map[int]*big.Int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
