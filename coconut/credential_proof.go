package coconut

import (
	"io"
	"math/big"
	"sort"
)

// UserSecretIndex is the attribute slot reserved for the holder's long-term
// secret s, the value the domain-specific pseudonym is bound to. It is
// never a member of a revealed set; ProveCredential and
// VerifyCredentialProof both reject a revealed set containing it as
// BadShape, since disclosing it would make the pseudonym meaningless.
const UserSecretIndex = 0

// CredentialProof is a holder's presentation of a credential to a relying
// party: a re-randomized signature, a commitment to the still-hidden
// attributes, a domain-bound pseudonym, and the three companion
// Sigma-protocol proofs that bind them together under one Fiat-Shamir
// challenge. Grounded on original_source/src/js_pok_sig.rs's
// JSPoKOfSignatureProof (sig, J, proof_vc, phi, shared_randomness,
// target_domain).
type CredentialProof struct {
	SigmaPrime Signature
	J          G2Point
	PoKVC      *Proof[G2Point]
	Phi        G1Point
	PoKPhi     *Proof[G1Point]
	E1         G1Point
	PoKE1      *Proof[G1Point]
	E2         G1Point
	PoKE2      *Proof[G1Point]
	Domain     string
	Revealed   map[int]*big.Int
	Challenge  *big.Int
}

func pseudonymBase(params *PublicParams, domain string) (G1Point, error) {
	return HashToG1([]byte(domain), string(params.Label)+" : pseudonym")
}

// ProveCredential builds a selective-disclosure presentation of sig over
// the full attribute vector messages, revealing exactly the attributes at
// revealedIndices and proving knowledge of the rest in zero knowledge,
// bound to domain via the pseudonym phi = H(domain)^s.
//
// The companion proof (PoKPhi, PoKE1, PoKE2) proves knowledge of the same
// user secret s used in the main attribute proof by reusing its
// Sigma-protocol blinding factor for s across all three commit rounds
// (spec's "shared randomness across sub-proofs" mechanism): the pseudonym
// commitment, and the E2 = g^gamma2 * h^s linked-ciphertext commitment, both
// bind their s-response to the same blinding as the main proof's
// UserSecretIndex term, so VerifyCredentialProof can catch a forged
// pseudonym or ciphertext by comparing responses rather than trusting them
// independently.
func ProveCredential(params *PublicParams, vk *VerifyKey, sig *Signature, messages map[int]*big.Int, revealedIndices []int, domain string, rng io.Reader) (*CredentialProof, error) {
	const op = "ProveCredential"

	revealed := make(map[int]bool, len(revealedIndices))
	for _, k := range revealedIndices {
		if err := params.ValidateIndices(op, k); err != nil {
			return nil, err
		}
		if k == UserSecretIndex {
			return nil, badShape(op, "attribute index %d is the reserved user-secret slot and cannot be revealed", k)
		}
		revealed[k] = true
	}
	if len(messages) != params.L {
		return nil, badShape(op, "expected %d attribute values, got %d", params.L, len(messages))
	}
	s, ok := messages[UserSecretIndex]
	if !ok {
		return nil, badShape(op, "messages missing the user-secret slot %d", UserSecretIndex)
	}

	order := Order()
	r, err := RandomScalar(rng.Read)
	if err != nil {
		return nil, err
	}
	t, err := RandomScalar(rng.Read)
	if err != nil {
		return nil, err
	}

	sigma1Prime := sig.Sigma1.ScalarMul(r)
	sigma2Inner := sig.Sigma2.Add(sig.Sigma1.ScalarMul(t))
	sigma2Prime := sigma2Inner.ScalarMul(r)
	sigmaPrime := Signature{Sigma1: sigma1Prime, Sigma2: sigma2Prime}

	hiddenOrder := hiddenIndicesAscending(params.L, revealed)

	j := params.GTilde.ScalarMul(t)
	for _, k := range hiddenOrder {
		j = j.Add(vk.YTilde[k].ScalarMul(messages[k]))
	}

	mainCommit := NewCommitting[G2Point]()
	_, err = mainCommit.CommitRandom(params.GTilde, rng)
	if err != nil {
		return nil, err
	}
	rhoHidden := make(map[int]*big.Int, len(hiddenOrder))
	var r1s *big.Int
	for _, k := range hiddenOrder {
		if k == UserSecretIndex {
			rho, err := RandomScalar(rng.Read)
			if err != nil {
				return nil, err
			}
			mainCommit.CommitWithBlinding(vk.YTilde[k], rho)
			rhoHidden[k] = rho
			r1s = rho
			continue
		}
		rho, err := mainCommit.CommitRandom(vk.YTilde[k], rng)
		if err != nil {
			return nil, err
		}
		rhoHidden[k] = rho
	}
	if r1s == nil {
		// UserSecretIndex is always hidden (revealing it is rejected above),
		// so this can only happen if L == 0, already excluded by params.
		return nil, badShape(op, "user-secret slot missing from hidden attribute set")
	}
	mainCommitted := mainCommit.Finish()

	phiBase, err := pseudonymBase(params, domain)
	if err != nil {
		return nil, err
	}
	phi := phiBase.ScalarMul(s)

	phiCommitting := NewCommitting[G1Point]()
	phiCommitting.CommitWithBlinding(phiBase, r1s)
	phiCommitted := phiCommitting.Finish()

	gamma1, err := RandomScalar(rng.Read)
	if err != nil {
		return nil, err
	}
	gamma2, err := RandomScalar(rng.Read)
	if err != nil {
		return nil, err
	}
	e1 := params.G.ScalarMul(gamma1)
	e2 := params.G.ScalarMul(gamma2).Add(params.H.ScalarMul(s))

	e1Committing := NewCommitting[G1Point]()
	_, err = e1Committing.CommitRandom(params.G, rng)
	if err != nil {
		return nil, err
	}
	e1Committed := e1Committing.Finish()

	e2Committing := NewCommitting[G1Point]()
	if _, err := e2Committing.CommitRandom(params.G, rng); err != nil {
		return nil, err
	}
	e2Committing.CommitWithBlinding(params.H, r1s)
	e2Committed := e2Committing.Finish()

	challenge := credentialChallenge(params, vk, &sigmaPrime, j, hiddenOrder, mainCommitted.T, phi, phiCommitted.T, e1Committed.T, e2Committed.T)

	mainSecrets := make([]*big.Int, 0, 1+len(hiddenOrder))
	mainSecrets = append(mainSecrets, t)
	for _, k := range hiddenOrder {
		mainSecrets = append(mainSecrets, messages[k])
	}
	mainProof, err := mainCommitted.GenProof(mainSecrets, challenge)
	if err != nil {
		return nil, err
	}

	phiProof, err := phiCommitted.GenProof([]*big.Int{s}, challenge)
	if err != nil {
		return nil, err
	}

	e1Proof, err := e1Committed.GenProof([]*big.Int{gamma1}, challenge)
	if err != nil {
		return nil, err
	}

	e2Proof, err := e2Committed.GenProof([]*big.Int{gamma2, s}, challenge)
	if err != nil {
		return nil, err
	}

	revealedValues := make(map[int]*big.Int, len(revealedIndices))
	for k := range revealed {
		revealedValues[k] = new(big.Int).Mod(messages[k], order)
	}

	return &CredentialProof{
		SigmaPrime: sigmaPrime,
		J:          j,
		PoKVC:      mainProof,
		Phi:        phi,
		PoKPhi:     phiProof,
		E1:         e1,
		PoKE1:      e1Proof,
		E2:         e2,
		PoKE2:      e2Proof,
		Domain:     domain,
		Revealed:   revealedValues,
		Challenge:  challenge,
	}, nil
}

// VerifyCredentialProof checks every equation of a CredentialProof against
// an aggregated (or single-signer) VerifyKey, per spec's 4.10 Verify phase.
func VerifyCredentialProof(params *PublicParams, vk *VerifyKey, proof *CredentialProof) error {
	const op = "VerifyCredentialProof"

	if proof.SigmaPrime.Sigma1.IsIdentity() {
		return proofRejected(op, "sigma1' is the group identity")
	}

	revealedIdx := make([]int, 0, len(proof.Revealed))
	for k := range proof.Revealed {
		if err := params.ValidateIndices(op, k); err != nil {
			return err
		}
		if k == UserSecretIndex {
			return badShape(op, "revealed set contains the reserved user-secret slot")
		}
		revealedIdx = append(revealedIdx, k)
	}
	revealedSet := make(map[int]bool, len(revealedIdx))
	for _, k := range revealedIdx {
		revealedSet[k] = true
	}
	hiddenOrder := hiddenIndicesAscending(params.L, revealedSet)

	if len(proof.PoKVC.Responses) != 1+len(hiddenOrder) {
		return badShape(op, "main proof response count %d does not match 1+hidden count %d", len(proof.PoKVC.Responses), 1+len(hiddenOrder))
	}

	challenge := credentialChallenge(params, vk, &proof.SigmaPrime, proof.J, hiddenOrder, proof.PoKVC.T, proof.Phi, proof.PoKPhi.T, proof.PoKE1.T, proof.PoKE2.T)
	if challenge.Cmp(proof.Challenge) != 0 {
		return proofRejected(op, "recomputed challenge does not match proof challenge")
	}

	mainBases := make([]G2Point, 0, 1+len(hiddenOrder))
	mainBases = append(mainBases, params.GTilde)
	for _, k := range hiddenOrder {
		mainBases = append(mainBases, vk.YTilde[k])
	}
	ok, err := proof.PoKVC.Verify(mainBases, proof.J, challenge)
	if err != nil {
		return err
	}
	if !ok {
		return proofRejected(op, "attribute commitment equation failed")
	}

	jPrime := proof.J
	for _, k := range sortedRevealedKeys(proof.Revealed) {
		jPrime = jPrime.Add(vk.YTilde[k].ScalarMul(proof.Revealed[k]))
	}

	phiBase, err := pseudonymBase(params, proof.Domain)
	if err != nil {
		return err
	}
	ok, err = proof.PoKPhi.Verify([]G1Point{phiBase}, proof.Phi, challenge)
	if err != nil {
		return err
	}
	if !ok {
		return proofRejected(op, "pseudonym equation failed")
	}

	ok, err = proof.PoKE1.Verify([]G1Point{params.G}, proof.E1, challenge)
	if err != nil {
		return err
	}
	if !ok {
		return proofRejected(op, "linked-ciphertext E1 equation failed")
	}

	ok, err = proof.PoKE2.Verify([]G1Point{params.G, params.H}, proof.E2, challenge)
	if err != nil {
		return err
	}
	if !ok {
		return proofRejected(op, "linked-ciphertext E2 equation failed")
	}

	secretSlotPos := -1
	for i, k := range hiddenOrder {
		if k == UserSecretIndex {
			secretSlotPos = i + 1 // +1 for the leading g_tilde/t response
			break
		}
	}
	if secretSlotPos < 0 {
		return badShape(op, "user-secret slot not present among hidden attributes")
	}
	if proof.PoKVC.Responses[secretSlotPos].Cmp(proof.PoKPhi.Responses[0]) != 0 {
		return proofRejected(op, "pseudonym and attribute proof disagree on the user secret")
	}
	if len(proof.PoKE2.Responses) != 2 {
		return badShape(op, "linked-ciphertext E2 proof expects 2 responses, got %d", len(proof.PoKE2.Responses))
	}
	if proof.PoKE2.Responses[1].Cmp(proof.PoKPhi.Responses[0]) != 0 {
		return proofRejected(op, "linked ciphertext and pseudonym disagree on the user secret")
	}

	xTilde := vk.XTilde
	pairOK, err := PairingCheck(
		[]G1Point{proof.SigmaPrime.Sigma1, proof.SigmaPrime.Sigma2.Neg()},
		[]G2Point{jPrime.Add(xTilde), params.GTilde},
	)
	if err != nil {
		return err
	}
	if !pairOK {
		return proofRejected(op, "pairing equation failed")
	}

	return nil
}

func hiddenIndicesAscending(L int, revealed map[int]bool) []int {
	hidden := make([]int, 0, L-len(revealed))
	for k := 0; k < L; k++ {
		if !revealed[k] {
			hidden = append(hidden, k)
		}
	}
	return hidden
}

func sortedRevealedKeys(m map[int]*big.Int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func credentialChallenge(params *PublicParams, vk *VerifyKey, sigmaPrime *Signature, j G2Point, hiddenOrder []int, pokVCCommit G2Point, phi G1Point, phiCommit, e1Commit, e2Commit G1Point) *big.Int {
	t := newTranscript()
	t.g1(sigmaPrime.Sigma1).g1(sigmaPrime.Sigma2)
	t.g2(j)
	t.g2(params.GTilde)
	for _, k := range hiddenOrder {
		t.g2(vk.YTilde[k])
	}
	t.g2(pokVCCommit)
	t.g1(phi)
	t.g1(phiCommit)
	t.g1(e1Commit)
	t.g1(e2Commit)
	return t.challenge()
}
