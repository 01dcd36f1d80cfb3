package rolectl

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/anupsv/coconut-threshold/coconut"
)

// RPState is the relying party's Unkeyed -> Keyed lifecycle (spec 4.11):
// verification is stateless once a verify key is installed.
type RPState int

const (
	RPUnkeyed RPState = iota
	RPKeyed
)

func (s RPState) String() string {
	if s == RPKeyed {
		return "keyed"
	}
	return "unkeyed"
}

// RP is a relying party bound to one verification domain. Grounded on
// original_source/src/rp.rs's RelyingParty.
type RP struct {
	Domain string
	params *coconut.PublicParams
	vk     *coconut.VerifyKey
	state  RPState
	log    zerolog.Logger
}

// NewRP creates an unkeyed relying party for domain.
func NewRP(domain string, params *coconut.PublicParams) *RP {
	return &RP{
		Domain: domain,
		params: params,
		state:  RPUnkeyed,
		log:    zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("role", "rp").Str("domain", domain).Logger(),
	}
}

// SetVerificationKey installs a verify key handed directly by a Client,
// matching rp.rs's set_verification_key, transitioning Unkeyed -> Keyed.
func (rp *RP) SetVerificationKey(vk *coconut.VerifyKey) {
	rp.vk = vk
	rp.state = RPKeyed
	rp.log.Info().Msg("verification key installed")
}

// AggregateAndStoreVerificationKey aggregates >= threshold verify-key
// shares directly from issuers, matching rp.rs's
// aggregate_and_store_verification_key, transitioning Unkeyed -> Keyed.
func (rp *RP) AggregateAndStoreVerificationKey(shares []*coconut.VerifyKeyShare, threshold int) error {
	vk, err := coconut.AggregateVerifyKeys(shares, threshold)
	if err != nil {
		rp.log.Error().Err(err).Msg("verify key aggregation failed")
		return err
	}
	rp.vk = vk
	rp.state = RPKeyed
	rp.log.Info().Msg("verification key aggregated and installed")
	return nil
}

// VerifyID checks a credential proof presented for this RP's domain.
// Verification is stateless once Keyed; it never retries and never accepts
// a proof bound to a different domain.
func (rp *RP) VerifyID(proof *coconut.CredentialProof) error {
	if rp.state != RPKeyed {
		return fmt.Errorf("rolectl: RP.VerifyID: relying party has no verification key installed")
	}
	if proof.Domain != rp.Domain {
		rp.log.Warn().Str("proof_domain", proof.Domain).Msg("credential proof domain mismatch")
		return fmt.Errorf("rolectl: RP.VerifyID: proof domain %q does not match relying party domain %q", proof.Domain, rp.Domain)
	}
	if err := coconut.VerifyCredentialProof(rp.params, rp.vk, proof); err != nil {
		rp.log.Warn().Err(err).Msg("credential proof rejected")
		return err
	}
	rp.log.Info().Msg("credential proof accepted")
	return nil
}
