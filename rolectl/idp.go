package rolectl

import (
	"github.com/rs/zerolog"

	"github.com/anupsv/coconut-threshold/coconut"
)

// IdP is one threshold issuer. It is stateless per request (spec 4.11): it
// holds only its long-lived SignerShare and the shared PublicParams, and
// every BlindSign call is an independent operation. Grounded on
// original_source/src/d_idp.rs's DistributedIdP.
type IdP struct {
	ID     int
	share  *coconut.SignerShare
	params *coconut.PublicParams
	log    zerolog.Logger
}

// NewIdP wraps a signer share for use in the issuance pipeline.
func NewIdP(share *coconut.SignerShare, params *coconut.PublicParams) *IdP {
	return &IdP{
		ID:     share.ID,
		share:  share,
		params: params,
		log:    zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("role", "idp").Int("signer_id", share.ID).Logger(),
	}
}

// VerifyKeyShare returns the public half of this IdP's signer share, for
// handing to a relying party or another aggregator.
func (idp *IdP) VerifyKeyShare() *coconut.VerifyKeyShare {
	return idp.share.Public()
}

// BlindSign verifies the request proof first and, only if it holds,
// produces a blind signature share. Rejection never leaks any attribute or
// signer secret material into the log, only the failure kind. Grounded on
// d_idp.rs's verify_and_blind_sign.
func (idp *IdP) BlindSign(pk coconut.G1Point, req *coconut.SignatureRequest, proof *coconut.RequestProof) (*coconut.BlindSignature, error) {
	bs, err := idp.share.BlindSign(idp.params, pk, req, proof)
	if err != nil {
		idp.log.Warn().Err(err).Msg("signature request rejected")
		return nil, err
	}
	idp.log.Info().Msg("blind signature share issued")
	return bs, nil
}
