// Package rolectl implements the thin orchestration roles described in
// spec.md's "Orchestration roles" component: Client, IdP, and RP state
// machines that drive the cryptographic primitives in coconut/ through the
// full issuance-and-presentation pipeline, the way
// original_source/src/client.rs, d_idp.rs, and rp.rs each conduct one role.
package rolectl

import (
	"fmt"
	"io"
	"math/big"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anupsv/coconut-threshold/coconut"
)

// ClientState is the Client's position in its Fresh -> Requested -> Signed
// -> Verifiable lifecycle (spec 4.11).
type ClientState int

const (
	ClientFresh ClientState = iota
	ClientRequested
	ClientSigned
	ClientVerifiable
)

func (s ClientState) String() string {
	switch s {
	case ClientFresh:
		return "fresh"
	case ClientRequested:
		return "requested"
	case ClientSigned:
		return "signed"
	case ClientVerifiable:
		return "verifiable"
	default:
		return "unknown"
	}
}

// Client conducts a single credential's issuance and presentation: it holds
// the ElGamal keypair and attribute vector for the lifetime of one
// credential epoch and walks through RequestID -> VerifySignatures ->
// AggregateVerifyKey -> ProveCredential, mirroring client.rs's
// request_id/verify_signatures/offer_ps_verkey/prove_id.
type Client struct {
	params   *coconut.PublicParams
	elgamal  *coconut.ElGamalKeys
	messages map[int]*big.Int
	state    ClientState
	log      zerolog.Logger
	session  uuid.UUID

	request      *coconut.SignatureRequest
	randomness   *coconut.RequestRandomness
	requestProof *coconut.RequestProof

	signature *coconut.Signature
	verifyKey *coconut.VerifyKey
}

// NewClient creates a Client holding the full attribute vector messages
// (index coconut.UserSecretIndex must hold the long-term user secret) and a
// fresh ElGamal keypair for this epoch.
func NewClient(params *coconut.PublicParams, messages map[int]*big.Int, rng io.Reader) (*Client, error) {
	if len(messages) != params.L {
		return nil, fmt.Errorf("rolectl: NewClient: expected %d attributes, got %d", params.L, len(messages))
	}
	if _, ok := messages[coconut.UserSecretIndex]; !ok {
		return nil, fmt.Errorf("rolectl: NewClient: messages missing user-secret slot %d", coconut.UserSecretIndex)
	}
	keys, err := coconut.ElGamalKeyGen(params.G, rng)
	if err != nil {
		return nil, fmt.Errorf("rolectl: NewClient: %w", err)
	}
	session := uuid.New()
	return &Client{
		params:   params,
		elgamal:  keys,
		messages: messages,
		state:    ClientFresh,
		log:      zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("role", "client").Str("session", session.String()).Logger(),
		session:  session,
	}, nil
}

// ElGamalPublicKey returns the Client's ElGamal public key, handed to
// issuers alongside the signature request.
func (c *Client) ElGamalPublicKey() coconut.G1Point {
	return c.elgamal.PK
}

// RequestID builds a SignatureRequest and its proof of knowledge over
// hidden and visible, transitioning Fresh -> Requested.
func (c *Client) RequestID(hidden, visible map[int]*big.Int, rng io.Reader) (*coconut.SignatureRequest, *coconut.RequestProof, error) {
	if c.state != ClientFresh {
		return nil, nil, fmt.Errorf("rolectl: Client.RequestID: invalid state %s, expected %s", c.state, ClientFresh)
	}

	req, randomness, err := coconut.NewSignatureRequest(c.params, c.elgamal.PK, hidden, visible, rng)
	if err != nil {
		c.log.Error().Err(err).Msg("signature request construction failed")
		return nil, nil, err
	}
	proof, err := coconut.NewRequestProof(c.params, c.elgamal.PK, req, hidden, randomness, rng)
	if err != nil {
		c.log.Error().Err(err).Msg("request proof construction failed")
		return nil, nil, err
	}

	c.request = req
	c.randomness = randomness
	c.requestProof = proof
	c.state = ClientRequested
	c.log.Info().Int("hidden_count", len(hidden)).Int("visible_count", len(visible)).Msg("signature request built")
	return req, proof, nil
}

// VerifySignatures unblinds each collected BlindSignature and aggregates
// the result into a single Signature once at least threshold shares are
// present, transitioning Requested -> Signed.
func (c *Client) VerifySignatures(blinded map[int]*coconut.BlindSignature, threshold int) error {
	if c.state != ClientRequested {
		return fmt.Errorf("rolectl: Client.VerifySignatures: invalid state %s, expected %s", c.state, ClientRequested)
	}

	shares := make([]*coconut.SignatureShare, 0, len(blinded))
	for id, bs := range blinded {
		share, err := bs.Unblind(id, c.elgamal.SK)
		if err != nil {
			c.log.Error().Err(err).Int("signer", id).Msg("unblind failed")
			return err
		}
		shares = append(shares, share)
	}

	sig, err := coconut.AggregateSignatureShares(shares, threshold)
	if err != nil {
		c.log.Error().Err(err).Msg("signature aggregation failed")
		return err
	}

	c.signature = sig
	c.state = ClientSigned
	c.log.Info().Int("share_count", len(shares)).Msg("signature shares aggregated")
	return nil
}

// AggregateVerifyKey aggregates the collected verify-key shares so the
// Client can present credentials once a signature is also available,
// transitioning Signed -> Verifiable. Grounded on client.rs's
// aggregate_and_store_signature / offer_ps_verkey pairing.
func (c *Client) AggregateVerifyKey(shares []*coconut.VerifyKeyShare, threshold int) error {
	if c.state != ClientSigned {
		return fmt.Errorf("rolectl: Client.AggregateVerifyKey: invalid state %s, expected %s", c.state, ClientSigned)
	}
	vk, err := coconut.AggregateVerifyKeys(shares, threshold)
	if err != nil {
		c.log.Error().Err(err).Msg("verify key aggregation failed")
		return err
	}
	c.verifyKey = vk
	c.state = ClientVerifiable
	c.log.Info().Msg("verify key aggregated, credential is verifiable")
	return nil
}

// OfferVerifyKey hands the aggregated verify key to a relying party, out of
// band, matching client.rs's offer_ps_verkey / SerializedRelyingParty's
// set_verification_key flow.
func (c *Client) OfferVerifyKey() (*coconut.VerifyKey, error) {
	if c.verifyKey == nil {
		return nil, fmt.Errorf("rolectl: Client.OfferVerifyKey: no verify key aggregated yet")
	}
	return c.verifyKey, nil
}

// ProveCredential builds a selective-disclosure presentation for domain,
// revealing revealedIndices. Requires the Verifiable state.
func (c *Client) ProveCredential(revealedIndices []int, domain string, rng io.Reader) (*coconut.CredentialProof, error) {
	if c.state != ClientVerifiable {
		return nil, fmt.Errorf("rolectl: Client.ProveCredential: invalid state %s, expected %s", c.state, ClientVerifiable)
	}
	proof, err := coconut.ProveCredential(c.params, c.verifyKey, c.signature, c.messages, revealedIndices, domain, rng)
	if err != nil {
		c.log.Error().Err(err).Str("domain", domain).Msg("credential proof construction failed")
		return nil, err
	}
	c.log.Info().Str("domain", domain).Int("revealed_count", len(revealedIndices)).Msg("credential proof built")
	return proof, nil
}

// State returns the Client's current lifecycle state.
func (c *Client) State() ClientState {
	return c.state
}
