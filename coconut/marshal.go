package coconut

import (
	"math/big"
)

// scalarByteLen is the fixed width of the BLS12-381 scalar field, in bytes.
// Every scalar that feeds a Fiat-Shamir transcript is encoded at this
// width, per spec's "Scalar encoding: big-endian fixed-width" rule.
const scalarByteLen = 32

// scalarBytes encodes s as a big-endian, fixed-width byte string.
func scalarBytes(s *big.Int) []byte {
	buf := make([]byte, scalarByteLen)
	reduced(s).FillBytes(buf)
	return buf
}

// transcriptBuilder accumulates the exact byte concatenation that feeds a
// Fiat-Shamir challenge, with no separators between fields, per spec's
// external-interfaces section ("its input bytes are exactly the
// concatenation above, with no separators").
type transcriptBuilder struct {
	buf []byte
}

func newTranscript() *transcriptBuilder {
	return &transcriptBuilder{}
}

func (t *transcriptBuilder) g1(p G1Point) *transcriptBuilder {
	t.buf = append(t.buf, p.Bytes()...)
	return t
}

func (t *transcriptBuilder) g2(p G2Point) *transcriptBuilder {
	t.buf = append(t.buf, p.Bytes()...)
	return t
}

func (t *transcriptBuilder) scalar(s *big.Int) *transcriptBuilder {
	t.buf = append(t.buf, scalarBytes(s)...)
	return t
}

func (t *transcriptBuilder) bytes(b []byte) *transcriptBuilder {
	t.buf = append(t.buf, b...)
	return t
}

func (t *transcriptBuilder) challenge() *big.Int {
	return HashToScalar(t.buf)
}

// paramsBytes is the canonical encoding of the public parameters that feeds
// into any transcript referencing "params": label, then every generator in
// declaration order.
func paramsBytes(params *PublicParams) []byte {
	t := newTranscript().bytes(params.Label).g2(params.GTilde).g1(params.G).g1(params.H)
	for _, y := range params.YTilde {
		t.g2(y)
	}
	return t.buf
}

// signatureBytes is the canonical signature transcript order: sigma1 || sigma2.
func signatureBytes(sig *Signature) []byte {
	return newTranscript().g1(sig.Sigma1).g1(sig.Sigma2).buf
}
