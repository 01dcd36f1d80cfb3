package coconut

import "fmt"

// PublicParams holds the generators every participant in the protocol
// shares read-only for the lifetime of an epoch: the G2 generator g_tilde,
// one G2 base Y_tilde[k] per attribute slot, and the G1 generators g, h used
// for ElGamal encryption and attribute commitments. All of it is derived
// deterministically from (attribute count, label, threshold, total) by
// hash-to-curve, so two calls with the same inputs are byte-identical and
// no party ever learns a discrete-log relation between any two generators.
type PublicParams struct {
	L         int
	Label     []byte
	Threshold int
	Total     int
	GTilde    G2Point
	YTilde    []G2Point
	G         G1Point
	H         G1Point
}

// NewPublicParams derives the parameters for an attrCount-attribute
// credential signed by a t-of-n set of issuers. Rejects threshold > total
// or attrCount < 1 as BadShape before doing any curve work.
func NewPublicParams(attrCount int, label []byte, threshold, total int) (*PublicParams, error) {
	const op = "NewPublicParams"
	if attrCount < 1 {
		return nil, badShape(op, "attribute count must be >= 1, got %d", attrCount)
	}
	if threshold < 1 || threshold > total {
		return nil, badShape(op, "threshold %d must satisfy 1 <= threshold <= total (%d)", threshold, total)
	}

	gTilde, err := HashToG2(label, string(label)+" : g_tilde")
	if err != nil {
		return nil, fmt.Errorf("%s: derive g_tilde: %w", op, err)
	}
	g, err := HashToG1(label, string(label)+" : g")
	if err != nil {
		return nil, fmt.Errorf("%s: derive g: %w", op, err)
	}
	h, err := HashToG1(label, string(label)+" : h")
	if err != nil {
		return nil, fmt.Errorf("%s: derive h: %w", op, err)
	}

	yTilde := make([]G2Point, attrCount)
	for k := 0; k < attrCount; k++ {
		dst := fmt.Sprintf("%s : Ytilde[%d]", label, k)
		yTilde[k], err = HashToG2(label, dst)
		if err != nil {
			return nil, fmt.Errorf("%s: derive Ytilde[%d]: %w", op, k, err)
		}
	}

	return &PublicParams{
		L:         attrCount,
		Label:     append([]byte(nil), label...),
		Threshold: threshold,
		Total:     total,
		GTilde:    gTilde,
		YTilde:    yTilde,
		G:         g,
		H:         h,
	}, nil
}

// ValidateIndices checks that every index in idx lies in [0, L), returning
// BadShape on the first violation. Every component that accepts
// caller-supplied attribute indices (revealed sets, hidden/visible
// partitions) calls this before doing any group arithmetic.
func (p *PublicParams) ValidateIndices(op string, idx ...int) error {
	for _, i := range idx {
		if i < 0 || i >= p.L {
			return badShape(op, "attribute index %d out of range [0,%d)", i, p.L)
		}
	}
	return nil
}
