package backend

// G1LinearRelation and GTLinearRelation are the two generalized Schnorr
// primitives every statement in pkg/statement reduces to: a claim of the
// form Target = sum_i Bases[i]^{x_i} for secret exponents x_i, proved
// without revealing the x_i.
//
// The composite proof engine (pkg/proof) drives these directly rather than
// having each relation run its own Fiat-Shamir challenge: it collects every
// statement's announcement, derives one global challenge over all of them
// (transcript.go), and then asks each relation for its responses. Two
// relations sharing the same blind for a given secret position (the
// mechanism behind witness-equality meta-statements) necessarily produce
// identical responses at that position once the shared global challenge is
// applied, which is exactly what Verify and the engine's cross-statement
// equality check rely on.
type G1LinearRelation struct {
	Bases  []G1Point
	Target G1Point
}

// Commit returns the prover's announcement sum(Bases[i]^{blinds[i]}).
func (r G1LinearRelation) Commit(blinds []Scalar) (G1Point, error) {
	if len(blinds) != len(r.Bases) {
		return G1Point{}, ErrMessageCountMismatch
	}
	return MultiScalarMulG1(r.Bases, blinds), nil
}

// Respond returns z_i = blinds[i] + challenge*secrets[i].
func (r G1LinearRelation) Respond(blinds, secrets []Scalar, challenge Scalar) []Scalar {
	out := make([]Scalar, len(blinds))
	for i := range blinds {
		out[i] = blinds[i].Add(challenge.Mul(secrets[i]))
	}
	return out
}

// Verify checks sum(Bases[i]^{responses[i]}) == announcement + Target^challenge.
func (r G1LinearRelation) Verify(announcement G1Point, responses []Scalar, challenge Scalar) bool {
	if len(responses) != len(r.Bases) {
		return false
	}
	lhs := MultiScalarMulG1(r.Bases, responses)
	rhs := announcement.Add(r.Target.ScalarMul(challenge))
	return lhs.Equal(rhs)
}

// GTLinearRelation is the target-group analogue, used by the signature
// knowledge proof's exponent equation (sigproof.go) and by accumulator
// (non-)membership proofs, both of which reduce to a linear relation over
// pairing values rather than G1 points.
type GTLinearRelation struct {
	Bases  []GTElement
	Target GTElement
}

func (r GTLinearRelation) Commit(blinds []Scalar) (GTElement, error) {
	if len(blinds) != len(r.Bases) {
		return GTElement{}, ErrMessageCountMismatch
	}
	acc := Identity()
	for i, b := range r.Bases {
		acc = acc.Mul(b.Exp(blinds[i]))
	}
	return acc, nil
}

func (r GTLinearRelation) Respond(blinds, secrets []Scalar, challenge Scalar) []Scalar {
	out := make([]Scalar, len(blinds))
	for i := range blinds {
		out[i] = blinds[i].Add(challenge.Mul(secrets[i]))
	}
	return out
}

func (r GTLinearRelation) Verify(announcement GTElement, responses []Scalar, challenge Scalar) bool {
	if len(responses) != len(r.Bases) {
		return false
	}
	lhs := Identity()
	for i, b := range r.Bases {
		lhs = lhs.Mul(b.Exp(responses[i]))
	}
	rhs := announcement.Mul(r.Target.Exp(challenge))
	return lhs.Equal(rhs)
}
