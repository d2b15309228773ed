package backend

// AccumMembershipProofInit is the prover's randomized commitment phase for
// a positive-accumulator membership statement. Blinding W by a fresh r1
// keeps the revealed witness unlinkable across presentations while
// reducing the pairing relation e(W, g2^elem·STilde) = e(V,g2) to a single
// discrete-log equation in the hidden accumulated element:
//
//	W'   = W^r1                          (revealed)
//	Vbar = V^r1                          (revealed)
//	Target = e(Vbar,g2) · e(W',STilde)^-1 = e(W',g2)^elem
type AccumMembershipProofInit struct {
	WPrime, Vbar G1Point
	Rel          GTLinearRelation
	Secret       Scalar
}

// PrepareAccumMembershipProof runs the prover's randomization phase. elem
// is the accumulated member scalar, shared via witness-equality with the
// credential attribute position it authenticates revocation status for.
func PrepareAccumMembershipProof(pk *AccumulatorPublicKey, v AccumulatorValue, elem Scalar, w *MembershipWitness) (*AccumMembershipProofInit, error) {
	r1, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	wPrime := w.C.ScalarMul(r1)
	vbar := v.G1.ScalarMul(r1)

	base, err := Pair(wPrime, G2Generator())
	if err != nil {
		return nil, err
	}
	num, err := Pair(vbar, G2Generator())
	if err != nil {
		return nil, err
	}
	den, err := Pair(wPrime, pk.STilde)
	if err != nil {
		return nil, err
	}
	target := num.Mul(den.Inverse())

	return &AccumMembershipProofInit{
		WPrime: wPrime, Vbar: vbar,
		Rel:    GTLinearRelation{Bases: []GTElement{base}, Target: target},
		Secret: elem,
	}, nil
}

// AccumMembershipProofRelation reconstructs Rel on the verifier side from
// the revealed (W', Vbar).
func AccumMembershipProofRelation(pk *AccumulatorPublicKey, wPrime, vbar G1Point) (GTLinearRelation, error) {
	if wPrime.Equal(G1Point{}) {
		return GTLinearRelation{}, ErrWitnessStale
	}
	base, err := Pair(wPrime, G2Generator())
	if err != nil {
		return GTLinearRelation{}, err
	}
	num, err := Pair(vbar, G2Generator())
	if err != nil {
		return GTLinearRelation{}, err
	}
	den, err := Pair(wPrime, pk.STilde)
	if err != nil {
		return GTLinearRelation{}, err
	}
	return GTLinearRelation{Bases: []GTElement{base}, Target: num.Mul(den.Inverse())}, nil
}

// AccumNonMembershipProofInit is the prover's commitment phase for a
// universal-accumulator non-membership statement. Unlike the membership
// case, C is revealed unblinded here (a documented simplification, see
// DESIGN.md): D is folded into a public per-proof base so the non-member
// scalar itself still appears as the sole hidden exponent.
//
//	Target = e(g1,g2) · e(C,V.G2)^-1 · e(g1,STilde)^-D = (e(g1,g2)^D)^nonMember
type AccumNonMembershipProofInit struct {
	C      G1Point
	D      Scalar // revealed
	Rel    GTLinearRelation
	Secret Scalar
}

// PrepareAccumNonMembershipProof runs the prover's commitment phase.
func PrepareAccumNonMembershipProof(pk *AccumulatorPublicKey, v AccumulatorValue, nonMember Scalar, w *NonMembershipWitness) (*AccumNonMembershipProofInit, error) {
	rel, err := accumNonMembershipRelation(pk, v, w.C, w.D)
	if err != nil {
		return nil, err
	}
	return &AccumNonMembershipProofInit{C: w.C, D: w.D, Rel: rel, Secret: nonMember}, nil
}

// AccumNonMembershipProofRelation reconstructs Rel on the verifier side
// from the revealed (C, D).
func AccumNonMembershipProofRelation(pk *AccumulatorPublicKey, v AccumulatorValue, c G1Point, d Scalar) (GTLinearRelation, error) {
	return accumNonMembershipRelation(pk, v, c, d)
}

func accumNonMembershipRelation(pk *AccumulatorPublicKey, v AccumulatorValue, c G1Point, d Scalar) (GTLinearRelation, error) {
	g1g2, err := Pair(G1Generator(), G2Generator())
	if err != nil {
		return GTLinearRelation{}, err
	}
	cv2, err := Pair(c, v.G2)
	if err != nil {
		return GTLinearRelation{}, err
	}
	g1STilde, err := Pair(G1Generator(), pk.STilde)
	if err != nil {
		return GTLinearRelation{}, err
	}
	target := g1g2.Mul(cv2.Inverse()).Mul(g1STilde.Exp(d.Neg()))
	base := g1g2.Exp(d)
	return GTLinearRelation{Bases: []GTElement{base}, Target: target}, nil
}
