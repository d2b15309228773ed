package backend

import "fmt"

// AccumulatorSecretKey is the manager's trapdoor s. Only the party running
// add/remove/add_batch/remove_batch and witness generation holds this; a
// credential holder only ever sees AccumulatorPublicKey and witnesses.
type AccumulatorSecretKey struct {
	S Scalar
}

// AccumulatorPublicKey is g2^s, published so holders can verify their own
// witnesses without the trapdoor.
type AccumulatorPublicKey struct {
	STilde G2Point
}

// GenerateAccumulatorKeyPair creates a fresh manager trapdoor.
func GenerateAccumulatorKeyPair() (*AccumulatorSecretKey, *AccumulatorPublicKey, error) {
	s, err := RandomScalar()
	if err != nil {
		return nil, nil, err
	}
	return &AccumulatorSecretKey{S: s}, &AccumulatorPublicKey{STilde: G2Generator().ScalarMul(s)}, nil
}

// AccumulatorValue is the accumulator's current public value. Positive
// accumulators only need G1; the universal accumulator also carries the G2
// twin, required by VerifyNonMembershipWitness.
type AccumulatorValue struct {
	G1 G1Point
	G2 G2Point
}

// InitialAccumulatorValue returns the accumulator over the empty set.
func InitialAccumulatorValue() AccumulatorValue {
	return AccumulatorValue{G1: G1Generator(), G2: G2Generator()}
}

// AccumulateAdd folds a newly-added member into v. Callers (pkg/accumulator)
// check the member wasn't already present before calling this.
func AccumulateAdd(sk *AccumulatorSecretKey, v AccumulatorValue, member Scalar) AccumulatorValue {
	exp := member.Add(sk.S)
	return AccumulatorValue{G1: v.G1.ScalarMul(exp), G2: v.G2.ScalarMul(exp)}
}

// AccumulateRemove removes member from v.
func AccumulateRemove(sk *AccumulatorSecretKey, v AccumulatorValue, member Scalar) (AccumulatorValue, error) {
	exp := member.Add(sk.S)
	inv, err := exp.Inverse()
	if err != nil {
		return AccumulatorValue{}, fmt.Errorf("%w: member equals -s", ErrAccumulatorConflict)
	}
	return AccumulatorValue{G1: v.G1.ScalarMul(inv), G2: v.G2.ScalarMul(inv)}, nil
}

// MembershipWitness proves member is accumulated into some AccumulatorValue.
type MembershipWitness struct {
	C G1Point
}

// GenerateMembershipWitness computes the witness for member against the
// full current member set (member must be included in members).
func GenerateMembershipWitness(sk *AccumulatorSecretKey, members []Scalar, member Scalar) (*MembershipWitness, error) {
	v := InitialAccumulatorValue()
	found := false
	for _, m := range members {
		if m.Equal(member) {
			if found {
				return nil, fmt.Errorf("%w: duplicate member", ErrAccumulatorConflict)
			}
			found = true
			continue
		}
		v = AccumulateAdd(sk, v, m)
	}
	if !found {
		return nil, fmt.Errorf("%w: not a member", ErrAccumulatorConflict)
	}
	return &MembershipWitness{C: v.G1}, nil
}

// VerifyMembershipWitness checks w proves member is a member of the set
// accumulated into v (spec.md §8.7: "a membership witness generated for e
// at value V verifies against V").
func VerifyMembershipWitness(pk *AccumulatorPublicKey, v AccumulatorValue, member Scalar, w *MembershipWitness) error {
	rhs := pk.STilde.Add(G2Generator().ScalarMul(member))
	ok, err := PairingCheck([]G1Point{w.C, v.G1.Neg()}, []G2Point{rhs, G2Generator()})
	if err != nil {
		return err
	}
	if !ok {
		return ErrWitnessStale
	}
	return nil
}

// UpdateStep is one add or remove applied to the accumulator, carrying the
// value immediately before and after that single change. The manager
// publishes a slice of these as the "public update info" for a batch so
// that a holder without the trapdoor can roll their own witness forward
// (spec.md §4.6, "updateUsingPublicInfoPostMultipleBatchUpdates").
type UpdateStep struct {
	Added       bool
	Element     Scalar
	ValueBefore AccumulatorValue
	ValueAfter  AccumulatorValue
}

// UpdateMembershipWitness rolls w forward across a chain of UpdateSteps for
// the holder's own member, using only public information — no trapdoor
// required. Each step uses the classical accumulator witness-update
// identities:
//
//	add d:    W' = W^(d-e) · V_before
//	remove d: W' = (W · V_after^-1)^(1/(d-e))
func UpdateMembershipWitness(w *MembershipWitness, member Scalar, steps []UpdateStep) (*MembershipWitness, error) {
	c := w.C
	for _, step := range steps {
		if step.Element.Equal(member) {
			return nil, fmt.Errorf("%w: update touches the witness's own element", ErrAccumulatorConflict)
		}
		if step.Added {
			diff := step.Element.Sub(member)
			c = c.ScalarMul(diff).Add(step.ValueBefore.G1)
			continue
		}
		diffInv, err := step.Element.Sub(member).Inverse()
		if err != nil {
			return nil, fmt.Errorf("%w: removed element equals witness element", ErrAccumulatorConflict)
		}
		c = c.Sub(step.ValueAfter.G1).ScalarMul(diffInv)
	}
	return &MembershipWitness{C: c}, nil
}

// NonMembershipWitness proves member is NOT accumulated into some
// universal AccumulatorValue.
type NonMembershipWitness struct {
	C G1Point
	D Scalar
}

// GenerateNonMembershipWitness computes a non-membership witness for
// nonMember against the universal accumulator's current full member set
// (the "initial elements" store plus every subsequently added element,
// per spec.md §4.6 and §6). nonMember must not be present in members.
func GenerateNonMembershipWitness(sk *AccumulatorSecretKey, members []Scalar, nonMember Scalar) (*NonMembershipWitness, error) {
	for _, m := range members {
		if m.Equal(nonMember) {
			return nil, fmt.Errorf("%w: element is a member", ErrAccumulatorConflict)
		}
	}

	shifted := make([]Scalar, len(members))
	copy(shifted, members)
	f := accumulatorPolynomial(shifted)

	// f(X) = q(X)(X+nonMember) + r0, i.e. divide by (X - (-nonMember)).
	q, r0 := f.divideByLinear(nonMember.Neg())
	if r0.IsZero() {
		return nil, fmt.Errorf("%w: element is a member", ErrAccumulatorConflict)
	}
	r0Inv, err := r0.Inverse()
	if err != nil {
		return nil, err
	}

	// a = 1/r0 (constant poly); b(X) = -q(X)/r0, evaluated at s via sk.S.
	a := r0Inv
	qAtS := q.eval(sk.S)
	b := qAtS.Mul(r0Inv).Neg()

	return &NonMembershipWitness{C: G1Generator().ScalarMul(a), D: b}, nil
}

// VerifyNonMembershipWitness checks w proves nonMember is absent from the
// set accumulated into v, via
//
//	e(C, V.G2) · e(g1^D, pk.STilde + g2^nonMember) == e(g1, g2)
func VerifyNonMembershipWitness(pk *AccumulatorPublicKey, v AccumulatorValue, nonMember Scalar, w *NonMembershipWitness) error {
	d := pk.STilde.Add(G2Generator().ScalarMul(nonMember))
	ok, err := PairingCheck(
		[]G1Point{w.C, G1Generator().ScalarMul(w.D), G1Generator().Neg()},
		[]G2Point{v.G2, d, G2Generator()},
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWitnessStale
	}
	return nil
}
