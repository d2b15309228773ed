package backend

// CommitmentKey is a set of independent G1 bases used for Pedersen
// commitments to one or more scalars plus a blinding factor.
type CommitmentKey struct {
	Bases    []G1Point
	Blinding G1Point
}

// NewCommitmentKey derives n+1 independent bases (n value bases plus one
// blinding base) from label via hash-to-curve, the same technique
// GenerateSignatureParams uses for its H bases.
func NewCommitmentKey(label string, n int) *CommitmentKey {
	bases := make([]G1Point, n)
	for i := 0; i < n; i++ {
		bases[i] = HashToG1(label+"/base", uint64(i))
	}
	return &CommitmentKey{
		Bases:    bases,
		Blinding: HashToG1(label+"/blinding", 0),
	}
}

// Commit returns sum(bases[i]^values[i]) + blinding^r.
func (ck *CommitmentKey) Commit(values []Scalar, r Scalar) (G1Point, error) {
	if len(values) > len(ck.Bases) {
		return G1Point{}, ErrMessageCountMismatch
	}
	return MultiScalarMulG1(ck.Bases[:len(values)], values).Add(ck.Blinding.ScalarMul(r)), nil
}
