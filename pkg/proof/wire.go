package proof

import "github.com/anoncred/anoncred/pkg/backend"

// Proof is the wire-format composite NIZK produced by Generate and checked
// by Verify (spec.md §4.3), one StatementProof per statement in the spec
// it was built against, in the same order.
type Proof struct {
	Statements []StatementProof
}

// StatementProof carries one statement's freshly-randomized public
// material, its Schnorr announcement(s), and its Schnorr responses. Every
// field is a plain byte slice rather than a backend.Scalar/G1Point/GTElement
// — those types carry only unexported internals a reflection-based
// encoder would silently drop, the same pitfall pkg/statement's spec.go
// CBOR surrogate works around.
type StatementProof struct {
	// Revealed is the statement's per-proof randomized public values, in
	// this fixed order for its Kind:
	//   KindSignature (BBS/BBS+): [A', Abar, D]
	//   KindSignature (PS):       [sigma1', sigma2']
	//   KindPositiveMembership:   [W', Vbar]
	//   KindUniversalNonMembership: [C, D]
	//   generalized commitment kinds: empty (the commitment is already
	//     public in the statement itself)
	Revealed [][]byte

	// Eq1Announce/Eq1Responses carry BBS/BBS+'s second linear relation
	// (Eq1, over [-e, r2]); both are empty for every other kind.
	Eq1Announce  []byte
	Eq1Responses [][]byte

	// Announce/Responses carry the statement's primary, witness-equality
	// linkable relation: Eq2 for BBS/BBS+, Rel for PS and for both
	// accumulator kinds, and the commitment-opening relation for the
	// generalized kinds.
	Announce  []byte
	Responses [][]byte

	// ExtraAnnounces carries additional linear-relation announcements
	// that share Responses/the main relation's secrets rather than
	// having their own (KindVerifiableEncryption's ciphertext equations,
	// see prepare.go's KindVerifiableEncryption case in prepareStatement).
	// Empty for every other kind.
	ExtraAnnounces [][]byte

	// LowerBits/UpperBits carry KindBoundCheck's range argument: one
	// bit-decomposition OR-proof chain (pkg/backend/rangeproof.go) each,
	// proving value-Min >= 0 and (Max-1)-value >= 0 without revealing
	// value. Empty for every other kind.
	LowerBits []BitProofWire
	UpperBits []BitProofWire
}

// BitProofWire is backend.BitProof's plain-byte-slice wire projection.
type BitProofWire struct {
	Commit []byte
	A0, A1 []byte
	E1     []byte
	Z0, Z1 []byte
}

func bitProofToWire(p backend.BitProof) BitProofWire {
	return BitProofWire{Commit: p.Commit.Bytes(), A0: p.A0.Bytes(), A1: p.A1.Bytes(), E1: p.E1.Bytes(), Z0: p.Z0.Bytes(), Z1: p.Z1.Bytes()}
}

func bitProofsToWire(ps []backend.BitProof) []BitProofWire {
	out := make([]BitProofWire, len(ps))
	for i, p := range ps {
		out[i] = bitProofToWire(p)
	}
	return out
}

func bitProofFromWire(w BitProofWire) (backend.BitProof, error) {
	commit, err := backend.G1FromBytes(w.Commit)
	if err != nil {
		return backend.BitProof{}, err
	}
	a0, err := backend.G1FromBytes(w.A0)
	if err != nil {
		return backend.BitProof{}, err
	}
	a1, err := backend.G1FromBytes(w.A1)
	if err != nil {
		return backend.BitProof{}, err
	}
	return backend.BitProof{
		Commit: commit, A0: a0, A1: a1,
		E1: backend.ScalarFromBytes(w.E1), Z0: backend.ScalarFromBytes(w.Z0), Z1: backend.ScalarFromBytes(w.Z1),
	}, nil
}

func bitProofsFromWire(ws []BitProofWire) ([]backend.BitProof, error) {
	out := make([]backend.BitProof, len(ws))
	for i, w := range ws {
		p, err := bitProofFromWire(w)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func bytesToScalars(b [][]byte) []backend.Scalar {
	out := make([]backend.Scalar, len(b))
	for i, v := range b {
		out[i] = backend.ScalarFromBytes(v)
	}
	return out
}

func scalarsToBytes(s []backend.Scalar) [][]byte {
	out := make([][]byte, len(s))
	for i, v := range s {
		out[i] = v.Bytes()
	}
	return out
}
