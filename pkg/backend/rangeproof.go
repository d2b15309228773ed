package backend

import "math/big"

// RangeBitWidth bounds the magnitude of the differences KindBoundCheck's
// range argument decomposes: both value-Min and (Max-1)-value must fit in
// this many bits. 32 bits comfortably covers the encoded integer domain
// (ages, scaled decimals, counts) pkg/encoding produces.
const RangeBitWidth = 32

// BitProof is one Cramer-Damgard-Schoenmakers disjunctive Schnorr proof
// that Commit = G^bit * H^blinding opens with bit equal to 0 or to 1,
// without revealing which. PrepareRangeProof chains RangeBitWidth of these to
// prove a committed value lies in an interval, the technique
// sigma.go's G1LinearRelation generalizes for the single-equation case;
// here two candidate equations (bit=0, bit=1) share one challenge split
// between them, with exactly one branch real and the other simulated.
type BitProof struct {
	Commit     G1Point
	A0, A1     G1Point
	E1, Z0, Z1 Scalar
}

// bitSecret is the prover's commit-phase state for one bit, carried
// forward until the global Fiat-Shamir challenge is known.
type bitSecret struct {
	bit      uint
	blinding Scalar
	commit   G1Point
	k        Scalar // real branch's Schnorr nonce
	eSim     Scalar // simulated branch's chosen challenge
	zSim     Scalar // simulated branch's chosen response
}

// prepareBit runs the commit phase of one bit's OR proof against value
// base g and blinding base h.
func prepareBit(g, h G1Point, bit uint, blinding Scalar) (*bitSecret, G1Point, G1Point, error) {
	commit := g.ScalarMul(ScalarFromUint64(uint64(bit))).Add(h.ScalarMul(blinding))
	k, err := RandomScalar()
	if err != nil {
		return nil, G1Point{}, G1Point{}, err
	}
	eSim, err := RandomScalar()
	if err != nil {
		return nil, G1Point{}, G1Point{}, err
	}
	zSim, err := RandomScalar()
	if err != nil {
		return nil, G1Point{}, G1Point{}, err
	}

	var a0, a1 G1Point
	if bit == 0 {
		a0 = h.ScalarMul(k)
		target1 := commit.Sub(g)
		a1 = h.ScalarMul(zSim).Add(target1.ScalarMul(eSim.Neg()))
	} else {
		a1 = h.ScalarMul(k)
		a0 = h.ScalarMul(zSim).Add(commit.ScalarMul(eSim.Neg()))
	}
	return &bitSecret{bit: bit, blinding: blinding, commit: commit, k: k, eSim: eSim, zSim: zSim}, a0, a1, nil
}

// respondBit finishes one bit's OR proof once the shared challenge is
// known, splitting it into e0+e1 == challenge with the real branch's
// share derived and the simulated branch's share exactly as fixed in
// prepareBit.
func respondBit(s *bitSecret, a0, a1 G1Point, challenge Scalar) BitProof {
	if s.bit == 0 {
		e1 := s.eSim
		e0 := challenge.Sub(e1)
		z0 := s.k.Add(e0.Mul(s.blinding))
		return BitProof{Commit: s.commit, A0: a0, A1: a1, E1: e1, Z0: z0, Z1: s.zSim}
	}
	e0 := s.eSim
	e1 := challenge.Sub(e0)
	z1 := s.k.Add(e1.Mul(s.blinding))
	return BitProof{Commit: s.commit, A0: a0, A1: a1, E1: e1, Z0: s.zSim, Z1: z1}
}

// VerifyBit checks one bit's OR proof against the shared challenge.
func VerifyBit(g, h G1Point, p BitProof, challenge Scalar) bool {
	e0 := challenge.Sub(p.E1)
	if !h.ScalarMul(p.Z0).Equal(p.A0.Add(p.Commit.ScalarMul(e0))) {
		return false
	}
	target1 := p.Commit.Sub(g)
	return h.ScalarMul(p.Z1).Equal(p.A1.Add(target1.ScalarMul(p.E1)))
}

// RangeProofSecrets is a range proof's prover-side commit-phase state:
// one bitSecret per bit, plus the already-computed announcements, held
// until Respond can apply the shared global challenge.
type RangeProofSecrets struct {
	bits   []*bitSecret
	a0s    []G1Point
	a1s    []G1Point
}

// PrepareRangeProof decomposes diff into RangeBitWidth bits and commits
// to each with an independently random blinding, except the last bit's,
// which is solved so sum(2^i * Commit_i) reproduces g^diff * h^wantBlinding
// exactly — letting the verifier check that tie-back as a plain point
// equation (in VerifyRangeProof) instead of a further sigma proof.
func PrepareRangeProof(g, h G1Point, diff *big.Int, wantBlinding Scalar) (*RangeProofSecrets, error) {
	if diff.Sign() < 0 || diff.BitLen() > RangeBitWidth {
		return nil, ErrValueOutOfRange
	}
	out := &RangeProofSecrets{
		bits: make([]*bitSecret, RangeBitWidth),
		a0s:  make([]G1Point, RangeBitWidth),
		a1s:  make([]G1Point, RangeBitWidth),
	}
	two := ScalarFromUint64(2)
	pow := ScalarFromUint64(1)
	weighted := Scalar{}
	for i := 0; i < RangeBitWidth-1; i++ {
		bit := diff.Bit(i)
		blinding, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		bs, a0, a1, err := prepareBit(g, h, uint(bit), blinding)
		if err != nil {
			return nil, err
		}
		out.bits[i], out.a0s[i], out.a1s[i] = bs, a0, a1
		weighted = weighted.Add(pow.Mul(blinding))
		pow = pow.Mul(two)
	}
	lastBit := diff.Bit(RangeBitWidth - 1)
	powInv, err := pow.Inverse()
	if err != nil {
		return nil, err
	}
	lastBlinding := wantBlinding.Sub(weighted).Mul(powInv)
	bs, a0, a1, err := prepareBit(g, h, uint(lastBit), lastBlinding)
	if err != nil {
		return nil, err
	}
	last := RangeBitWidth - 1
	out.bits[last], out.a0s[last], out.a1s[last] = bs, a0, a1
	return out, nil
}

// Announcements returns the 2*RangeBitWidth announcement points the
// caller must bind into the Fiat-Shamir transcript before deriving the
// shared challenge.
func (s *RangeProofSecrets) Announcements() (a0s, a1s []G1Point) { return s.a0s, s.a1s }

// Respond finishes every bit's OR proof under the shared challenge.
func (s *RangeProofSecrets) Respond(challenge Scalar) []BitProof {
	out := make([]BitProof, len(s.bits))
	for i, bs := range s.bits {
		out[i] = respondBit(bs, s.a0s[i], s.a1s[i], challenge)
	}
	return out
}

// VerifyRangeProof checks every bit's OR proof and that the bits'
// weighted recombination equals target exactly.
func VerifyRangeProof(g, h G1Point, bits []BitProof, challenge Scalar, target G1Point) bool {
	if len(bits) != RangeBitWidth {
		return false
	}
	two := ScalarFromUint64(2)
	pow := ScalarFromUint64(1)
	recombined := G1Point{}
	for i, p := range bits {
		if !VerifyBit(g, h, p, challenge) {
			return false
		}
		recombined = recombined.Add(p.Commit.ScalarMul(pow))
		pow = pow.Mul(two)
	}
	return recombined.Equal(target)
}
