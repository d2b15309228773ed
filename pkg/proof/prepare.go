package proof

import (
	"fmt"
	"math/big"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/statement"
)

// rangeCheckState is KindBoundCheck's range-argument working state,
// shared in shape by both the prover (lowerSecrets/upperSecrets
// populated) and the verifier (lowerBits/upperBits decoded from the
// proof instead). value-Min and (Max-1)-value are each proven
// non-negative and RangeBitWidth-bounded by a bit-decomposition OR-proof
// chain (pkg/backend/rangeproof.go); g/h and the two targets let the
// verifier check each chain's bits recombine to the right public point.
type rangeCheckState struct {
	g, h        backend.G1Point
	lowerTarget backend.G1Point
	upperTarget backend.G1Point

	lowerSecrets *backend.RangeProofSecrets // prover only
	upperSecrets *backend.RangeProofSecrets // prover only

	lowerBits []backend.BitProof // verifier only
	upperBits []backend.BitProof // verifier only
}

func prepareRangeCheck(ck *backend.CommitmentKey, commitment backend.G1Point, value *big.Int, blinding backend.Scalar, min, max int64) (*rangeCheckState, error) {
	g, h := ck.Bases[0], ck.Blinding
	lowerDiff := new(big.Int).Sub(value, big.NewInt(min))
	upperDiff := new(big.Int).Sub(big.NewInt(max-1), value)

	lowerTarget := commitment.Sub(g.ScalarMul(backend.ScalarFromBigInt(big.NewInt(min))))
	upperTarget := g.ScalarMul(backend.ScalarFromBigInt(big.NewInt(max-1))).Sub(commitment)

	lowerSecrets, err := backend.PrepareRangeProof(g, h, lowerDiff, blinding)
	if err != nil {
		return nil, fmt.Errorf("bound check lower range: %w", err)
	}
	upperSecrets, err := backend.PrepareRangeProof(g, h, upperDiff, blinding.Neg())
	if err != nil {
		return nil, fmt.Errorf("bound check upper range: %w", err)
	}
	return &rangeCheckState{
		g: g, h: h, lowerTarget: lowerTarget, upperTarget: upperTarget,
		lowerSecrets: lowerSecrets, upperSecrets: upperSecrets,
	}, nil
}

func reconstructRangeCheck(ck *backend.CommitmentKey, commitment backend.G1Point, min, max int64, lowerBits, upperBits []backend.BitProof) *rangeCheckState {
	g, h := ck.Bases[0], ck.Blinding
	lowerTarget := commitment.Sub(g.ScalarMul(backend.ScalarFromBigInt(big.NewInt(min))))
	upperTarget := g.ScalarMul(backend.ScalarFromBigInt(big.NewInt(max-1))).Sub(commitment)
	return &rangeCheckState{
		g: g, h: h, lowerTarget: lowerTarget, upperTarget: upperTarget,
		lowerBits: lowerBits, upperBits: upperBits,
	}
}

// preparedStatement is one statement's relation(s) plus its freshly
// randomized public material, common to both the prover's commit phase
// (secrets/blinds populated) and the verifier's reconstruction (secrets/
// blinds left zero; only Bases/Target and, after decoding a Proof,
// announcement/responses matter).
type preparedStatement struct {
	kind     statement.Kind
	scheme   backend.Scheme // only meaningful for kind == KindSignature
	revealed [][]byte
	eq1      *preparedRelation // BBS/BBS+'s second linear relation, else nil
	main     *preparedRelation

	// extra carries additional linear-relation equations that share
	// main's secrets/blinds rather than having their own (engine.go's
	// generate/verify loop wires the sharing): KindVerifiableEncryption's
	// two ciphertext equations. nil for every other kind.
	extra []*preparedRelation

	// rangeCheck is KindBoundCheck's range argument; nil for every other
	// kind.
	rangeCheck *rangeCheckState
}

// prepareStatement runs the prover's randomization phase for one
// statement/witness pair.
func prepareStatement(stmt statement.Statement, sp statement.SetupParam, w statement.Witness) (*preparedStatement, error) {
	switch stmt.Kind {
	case statement.KindSignature:
		if sp.Kind != statement.SetupSignature {
			return nil, fmt.Errorf("statement references a non-signature setup param")
		}
		if w.Signature == nil {
			return nil, fmt.Errorf("signature statement requires a witness signature")
		}
		if w.Signature.Scheme == backend.SchemePS {
			init, err := backend.PreparePSSignatureProof(sp.Signature, sp.IssuerKey, w.Signature, w.Messages, stmt.Revealed)
			if err != nil {
				return nil, err
			}
			return &preparedStatement{
				kind: stmt.Kind, scheme: backend.SchemePS,
				revealed: [][]byte{init.Sigma1Prime.Bytes(), init.Sigma2Prime.Bytes()},
				main:     &preparedRelation{isGT: true, gt: init.Rel, secrets: init.Secrets},
			}, nil
		}
		init, err := backend.PrepareBBSSignatureProof(sp.Signature, w.Signature, w.Messages, stmt.Revealed)
		if err != nil {
			return nil, err
		}
		return &preparedStatement{
			kind: stmt.Kind, scheme: w.Signature.Scheme,
			revealed: [][]byte{init.APrime.Bytes(), init.Abar.Bytes(), init.D.Bytes()},
			eq1:      &preparedRelation{isGT: false, g1: init.Eq1, secrets: init.Eq1Secrets},
			main:     &preparedRelation{isGT: false, g1: init.Eq2, secrets: init.Eq2Secrets},
		}, nil

	case statement.KindPositiveMembership:
		if sp.Kind != statement.SetupAccumulator {
			return nil, fmt.Errorf("statement references a non-accumulator setup param")
		}
		init, err := backend.PrepareAccumMembershipProof(sp.Accumulator, stmt.AccumValue, w.Element, w.MembershipWitness)
		if err != nil {
			return nil, err
		}
		return &preparedStatement{
			kind:     stmt.Kind,
			revealed: [][]byte{init.WPrime.Bytes(), init.Vbar.Bytes()},
			main:     &preparedRelation{isGT: true, gt: init.Rel, secrets: []backend.Scalar{init.Secret}},
		}, nil

	case statement.KindUniversalNonMembership:
		if sp.Kind != statement.SetupAccumulator {
			return nil, fmt.Errorf("statement references a non-accumulator setup param")
		}
		init, err := backend.PrepareAccumNonMembershipProof(sp.Accumulator, stmt.AccumValue, w.Element, w.NonMembershipWitness)
		if err != nil {
			return nil, err
		}
		return &preparedStatement{
			kind:     stmt.Kind,
			revealed: [][]byte{init.C.Bytes(), init.D.Bytes()},
			main:     &preparedRelation{isGT: true, gt: init.Rel, secrets: []backend.Scalar{init.Secret}},
		}, nil

	case statement.KindBoundCheck:
		if sp.Kind != statement.SetupCommitment {
			return nil, fmt.Errorf("statement references a non-commitment setup param")
		}
		if len(w.Values) != 1 {
			return nil, fmt.Errorf("bound check requires exactly one committed value")
		}
		ck := sp.Commitment
		rel := backend.G1LinearRelation{Bases: []backend.G1Point{ck.Bases[0], ck.Blinding}, Target: stmt.Commitment}
		rc, err := prepareRangeCheck(ck, stmt.Commitment, w.Values[0].BigInt(), w.Blinding, stmt.Min, stmt.Max)
		if err != nil {
			return nil, err
		}
		return &preparedStatement{
			kind:       stmt.Kind,
			main:       &preparedRelation{isGT: false, g1: rel, secrets: []backend.Scalar{w.Values[0], w.Blinding}},
			rangeCheck: rc,
		}, nil

	case statement.KindVerifiableEncryption:
		if sp.Kind != statement.SetupCommitment {
			return nil, fmt.Errorf("statement references a non-commitment setup param")
		}
		if len(w.Values) != 1 {
			return nil, fmt.Errorf("verifiable encryption requires exactly one committed value")
		}
		if stmt.ChunkBitSize > 0 && w.Values[0].BigInt().BitLen() > stmt.ChunkBitSize {
			return nil, fmt.Errorf("verifiable encryption: %w", backend.ErrValueOutOfRange)
		}
		ck := sp.Commitment
		g, h, id := ck.Bases[0], ck.Blinding, backend.G1Point{}
		secrets := []backend.Scalar{w.Values[0], w.Blinding, w.EncryptRandomness}
		mainRel := backend.G1LinearRelation{Bases: []backend.G1Point{g, h, id}, Target: stmt.Commitment}
		c1Rel := backend.G1LinearRelation{Bases: []backend.G1Point{id, id, g}, Target: stmt.Ciphertext1}
		c2Rel := backend.G1LinearRelation{Bases: []backend.G1Point{g, id, stmt.EncryptionPK}, Target: stmt.Ciphertext2}
		return &preparedStatement{
			kind: stmt.Kind,
			main: &preparedRelation{isGT: false, g1: mainRel, secrets: secrets},
			extra: []*preparedRelation{
				{isGT: false, g1: c1Rel},
				{isGT: false, g1: c2Rel},
			},
		}, nil

	default: // generalized commitment-opening: Pedersen/Circuit/Pseudonym
		if sp.Kind != statement.SetupCommitment {
			return nil, fmt.Errorf("statement references a non-commitment setup param")
		}
		ck := sp.Commitment
		if len(w.Values) > len(ck.Bases) {
			return nil, backend.ErrMessageCountMismatch
		}
		bases := append(append([]backend.G1Point{}, ck.Bases[:len(w.Values)]...), ck.Blinding)
		secrets := append(append([]backend.Scalar{}, w.Values...), w.Blinding)
		rel := backend.G1LinearRelation{Bases: bases, Target: stmt.Commitment}
		return &preparedStatement{
			kind: stmt.Kind,
			main: &preparedRelation{isGT: false, g1: rel, secrets: secrets},
		}, nil
	}
}

func decodeG1s(raw [][]byte) ([]backend.G1Point, error) {
	out := make([]backend.G1Point, len(raw))
	for i, b := range raw {
		p, err := backend.G1FromBytes(b)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// reconstructStatement rebuilds the same relation(s) from a proof's
// revealed material, for the verifier.
func reconstructStatement(stmt statement.Statement, sp statement.SetupParam, sprf StatementProof) (*preparedStatement, bool, error) {
	switch stmt.Kind {
	case statement.KindSignature:
		if sp.Kind != statement.SetupSignature {
			return nil, false, fmt.Errorf("statement references a non-signature setup param")
		}
		if sp.Signature.Scheme == backend.SchemePS {
			if len(sprf.Revealed) != 2 {
				return nil, false, fmt.Errorf("malformed PS signature proof: expected 2 revealed values")
			}
			pts, err := decodeG1s(sprf.Revealed)
			if err != nil {
				return nil, false, err
			}
			rel, hidden, ok, err := backend.PSSignatureProofRelation(sp.Signature, sp.IssuerKey, stmt.TotalMessages, stmt.Revealed, pts[0], pts[1])
			if err != nil {
				return nil, false, err
			}
			_ = hidden
			return &preparedStatement{
				kind: stmt.Kind, scheme: backend.SchemePS,
				revealed: sprf.Revealed,
				main:     &preparedRelation{isGT: true, gt: rel},
			}, ok, nil
		}
		if len(sprf.Revealed) != 3 {
			return nil, false, fmt.Errorf("malformed BBS signature proof: expected 3 revealed values")
		}
		pts, err := decodeG1s(sprf.Revealed)
		if err != nil {
			return nil, false, err
		}
		eq1, eq2, hidden, ok, err := backend.BBSSignatureProofRelations(sp.Signature, sp.IssuerKey, stmt.TotalMessages, stmt.Revealed, pts[0], pts[1], pts[2])
		if err != nil {
			return nil, false, err
		}
		_ = hidden
		return &preparedStatement{
			kind: stmt.Kind, scheme: sp.Signature.Scheme,
			revealed: sprf.Revealed,
			eq1:      &preparedRelation{isGT: false, g1: eq1},
			main:     &preparedRelation{isGT: false, g1: eq2},
		}, ok, nil

	case statement.KindPositiveMembership:
		if sp.Kind != statement.SetupAccumulator {
			return nil, false, fmt.Errorf("statement references a non-accumulator setup param")
		}
		if len(sprf.Revealed) != 2 {
			return nil, false, fmt.Errorf("malformed membership proof: expected 2 revealed values")
		}
		pts, err := decodeG1s(sprf.Revealed)
		if err != nil {
			return nil, false, err
		}
		rel, err := backend.AccumMembershipProofRelation(sp.Accumulator, pts[0], pts[1])
		if err != nil {
			return nil, false, err
		}
		return &preparedStatement{
			kind:     stmt.Kind,
			revealed: sprf.Revealed,
			main:     &preparedRelation{isGT: true, gt: rel},
		}, true, nil

	case statement.KindUniversalNonMembership:
		if sp.Kind != statement.SetupAccumulator {
			return nil, false, fmt.Errorf("statement references a non-accumulator setup param")
		}
		if len(sprf.Revealed) != 2 {
			return nil, false, fmt.Errorf("malformed non-membership proof: expected 2 revealed values")
		}
		c, err := backend.G1FromBytes(sprf.Revealed[0])
		if err != nil {
			return nil, false, err
		}
		d := backend.ScalarFromBytes(sprf.Revealed[1])
		rel, err := backend.AccumNonMembershipProofRelation(sp.Accumulator, stmt.AccumValue, c, d)
		if err != nil {
			return nil, false, err
		}
		return &preparedStatement{
			kind:     stmt.Kind,
			revealed: sprf.Revealed,
			main:     &preparedRelation{isGT: true, gt: rel},
		}, true, nil

	case statement.KindBoundCheck:
		if sp.Kind != statement.SetupCommitment {
			return nil, false, fmt.Errorf("statement references a non-commitment setup param")
		}
		ck := sp.Commitment
		if len(sprf.Responses) != 2 {
			return nil, false, fmt.Errorf("malformed bound check proof: expected 2 responses")
		}
		if len(sprf.LowerBits) != backend.RangeBitWidth || len(sprf.UpperBits) != backend.RangeBitWidth {
			return nil, false, fmt.Errorf("malformed bound check proof: expected %d range proof bits per bound", backend.RangeBitWidth)
		}
		lowerBits, err := bitProofsFromWire(sprf.LowerBits)
		if err != nil {
			return nil, false, err
		}
		upperBits, err := bitProofsFromWire(sprf.UpperBits)
		if err != nil {
			return nil, false, err
		}
		rel := backend.G1LinearRelation{Bases: []backend.G1Point{ck.Bases[0], ck.Blinding}, Target: stmt.Commitment}
		return &preparedStatement{
			kind:       stmt.Kind,
			main:       &preparedRelation{isGT: false, g1: rel},
			rangeCheck: reconstructRangeCheck(ck, stmt.Commitment, stmt.Min, stmt.Max, lowerBits, upperBits),
		}, true, nil

	case statement.KindVerifiableEncryption:
		if sp.Kind != statement.SetupCommitment {
			return nil, false, fmt.Errorf("statement references a non-commitment setup param")
		}
		if len(sprf.Responses) != 3 {
			return nil, false, fmt.Errorf("malformed verifiable encryption proof: expected 3 responses")
		}
		ck := sp.Commitment
		g, h, id := ck.Bases[0], ck.Blinding, backend.G1Point{}
		mainRel := backend.G1LinearRelation{Bases: []backend.G1Point{g, h, id}, Target: stmt.Commitment}
		c1Rel := backend.G1LinearRelation{Bases: []backend.G1Point{id, id, g}, Target: stmt.Ciphertext1}
		c2Rel := backend.G1LinearRelation{Bases: []backend.G1Point{g, id, stmt.EncryptionPK}, Target: stmt.Ciphertext2}
		return &preparedStatement{
			kind: stmt.Kind,
			main: &preparedRelation{isGT: false, g1: mainRel},
			extra: []*preparedRelation{
				{isGT: false, g1: c1Rel},
				{isGT: false, g1: c2Rel},
			},
		}, true, nil

	default: // generalized commitment-opening: Pedersen/Circuit/Pseudonym
		if sp.Kind != statement.SetupCommitment {
			return nil, false, fmt.Errorf("statement references a non-commitment setup param")
		}
		ck := sp.Commitment
		n := len(sprf.Responses) - 1
		if n < 0 || n > len(ck.Bases) {
			return nil, false, fmt.Errorf("malformed commitment-opening proof: response count out of range")
		}
		bases := append(append([]backend.G1Point{}, ck.Bases[:n]...), ck.Blinding)
		rel := backend.G1LinearRelation{Bases: bases, Target: stmt.Commitment}
		return &preparedStatement{
			kind: stmt.Kind,
			main: &preparedRelation{isGT: false, g1: rel},
		}, true, nil
	}
}
