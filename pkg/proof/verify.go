package proof

import (
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/statement"
)

// Verify checks proof against spec (spec.md §4.3). It returns true with a
// nil error only when the proof verifies. Every failure returns false with
// a non-nil error: a malformed proof or spec, and also a well-formed proof
// that does not verify (the error then wraps backend.ErrProofVerifyFailed).
func Verify(spec *statement.ProofSpec, proof *Proof, nonce []byte) (bool, error) {
	if err := spec.IsValid(); err != nil {
		return false, err
	}
	if len(proof.Statements) != len(spec.Statements) {
		return false, fmt.Errorf("expected %d statement proofs, got %d", len(spec.Statements), len(proof.Statements))
	}

	specBytes, err := spec.Bytes()
	if err != nil {
		return false, err
	}
	transcript, err := backend.NewTranscript(specBytes, spec.Context, nonce)
	if err != nil {
		return false, err
	}

	prepared := make([]*preparedStatement, len(spec.Statements))
	for i, st := range spec.Statements {
		sp := spec.SetupParams[st.SetupParamsIdx]
		ps, ok, err := reconstructStatement(st, sp, proof.Statements[i])
		if err != nil {
			return false, fmt.Errorf("statement %d: %w", i, err)
		}
		if !ok {
			return false, fmt.Errorf("statement %d: %w", i, backend.ErrProofVerifyFailed)
		}
		prepared[i] = ps
	}

	for i, ps := range prepared {
		for j, r := range ps.revealed {
			transcript.AppendBytes(fmt.Sprintf("stmt%d/revealed%d", i, j), r)
		}
		sprf := proof.Statements[i]
		if ps.eq1 != nil {
			announce, err := backend.G1FromBytes(sprf.Eq1Announce)
			if err != nil {
				return false, fmt.Errorf("statement %d: %w", i, err)
			}
			ps.eq1.announceG1 = announce
			transcript.AppendG1(fmt.Sprintf("stmt%d/eq1", i), announce)
		}
		if ps.main.isGT {
			announce, err := backend.GTFromBytes(sprf.Announce)
			if err != nil {
				return false, fmt.Errorf("statement %d: %w", i, err)
			}
			ps.main.announceGT = announce
			transcript.AppendGT(fmt.Sprintf("stmt%d/main", i), announce)
		} else {
			announce, err := backend.G1FromBytes(sprf.Announce)
			if err != nil {
				return false, fmt.Errorf("statement %d: %w", i, err)
			}
			ps.main.announceG1 = announce
			transcript.AppendG1(fmt.Sprintf("stmt%d/main", i), announce)
		}
		if len(sprf.ExtraAnnounces) != len(ps.extra) {
			return false, fmt.Errorf("statement %d: expected %d extra announcements, got %d", i, len(ps.extra), len(sprf.ExtraAnnounces))
		}
		for j, extra := range ps.extra {
			announce, err := backend.G1FromBytes(sprf.ExtraAnnounces[j])
			if err != nil {
				return false, fmt.Errorf("statement %d: %w", i, err)
			}
			extra.announceG1 = announce
			transcript.AppendG1(fmt.Sprintf("stmt%d/extra%d", i, j), announce)
		}
		if ps.rangeCheck != nil {
			appendRangeBitAnnouncements(transcript, i, "lower", ps.rangeCheck.lowerBits)
			appendRangeBitAnnouncements(transcript, i, "upper", ps.rangeCheck.upperBits)
		}
	}

	challenge := transcript.Challenge()

	responses := make([][]backend.Scalar, len(prepared))
	for i, ps := range prepared {
		sprf := proof.Statements[i]
		if ps.eq1 != nil {
			if !ps.eq1.verify(bytesToScalars(sprf.Eq1Responses), challenge) {
				return false, fmt.Errorf("statement %d: %w", i, backend.ErrProofVerifyFailed)
			}
		}
		mainResponses := bytesToScalars(sprf.Responses)
		if !ps.main.verify(mainResponses, challenge) {
			return false, fmt.Errorf("statement %d: %w", i, backend.ErrProofVerifyFailed)
		}
		for _, extra := range ps.extra {
			if !extra.verify(mainResponses, challenge) {
				return false, fmt.Errorf("statement %d: %w", i, backend.ErrProofVerifyFailed)
			}
		}
		if ps.rangeCheck != nil {
			rc := ps.rangeCheck
			if !backend.VerifyRangeProof(rc.g, rc.h, rc.lowerBits, challenge, rc.lowerTarget) {
				return false, fmt.Errorf("statement %d: %w", i, backend.ErrProofVerifyFailed)
			}
			if !backend.VerifyRangeProof(rc.g, rc.h, rc.upperBits, challenge, rc.upperTarget) {
				return false, fmt.Errorf("statement %d: %w", i, backend.ErrProofVerifyFailed)
			}
		}
		responses[i] = mainResponses
	}

	for mi, m := range spec.MetaStatements {
		var want []byte
		for _, ref := range m.Refs {
			scheme := schemeOf(spec.Statements[ref.StmtIdx], spec.SetupParams)
			slot, err := slotIndex(spec.Statements[ref.StmtIdx], scheme, ref.Position)
			if err != nil {
				return false, fmt.Errorf("meta-statement %d: %w", mi, err)
			}
			got := responses[ref.StmtIdx][slot].Bytes()
			if want == nil {
				want = got
				continue
			}
			if !bytesEqual(want, got) {
				return false, fmt.Errorf("meta-statement %d: %w: responses differ at statement %d position %d", mi, backend.ErrProofVerifyFailed, ref.StmtIdx, ref.Position)
			}
		}
	}

	return true, nil
}

// appendRangeBitAnnouncements re-binds one decoded range proof chain's
// per-bit OR-proof announcements into the transcript, in the same order
// generate.go's appendRangeAnnouncements used.
func appendRangeBitAnnouncements(transcript *backend.Transcript, stmtIdx int, label string, bits []backend.BitProof) {
	for i, p := range bits {
		transcript.AppendG1(fmt.Sprintf("stmt%d/range/%s/%d/a0", stmtIdx, label, i), p.A0)
		transcript.AppendG1(fmt.Sprintf("stmt%d/range/%s/%d/a1", stmtIdx, label, i), p.A1)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
