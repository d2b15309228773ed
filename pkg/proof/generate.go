package proof

import (
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/statement"
)

func schemeOf(stmt statement.Statement, params []statement.SetupParam) backend.Scheme {
	if stmt.Kind != statement.KindSignature {
		return backend.Scheme(0)
	}
	if stmt.SetupParamsIdx < 0 || stmt.SetupParamsIdx >= len(params) {
		return backend.Scheme(0)
	}
	if sp := params[stmt.SetupParamsIdx].Signature; sp != nil {
		return sp.Scheme
	}
	return backend.Scheme(0)
}

func buildSlotGroups(spec *statement.ProofSpec) (*slotGroups, error) {
	groups := newSlotGroups()
	for mi, m := range spec.MetaStatements {
		var first *slotKey
		for _, ref := range m.Refs {
			scheme := schemeOf(spec.Statements[ref.StmtIdx], spec.SetupParams)
			slot, err := slotIndex(spec.Statements[ref.StmtIdx], scheme, ref.Position)
			if err != nil {
				return nil, fmt.Errorf("meta-statement %d: %w", mi, err)
			}
			k := slotKey{stmt: ref.StmtIdx, slot: slot}
			if first == nil {
				first = &k
				continue
			}
			groups.union(*first, k)
		}
	}
	return groups, nil
}

// assignBlinds draws blinds for every slot of a relation, sharing one
// blind across every slot a witness-equality groups together and an
// independent random blind everywhere else.
func assignBlinds(relation *preparedRelation, stmtIdx int, linkable bool, assigner *blindAssigner) error {
	blinds := make([]backend.Scalar, relation.numSlots())
	for i := range blinds {
		if linkable {
			b, err := assigner.blindFor(slotKey{stmt: stmtIdx, slot: i})
			if err != nil {
				return err
			}
			blinds[i] = b
			continue
		}
		b, err := backend.RandomScalar()
		if err != nil {
			return err
		}
		blinds[i] = b
	}
	relation.blinds = blinds
	return nil
}

// Generate builds a composite NIZK satisfying spec from witnesses, one per
// statement in the same order (spec.md §4.3: "witnesses must be provided
// in the same order as statements").
func Generate(spec *statement.ProofSpec, witnesses []statement.Witness, nonce []byte) (*Proof, error) {
	if err := spec.IsValid(); err != nil {
		return nil, err
	}
	if len(witnesses) != len(spec.Statements) {
		return nil, fmt.Errorf("expected %d witnesses, got %d", len(spec.Statements), len(witnesses))
	}

	specBytes, err := spec.Bytes()
	if err != nil {
		return nil, err
	}
	transcript, err := backend.NewTranscript(specBytes, spec.Context, nonce)
	if err != nil {
		return nil, err
	}

	groups, err := buildSlotGroups(spec)
	if err != nil {
		return nil, err
	}
	assigner := newBlindAssigner(groups)

	prepared := make([]*preparedStatement, len(spec.Statements))
	for i, st := range spec.Statements {
		sp := spec.SetupParams[st.SetupParamsIdx]
		ps, err := prepareStatement(st, sp, witnesses[i])
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		prepared[i] = ps

		if ps.eq1 != nil {
			if err := assignBlinds(ps.eq1, i, false, assigner); err != nil {
				return nil, err
			}
		}
		if err := assignBlinds(ps.main, i, true, assigner); err != nil {
			return nil, err
		}
		if ps.eq1 != nil {
			if err := ps.eq1.commit(); err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
		}
		if err := ps.main.commit(); err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		for _, extra := range ps.extra {
			extra.blinds = ps.main.blinds
			if err := extra.commit(); err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
		}
	}

	for i, ps := range prepared {
		for j, r := range ps.revealed {
			transcript.AppendBytes(fmt.Sprintf("stmt%d/revealed%d", i, j), r)
		}
		if ps.eq1 != nil {
			transcript.AppendG1(fmt.Sprintf("stmt%d/eq1", i), ps.eq1.announceG1)
		}
		if ps.main.isGT {
			transcript.AppendGT(fmt.Sprintf("stmt%d/main", i), ps.main.announceGT)
		} else {
			transcript.AppendG1(fmt.Sprintf("stmt%d/main", i), ps.main.announceG1)
		}
		for j, extra := range ps.extra {
			transcript.AppendG1(fmt.Sprintf("stmt%d/extra%d", i, j), extra.announceG1)
		}
		if ps.rangeCheck != nil {
			appendRangeAnnouncements(transcript, i, "lower", ps.rangeCheck.lowerSecrets)
			appendRangeAnnouncements(transcript, i, "upper", ps.rangeCheck.upperSecrets)
		}
	}

	challenge := transcript.Challenge()

	out := &Proof{Statements: make([]StatementProof, len(prepared))}
	for i, ps := range prepared {
		sprf := StatementProof{Revealed: ps.revealed}
		if ps.eq1 != nil {
			sprf.Eq1Announce = ps.eq1.announcementBytes()
			sprf.Eq1Responses = scalarsToBytes(ps.eq1.respond(challenge))
		}
		sprf.Announce = ps.main.announcementBytes()
		sprf.Responses = scalarsToBytes(ps.main.respond(challenge))
		if len(ps.extra) > 0 {
			sprf.ExtraAnnounces = make([][]byte, len(ps.extra))
			for j, extra := range ps.extra {
				sprf.ExtraAnnounces[j] = extra.announcementBytes()
			}
		}
		if ps.rangeCheck != nil {
			sprf.LowerBits = bitProofsToWire(ps.rangeCheck.lowerSecrets.Respond(challenge))
			sprf.UpperBits = bitProofsToWire(ps.rangeCheck.upperSecrets.Respond(challenge))
		}
		out.Statements[i] = sprf
	}
	return out, nil
}

// appendRangeAnnouncements binds one range proof chain's per-bit OR-proof
// announcements into the transcript, in bit order, before the shared
// challenge is derived.
func appendRangeAnnouncements(transcript *backend.Transcript, stmtIdx int, label string, secrets *backend.RangeProofSecrets) {
	a0s, a1s := secrets.Announcements()
	for i := range a0s {
		transcript.AppendG1(fmt.Sprintf("stmt%d/range/%s/%d/a0", stmtIdx, label, i), a0s[i])
		transcript.AppendG1(fmt.Sprintf("stmt%d/range/%s/%d/a1", stmtIdx, label, i), a1s[i])
	}
}
