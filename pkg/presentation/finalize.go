package presentation

import (
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/proof"
	"github.com/anoncred/anoncred/pkg/statement"
)

// Version is the presentation wire format's version tag.
const Version = 1

// alwaysRevealedNames is spec.md §4.4 step 2's fixed always-revealed set:
// cryptoVersion and credentialSchema are always disclosed, and — for a
// status-bearing credential — its status.id and status.revocationCheck.
func alwaysRevealedNames(hasStatus bool) map[string]bool {
	out := map[string]bool{"cryptoVersion": true, "credentialSchema": true}
	if hasStatus {
		out["status.id"] = true
		out["status.revocationCheck"] = true
	}
	return out
}

// Finalize assembles every registered credential, status link,
// attribute-equality, and predicate into one composite proof, following
// spec.md §4.4's 9-step sequence and §5's statement-ordering guarantee:
// credentials first, then status statements in credential-index order,
// then predicates in the order requested.
func (b *Builder) Finalize(nonce []byte) (*Presentation, error) {
	registry := statement.NewParams()
	qps := statement.NewQuasiProofSpec(registry)
	qps.SetContext(b.context)

	var witnesses []statement.Witness
	sigStmtIdx := make([]int, len(b.creds))
	credDisclosures := make([]CredentialDisclosure, len(b.creds))

	// Steps 2-3: one signature statement/witness per credential.
	for ci, entry := range b.creds {
		sigParamsIdx := registry.AddSignature(entry.params, entry.issuerPubKey)

		always := alwaysRevealedNames(entry.cred.CredentialStatus != nil)
		revealedPos := map[int]backend.Scalar{}
		var revealedAttrs []RevealedAttr
		for i, name := range entry.names {
			if always[name] || entry.revealed[name] {
				revealedPos[i] = entry.messages[i]
				revealedAttrs = append(revealedAttrs, RevealedAttr{Name: name, Value: entry.rawValues[i]})
			}
		}

		idx := qps.AddStatement(statement.Statement{
			Kind: statement.KindSignature, SetupParamsIdx: sigParamsIdx,
			TotalMessages: len(entry.names), Revealed: revealedPos,
		})
		sigStmtIdx[ci] = idx
		witnesses = append(witnesses, statement.Witness{
			Kind: statement.KindSignature, Signature: entry.signature, Messages: entry.messages,
		})
		credDisclosures[ci] = CredentialDisclosure{
			CredIdx: ci, SchemaID: entry.cred.CredentialSchema.ID, Revealed: revealedAttrs,
		}
	}

	// Step 4: status statements, in credential-index order.
	for ci, entry := range b.creds {
		if entry.cred.CredentialStatus == nil {
			continue
		}
		if entry.status == nil {
			return nil, fmt.Errorf("%w: credential %d declares a status but no accumulator info was supplied", ErrBuilderState, ci)
		}
		pos := entry.positionOf("status.revocationId")
		revocationElem := entry.messages[pos]

		var kind statement.Kind
		var w statement.Witness
		if entry.status.membership {
			kind = statement.KindPositiveMembership
			w = statement.Witness{Kind: kind, Element: revocationElem, MembershipWitness: entry.status.mw}
		} else {
			kind = statement.KindUniversalNonMembership
			w = statement.Witness{Kind: kind, Element: revocationElem, NonMembershipWitness: entry.status.nmw}
		}
		accIdx := registry.AddAccumulator(entry.status.pk)
		idx := qps.AddStatement(statement.Statement{Kind: kind, SetupParamsIdx: accIdx, AccumValue: entry.status.value})
		witnesses = append(witnesses, w)
		qps.AddMetaStatement(statement.WitnessEquality{Refs: []statement.WitnessRef{
			{StmtIdx: sigStmtIdx[ci], Position: pos},
			{StmtIdx: idx, Position: 0},
		}})
		credDisclosures[ci].Status = &StatusDisclosure{RevocationCheck: entry.cred.CredentialStatus.RevocationCheck}
	}

	// Step 5: attribute-equality groups.
	for _, group := range b.equalGroups {
		refs := make([]statement.WitnessRef, len(group))
		for i, g := range group {
			entry, err := b.cred(g.CredIdx)
			if err != nil {
				return nil, err
			}
			pos := entry.positionOf(g.Name)
			if pos < 0 {
				return nil, fmt.Errorf("%w: credential %d has no attribute %q", ErrBuilderState, g.CredIdx, g.Name)
			}
			refs[i] = statement.WitnessRef{StmtIdx: sigStmtIdx[g.CredIdx], Position: pos}
		}
		qps.AddMetaStatement(statement.WitnessEquality{Refs: refs})
	}

	// Steps 6-7 (and pseudonyms): predicates, in requested order.
	var bounds []BoundDisclosure
	var encryptions []EncryptionDisclosure
	var circuits []CircuitDisclosure
	var pseudonyms []PseudonymDisclosure

	for _, p := range b.predicates {
		switch p.kind {
		case predBound:
			e := p.bound
			entry, _ := b.cred(e.ref.CredIdx)
			pos := entry.positionOf(e.ref.Name)
			value := entry.messages[pos]
			blinding, err := backend.RandomScalar()
			if err != nil {
				return nil, err
			}
			commitment, err := e.ck.Commit([]backend.Scalar{value}, blinding)
			if err != nil {
				return nil, err
			}
			ckIdx := registry.AddCommitment(e.ck)
			idx := qps.AddStatement(statement.Statement{
				Kind: statement.KindBoundCheck, SetupParamsIdx: ckIdx, Min: e.min, Max: e.max, Commitment: commitment,
			})
			witnesses = append(witnesses, statement.Witness{Kind: statement.KindBoundCheck, Values: []backend.Scalar{value}, Blinding: blinding})
			qps.AddMetaStatement(statement.WitnessEquality{Refs: []statement.WitnessRef{
				{StmtIdx: sigStmtIdx[e.ref.CredIdx], Position: pos},
				{StmtIdx: idx, Position: 0},
			}})
			bounds = append(bounds, BoundDisclosure{CredIdx: e.ref.CredIdx, Name: e.ref.Name, Min: e.min, Max: e.max})

		case predEncryption:
			e := p.encrypt
			entry, _ := b.cred(e.ref.CredIdx)
			pos := entry.positionOf(e.ref.Name)
			value := entry.messages[pos]
			if e.chunkBitSize > 0 && value.BigInt().BitLen() > e.chunkBitSize {
				return nil, fmt.Errorf("%w: attribute %q does not fit in %d bits", backend.ErrValueOutOfRange, e.ref.Name, e.chunkBitSize)
			}
			blinding, err := backend.RandomScalar()
			if err != nil {
				return nil, err
			}
			commitment, err := e.ck.Commit([]backend.Scalar{value}, blinding)
			if err != nil {
				return nil, err
			}
			c1, c2, k, err := backend.ElGamalEncrypt(e.escrowPK, value)
			if err != nil {
				return nil, err
			}
			ckIdx := registry.AddCommitment(e.ck)
			idx := qps.AddStatement(statement.Statement{
				Kind: statement.KindVerifiableEncryption, SetupParamsIdx: ckIdx, ChunkBitSize: e.chunkBitSize,
				Commitment: commitment, EncryptionPK: e.escrowPK, Ciphertext1: c1, Ciphertext2: c2,
			})
			witnesses = append(witnesses, statement.Witness{
				Kind: statement.KindVerifiableEncryption, Values: []backend.Scalar{value}, Blinding: blinding, EncryptRandomness: k,
			})
			qps.AddMetaStatement(statement.WitnessEquality{Refs: []statement.WitnessRef{
				{StmtIdx: sigStmtIdx[e.ref.CredIdx], Position: pos},
				{StmtIdx: idx, Position: 0},
			}})
			encryptions = append(encryptions, EncryptionDisclosure{CredIdx: e.ref.CredIdx, Name: e.ref.Name, ChunkBitSize: e.chunkBitSize})

		case predCircuit:
			e := p.circuit
			entry, _ := b.cred(e.ref.CredIdx)
			pos := entry.positionOf(e.ref.Name)
			value := entry.messages[pos]
			blinding, err := backend.RandomScalar()
			if err != nil {
				return nil, err
			}
			commitment, err := e.ck.Commit([]backend.Scalar{value}, blinding)
			if err != nil {
				return nil, err
			}
			ckIdx := registry.AddCommitment(e.ck)
			idx := qps.AddStatement(statement.Statement{
				Kind: statement.KindCircuitPredicate, SetupParamsIdx: ckIdx, Commitment: commitment,
			})
			witnesses = append(witnesses, statement.Witness{Kind: statement.KindCircuitPredicate, Values: []backend.Scalar{value}, Blinding: blinding})
			qps.AddMetaStatement(statement.WitnessEquality{Refs: []statement.WitnessRef{
				{StmtIdx: sigStmtIdx[e.ref.CredIdx], Position: pos},
				{StmtIdx: idx, Position: 0},
			}})
			circuits = append(circuits, CircuitDisclosure{CredIdx: e.ref.CredIdx, Name: e.ref.Name})

		case predPseudonym:
			e := p.pseudonym
			values := make([]backend.Scalar, len(e.refs))
			positions := make([]int, len(e.refs))
			for i, ref := range e.refs {
				entry, _ := b.cred(ref.CredIdx)
				positions[i] = entry.positionOf(ref.Name)
				values[i] = entry.messages[positions[i]]
			}
			blinding, err := backend.RandomScalar()
			if err != nil {
				return nil, err
			}
			commitment, err := e.ck.Commit(values, blinding)
			if err != nil {
				return nil, err
			}
			ckIdx := registry.AddCommitment(e.ck)
			idx := qps.AddStatement(statement.Statement{Kind: statement.KindPseudonym, SetupParamsIdx: ckIdx, Commitment: commitment})
			witnesses = append(witnesses, statement.Witness{Kind: statement.KindPseudonym, Values: values, Blinding: blinding})
			for i, ref := range e.refs {
				qps.AddMetaStatement(statement.WitnessEquality{Refs: []statement.WitnessRef{
					{StmtIdx: sigStmtIdx[ref.CredIdx], Position: positions[i]},
					{StmtIdx: idx, Position: i},
				}})
			}
			pseudonyms = append(pseudonyms, PseudonymDisclosure{Refs: e.refs})
		}
	}

	// Steps 8-9: materialize the spec and generate the composite proof.
	spec := qps.Finalize()
	if err := spec.IsValid(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofSpecInvalid, err)
	}
	pf, err := proof.Generate(spec, witnesses, nonce)
	if err != nil {
		return nil, err
	}

	return &Presentation{
		Version: Version,
		Context: b.context,
		Nonce:   nonce,
		Spec: &PresentationSpec{
			Version:     Version,
			ProofSpec:   spec,
			Credentials: credDisclosures,
			Bounds:      bounds,
			Encryptions: encryptions,
			Circuits:    circuits,
			Pseudonyms:  pseudonyms,
		},
		Proof: pf,
	}, nil
}
