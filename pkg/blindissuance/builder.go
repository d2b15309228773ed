package blindissuance

import (
	"fmt"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/credential"
	"github.com/anoncred/anoncred/pkg/encoding"
	"github.com/anoncred/anoncred/pkg/proof"
	"github.com/anoncred/anoncred/pkg/schema"
	"github.com/anoncred/anoncred/pkg/statement"
)

// Builder assembles a blind credential request incrementally, in the
// style of credential.Builder and presentation.Builder: set fields,
// mark attributes for blind issuance, then Finalize.
type Builder struct {
	s             *schema.Schema
	params        *backend.SignatureParams
	cryptoVersion int
	subject       map[string]any
	status        *credential.Status
	blinded       map[string]bool
}

// NewBuilder starts a blind request build against s, to be signed under
// params once finalized.
func NewBuilder(s *schema.Schema, params *backend.SignatureParams, cryptoVersion int) *Builder {
	return &Builder{s: s, params: params, cryptoVersion: cryptoVersion, subject: map[string]any{}, blinded: map[string]bool{}}
}

// SetSubject installs the full subject attribute tree, including the
// positions that will be blinded: BlindAttribute only marks which of
// these the issuer must not see, not which values exist.
func (b *Builder) SetSubject(subject map[string]any) *Builder {
	b.subject = subject
	return b
}

// SetStatus declares the credential-to-be's revocation status.
func (b *Builder) SetStatus(status credential.Status) *Builder {
	b.status = &status
	return b
}

// BlindAttribute marks a flattened attribute name (e.g. "age",
// "status.revocationId") as one the issuer signs without seeing its value.
func (b *Builder) BlindAttribute(name string) *Builder {
	b.blinded[name] = true
	return b
}

// Finalize flattens the subject against the schema, partitions the
// resulting attribute vector into the positions to blind and the
// positions to reveal to the issuer, commits to the blinded values
// under the signature params' own H bases (the same bases BlindSignG1
// folds into the signature equation — spec.md §4.5 does not introduce a
// separate commitment key for this), and proves knowledge of that
// commitment's opening. It returns the wire-ready Request plus the
// blinding scalar the holder must retain to unblind the issuer's
// response (Combine).
//
// BBS+ commitments additionally fold in a holder-chosen blinding scalar
// under H0, matching BlindSignG1/Unblind's convention of carrying that
// scalar forward into the signature's S component. Plain BBS has no S
// component to unblind later, so its commitment carries no separate
// blinding term (backend.Signature.Unblind is a no-op for BBS).
func (b *Builder) Finalize(nonce []byte) (*Request, backend.Scalar, error) {
	if b.params.Scheme == backend.SchemePS {
		return nil, backend.Scalar{}, ErrUnsupportedScheme
	}
	if len(b.blinded) == 0 {
		return nil, backend.Scalar{}, fmt.Errorf("%w: no attribute marked for blind issuance", ErrBuilderState)
	}

	cb := credential.NewBuilder(b.s).SetSubject(b.subject)
	if b.status != nil {
		cb.SetStatus(*b.status)
	}
	names, types, values, err := cb.Flatten(b.cryptoVersion)
	if err != nil {
		return nil, backend.Scalar{}, err
	}

	var positions []int
	var blindedScalars []backend.Scalar
	revealed := map[int]backend.Scalar{}
	for i, name := range names {
		m, err := encoding.Encode(types[i], values[i])
		if err != nil {
			return nil, backend.Scalar{}, fmt.Errorf("encoding attribute %q: %w", name, err)
		}
		if b.blinded[name] {
			positions = append(positions, i)
			blindedScalars = append(blindedScalars, m)
		} else {
			revealed[i] = m
		}
	}

	bases := make([]backend.G1Point, len(positions))
	for i, pos := range positions {
		bases[i] = b.params.H[pos]
	}
	ck := &backend.CommitmentKey{Bases: bases, Blinding: b.params.H0}

	var blinding backend.Scalar
	if b.params.Scheme == backend.SchemeBBSPlus {
		blinding, err = backend.RandomScalar()
		if err != nil {
			return nil, backend.Scalar{}, err
		}
	}
	commitment, err := ck.Commit(blindedScalars, blinding)
	if err != nil {
		return nil, backend.Scalar{}, err
	}

	registry := statement.NewParams()
	ckIdx := registry.AddCommitment(ck)
	qps := statement.NewQuasiProofSpec(registry)
	qps.AddStatement(statement.Statement{
		Kind: statement.KindPedersenCommitment, SetupParamsIdx: ckIdx, Commitment: commitment,
	})
	spec := qps.Finalize()
	if err := spec.IsValid(); err != nil {
		return nil, backend.Scalar{}, err
	}

	pf, err := proof.Generate(spec, []statement.Witness{
		{Kind: statement.KindPedersenCommitment, Values: blindedScalars, Blinding: blinding},
	}, nonce)
	if err != nil {
		return nil, backend.Scalar{}, err
	}

	blindedNames := make([]string, len(positions))
	for i, pos := range positions {
		blindedNames[i] = names[pos]
	}

	return &Request{
		Scheme:           b.params.Scheme,
		TotalPositions:   len(names),
		BlindedNames:     blindedNames,
		BlindedPositions: positions,
		RevealedMessages: revealed,
		Commitment:       commitment,
		Spec:             spec,
		Proof:            pf,
	}, blinding, nil
}
