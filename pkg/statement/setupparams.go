package statement

import "github.com/anoncred/anoncred/pkg/backend"

// SetupParamKind tags which of SetupParam's fields is populated.
type SetupParamKind int

const (
	SetupSignature SetupParamKind = iota
	SetupAccumulator
	SetupCommitment
)

// SetupParam is a recurring public parameter (signature parameters,
// accumulator public key, or Pedersen commitment key) registered once
// and referenced by index, so a proof with many statements does not
// re-serialize the same large blob (spec.md §4.2).
type SetupParam struct {
	Kind SetupParamKind

	Signature   *backend.SignatureParams
	IssuerKey   *backend.PublicKey // SetupSignature only, verifier-side issuer key
	Accumulator *backend.AccumulatorPublicKey
	Commitment  *backend.CommitmentKey
}

// Params is an append-only SetupParam registry. Statements reference
// entries by the index Add returns.
type Params struct {
	entries []SetupParam
}

// NewParams returns an empty registry.
func NewParams() *Params { return &Params{} }

// Add appends p and returns its index.
func (r *Params) Add(p SetupParam) int {
	r.entries = append(r.entries, p)
	return len(r.entries) - 1
}

// AddSignature is a convenience wrapper around Add for the common case.
// issuerKey is the verifier-visible issuer public key paired with p.
func (r *Params) AddSignature(p *backend.SignatureParams, issuerKey *backend.PublicKey) int {
	return r.Add(SetupParam{Kind: SetupSignature, Signature: p, IssuerKey: issuerKey})
}

// AddAccumulator registers an accumulator public key.
func (r *Params) AddAccumulator(pk *backend.AccumulatorPublicKey) int {
	return r.Add(SetupParam{Kind: SetupAccumulator, Accumulator: pk})
}

// AddCommitment registers a Pedersen commitment key, shared by
// KindPedersenCommitment/KindBoundCheck/KindVerifiableEncryption/
// KindCircuitPredicate/KindPseudonym statements (every one of them
// reduces to a generalized Schnorr opening of a Pedersen-style
// commitment, per DESIGN.md's Open Question decision).
func (r *Params) AddCommitment(k *backend.CommitmentKey) int {
	return r.Add(SetupParam{Kind: SetupCommitment, Commitment: k})
}

// At returns the entry at idx.
func (r *Params) At(idx int) (SetupParam, bool) {
	if idx < 0 || idx >= len(r.entries) {
		return SetupParam{}, false
	}
	return r.entries[idx], true
}

// Len reports how many entries are registered.
func (r *Params) Len() int { return len(r.entries) }

// All returns the full registry slice, for ProofSpec construction.
func (r *Params) All() []SetupParam { return append([]SetupParam(nil), r.entries...) }
