// Package presentation is the presentation builder (C8): it drives
// pkg/credential's flattened attribute vectors and pkg/statement's
// statement/witness/meta-statement registry through pkg/proof's composite
// NIZK engine, producing and verifying a selective-disclosure
// presentation over one or more credentials (spec.md §4.4).
package presentation

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/credential"
	"github.com/anoncred/anoncred/pkg/encoding"
	"github.com/anoncred/anoncred/pkg/schema"
)

// AttrRef names one attribute on one registered credential: the
// dotted flattened name (spec.md §4.1's flatten contract), scoped to the
// index AddCredential returned.
type AttrRef struct {
	CredIdx int
	Name    string
}

// credEntry is one credential registered with the builder, plus the
// already-flattened, already-encoded attribute vector AddCredential
// computes once so every later builder call is a cheap lookup.
type credEntry struct {
	cred         *credential.Credential
	issuerPubKey *backend.PublicKey
	params       *backend.SignatureParams
	signature    *backend.Signature
	names        []string
	messages     []backend.Scalar
	rawValues    []any
	revealed     map[string]bool
	status       *statusEntry
}

type statusEntry struct {
	membership bool
	mw         *backend.MembershipWitness
	nmw        *backend.NonMembershipWitness
	value      backend.AccumulatorValue
	pk         *backend.AccumulatorPublicKey
}

func (e *credEntry) hasAttribute(name string) bool { return e.positionOf(name) >= 0 }

func (e *credEntry) positionOf(name string) int {
	for i, n := range e.names {
		if n == name {
			return i
		}
	}
	return -1
}

type boundEntry struct {
	ref      AttrRef
	min, max int64
	ck       *backend.CommitmentKey
}

type encEntry struct {
	ref          AttrRef
	chunkBitSize int
	ck           *backend.CommitmentKey
	escrowPK     backend.G1Point
}

type circuitEntry struct {
	ref AttrRef
	ck  *backend.CommitmentKey
}

type pseudonymEntry struct {
	ck   *backend.CommitmentKey
	refs []AttrRef
}

type predicateKind int

const (
	predBound predicateKind = iota
	predEncryption
	predCircuit
	predPseudonym
)

// predicateEntry is a tagged union over the four predicate kinds,
// appended to in builder-call order so Finalize can honor spec.md §5's
// ordering guarantee ("predicates in the order requested").
type predicateEntry struct {
	kind      predicateKind
	bound     *boundEntry
	encrypt   *encEntry
	circuit   *circuitEntry
	pseudonym *pseudonymEntry
}

// Builder assembles a presentation incrementally: register credentials,
// declare what to reveal/link/bound/encrypt, then Finalize.
type Builder struct {
	creds       []*credEntry
	equalGroups [][]AttrRef
	predicates  []predicateEntry
	context     []byte
}

// NewBuilder starts an empty presentation build.
func NewBuilder() *Builder { return &Builder{} }

// SetContext sets the verifier-observable context bytes bound into the
// composite proof's Fiat-Shamir transcript.
func (b *Builder) SetContext(ctx []byte) *Builder {
	b.context = ctx
	return b
}

// AddCredential registers cred for presentation and returns its index for
// later builder calls. params must be the exact signature parameters cred
// was signed under — a presentation proves a statement about an
// already-issued credential, so its params are fixed at issuance time
// (spec.md §4.4 step 1's "adapted signature params" applies when the
// issuer first sizes params for the credential's schema, not here).
func (b *Builder) AddCredential(cred *credential.Credential, issuerPubKey *backend.PublicKey, params *backend.SignatureParams) (int, error) {
	s := cred.Schema()
	if s == nil {
		return 0, fmt.Errorf("%w: credential has no resolved schema; call Verify or re-parse first", schema.ErrSchema)
	}
	bld := credential.NewBuilder(s).SetSubject(cred.CredentialSubject)
	if cred.CredentialStatus != nil {
		bld.SetStatus(*cred.CredentialStatus)
	}
	names, types, values, err := bld.Flatten(cred.CryptoVersion)
	if err != nil {
		return 0, err
	}

	messages := make([]backend.Scalar, len(names))
	for i := range names {
		m, err := encoding.Encode(types[i], values[i])
		if err != nil {
			return 0, fmt.Errorf("encoding attribute %q: %w", names[i], err)
		}
		messages[i] = m
	}

	raw, err := base58.Decode(cred.Proof.ProofValue)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed proofValue: %v", encoding.ErrEncoding, err)
	}
	sig, err := backend.UnmarshalSignature(raw)
	if err != nil {
		return 0, err
	}

	entry := &credEntry{
		cred: cred, issuerPubKey: issuerPubKey, params: params, signature: sig,
		names: names, messages: messages, rawValues: values, revealed: map[string]bool{},
	}
	b.creds = append(b.creds, entry)
	return len(b.creds) - 1, nil
}

func (b *Builder) cred(idx int) (*credEntry, error) {
	if idx < 0 || idx >= len(b.creds) {
		return nil, fmt.Errorf("%w: credential index %d out of range", ErrBuilderState, idx)
	}
	return b.creds[idx], nil
}

// MarkAttributesRevealed declares that names on credential credIdx should
// be disclosed in the clear rather than merely proven known.
func (b *Builder) MarkAttributesRevealed(credIdx int, names []string) error {
	entry, err := b.cred(credIdx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if !entry.hasAttribute(n) {
			return fmt.Errorf("%w: credential %d has no attribute %q", ErrBuilderState, credIdx, n)
		}
		entry.revealed[n] = true
	}
	return nil
}

// MarkAttributesEqual declares that refs must all carry the same
// underlying value, resolved at Finalize into a witness-equality
// meta-statement over their flattened positions.
func (b *Builder) MarkAttributesEqual(refs []AttrRef) error {
	if len(refs) < 2 {
		return fmt.Errorf("%w: witness-equality needs at least 2 references", ErrBuilderState)
	}
	for _, r := range refs {
		entry, err := b.cred(r.CredIdx)
		if err != nil {
			return err
		}
		if !entry.hasAttribute(r.Name) {
			return fmt.Errorf("%w: credential %d has no attribute %q", ErrBuilderState, r.CredIdx, r.Name)
		}
	}
	b.equalGroups = append(b.equalGroups, append([]AttrRef(nil), refs...))
	return nil
}

// AddAccumInfoForCredStatus supplies the accumulator value and witness
// backing credIdx's declared status. Exactly one of mw/nmw must be given,
// matching the credential's declared revocationCheck variant.
func (b *Builder) AddAccumInfoForCredStatus(credIdx int, pk *backend.AccumulatorPublicKey, value backend.AccumulatorValue, mw *backend.MembershipWitness, nmw *backend.NonMembershipWitness) error {
	entry, err := b.cred(credIdx)
	if err != nil {
		return err
	}
	if entry.cred.CredentialStatus == nil {
		return fmt.Errorf("%w: credential %d has no declared status", ErrBuilderState, credIdx)
	}
	membership := entry.cred.CredentialStatus.RevocationCheck == "membership"
	if membership && mw == nil {
		return fmt.Errorf("%w: credential %d's status is membership but no membership witness was given", ErrBuilderState, credIdx)
	}
	if !membership && nmw == nil {
		return fmt.Errorf("%w: credential %d's status is non-membership but no non-membership witness was given", ErrBuilderState, credIdx)
	}
	entry.status = &statusEntry{membership: membership, mw: mw, nmw: nmw, value: value, pk: pk}
	return nil
}

// EnforceBoundsOnCredentialAttribute declares that credIdx's attribute
// name lies in [min, max), proven via a generalized Schnorr
// commitment-opening statement linked to the credential by witness
// equality (spec.md §4.4's bound-check realization, DESIGN.md's Open
// Question decision).
func (b *Builder) EnforceBoundsOnCredentialAttribute(credIdx int, name string, min, max int64, ck *backend.CommitmentKey) error {
	if min >= max {
		return fmt.Errorf("%w: bound check requires min < max", ErrBuilderState)
	}
	entry, err := b.cred(credIdx)
	if err != nil {
		return err
	}
	if !entry.hasAttribute(name) {
		return fmt.Errorf("%w: credential %d has no attribute %q", ErrBuilderState, credIdx, name)
	}
	b.predicates = append(b.predicates, predicateEntry{kind: predBound, bound: &boundEntry{
		ref: AttrRef{CredIdx: credIdx, Name: name}, min: min, max: max, ck: ck,
	}})
	return nil
}

// VerifiablyEncryptCredentialAttribute declares that credIdx's attribute
// name is verifiably encrypted under escrowPK (an escrow authority's
// public key, see backend.GenerateEncryptionKeyPair) as an exponential
// ElGamal ciphertext bound, via the statement's relation, to the same
// commitment-opening witness equality links the attribute by. chunkBitSize
// bounds the value so the escrow authority's decryption search
// (backend.ElGamalDecrypt) stays tractable.
func (b *Builder) VerifiablyEncryptCredentialAttribute(credIdx int, name string, chunkBitSize int, ck *backend.CommitmentKey, escrowPK backend.G1Point) error {
	entry, err := b.cred(credIdx)
	if err != nil {
		return err
	}
	if !entry.hasAttribute(name) {
		return fmt.Errorf("%w: credential %d has no attribute %q", ErrBuilderState, credIdx, name)
	}
	b.predicates = append(b.predicates, predicateEntry{kind: predEncryption, encrypt: &encEntry{
		ref: AttrRef{CredIdx: credIdx, Name: name}, chunkBitSize: chunkBitSize, ck: ck, escrowPK: escrowPK,
	}})
	return nil
}

// EnforceCircomPredicateOnCredentialAttribute declares that credIdx's
// attribute name satisfies an opaque circuit predicate.
func (b *Builder) EnforceCircomPredicateOnCredentialAttribute(credIdx int, name string, ck *backend.CommitmentKey) error {
	entry, err := b.cred(credIdx)
	if err != nil {
		return err
	}
	if !entry.hasAttribute(name) {
		return fmt.Errorf("%w: credential %d has no attribute %q", ErrBuilderState, credIdx, name)
	}
	b.predicates = append(b.predicates, predicateEntry{kind: predCircuit, circuit: &circuitEntry{
		ref: AttrRef{CredIdx: credIdx, Name: name}, ck: ck,
	}})
	return nil
}

// AddPseudonymToCredentialAttributes declares a blinded, linkable
// pseudonym over the named attributes, one Pedersen base per ref.
func (b *Builder) AddPseudonymToCredentialAttributes(ck *backend.CommitmentKey, refs []AttrRef) error {
	if len(refs) == 0 {
		return fmt.Errorf("%w: pseudonym needs at least one attribute", ErrBuilderState)
	}
	for _, r := range refs {
		entry, err := b.cred(r.CredIdx)
		if err != nil {
			return err
		}
		if !entry.hasAttribute(r.Name) {
			return fmt.Errorf("%w: credential %d has no attribute %q", ErrBuilderState, r.CredIdx, r.Name)
		}
	}
	b.predicates = append(b.predicates, predicateEntry{kind: predPseudonym, pseudonym: &pseudonymEntry{
		ck: ck, refs: append([]AttrRef(nil), refs...),
	}})
	return nil
}
