// Package statement is the registry of provable assertions (C6):
// enumerated statement/witness variants, the SetupParams they reference
// by index, and witness-equality meta-statements joining positions
// across statements (spec.md §3 "Statement"/"Witness"/"Meta-statement",
// §4.2). pkg/proof drives these into an actual composite NIZK.
package statement

import "github.com/anoncred/anoncred/pkg/backend"

// Kind is the closed set of statement variants spec.md §3 names.
// LegoGroth16/Bulletproofs++/set-membership bound checks, SAVER
// verifiable encryption, and R1CS/Circom predicates are collapsed to
// KindBoundCheck/KindVerifiableEncryption/KindCircuitPredicate: per
// DESIGN.md's Open Question decision, each is realized as a generalized
// Schnorr linear relation rather than a distinct SNARK backend, so one
// Kind per purpose suffices regardless of which opaque protocol a real
// deployment would pick.
type Kind int

const (
	KindSignature Kind = iota
	KindPositiveMembership
	KindUniversalNonMembership
	KindPedersenCommitment
	KindBoundCheck
	KindVerifiableEncryption
	KindCircuitPredicate
	KindPseudonym
)

func (k Kind) String() string {
	switch k {
	case KindSignature:
		return "signature"
	case KindPositiveMembership:
		return "positiveMembership"
	case KindUniversalNonMembership:
		return "universalNonMembership"
	case KindPedersenCommitment:
		return "pedersenCommitment"
	case KindBoundCheck:
		return "boundCheck"
	case KindVerifiableEncryption:
		return "verifiableEncryption"
	case KindCircuitPredicate:
		return "circuitPredicate"
	case KindPseudonym:
		return "pseudonym"
	default:
		return "unknown"
	}
}

// Statement is a tagged variant referencing an assertion to prove. Only
// the fields relevant to Kind are populated; this flat shape (rather
// than one Go type per Kind behind an interface) mirrors how the
// generalized-Schnorr back-end treats every variant uniformly — pkg/proof
// dispatches on Kind to build the right G1LinearRelation/GTLinearRelation.
type Statement struct {
	Kind Kind

	// SetupParamsIdx references the primary SetupParam this statement's
	// bases/keys come from (signature params, accumulator public key,
	// commitment key, or a generic Schnorr base set for bound/encryption/
	// circuit/pseudonym statements).
	SetupParamsIdx int

	// KindSignature
	TotalMessages int
	Revealed      map[int]backend.Scalar

	// KindPositiveMembership / KindUniversalNonMembership
	AccumValue backend.AccumulatorValue

	// KindBoundCheck: value must lie in [Min, Max). Enforced by a
	// bit-decomposition range argument (pkg/backend/rangeproof.go) the
	// prover attaches alongside the commitment-opening relation; Min/Max
	// are public and need no witness-equality link of their own.
	Min, Max int64

	// KindVerifiableEncryption: the committed value must fit in
	// ChunkBitSize bits (bounding the escrow authority's decryption
	// search space), EncryptionPK is the escrow authority's public key,
	// and Ciphertext1/Ciphertext2 is the exponential-ElGamal ciphertext
	// (pkg/backend/encryption.go) proven, via the statement's relation,
	// to encrypt the same value the commitment opens to.
	ChunkBitSize             int
	EncryptionPK             backend.G1Point
	Ciphertext1, Ciphertext2 backend.G1Point

	// KindPedersenCommitment / KindBoundCheck / KindVerifiableEncryption /
	// KindCircuitPredicate / KindPseudonym: the public commitment these
	// statements prove an opening of, against SetupParamsIdx's
	// CommitmentKey (spec.md §3's "generalized Schnorr" realization, see
	// DESIGN.md's Open Question decision).
	Commitment backend.G1Point
}

// Witness is the prover's secret data matching a Statement of the same
// index. As with Statement, only the Kind-relevant fields are populated.
type Witness struct {
	Kind Kind

	// KindSignature: the credential signature itself, and every message
	// in flattened position order (revealed positions are carried too;
	// the proof engine only hides the unrevealed ones, per sigproof.go's
	// revealed map convention).
	Signature *backend.Signature
	Messages  []backend.Scalar

	// KindPositiveMembership
	MembershipWitness *backend.MembershipWitness
	// KindUniversalNonMembership
	NonMembershipWitness *backend.NonMembershipWitness
	// Both accumulator kinds: the element value itself, so a
	// witness-equality can link it to a signature statement's position.
	Element backend.Scalar

	// KindPedersenCommitment / KindBoundCheck / KindVerifiableEncryption /
	// KindCircuitPredicate / KindPseudonym: the committed/proven value(s)
	// and the blinding randomness used when opening the commitment.
	Values   []backend.Scalar
	Blinding backend.Scalar

	// KindVerifiableEncryption: the randomness ElGamalEncrypt drew for
	// Ciphertext1/Ciphertext2, proven (without revealing it) to be the
	// same exponent both ciphertext components were built from.
	EncryptRandomness backend.Scalar
}
