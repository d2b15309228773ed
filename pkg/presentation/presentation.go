package presentation

import (
	"github.com/anoncred/anoncred/pkg/proof"
	"github.com/anoncred/anoncred/pkg/statement"
)

// RevealedAttr is one disclosed attribute: its flattened dotted name and
// its raw, pre-encoding value (spec.md §4.4 step 9).
type RevealedAttr struct {
	Name  string
	Value any
}

// StatusDisclosure records which revocation check a presented credential's
// status statement proves, for audit/display purposes.
type StatusDisclosure struct {
	RevocationCheck string
}

// CredentialDisclosure is one presented credential's audit-facing view:
// which attributes were revealed in the clear, and its status claim if any.
type CredentialDisclosure struct {
	CredIdx  int
	SchemaID string
	Revealed []RevealedAttr
	Status   *StatusDisclosure
}

// BoundDisclosure records a range-proof predicate's public parameters.
type BoundDisclosure struct {
	CredIdx  int
	Name     string
	Min, Max int64
}

// EncryptionDisclosure records a verifiable-encryption predicate's public
// parameters.
type EncryptionDisclosure struct {
	CredIdx      int
	Name         string
	ChunkBitSize int
}

// CircuitDisclosure records a circuit-predicate statement's target.
type CircuitDisclosure struct {
	CredIdx int
	Name    string
}

// PseudonymDisclosure records which attributes a pseudonym statement
// binds together.
type PseudonymDisclosure struct {
	Refs []AttrRef
}

// PresentationSpec is the per-presentation specification spec.md §4.4
// step 9 describes: the composite ProofSpec plus an audit-facing
// enumeration of what each statement actually discloses.
type PresentationSpec struct {
	Version     int
	ProofSpec   *statement.ProofSpec
	Credentials []CredentialDisclosure
	Bounds      []BoundDisclosure
	Encryptions []EncryptionDisclosure
	Circuits    []CircuitDisclosure
	Pseudonyms  []PseudonymDisclosure
}

// Presentation is the wire-ready artifact spec.md §6 describes:
// `{ version, context?, nonce?, spec, proof }`.
type Presentation struct {
	Version int
	Context []byte
	Nonce   []byte
	Spec    *PresentationSpec
	Proof   *proof.Proof
}
