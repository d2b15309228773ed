// Package credential builds, signs, serializes and verifies the anonymous
// credential JSON object spec.md §6 describes: a subject tree flattened
// against a schema into a signed attribute vector, an optional status
// tree, and a `proof` carrying a base58-encoded signature.
package credential

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/encoding"
	"github.com/anoncred/anoncred/pkg/schema"
)

// Status is a credential's optional revocation-status declaration.
// spec.md §3: "If a credential status is declared, its leaves id, type,
// revocationCheck, revocationId are mandatory strings."
type Status struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	RevocationCheck string `json:"revocationCheck"` // "membership" or "non-membership"
	RevocationID    string `json:"revocationId"`
}

// statusLeafNames is the fixed, schema-independent set of synthetic
// leaves a declared status contributes to the flattened attribute
// vector, in the same lexicographic order flatten() would produce for
// dotted paths under "status".
var statusLeafNames = []string{"status.id", "status.revocationCheck", "status.revocationId", "status.type"}

// ParsingOptions mirrors spec.md §6's `credentialSchema.parsingOptions`.
type ParsingOptions struct {
	UseDefaults bool `json:"useDefaults"`
}

// SchemaRef is the embedded-schema envelope spec.md §6 requires inside
// a credential's `credentialSchema` field.
type SchemaRef struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"` // always "JsonSchemaValidator2018"
	ParsingOptions ParsingOptions `json:"parsingOptions"`
	Version        string         `json:"version,omitempty"`
}

// Proof is the credential's signature envelope.
type Proof struct {
	Type       string `json:"type"`
	Created    string `json:"created"`
	ProofValue string `json:"proofValue"` // base58(signature bytes)
}

// Credential is the signed, wire-ready anonymous credential of spec.md §6.
type Credential struct {
	CryptoVersion     int             `json:"cryptoVersion"`
	CredentialSchema  SchemaRef       `json:"credentialSchema"`
	CredentialSubject map[string]any  `json:"credentialSubject"`
	CredentialStatus  *Status         `json:"credentialStatus,omitempty"`
	Issuer            string          `json:"issuer,omitempty"`
	IssuanceDate      string          `json:"issuanceDate,omitempty"`
	ExpirationDate    string          `json:"expirationDate,omitempty"`
	Proof             Proof           `json:"proof"`

	schema *schema.Schema
}

// Schema returns the parsed schema this credential was built against. It
// is set by Builder.Sign, or resolved from the embedded data-URI by
// Verify; UnmarshalJSON does not resolve it, so it is nil until then.
func (c *Credential) Schema() *schema.Schema { return c.schema }

// AttributeNames returns the full flattened attribute vector name list
// this credential's signature commits to: the schema's own names
// (expanded per subject's actual array lengths, spec.md §4.1) plus, if a
// status is declared, the four fixed status leaves appended in the same
// lexicographic slot "status.*" would occupy. subject may be nil when no
// concrete instance is available yet (e.g. sizing signature params before
// a holder's attributes are known); arrays then fall back to a single
// synthetic placeholder element.
func AttributeNames(s *schema.Schema, hasStatus bool, subject any) []string {
	names, _ := s.FlattenSubject(subject)
	if !hasStatus {
		return names
	}
	return mergeSorted(names, statusLeafNames)
}

// AttributeTypes is the encoding.LeafType vector parallel to AttributeNames.
func AttributeTypes(s *schema.Schema, hasStatus bool, subject any) []encoding.LeafType {
	names, types := s.FlattenSubject(subject)
	if !hasStatus {
		return types
	}
	statusTypes := make([]encoding.LeafType, len(statusLeafNames))
	for i := range statusTypes {
		statusTypes[i] = encoding.LeafType{Kind: encoding.KindString}
	}
	_, merged := mergeSortedTyped(names, types, statusLeafNames, statusTypes)
	return merged
}

// mergeSorted interleaves two already-sorted name lists, preserving the
// leading cryptoVersion/credentialSchema pair at the front of base.
func mergeSorted(base, extra []string) []string {
	head := base[:2]
	rest := base[2:]
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, head...)
	i, j := 0, 0
	for i < len(rest) || j < len(extra) {
		switch {
		case i >= len(rest):
			out = append(out, extra[j])
			j++
		case j >= len(extra):
			out = append(out, rest[i])
			i++
		case rest[i] <= extra[j]:
			out = append(out, rest[i])
			i++
		default:
			out = append(out, extra[j])
			j++
		}
	}
	return out
}

func mergeSortedTyped(baseNames []string, baseTypes []encoding.LeafType, extraNames []string, extraTypes []encoding.LeafType) ([]string, []encoding.LeafType) {
	headNames, headTypes := baseNames[:2], baseTypes[:2]
	restNames, restTypes := baseNames[2:], baseTypes[2:]
	outNames := append([]string(nil), headNames...)
	outTypes := append([]encoding.LeafType(nil), headTypes...)
	i, j := 0, 0
	for i < len(restNames) || j < len(extraNames) {
		switch {
		case i >= len(restNames):
			outNames, outTypes = append(outNames, extraNames[j]), append(outTypes, extraTypes[j])
			j++
		case j >= len(extraNames):
			outNames, outTypes = append(outNames, restNames[i]), append(outTypes, restTypes[i])
			i++
		case restNames[i] <= extraNames[j]:
			outNames, outTypes = append(outNames, restNames[i]), append(outTypes, restTypes[i])
			i++
		default:
			outNames, outTypes = append(outNames, extraNames[j]), append(outTypes, extraTypes[j])
			j++
		}
	}
	return outNames, outTypes
}

// Builder assembles a Credential incrementally before signing, in the
// style of the teacher's request builders: set fields, then Sign.
type Builder struct {
	s              *schema.Schema
	subject        map[string]any
	status         *Status
	issuer         string
	issuanceDate   string
	expirationDate string
	parsingOpts    schema.ParseOptions
}

// NewBuilder starts a credential build against s.
func NewBuilder(s *schema.Schema) *Builder {
	return &Builder{s: s, subject: map[string]any{}}
}

// SetSubject installs the full subject attribute tree.
func (b *Builder) SetSubject(subject map[string]any) *Builder {
	b.subject = subject
	return b
}

// SetStatus declares the credential's revocation status.
func (b *Builder) SetStatus(status Status) *Builder {
	b.status = &status
	return b
}

// SetIssuer, SetIssuanceDate, SetExpirationDate set the matching
// top-level metadata fields spec.md §6 lists as optional.
func (b *Builder) SetIssuer(issuer string) *Builder             { b.issuer = issuer; return b }
func (b *Builder) SetIssuanceDate(date string) *Builder         { b.issuanceDate = date; return b }
func (b *Builder) SetExpirationDate(date string) *Builder       { b.expirationDate = date; return b }

// Flatten produces the ordered (names, types, values) attribute vector
// this credential's signature will commit to: cryptoVersion, the
// embedded schema, every schema leaf value in lexicographic order, and
// — if a status was set — the four fixed status leaves.
func (b *Builder) Flatten(cryptoVersion int) (names []string, types []encoding.LeafType, values []any, err error) {
	if err := b.s.ValidateInstance(b.subject); err != nil {
		return nil, nil, nil, err
	}

	names = AttributeNames(b.s, b.status != nil, b.subject)
	types = AttributeTypes(b.s, b.status != nil, b.subject)
	values = make([]any, len(names))

	for i, name := range names {
		switch name {
		case "cryptoVersion":
			values[i] = cryptoVersion
		case "credentialSchema":
			values[i] = b.s.DataURI()
		case "status.id":
			values[i] = b.status.ID
		case "status.type":
			values[i] = b.status.Type
		case "status.revocationCheck":
			values[i] = b.status.RevocationCheck
		case "status.revocationId":
			values[i] = b.status.RevocationID
		default:
			v, ok := lookupPath(b.subject, name)
			if !ok {
				return nil, nil, nil, fmt.Errorf("%w: subject missing value for %q", schema.ErrSchema, name)
			}
			values[i] = v
		}
	}
	return names, types, values, nil
}

// lookupPath walks a dotted path (numeric segments index into arrays)
// through a decoded JSON subject tree.
func lookupPath(data any, path string) (any, bool) {
	cur := data
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			seg := path[start:i]
			start = i + 1
			switch node := cur.(type) {
			case map[string]any:
				v, ok := node[seg]
				if !ok {
					return nil, false
				}
				cur = v
			case []any:
				idx := 0
				if _, err := fmt.Sscanf(seg, "%d", &idx); err != nil || idx < 0 || idx >= len(node) {
					return nil, false
				}
				cur = node[idx]
			default:
				return nil, false
			}
		}
	}
	return cur, true
}

// Sign flattens the builder's state, encodes every attribute to a
// scalar via encoding.Encode, signs the resulting vector under sk/params,
// and wraps the result into a wire-ready Credential.
func (b *Builder) Sign(cryptoVersion int, params *backend.SignatureParams, sk *backend.SecretKey) (*Credential, error) {
	names, types, values, err := b.Flatten(cryptoVersion)
	if err != nil {
		return nil, err
	}

	messages := make([]backend.Scalar, len(names))
	for i := range names {
		m, err := encoding.Encode(types[i], values[i])
		if err != nil {
			return nil, fmt.Errorf("encoding attribute %q: %w", names[i], err)
		}
		messages[i] = m
	}

	sig, err := backend.SignG1(params, sk, messages)
	if err != nil {
		return nil, err
	}
	raw, err := sig.MarshalBinary()
	if err != nil {
		return nil, err
	}

	return &Credential{
		CryptoVersion: cryptoVersion,
		CredentialSchema: SchemaRef{
			ID:             b.s.DataURI(),
			Type:           "JsonSchemaValidator2018",
			ParsingOptions: b.parsingOpts,
		},
		CredentialSubject: b.subject,
		CredentialStatus:  b.status,
		Issuer:            b.issuer,
		IssuanceDate:      b.issuanceDate,
		ExpirationDate:    b.expirationDate,
		Proof: Proof{
			Type:       sig.Scheme.String() + "Signature2024",
			ProofValue: base58.Encode(raw),
		},
		schema: b.s,
	}, nil
}

// Verify recomputes the credential's attribute vector and checks its
// signature under pk/params.
func (c *Credential) Verify(params *backend.SignatureParams, pk *backend.PublicKey) error {
	if c.schema == nil {
		s, err := schema.ParseDataURI(c.CredentialSchema.ID, schema.ParseOptions{UseDefaults: c.CredentialSchema.ParsingOptions.UseDefaults})
		if err != nil {
			return err
		}
		c.schema = s
	}

	b := NewBuilder(c.schema).SetSubject(c.CredentialSubject)
	if c.CredentialStatus != nil {
		b.SetStatus(*c.CredentialStatus)
	}
	names, types, values, err := b.Flatten(c.CryptoVersion)
	if err != nil {
		return err
	}

	messages := make([]backend.Scalar, len(names))
	for i := range names {
		m, err := encoding.Encode(types[i], values[i])
		if err != nil {
			return fmt.Errorf("encoding attribute %q: %w", names[i], err)
		}
		messages[i] = m
	}

	raw, err := base58.Decode(c.Proof.ProofValue)
	if err != nil {
		return fmt.Errorf("%w: malformed proofValue: %v", encoding.ErrEncoding, err)
	}
	sig, err := backend.UnmarshalSignature(raw)
	if err != nil {
		return err
	}

	return backend.VerifyG1(params, pk, messages, sig)
}

// MarshalJSON matches json.Marshaler's form, delegating to the exported
// field layout — present explicitly since Credential also carries an
// unexported resolved schema cache that must never leak into the wire
// form.
func (c Credential) MarshalJSON() ([]byte, error) {
	type alias Credential
	return json.Marshal(alias(c))
}

// UnmarshalJSON resolves the embedded schema lazily: Verify triggers
// parsing it on first use rather than paying for a schema parse on
// every decode that never calls Verify.
func (c *Credential) UnmarshalJSON(data []byte) error {
	type alias Credential
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Credential(a)
	return nil
}
