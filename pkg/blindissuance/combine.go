package blindissuance

import (
	"github.com/mr-tron/base58"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/credential"
	"github.com/anoncred/anoncred/pkg/schema"
)

// CredentialMetadata carries the top-level credential fields spec.md §6
// lists alongside the signed attribute vector, mirroring
// credential.Builder's setters since blindissuance assembles the final
// Credential itself rather than going through that builder's Sign.
type CredentialMetadata struct {
	Schema         *schema.Schema
	Subject        map[string]any
	Status         *credential.Status
	Issuer         string
	IssuanceDate   string
	ExpirationDate string
}

// Combine folds the holder's blinding scalar into the issuer's blind
// signature (backend.Signature.Unblind) and assembles the resulting,
// ordinarily verifiable credential (spec.md §4.5: "the user combines it
// with blinding"). It verifies the assembled credential against
// params/pk before returning so a malformed or incorrectly blind-signed
// response is rejected immediately, and so the credential's schema
// cache is populated for downstream use (pkg/presentation.AddCredential
// requires a resolved schema).
func Combine(sig *backend.Signature, blinding backend.Scalar, meta CredentialMetadata, cryptoVersion int, params *backend.SignatureParams, pk *backend.PublicKey) (*credential.Credential, error) {
	final := sig.Unblind(blinding)
	raw, err := final.MarshalBinary()
	if err != nil {
		return nil, err
	}

	cred := &credential.Credential{
		CryptoVersion: cryptoVersion,
		CredentialSchema: credential.SchemaRef{
			ID:   meta.Schema.DataURI(),
			Type: "JsonSchemaValidator2018",
		},
		CredentialSubject: meta.Subject,
		CredentialStatus:  meta.Status,
		Issuer:            meta.Issuer,
		IssuanceDate:      meta.IssuanceDate,
		ExpirationDate:    meta.ExpirationDate,
		Proof: credential.Proof{
			Type:       final.Scheme.String() + "Signature2024",
			ProofValue: base58.Encode(raw),
		},
	}

	if err := cred.Verify(params, pk); err != nil {
		return nil, err
	}
	return cred, nil
}
