// Command democli exercises this module's issuance and presentation
// flow end to end against an in-memory accumulator, in the style of the
// teacher's cmd/ entry points (logger.NewSimple, panic on setup failure)
// scaled down to a one-shot demo rather than a long-running service.
package main

import (
	"context"
	"fmt"

	"github.com/anoncred/anoncred/pkg/accumulator"
	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/blindissuance"
	"github.com/anoncred/anoncred/pkg/credential"
	"github.com/anoncred/anoncred/pkg/encoding"
	"github.com/anoncred/anoncred/pkg/logger"
	"github.com/anoncred/anoncred/pkg/presentation"
	"github.com/anoncred/anoncred/pkg/schema"
)

const demoSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0},
		"nationalID": {"type": "string"},
		"country": {"type": "string"}
	}
}`

func main() {
	log := logger.NewSimple("democli")
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(err, "demo failed")
		panic(err)
	}
	log.Info("demo completed successfully")
}

func run(ctx context.Context, log *logger.Log) error {
	s, err := schema.Parse([]byte(demoSchema), schema.ParseOptions{})
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}

	status := credential.Status{
		ID:              "https://issuer.example/status/1",
		Type:            "AccumulatorStatus",
		RevocationCheck: "non-membership",
		RevocationID:    "holder-0001",
	}

	n := len(credential.AttributeNames(s, true, nil))
	params, err := backend.GenerateSignatureParams(backend.SchemeBBSPlus, n, "democli/issuer")
	if err != nil {
		return fmt.Errorf("generating signature params: %w", err)
	}
	sk, pk, err := backend.GenerateKeyPair(params)
	if err != nil {
		return fmt.Errorf("generating issuer key pair: %w", err)
	}

	log.Info("issuer ready", "scheme", params.Scheme.String())

	// Blind issuance: the holder keeps nationalID from the issuer.
	request, blinding, err := blindissuance.NewBuilder(s, params, 1).
		SetSubject(map[string]any{"name": "Alice", "age": 34, "nationalID": "SE-1990-ALICE", "country": "SE"}).
		SetStatus(status).
		BlindAttribute("nationalID").
		Finalize([]byte("issuance-session-1"))
	if err != nil {
		return fmt.Errorf("building blind request: %w", err)
	}
	log.Info("blind request built", "blindedAttributes", request.BlindedNames)

	sig, err := blindissuance.Issue(params, sk, request, []byte("issuance-session-1"))
	if err != nil {
		return fmt.Errorf("issuing blind signature: %w", err)
	}

	cred, err := blindissuance.Combine(sig, blinding, blindissuance.CredentialMetadata{
		Schema:         s,
		Subject:        map[string]any{"name": "Alice", "age": 34, "nationalID": "SE-1990-ALICE", "country": "SE"},
		Status:         &status,
		Issuer:         "did:example:issuer",
		IssuanceDate:   "2026-01-01T00:00:00Z",
	}, 1, params, pk)
	if err != nil {
		return fmt.Errorf("combining blind signature: %w", err)
	}
	log.Info("credential issued", "schema", cred.CredentialSchema.ID)

	// Revocation accumulator: the holder's revocationId starts absent.
	store := accumulator.NewMemoryStore()
	initial := accumulator.NewMemoryStore()
	uni, err := accumulator.NewUniversal(store, initial)
	if err != nil {
		return fmt.Errorf("initializing accumulator: %w", err)
	}
	seed := backend.HashToScalar([]byte("bootstrap-member"))
	if err := uni.InitializeUniversalAccumulator(ctx, []backend.Scalar{seed}); err != nil {
		return fmt.Errorf("initializing universal accumulator: %w", err)
	}
	if err := uni.Add(ctx, seed); err != nil {
		return fmt.Errorf("seeding accumulator: %w", err)
	}

	revocationElem, err := revocationElement(s, status.RevocationID)
	if err != nil {
		return fmt.Errorf("deriving revocation element: %w", err)
	}
	nmw, err := uni.NonMembershipWitness(ctx, revocationElem)
	if err != nil {
		return fmt.Errorf("building non-membership witness: %w", err)
	}

	// Presentation: reveal name and country, prove age >= 18 without
	// revealing it, and prove non-revocation, all in one composite proof.
	builder := presentation.NewBuilder()
	credIdx, err := builder.AddCredential(cred, pk, params)
	if err != nil {
		return fmt.Errorf("adding credential to presentation: %w", err)
	}
	if err := builder.MarkAttributesRevealed(credIdx, []string{"name", "country"}); err != nil {
		return fmt.Errorf("marking attributes revealed: %w", err)
	}
	if err := builder.AddAccumInfoForCredStatus(credIdx, uni.PublicKey(), uni.Value(), nil, nmw); err != nil {
		return fmt.Errorf("adding accumulator info: %w", err)
	}
	ck := backend.NewCommitmentKey("democli/age-bound", 1)
	if err := builder.EnforceBoundsOnCredentialAttribute(credIdx, "age", 18, 150, ck); err != nil {
		return fmt.Errorf("enforcing age bound: %w", err)
	}

	pres, err := builder.Finalize([]byte("presentation-nonce-1"))
	if err != nil {
		return fmt.Errorf("finalizing presentation: %w", err)
	}

	ok, err := presentation.Verify(pres)
	if err != nil {
		return fmt.Errorf("verifying presentation: %w", err)
	}
	if !ok {
		return fmt.Errorf("presentation failed to verify")
	}

	log.Info("presentation verified",
		"revealedAttributes", pres.Spec.Credentials[0].Revealed,
		"boundChecks", pres.Spec.Bounds,
	)
	return nil
}

// revocationElement re-derives the scalar a credential's
// status.revocationId leaf encodes to, the same way
// pkg/presentation.Builder.AddCredential does internally, so a verifier
// outside the credential/presentation packages can compute the
// non-membership witness to hand the holder.
func revocationElement(s *schema.Schema, revocationID string) (backend.Scalar, error) {
	names := credential.AttributeNames(s, true, nil)
	types := credential.AttributeTypes(s, true, nil)
	for i, name := range names {
		if name == "status.revocationId" {
			return encoding.Encode(types[i], revocationID)
		}
	}
	return backend.Scalar{}, fmt.Errorf("schema has no status.revocationId leaf")
}
