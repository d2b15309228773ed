package proof

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoncred/anoncred/pkg/accumulator"
	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/statement"
)

func buildSignatureSpec(t *testing.T, scheme backend.Scheme, messages []backend.Scalar, revealed map[int]backend.Scalar) (*statement.ProofSpec, statement.Witness) {
	t.Helper()
	params, err := backend.GenerateSignatureParams(scheme, len(messages), "")
	require.NoError(t, err)
	sk, pk, err := backend.GenerateKeyPair(params)
	require.NoError(t, err)
	sig, err := backend.SignG1(params, sk, messages)
	require.NoError(t, err)

	registry := statement.NewParams()
	idx := registry.AddSignature(params, pk)
	spec := &statement.ProofSpec{
		Statements: []statement.Statement{{
			Kind: statement.KindSignature, SetupParamsIdx: idx,
			TotalMessages: len(messages), Revealed: revealed,
		}},
		SetupParams: registry.All(),
	}
	w := statement.Witness{Kind: statement.KindSignature, Signature: sig, Messages: messages}
	return spec, w
}

func TestGenerateVerifyRoundTripPerScheme(t *testing.T) {
	for _, scheme := range []backend.Scheme{backend.SchemeBBS, backend.SchemeBBSPlus, backend.SchemePS} {
		t.Run(scheme.String(), func(t *testing.T) {
			messages := []backend.Scalar{
				backend.ScalarFromUint64(1),
				backend.ScalarFromUint64(2),
				backend.ScalarFromUint64(3),
			}
			revealed := map[int]backend.Scalar{1: messages[1]}
			spec, w := buildSignatureSpec(t, scheme, messages, revealed)

			proof, err := Generate(spec, []statement.Witness{w}, []byte("nonce-1"))
			require.NoError(t, err)

			ok, err := Verify(spec, proof, []byte("nonce-1"))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestVerifyRejectsWrongNonce(t *testing.T) {
	messages := []backend.Scalar{backend.ScalarFromUint64(1), backend.ScalarFromUint64(2)}
	spec, w := buildSignatureSpec(t, backend.SchemeBBS, messages, nil)

	proof, err := Generate(spec, []statement.Witness{w}, []byte("nonce-1"))
	require.NoError(t, err)

	ok, err := Verify(spec, proof, []byte("nonce-2"))
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestAccumulatorMembershipRoundTrip(t *testing.T) {
	store := accumulator.NewMemoryStore()
	pos, err := accumulator.NewPositive(store)
	require.NoError(t, err)

	elem := backend.ScalarFromUint64(42)
	require.NoError(t, pos.Add(context.Background(), elem))
	mw, err := pos.MembershipWitness(context.Background(), elem)
	require.NoError(t, err)

	registry := statement.NewParams()
	idx := registry.AddAccumulator(pos.PublicKey())
	spec := &statement.ProofSpec{
		Statements: []statement.Statement{{
			Kind: statement.KindPositiveMembership, SetupParamsIdx: idx, AccumValue: pos.Value(),
		}},
		SetupParams: registry.All(),
	}
	w := statement.Witness{Kind: statement.KindPositiveMembership, Element: elem, MembershipWitness: mw}

	proof, err := Generate(spec, []statement.Witness{w}, []byte("n"))
	require.NoError(t, err)
	ok, err := Verify(spec, proof, []byte("n"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccumulatorNonMembershipRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := accumulator.NewMemoryStore()
	initial := accumulator.NewMemoryStore()
	uni, err := accumulator.NewUniversal(store, initial)
	require.NoError(t, err)

	member := backend.ScalarFromUint64(7)
	nonMember := backend.ScalarFromUint64(99)
	require.NoError(t, uni.InitializeUniversalAccumulator(ctx, []backend.Scalar{member}))
	require.NoError(t, uni.Add(ctx, member))

	nmw, err := uni.NonMembershipWitness(ctx, nonMember)
	require.NoError(t, err)

	registry := statement.NewParams()
	idx := registry.AddAccumulator(uni.PublicKey())
	spec := &statement.ProofSpec{
		Statements: []statement.Statement{{
			Kind: statement.KindUniversalNonMembership, SetupParamsIdx: idx, AccumValue: uni.Value(),
		}},
		SetupParams: registry.All(),
	}
	w := statement.Witness{Kind: statement.KindUniversalNonMembership, Element: nonMember, NonMembershipWitness: nmw}

	proof, err := Generate(spec, []statement.Witness{w}, []byte("n"))
	require.NoError(t, err)
	ok, err := Verify(spec, proof, []byte("n"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCommitmentOpeningRoundTrip(t *testing.T) {
	ck := backend.NewCommitmentKey("test/commitment", 2)
	values := []backend.Scalar{backend.ScalarFromUint64(10), backend.ScalarFromUint64(20)}
	blinding, err := backend.RandomScalar()
	require.NoError(t, err)
	commitment, err := ck.Commit(values, blinding)
	require.NoError(t, err)

	registry := statement.NewParams()
	idx := registry.AddCommitment(ck)
	spec := &statement.ProofSpec{
		Statements: []statement.Statement{{
			Kind: statement.KindPedersenCommitment, SetupParamsIdx: idx, Commitment: commitment,
		}},
		SetupParams: registry.All(),
	}
	w := statement.Witness{Kind: statement.KindPedersenCommitment, Values: values, Blinding: blinding}

	proof, err := Generate(spec, []statement.Witness{w}, nil)
	require.NoError(t, err)
	ok, err := Verify(spec, proof, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestWitnessEqualityLinksSignatureToAccumulator links a BBS+ credential's
// hidden attribute (the revocation id, say) to a positive accumulator's
// membership element via a single witness-equality meta-statement, exactly
// as a presentation proving "this credential is not revoked" would.
func TestWitnessEqualityLinksSignatureToAccumulator(t *testing.T) {
	ctx := context.Background()
	shared := backend.ScalarFromUint64(12345)

	messages := []backend.Scalar{backend.ScalarFromUint64(1), shared}
	sigParams, err := backend.GenerateSignatureParams(backend.SchemeBBSPlus, len(messages), "")
	require.NoError(t, err)
	sk, pk, err := backend.GenerateKeyPair(sigParams)
	require.NoError(t, err)
	sig, err := backend.SignG1(sigParams, sk, messages)
	require.NoError(t, err)

	store := accumulator.NewMemoryStore()
	pos, err := accumulator.NewPositive(store)
	require.NoError(t, err)
	require.NoError(t, pos.Add(ctx, shared))
	mw, err := pos.MembershipWitness(ctx, shared)
	require.NoError(t, err)

	registry := statement.NewParams()
	sigIdx := registry.AddSignature(sigParams, pk)
	accIdx := registry.AddAccumulator(pos.PublicKey())

	spec := &statement.ProofSpec{
		Statements: []statement.Statement{
			{Kind: statement.KindSignature, SetupParamsIdx: sigIdx, TotalMessages: len(messages)},
			{Kind: statement.KindPositiveMembership, SetupParamsIdx: accIdx, AccumValue: pos.Value()},
		},
		MetaStatements: []statement.WitnessEquality{
			{Refs: []statement.WitnessRef{{StmtIdx: 0, Position: 1}, {StmtIdx: 1, Position: 0}}},
		},
		SetupParams: registry.All(),
	}
	witnesses := []statement.Witness{
		{Kind: statement.KindSignature, Signature: sig, Messages: messages},
		{Kind: statement.KindPositiveMembership, Element: shared, MembershipWitness: mw},
	}

	proof, err := Generate(spec, witnesses, []byte("link"))
	require.NoError(t, err)
	ok, err := Verify(spec, proof, []byte("link"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWitnessEqualityRejectsMismatchedValues(t *testing.T) {
	ctx := context.Background()

	messages := []backend.Scalar{backend.ScalarFromUint64(1), backend.ScalarFromUint64(2)}
	sigParams, err := backend.GenerateSignatureParams(backend.SchemeBBSPlus, len(messages), "")
	require.NoError(t, err)
	sk, pk, err := backend.GenerateKeyPair(sigParams)
	require.NoError(t, err)
	sig, err := backend.SignG1(sigParams, sk, messages)
	require.NoError(t, err)

	store := accumulator.NewMemoryStore()
	pos, err := accumulator.NewPositive(store)
	require.NoError(t, err)
	other := backend.ScalarFromUint64(999)
	require.NoError(t, pos.Add(ctx, other))
	mw, err := pos.MembershipWitness(ctx, other)
	require.NoError(t, err)

	registry := statement.NewParams()
	sigIdx := registry.AddSignature(sigParams, pk)
	accIdx := registry.AddAccumulator(pos.PublicKey())

	spec := &statement.ProofSpec{
		Statements: []statement.Statement{
			{Kind: statement.KindSignature, SetupParamsIdx: sigIdx, TotalMessages: len(messages)},
			{Kind: statement.KindPositiveMembership, SetupParamsIdx: accIdx, AccumValue: pos.Value()},
		},
		MetaStatements: []statement.WitnessEquality{
			{Refs: []statement.WitnessRef{{StmtIdx: 0, Position: 1}, {StmtIdx: 1, Position: 0}}},
		},
		SetupParams: registry.All(),
	}
	witnesses := []statement.Witness{
		{Kind: statement.KindSignature, Signature: sig, Messages: messages},
		{Kind: statement.KindPositiveMembership, Element: other, MembershipWitness: mw},
	}

	proof, err := Generate(spec, witnesses, []byte("link"))
	require.NoError(t, err)
	ok, err := Verify(spec, proof, []byte("link"))
	assert.False(t, ok)
	assert.Error(t, err)
}

// TestWitnessEqualityLinksSignatureToCommitment links a BBS+ credential's
// hidden attribute to a Pedersen commitment opening of that same value —
// the relation every bound-check and verifiable-encryption statement
// builds on — exercising the signature-to-commitment cross-scheme link
// a PS-only test would not catch.
func TestWitnessEqualityLinksSignatureToCommitment(t *testing.T) {
	shared := backend.ScalarFromUint64(27)

	messages := []backend.Scalar{backend.ScalarFromUint64(1), shared}
	sigParams, err := backend.GenerateSignatureParams(backend.SchemeBBSPlus, len(messages), "")
	require.NoError(t, err)
	sk, pk, err := backend.GenerateKeyPair(sigParams)
	require.NoError(t, err)
	sig, err := backend.SignG1(sigParams, sk, messages)
	require.NoError(t, err)

	ck := backend.NewCommitmentKey("test/link-commitment", 1)
	blinding, err := backend.RandomScalar()
	require.NoError(t, err)
	commitment, err := ck.Commit([]backend.Scalar{shared}, blinding)
	require.NoError(t, err)

	registry := statement.NewParams()
	sigIdx := registry.AddSignature(sigParams, pk)
	ckIdx := registry.AddCommitment(ck)

	spec := &statement.ProofSpec{
		Statements: []statement.Statement{
			{Kind: statement.KindSignature, SetupParamsIdx: sigIdx, TotalMessages: len(messages)},
			{Kind: statement.KindPedersenCommitment, SetupParamsIdx: ckIdx, Commitment: commitment},
		},
		MetaStatements: []statement.WitnessEquality{
			{Refs: []statement.WitnessRef{{StmtIdx: 0, Position: 1}, {StmtIdx: 1, Position: 0}}},
		},
		SetupParams: registry.All(),
	}
	witnesses := []statement.Witness{
		{Kind: statement.KindSignature, Signature: sig, Messages: messages},
		{Kind: statement.KindPedersenCommitment, Values: []backend.Scalar{shared}, Blinding: blinding},
	}

	proof, err := Generate(spec, witnesses, []byte("link-commitment"))
	require.NoError(t, err)
	ok, err := Verify(spec, proof, []byte("link-commitment"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateRejectsMalformedSpec(t *testing.T) {
	spec := &statement.ProofSpec{
		Statements:  []statement.Statement{{Kind: statement.KindSignature, SetupParamsIdx: 3}},
		SetupParams: nil,
	}
	_, err := Generate(spec, []statement.Witness{{}}, nil)
	assert.Error(t, err)
}
