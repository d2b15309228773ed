package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoncred/anoncred/pkg/backend"
)

func TestParamsRegistryRoundTrip(t *testing.T) {
	params, err := backend.GenerateSignatureParams(backend.SchemeBBS, 3, "")
	require.NoError(t, err)
	_, pk, err := backend.GenerateKeyPair(params)
	require.NoError(t, err)

	r := NewParams()
	idx := r.AddSignature(params, pk)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, r.Len())

	got, ok := r.At(idx)
	require.True(t, ok)
	assert.Equal(t, SetupSignature, got.Kind)

	_, ok = r.At(5)
	assert.False(t, ok)
}

func TestProofSpecIsValidCatchesOutOfRangeSetupParams(t *testing.T) {
	spec := &ProofSpec{
		Statements:  []Statement{{Kind: KindSignature, SetupParamsIdx: 2}},
		SetupParams: []SetupParam{{Kind: SetupSignature}},
	}
	assert.Error(t, spec.IsValid())
}

func TestProofSpecIsValidCatchesOutOfRangeWitnessEquality(t *testing.T) {
	spec := &ProofSpec{
		Statements:  []Statement{{Kind: KindSignature, SetupParamsIdx: 0, TotalMessages: 2}},
		SetupParams: []SetupParam{{Kind: SetupSignature}},
		MetaStatements: []WitnessEquality{
			{Refs: []WitnessRef{{StmtIdx: 0, Position: 5}, {StmtIdx: 0, Position: 0}}},
		},
	}
	assert.Error(t, spec.IsValid())
}

func TestProofSpecBytesDeterministic(t *testing.T) {
	params, err := backend.GenerateSignatureParams(backend.SchemeBBS, 2, "")
	require.NoError(t, err)

	_, pk, err := backend.GenerateKeyPair(params)
	require.NoError(t, err)

	build := func() *ProofSpec {
		r := NewParams()
		r.AddSignature(params, pk)
		q := NewQuasiProofSpec(r)
		q.AddStatement(Statement{Kind: KindSignature, SetupParamsIdx: 0, TotalMessages: 2, Revealed: map[int]backend.Scalar{0: backend.ScalarFromUint64(7)}})
		q.SetContext([]byte("ctx"))
		return q.Finalize()
	}

	b1, err := build().Bytes()
	require.NoError(t, err)
	b2, err := build().Bytes()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestQuasiProofSpecFinalizeMatchesManualProofSpec(t *testing.T) {
	params, err := backend.GenerateSignatureParams(backend.SchemeBBS, 1, "")
	require.NoError(t, err)
	_, pk, err := backend.GenerateKeyPair(params)
	require.NoError(t, err)

	r := NewParams()
	r.AddSignature(params, pk)
	q := NewQuasiProofSpec(r)
	q.AddStatement(Statement{Kind: KindSignature, SetupParamsIdx: 0, TotalMessages: 1})
	finalized := q.Finalize()

	manual := &ProofSpec{
		Statements:  []Statement{{Kind: KindSignature, SetupParamsIdx: 0, TotalMessages: 1}},
		SetupParams: r.All(),
	}

	fb, err := finalized.Bytes()
	require.NoError(t, err)
	mb, err := manual.Bytes()
	require.NoError(t, err)
	assert.Equal(t, mb, fb)
}
