package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptDeterministic(t *testing.T) {
	spec := []byte("spec-bytes")
	ctx := []byte("verifier-context")
	nonce := []byte("nonce-1")

	t1, err := NewTranscript(spec, ctx, nonce)
	require.NoError(t, err)
	t1.AppendG1("a1", G1Generator())

	t2, err := NewTranscript(spec, ctx, nonce)
	require.NoError(t, err)
	t2.AppendG1("a1", G1Generator())

	assert.True(t, t1.Challenge().Equal(t2.Challenge()))
}

func TestTranscriptDiffersOnContext(t *testing.T) {
	spec := []byte("spec-bytes")
	nonce := []byte("nonce-1")

	t1, err := NewTranscript(spec, []byte("context-a"), nonce)
	require.NoError(t, err)
	t2, err := NewTranscript(spec, []byte("context-b"), nonce)
	require.NoError(t, err)

	assert.False(t, t1.Challenge().Equal(t2.Challenge()))
}

func TestTranscriptDiffersOnAppendedValues(t *testing.T) {
	spec := []byte("spec-bytes")
	ctx := []byte("context")
	nonce := []byte("nonce")

	t1, err := NewTranscript(spec, ctx, nonce)
	require.NoError(t, err)
	t1.AppendScalar("m", ScalarFromUint64(1))

	t2, err := NewTranscript(spec, ctx, nonce)
	require.NoError(t, err)
	t2.AppendScalar("m", ScalarFromUint64(2))

	assert.False(t, t1.Challenge().Equal(t2.Challenge()))
}
