package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitmentKeyCommit(t *testing.T) {
	ck := NewCommitmentKey("test/commitment", 3)
	values := []Scalar{ScalarFromUint64(1), ScalarFromUint64(2), ScalarFromUint64(3)}
	r, err := RandomScalar()
	require.NoError(t, err)

	c1, err := ck.Commit(values, r)
	require.NoError(t, err)
	c2, err := ck.Commit(values, r)
	require.NoError(t, err)
	assert.True(t, c1.Equal(c2))

	values[0] = values[0].Add(ScalarFromUint64(1))
	c3, err := ck.Commit(values, r)
	require.NoError(t, err)
	assert.False(t, c1.Equal(c3))
}

func TestCommitmentKeyRejectsOversizedInput(t *testing.T) {
	ck := NewCommitmentKey("test/commitment-small", 1)
	r, err := RandomScalar()
	require.NoError(t, err)
	_, err = ck.Commit([]Scalar{ScalarFromUint64(1), ScalarFromUint64(2)}, r)
	assert.ErrorIs(t, err, ErrMessageCountMismatch)
}
