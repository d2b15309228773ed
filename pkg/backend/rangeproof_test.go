package backend

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeProofAcceptsValueInRange(t *testing.T) {
	ck := NewCommitmentKey("test/rangeproof", 1)
	value := ScalarFromUint64(42)
	blinding, err := RandomScalar()
	require.NoError(t, err)
	commitment, err := ck.Commit([]Scalar{value}, blinding)
	require.NoError(t, err)

	secrets, err := PrepareRangeProof(ck.Bases[0], ck.Blinding, big.NewInt(42), blinding)
	require.NoError(t, err)
	a0s, a1s := secrets.Announcements()
	assert.Len(t, a0s, RangeBitWidth)
	assert.Len(t, a1s, RangeBitWidth)

	challenge, err := RandomScalar()
	require.NoError(t, err)
	bits := secrets.Respond(challenge)
	assert.True(t, VerifyRangeProof(ck.Bases[0], ck.Blinding, bits, challenge, commitment))
}

func TestRangeProofRejectsNegativeDiff(t *testing.T) {
	ck := NewCommitmentKey("test/rangeproof-neg", 1)
	_, err := PrepareRangeProof(ck.Bases[0], ck.Blinding, big.NewInt(-1), Scalar{})
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestRangeProofRejectsOversizedDiff(t *testing.T) {
	ck := NewCommitmentKey("test/rangeproof-big", 1)
	tooBig := new(big.Int).Lsh(big.NewInt(1), RangeBitWidth)
	_, err := PrepareRangeProof(ck.Bases[0], ck.Blinding, tooBig, Scalar{})
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestRangeProofFailsAgainstWrongTarget(t *testing.T) {
	ck := NewCommitmentKey("test/rangeproof-wrong", 1)
	blinding, err := RandomScalar()
	require.NoError(t, err)
	wrongCommitment, err := ck.Commit([]Scalar{ScalarFromUint64(99)}, blinding)
	require.NoError(t, err)

	secrets, err := PrepareRangeProof(ck.Bases[0], ck.Blinding, big.NewInt(42), blinding)
	require.NoError(t, err)
	challenge, err := RandomScalar()
	require.NoError(t, err)
	bits := secrets.Respond(challenge)
	assert.False(t, VerifyRangeProof(ck.Bases[0], ck.Blinding, bits, challenge, wrongCommitment))
}
