package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestG1LinearRelationProof(t *testing.T) {
	ck := NewCommitmentKey("test/sigma-g1", 2)
	secrets := []Scalar{ScalarFromUint64(5), ScalarFromUint64(9)}
	rel := G1LinearRelation{Bases: ck.Bases, Target: MultiScalarMulG1(ck.Bases, secrets)}

	blinds := []Scalar{ScalarFromUint64(100), ScalarFromUint64(200)}
	announcement, err := rel.Commit(blinds)
	require.NoError(t, err)

	challenge := HashToScalar([]byte("challenge"))
	responses := rel.Respond(blinds, secrets, challenge)
	assert.True(t, rel.Verify(announcement, responses, challenge))

	responses[0] = responses[0].Add(ScalarFromUint64(1))
	assert.False(t, rel.Verify(announcement, responses, challenge))
}

func TestGTLinearRelationProof(t *testing.T) {
	base1, err := Pair(G1Generator(), G2Generator())
	require.NoError(t, err)
	base2, err := Pair(HashToG1("test/sigma-gt", 0), G2Generator())
	require.NoError(t, err)

	secrets := []Scalar{ScalarFromUint64(3), ScalarFromUint64(4)}
	target := base1.Exp(secrets[0]).Mul(base2.Exp(secrets[1]))
	rel := GTLinearRelation{Bases: []GTElement{base1, base2}, Target: target}

	blinds := []Scalar{ScalarFromUint64(11), ScalarFromUint64(22)}
	announcement, err := rel.Commit(blinds)
	require.NoError(t, err)

	challenge := HashToScalar([]byte("challenge-gt"))
	responses := rel.Respond(blinds, secrets, challenge)
	assert.True(t, rel.Verify(announcement, responses, challenge))
}

func TestWitnessEqualitySharedBlindProducesEqualResponses(t *testing.T) {
	ckA := NewCommitmentKey("test/eq-a", 1)
	ckB := NewCommitmentKey("test/eq-b", 1)
	shared := ScalarFromUint64(77)

	relA := G1LinearRelation{Bases: ckA.Bases, Target: ckA.Bases[0].ScalarMul(shared)}
	relB := G1LinearRelation{Bases: ckB.Bases, Target: ckB.Bases[0].ScalarMul(shared)}

	sharedBlind, err := RandomScalar()
	require.NoError(t, err)

	challenge := HashToScalar([]byte("shared-challenge"))
	zA := relA.Respond([]Scalar{sharedBlind}, []Scalar{shared}, challenge)
	zB := relB.Respond([]Scalar{sharedBlind}, []Scalar{shared}, challenge)

	assert.True(t, zA[0].Equal(zB[0]))
}
