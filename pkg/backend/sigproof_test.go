package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBBSSignatureProofRoundTrip(t *testing.T) {
	for _, scheme := range []Scheme{SchemeBBS, SchemeBBSPlus} {
		params, err := GenerateSignatureParams(scheme, 3, "test/sigproof-bbs")
		require.NoError(t, err)
		sk, pk, err := GenerateKeyPair(params)
		require.NoError(t, err)

		messages := []Scalar{ScalarFromUint64(1), ScalarFromUint64(2), ScalarFromUint64(3)}
		sig, err := SignG1(params, sk, messages)
		require.NoError(t, err)

		revealed := map[int]Scalar{0: messages[0]}
		init, err := PrepareBBSSignatureProof(params, sig, messages, revealed)
		require.NoError(t, err)

		blinds1 := make([]Scalar, len(init.Eq1Secrets))
		for i := range blinds1 {
			blinds1[i], err = RandomScalar()
			require.NoError(t, err)
		}
		blinds2 := make([]Scalar, len(init.Eq2Secrets))
		for i := range blinds2 {
			blinds2[i], err = RandomScalar()
			require.NoError(t, err)
		}
		ann1, err := init.Eq1.Commit(blinds1)
		require.NoError(t, err)
		ann2, err := init.Eq2.Commit(blinds2)
		require.NoError(t, err)

		challenge := HashToScalar([]byte("challenge"))
		resp1 := init.Eq1.Respond(blinds1, init.Eq1Secrets, challenge)
		resp2 := init.Eq2.Respond(blinds2, init.Eq2Secrets, challenge)

		eq1, eq2, hidden, pairingOK, err := BBSSignatureProofRelations(params, pk, len(messages), revealed, init.APrime, init.Abar, init.D)
		require.NoError(t, err)
		assert.True(t, pairingOK)
		assert.Equal(t, init.HiddenPositions, hidden)
		assert.True(t, eq1.Verify(ann1, resp1, challenge))
		assert.True(t, eq2.Verify(ann2, resp2, challenge))
	}
}

func TestPSSignatureProofRoundTrip(t *testing.T) {
	params, err := GenerateSignatureParams(SchemePS, 3, "test/sigproof-ps")
	require.NoError(t, err)
	sk, pk, err := GenerateKeyPair(params)
	require.NoError(t, err)

	messages := []Scalar{ScalarFromUint64(1), ScalarFromUint64(2), ScalarFromUint64(3)}
	sig, err := SignG1(params, sk, messages)
	require.NoError(t, err)

	revealed := map[int]Scalar{1: messages[1]}
	init, err := PreparePSSignatureProof(params, pk, sig, messages, revealed)
	require.NoError(t, err)

	blinds := make([]Scalar, len(init.Secrets))
	for i := range blinds {
		blinds[i], err = RandomScalar()
		require.NoError(t, err)
	}
	announcement, err := init.Rel.Commit(blinds)
	require.NoError(t, err)

	challenge := HashToScalar([]byte("challenge-ps"))
	responses := init.Rel.Respond(blinds, init.Secrets, challenge)

	rel, hidden, ok, err := PSSignatureProofRelation(params, pk, len(messages), revealed, init.Sigma1Prime, init.Sigma2Prime)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, init.HiddenPositions, hidden)
	assert.True(t, rel.Verify(announcement, responses, challenge))
}

func TestAccumulatorMembershipProofRoundTrip(t *testing.T) {
	sk, pk, err := GenerateAccumulatorKeyPair()
	require.NoError(t, err)

	members := []Scalar{ScalarFromUint64(1), ScalarFromUint64(2), ScalarFromUint64(3)}
	v := InitialAccumulatorValue()
	for _, m := range members {
		v = AccumulateAdd(sk, v, m)
	}
	w, err := GenerateMembershipWitness(sk, members, members[1])
	require.NoError(t, err)

	init, err := PrepareAccumMembershipProof(pk, v, members[1], w)
	require.NoError(t, err)

	blind, err := RandomScalar()
	require.NoError(t, err)
	announcement, err := init.Rel.Commit([]Scalar{blind})
	require.NoError(t, err)
	challenge := HashToScalar([]byte("challenge-accum"))
	responses := init.Rel.Respond([]Scalar{blind}, []Scalar{init.Secret}, challenge)

	rel, err := AccumMembershipProofRelation(pk, init.WPrime, init.Vbar)
	require.NoError(t, err)
	assert.True(t, rel.Verify(announcement, responses, challenge))
}

func TestAccumulatorNonMembershipProofRoundTrip(t *testing.T) {
	sk, pk, err := GenerateAccumulatorKeyPair()
	require.NoError(t, err)

	members := []Scalar{ScalarFromUint64(1), ScalarFromUint64(2), ScalarFromUint64(3)}
	v := InitialAccumulatorValue()
	for _, m := range members {
		v = AccumulateAdd(sk, v, m)
	}
	nonMember := ScalarFromUint64(42)
	w, err := GenerateNonMembershipWitness(sk, members, nonMember)
	require.NoError(t, err)

	init, err := PrepareAccumNonMembershipProof(pk, v, nonMember, w)
	require.NoError(t, err)

	blind, err := RandomScalar()
	require.NoError(t, err)
	announcement, err := init.Rel.Commit([]Scalar{blind})
	require.NoError(t, err)
	challenge := HashToScalar([]byte("challenge-nonmem"))
	responses := init.Rel.Respond([]Scalar{blind}, []Scalar{init.Secret}, challenge)

	rel, err := AccumNonMembershipProofRelation(pk, v, init.C, init.D)
	require.NoError(t, err)
	assert.True(t, rel.Verify(announcement, responses, challenge))
}
