package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/schema"
)

const testCredSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0}
	}
}`

func setupParams(t *testing.T, scheme backend.Scheme, n int) (*backend.SignatureParams, *backend.SecretKey, *backend.PublicKey) {
	t.Helper()
	params, err := backend.GenerateSignatureParams(scheme, n, "")
	require.NoError(t, err)
	sk, pk, err := backend.GenerateKeyPair(params)
	require.NoError(t, err)
	return params, sk, pk
}

func TestBuilderSignAndVerifyRoundTrip(t *testing.T) {
	for _, scheme := range []backend.Scheme{backend.SchemeBBS, backend.SchemeBBSPlus, backend.SchemePS} {
		t.Run(scheme.String(), func(t *testing.T) {
			s, err := schema.Parse([]byte(testCredSchema), schema.ParseOptions{})
			require.NoError(t, err)

			params, sk, pk := setupParams(t, scheme, len(s.Names()))

			cred, err := NewBuilder(s).
				SetSubject(map[string]any{"name": "Alice", "age": 30}).
				SetIssuer("did:example:issuer").
				Sign(1, params, sk)
			require.NoError(t, err)

			assert.NotEmpty(t, cred.Proof.ProofValue)
			assert.Equal(t, 1, cred.CryptoVersion)

			assert.NoError(t, cred.Verify(params, pk))
		})
	}
}

func TestBuilderSignWithStatusIncludesFixedLeaves(t *testing.T) {
	s, err := schema.Parse([]byte(testCredSchema), schema.ParseOptions{})
	require.NoError(t, err)

	names := AttributeNames(s, true, nil)
	assert.Contains(t, names, "status.id")
	assert.Contains(t, names, "status.type")
	assert.Contains(t, names, "status.revocationCheck")
	assert.Contains(t, names, "status.revocationId")

	params, sk, pk := setupParams(t, backend.SchemeBBSPlus, len(names))

	cred, err := NewBuilder(s).
		SetSubject(map[string]any{"name": "Bob", "age": 40}).
		SetStatus(Status{ID: "https://example.com/status/1", Type: "AccumulatorStatus", RevocationCheck: "membership", RevocationID: "elem-42"}).
		Sign(1, params, sk)
	require.NoError(t, err)
	require.NotNil(t, cred.CredentialStatus)

	assert.NoError(t, cred.Verify(params, pk))
}

func TestVerifyRejectsTamperedSubject(t *testing.T) {
	s, err := schema.Parse([]byte(testCredSchema), schema.ParseOptions{})
	require.NoError(t, err)

	params, sk, pk := setupParams(t, backend.SchemeBBS, len(s.Names()))

	cred, err := NewBuilder(s).SetSubject(map[string]any{"name": "Carol", "age": 22}).Sign(1, params, sk)
	require.NoError(t, err)

	cred.CredentialSubject["age"] = 99
	assert.Error(t, cred.Verify(params, pk))
}

const testArraySchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"scores": {"type": "array", "items": {"type": "integer", "minimum": 0}}
	}
}`

// TestFlattenExpandsMultiElementArray guards against the flatten path
// collapsing every array element past index 0 into a single placeholder
// slot: a subject with 3 scores must sign and verify a 3-element vector,
// not drop scores[1] and scores[2].
func TestFlattenExpandsMultiElementArray(t *testing.T) {
	s, err := schema.Parse([]byte(testArraySchema), schema.ParseOptions{})
	require.NoError(t, err)

	subject := map[string]any{"name": "Alice", "scores": []any{10, 20, 30}}
	b := NewBuilder(s).SetSubject(subject)

	names, _, values, err := b.Flatten(1)
	require.NoError(t, err)
	require.Contains(t, names, "scores.0")
	require.Contains(t, names, "scores.1")
	require.Contains(t, names, "scores.2")

	for i, name := range names {
		switch name {
		case "scores.0":
			assert.EqualValues(t, 10, values[i])
		case "scores.1":
			assert.EqualValues(t, 20, values[i])
		case "scores.2":
			assert.EqualValues(t, 30, values[i])
		}
	}

	params, sk, pk := setupParams(t, backend.SchemeBBSPlus, len(names))
	cred, err := NewBuilder(s).SetSubject(subject).Sign(1, params, sk)
	require.NoError(t, err)
	assert.NoError(t, cred.Verify(params, pk))

	cred.CredentialSubject["scores"] = []any{10, 20, 99}
	assert.Error(t, cred.Verify(params, pk))
}

func TestFlattenRejectsInstanceOutsideSchema(t *testing.T) {
	s, err := schema.Parse([]byte(testCredSchema), schema.ParseOptions{})
	require.NoError(t, err)

	b := NewBuilder(s).SetSubject(map[string]any{"name": "Dan", "age": -5})
	_, _, _, err = b.Flatten(1)
	assert.Error(t, err)
}

func TestCredentialJSONRoundTrip(t *testing.T) {
	s, err := schema.Parse([]byte(testCredSchema), schema.ParseOptions{})
	require.NoError(t, err)

	params, sk, pk := setupParams(t, backend.SchemeBBSPlus, len(s.Names()))

	cred, err := NewBuilder(s).SetSubject(map[string]any{"name": "Eve", "age": 50}).Sign(1, params, sk)
	require.NoError(t, err)

	raw, err := cred.MarshalJSON()
	require.NoError(t, err)

	var back Credential
	require.NoError(t, back.UnmarshalJSON(raw))
	assert.NoError(t, back.Verify(params, pk))
}
