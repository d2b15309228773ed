package blindissuance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/credential"
	"github.com/anoncred/anoncred/pkg/presentation"
	"github.com/anoncred/anoncred/pkg/schema"
)

const blindTestSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0},
		"country": {"type": "string"}
	}
}`

func TestBlindIssuanceRoundTripBBSPlus(t *testing.T) {
	s, err := schema.Parse([]byte(blindTestSchema), schema.ParseOptions{})
	require.NoError(t, err)

	n := len(credential.AttributeNames(s, false, nil))
	params, err := backend.GenerateSignatureParams(backend.SchemeBBSPlus, n, "test/blindissuance")
	require.NoError(t, err)
	sk, pk, err := backend.GenerateKeyPair(params)
	require.NoError(t, err)

	holder := NewBuilder(s, params, 1).
		SetSubject(map[string]any{"name": "Alice", "age": 30, "country": "SE"}).
		BlindAttribute("age")

	req, blinding, err := holder.Finalize([]byte("blind-nonce"))
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, req.BlindedNames)

	ok, err := VerifyRequest(req, []byte("blind-nonce"))
	require.NoError(t, err)
	assert.True(t, ok)

	sig, err := Issue(params, sk, req, []byte("blind-nonce"))
	require.NoError(t, err)

	cred, err := Combine(sig, blinding, CredentialMetadata{
		Schema:  s,
		Subject: map[string]any{"name": "Alice", "age": 30, "country": "SE"},
	}, 1, params, pk)
	require.NoError(t, err)

	assert.NoError(t, cred.Verify(params, pk))

	b := presentation.NewBuilder()
	_, err = b.AddCredential(cred, pk, params)
	require.NoError(t, err)
}

func TestBlindIssuanceRoundTripPlainBBS(t *testing.T) {
	s, err := schema.Parse([]byte(blindTestSchema), schema.ParseOptions{})
	require.NoError(t, err)

	n := len(credential.AttributeNames(s, false, nil))
	params, err := backend.GenerateSignatureParams(backend.SchemeBBS, n, "test/blindissuance-bbs")
	require.NoError(t, err)
	sk, pk, err := backend.GenerateKeyPair(params)
	require.NoError(t, err)

	holder := NewBuilder(s, params, 1).
		SetSubject(map[string]any{"name": "Bob", "age": 40, "country": "NO"}).
		BlindAttribute("country")

	req, blinding, err := holder.Finalize(nil)
	require.NoError(t, err)
	assert.True(t, blinding.IsZero())

	sig, err := Issue(params, sk, req, nil)
	require.NoError(t, err)

	cred, err := Combine(sig, blinding, CredentialMetadata{
		Schema:  s,
		Subject: map[string]any{"name": "Bob", "age": 40, "country": "NO"},
	}, 1, params, pk)
	require.NoError(t, err)
	assert.NoError(t, cred.Verify(params, pk))
}

func TestBlindIssuanceRejectsPS(t *testing.T) {
	s, err := schema.Parse([]byte(blindTestSchema), schema.ParseOptions{})
	require.NoError(t, err)
	n := len(credential.AttributeNames(s, false, nil))
	params, err := backend.GenerateSignatureParams(backend.SchemePS, n, "test/blindissuance-ps")
	require.NoError(t, err)

	holder := NewBuilder(s, params, 1).
		SetSubject(map[string]any{"name": "Eve", "age": 22, "country": "DK"}).
		BlindAttribute("age")

	_, _, err = holder.Finalize(nil)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestFinalizeRejectsNoBlindedAttribute(t *testing.T) {
	s, err := schema.Parse([]byte(blindTestSchema), schema.ParseOptions{})
	require.NoError(t, err)
	n := len(credential.AttributeNames(s, false, nil))
	params, err := backend.GenerateSignatureParams(backend.SchemeBBSPlus, n, "test/blindissuance-empty")
	require.NoError(t, err)

	holder := NewBuilder(s, params, 1).SetSubject(map[string]any{"name": "Carol", "age": 50, "country": "FI"})
	_, _, err = holder.Finalize(nil)
	assert.ErrorIs(t, err, ErrBuilderState)
}
