package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoncred/anoncred/pkg/encoding"
)

// TestSchemaFailuresAreSchemaErrorKind guards spec.md §7's error
// taxonomy: a malformed document or an instance that fails validation is
// a SchemaError, distinct from pkg/encoding's EncodingError and
// pkg/backend's CryptoError kinds.
func TestSchemaFailuresAreSchemaErrorKind(t *testing.T) {
	_, err := Parse([]byte(`{"type": "object", "properties": {"x": 5}}`), ParseOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))

	s, err := Parse([]byte(testSchemaJSON), ParseOptions{})
	require.NoError(t, err)
	err = s.ValidateInstance(map[string]any{"fname": "John", "age": -1, "balance": 12.5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
}

const testSchemaJSON = `{
	"type": "object",
	"properties": {
		"fname": {"type": "string"},
		"age": {"type": "integer", "minimum": 0},
		"balance": {"type": "number", "minimum": -1000, "multipleOf": 0.01}
	}
}`

func TestParseAndFlatten(t *testing.T) {
	s, err := Parse([]byte(testSchemaJSON), ParseOptions{})
	require.NoError(t, err)

	names := s.Names()
	assert.Equal(t, []string{"cryptoVersion", "credentialSchema", "age", "balance", "fname"}, names)

	types := s.Types()
	assert.Equal(t, encoding.KindPositiveInteger, types[0].Kind)
	assert.Equal(t, encoding.KindString, types[1].Kind)
	assert.Equal(t, encoding.KindPositiveInteger, types[2].Kind) // age
	assert.Equal(t, encoding.KindDecimalNumber, types[3].Kind)   // balance
	assert.Equal(t, uint(2), types[3].DecimalPlaces)
	assert.Equal(t, encoding.KindString, types[4].Kind) // fname
}

func TestPositionOf(t *testing.T) {
	s, err := Parse([]byte(testSchemaJSON), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, s.PositionOf("fname"))
	assert.Equal(t, -1, s.PositionOf("missing"))
}

func TestValidateInstance(t *testing.T) {
	s, err := Parse([]byte(testSchemaJSON), ParseOptions{})
	require.NoError(t, err)

	assert.NoError(t, s.ValidateInstance(map[string]any{"fname": "John", "age": 30, "balance": 12.5}))
	assert.Error(t, s.ValidateInstance(map[string]any{"fname": "John", "age": -1, "balance": 12.5}))
}

func TestDataURIRoundTrip(t *testing.T) {
	s, err := Parse([]byte(testSchemaJSON), ParseOptions{})
	require.NoError(t, err)

	uri := s.DataURI()
	back, err := ParseDataURI(uri, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, s.Names(), back.Names())
}

func TestFlattenSubjectExpandsArrayPerElement(t *testing.T) {
	const arraySchema = `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"scores": {"type": "array", "items": {"type": "integer", "minimum": 0}}
		}
	}`
	s, err := Parse([]byte(arraySchema), ParseOptions{})
	require.NoError(t, err)

	// Schema-only (no subject): a single synthetic index-0 placeholder.
	assert.Equal(t, []string{"cryptoVersion", "credentialSchema", "name", "scores.0"}, s.Names())

	subject := map[string]any{
		"name":   "Alice",
		"scores": []any{1, 2, 3},
	}
	names, types := s.FlattenSubject(subject)
	assert.Equal(t, []string{
		"cryptoVersion", "credentialSchema", "name",
		"scores.0", "scores.1", "scores.2",
	}, names)
	require.Len(t, types, len(names))
	for _, idx := range []int{3, 4, 5} {
		assert.Equal(t, encoding.KindPositiveInteger, types[idx].Kind)
	}

	// A single-element array still expands through the same path, not the
	// synthetic placeholder.
	oneNames, _ := s.FlattenSubject(map[string]any{"name": "Bob", "scores": []any{9}})
	assert.Equal(t, []string{"cryptoVersion", "credentialSchema", "name", "scores.0"}, oneNames)
}

func TestEncryptableRefMapsToStringReversible(t *testing.T) {
	const withRef = `{
		"type": "object",
		"properties": {
			"ssn": {"$ref": "#/$defs/ssn"}
		},
		"$defs": {
			"ssn": {"type": "string"}
		}
	}`
	s, err := Parse([]byte(withRef), ParseOptions{EncryptableRefs: map[string]bool{"#/$defs/ssn": true}})
	require.NoError(t, err)
	pos := s.PositionOf("ssn")
	require.GreaterOrEqual(t, pos, 0)
	assert.Equal(t, encoding.KindStringReversible, s.Types()[pos].Kind)
}
