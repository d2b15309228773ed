package schema

import "errors"

// ErrSchema is spec.md §7's SchemaError kind: a malformed JSON Schema
// document, a property that isn't itself an object schema, an
// unsupported schema type, or a subject instance that fails validation
// against a compiled schema. Distinct from pkg/encoding's EncodingError
// kind, which is reserved for individual attribute-value failures once a
// schema has already been accepted.
var ErrSchema = errors.New("SchemaError: schema malformed or instance does not satisfy it")
