// Package schema parses a JSON Schema document into the internal typed
// tree C4 credentials are built against, flattens it to the ordered
// attribute list C2's encoder and every downstream statement index into
// (spec.md §3 "Schema", §4.1), and round-trips it to/from the data-URI
// embedding used in a credential's `credentialSchema` field.
package schema

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/anoncred/anoncred/pkg/encoding"
)

// NodeKind is the internal schema tree's node discriminator.
type NodeKind int

const (
	NodeObject NodeKind = iota
	NodeArray
	NodeLeaf
)

// Node is one position in the internal schema tree.
type Node struct {
	Kind       NodeKind
	Properties map[string]*Node // NodeObject
	Items      *Node            // NodeArray
	Leaf       encoding.LeafType // NodeLeaf
}

// Schema is the parsed, immutable, versioned object spec.md §3 describes:
// it carries the JSON form (for embedding), the internal tree, the flat
// form, and an instance validator.
type Schema struct {
	raw      json.RawMessage
	root     *Node
	names    []string
	types    []encoding.LeafType
	compiled *jsonschema.Schema
}

// ParseOptions controls how $refs/schema quirks map to leaf types. An
// implementer's schema registry would resolve EncryptableRefs from a
// trust-listed set of credential-type definitions; here the caller
// supplies the set directly.
type ParseOptions struct {
	// EncryptableRefs is the set of `$ref` values that should encode as
	// stringReversible rather than plain string.
	EncryptableRefs map[string]bool
	// UseDefaults mirrors spec.md §4.1: when false, the encoder (called
	// later, by pkg/credential) rejects any leaf not explicitly present
	// in this schema.
	UseDefaults bool
}

// Parse reads a raw JSON Schema document and produces its internal tree,
// flat attribute list, and a compiled instance validator.
func Parse(raw []byte, opts ParseOptions) (*Schema, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON schema: %v", ErrSchema, err)
	}

	root, err := parseNode(doc, opts)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: schema failed to compile: %v", ErrSchema, err)
	}

	s := &Schema{raw: json.RawMessage(raw), root: root, compiled: compiled}
	s.names, s.types = flatten(root, raw)
	return s, nil
}

func parseNode(doc map[string]any, opts ParseOptions) (*Node, error) {
	if ref, ok := doc["$ref"].(string); ok {
		compress := false
		if opts.EncryptableRefs[ref] {
			return &Node{Kind: NodeLeaf, Leaf: encoding.LeafType{Kind: encoding.KindStringReversible, Compress: compress}}, nil
		}
		return &Node{Kind: NodeLeaf, Leaf: encoding.LeafType{Kind: encoding.KindString}}, nil
	}

	typ, _ := doc["type"].(string)
	switch typ {
	case "object":
		props, _ := doc["properties"].(map[string]any)
		node := &Node{Kind: NodeObject, Properties: map[string]*Node{}}
		for name, raw := range props {
			childDoc, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: property %q is not an object schema", ErrSchema, name)
			}
			child, err := parseNode(childDoc, opts)
			if err != nil {
				return nil, err
			}
			node.Properties[name] = child
		}
		return node, nil

	case "array":
		itemsDoc, ok := doc["items"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: array schema missing items", ErrSchema)
		}
		item, err := parseNode(itemsDoc, opts)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeArray, Items: item}, nil

	case "integer":
		minimum := minimumOf(doc)
		if minimum != nil && *minimum < 0 {
			return &Node{Kind: NodeLeaf, Leaf: encoding.LeafType{Kind: encoding.KindInteger, Minimum: *minimum}}, nil
		}
		return &Node{Kind: NodeLeaf, Leaf: encoding.LeafType{Kind: encoding.KindPositiveInteger}}, nil

	case "number":
		places := decimalPlacesOf(doc)
		minimum := minimumOf(doc)
		if minimum != nil && *minimum < 0 {
			return &Node{Kind: NodeLeaf, Leaf: encoding.LeafType{Kind: encoding.KindDecimalNumber, Minimum: *minimum, DecimalPlaces: places}}, nil
		}
		return &Node{Kind: NodeLeaf, Leaf: encoding.LeafType{Kind: encoding.KindPositiveDecimalNumber, DecimalPlaces: places}}, nil

	case "string", "":
		return &Node{Kind: NodeLeaf, Leaf: encoding.LeafType{Kind: encoding.KindString}}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported schema type %q", ErrSchema, typ)
	}
}

func minimumOf(doc map[string]any) *int64 {
	v, ok := doc["minimum"]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

func decimalPlacesOf(doc map[string]any) uint {
	v, ok := doc["multipleOf"].(float64)
	if !ok || v <= 0 || v >= 1 {
		return 0
	}
	places := uint(0)
	for mult := v; mult < 0.9999; mult *= 10 {
		places++
		if places > 18 {
			break
		}
	}
	return places
}

// flatten implements spec.md §4.1's flatten contract: cryptoVersion and
// the embedded schema string are prepended, then every other leaf in
// lexicographic dotted-path order.
func flatten(root *Node, raw []byte) ([]string, []encoding.LeafType) {
	names := []string{"cryptoVersion", "credentialSchema"}
	types := []encoding.LeafType{
		{Kind: encoding.KindPositiveInteger},
		{Kind: encoding.KindString},
	}

	var paths []string
	leaves := map[string]encoding.LeafType{}
	collectLeaves(root, "", &paths, leaves)
	sort.Strings(paths)

	for _, p := range paths {
		names = append(names, p)
		types = append(types, leaves[p])
	}
	return names, types
}

func collectLeaves(n *Node, prefix string, paths *[]string, leaves map[string]encoding.LeafType) {
	switch n.Kind {
	case NodeLeaf:
		*paths = append(*paths, prefix)
		leaves[prefix] = n.Leaf
	case NodeObject:
		for name, child := range n.Properties {
			p := name
			if prefix != "" {
				p = prefix + "." + name
			}
			collectLeaves(child, p, paths, leaves)
		}
	case NodeArray:
		// Array cardinality is only known once actual subject data is
		// available, so the schema-only tree names a single synthetic
		// index 0 slot; FlattenSubject below re-expands it to one path
		// per element via ExpandArrayPositions once real data is given.
		collectLeaves(n.Items, prefix+".0", paths, leaves)
	}
}

// FlattenSubject implements spec.md §4.1's array contract: every array
// leaf expands to one `<parent>.<index>.<child>` path per element actually
// present in subject, instead of the single synthetic index-0 placeholder
// Names()/Types() use. subject is the decoded credentialSubject tree; if
// subject is nil (no concrete instance yet, e.g. sizing signature params
// before a holder's attributes are known), it falls back to Names()/Types().
func (s *Schema) FlattenSubject(subject any) ([]string, []encoding.LeafType) {
	if subject == nil {
		return s.Names(), s.Types()
	}

	var paths []string
	leaves := map[string]encoding.LeafType{}
	collectLeavesSubject(s.root, "", subject, &paths, leaves)
	sort.Strings(paths)

	names := []string{"cryptoVersion", "credentialSchema"}
	types := []encoding.LeafType{
		{Kind: encoding.KindPositiveInteger},
		{Kind: encoding.KindString},
	}
	for _, p := range paths {
		names = append(names, p)
		types = append(types, leaves[p])
	}
	return names, types
}

func collectLeavesSubject(n *Node, prefix string, data any, paths *[]string, leaves map[string]encoding.LeafType) {
	switch n.Kind {
	case NodeLeaf:
		*paths = append(*paths, prefix)
		leaves[prefix] = n.Leaf
	case NodeObject:
		obj, _ := data.(map[string]any)
		for name, child := range n.Properties {
			p := name
			if prefix != "" {
				p = prefix + "." + name
			}
			var childData any
			if obj != nil {
				childData = obj[name]
			}
			collectLeavesSubject(child, p, childData, paths, leaves)
		}
	case NodeArray:
		arr, ok := data.([]any)
		if !ok {
			collectLeavesSubject(n.Items, prefix+".0", nil, paths, leaves)
			return
		}
		if n.Items.Kind == NodeLeaf {
			expNames, expTypes := ExpandArrayPositions(prefix, n.Items.Leaf, len(arr))
			for i, name := range expNames {
				*paths = append(*paths, name)
				leaves[name] = expTypes[i]
			}
			return
		}
		for i, elem := range arr {
			collectLeavesSubject(n.Items, prefix+"."+strconv.Itoa(i), elem, paths, leaves)
		}
	}
}

// Names returns the flattened attribute path list, cryptoVersion and
// credentialSchema first.
func (s *Schema) Names() []string { return append([]string(nil), s.names...) }

// Types returns the leaf type parallel to Names().
func (s *Schema) Types() []encoding.LeafType { return append([]encoding.LeafType(nil), s.types...) }

// PositionOf returns the flattened index of a dotted attribute path, or
// -1 if absent.
func (s *Schema) PositionOf(name string) int {
	for i, n := range s.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Raw returns the original JSON Schema bytes.
func (s *Schema) Raw() []byte { return append([]byte(nil), s.raw...) }

// ValidateInstance checks data (the credential's subject tree, decoded as
// a Go value) against the compiled schema.
func (s *Schema) ValidateInstance(data any) error {
	result := s.compiled.Validate(data)
	if !result.IsValid() {
		return fmt.Errorf("%w: instance does not satisfy schema", ErrSchema)
	}
	return nil
}

// DataURI embeds the schema as `data:application/json;,<urlencoded>`, the
// form spec.md §6 requires inside a credential's `credentialSchema`
// field.
func (s *Schema) DataURI() string {
	return "data:application/json;," + url.QueryEscape(string(s.raw))
}

// ParseDataURI recovers a Schema from the embedded data-URI form.
func ParseDataURI(uri string, opts ParseOptions) (*Schema, error) {
	const prefix = "data:application/json;,"
	if !strings.HasPrefix(uri, prefix) {
		return nil, fmt.Errorf("%w: not a credentialSchema data-URI", ErrSchema)
	}
	raw, err := url.QueryUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed data-URI: %v", ErrSchema, err)
	}
	return Parse([]byte(raw), opts)
}

// ExpandArrayPositions re-expands a schema's single synthetic `<parent>.0`
// array-item path into one path per actual element, given the concrete
// length observed in a subject document (spec.md §4.1: "array items
// produce indexed sub-schemas"). It returns the positions to splice in,
// in order, replacing the single placeholder entry.
func ExpandArrayPositions(basePath string, leaf encoding.LeafType, length int) ([]string, []encoding.LeafType) {
	names := make([]string, length)
	types := make([]encoding.LeafType, length)
	for i := 0; i < length; i++ {
		names[i] = basePath + "." + strconv.Itoa(i)
		types[i] = leaf
	}
	return names, types
}
