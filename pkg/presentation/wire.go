package presentation

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/mr-tron/base58"

	"github.com/anoncred/anoncred/pkg/backend"
	"github.com/anoncred/anoncred/pkg/encoding"
	"github.com/anoncred/anoncred/pkg/proof"
	"github.com/anoncred/anoncred/pkg/statement"
)

// wireStatement is statement.Statement's JSON-safe projection: gnark-crypto
// types carry unexported internals a reflection-based JSON encoder would
// silently drop, so every field routes through Bytes()/FromBytes(), the
// same technique pkg/statement/spec.go uses for CBOR transcript binding.
type wireStatement struct {
	Kind            statement.Kind
	SetupParamsIdx  int
	TotalMessages   int
	RevealedPos     []int
	RevealedScalars [][]byte
	AccumG1         []byte
	AccumG2         []byte
	Min, Max        int64
	ChunkBitSize    int
	EncryptionPK    []byte
	Ciphertext1     []byte
	Ciphertext2     []byte
	Commitment      []byte
}

func statementToWire(s statement.Statement) wireStatement {
	pos := make([]int, 0, len(s.Revealed))
	for p := range s.Revealed {
		pos = append(pos, p)
	}
	sortInts(pos)
	scalars := make([][]byte, len(pos))
	for i, p := range pos {
		scalars[i] = s.Revealed[p].Bytes()
	}
	return wireStatement{
		Kind: s.Kind, SetupParamsIdx: s.SetupParamsIdx, TotalMessages: s.TotalMessages,
		RevealedPos: pos, RevealedScalars: scalars,
		AccumG1: s.AccumValue.G1.Bytes(), AccumG2: s.AccumValue.G2.Bytes(),
		Min: s.Min, Max: s.Max, ChunkBitSize: s.ChunkBitSize,
		EncryptionPK: s.EncryptionPK.Bytes(), Ciphertext1: s.Ciphertext1.Bytes(), Ciphertext2: s.Ciphertext2.Bytes(),
		Commitment: s.Commitment.Bytes(),
	}
}

func wireToStatement(w wireStatement) (statement.Statement, error) {
	var revealed map[int]backend.Scalar
	if len(w.RevealedPos) > 0 {
		revealed = make(map[int]backend.Scalar, len(w.RevealedPos))
		for i, p := range w.RevealedPos {
			revealed[p] = backend.ScalarFromBytes(w.RevealedScalars[i])
		}
	}
	accumG1, err := backend.G1FromBytes(w.AccumG1)
	if err != nil {
		return statement.Statement{}, err
	}
	accumG2, err := backend.G2FromBytes(w.AccumG2)
	if err != nil {
		return statement.Statement{}, err
	}
	commitment, err := backend.G1FromBytes(w.Commitment)
	if err != nil {
		return statement.Statement{}, err
	}
	encryptionPK, err := backend.G1FromBytes(w.EncryptionPK)
	if err != nil {
		return statement.Statement{}, err
	}
	ciphertext1, err := backend.G1FromBytes(w.Ciphertext1)
	if err != nil {
		return statement.Statement{}, err
	}
	ciphertext2, err := backend.G1FromBytes(w.Ciphertext2)
	if err != nil {
		return statement.Statement{}, err
	}
	return statement.Statement{
		Kind: w.Kind, SetupParamsIdx: w.SetupParamsIdx, TotalMessages: w.TotalMessages,
		Revealed:     revealed,
		AccumValue:   backend.AccumulatorValue{G1: accumG1, G2: accumG2},
		Min:          w.Min,
		Max:          w.Max,
		ChunkBitSize: w.ChunkBitSize,
		EncryptionPK: encryptionPK,
		Ciphertext1:  ciphertext1,
		Ciphertext2:  ciphertext2,
		Commitment:   commitment,
	}, nil
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

// wireSetupParam is statement.SetupParam's JSON-safe projection.
type wireSetupParam struct {
	Kind statement.SetupParamKind

	SigScheme backend.Scheme
	SigLabel  string
	SigG1     []byte
	SigG2     []byte
	SigH0     []byte
	SigH      [][]byte

	IssuerW      []byte
	IssuerYTilde [][]byte

	AccumSTilde []byte

	CommitBases    [][]byte
	CommitBlinding []byte
}

func g1SliceToWire(pts []backend.G1Point) [][]byte {
	out := make([][]byte, len(pts))
	for i, p := range pts {
		out[i] = p.Bytes()
	}
	return out
}

func g1SliceFromWire(raw [][]byte) ([]backend.G1Point, error) {
	out := make([]backend.G1Point, len(raw))
	for i, b := range raw {
		p, err := backend.G1FromBytes(b)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func g2SliceToWire(pts []backend.G2Point) [][]byte {
	out := make([][]byte, len(pts))
	for i, p := range pts {
		out[i] = p.Bytes()
	}
	return out
}

func g2SliceFromWire(raw [][]byte) ([]backend.G2Point, error) {
	out := make([]backend.G2Point, len(raw))
	for i, b := range raw {
		p, err := backend.G2FromBytes(b)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func setupParamToWire(p statement.SetupParam) wireSetupParam {
	w := wireSetupParam{Kind: p.Kind}
	switch p.Kind {
	case statement.SetupSignature:
		w.SigScheme = p.Signature.Scheme
		w.SigLabel = p.Signature.Label
		w.SigG1 = p.Signature.G1.Bytes()
		w.SigG2 = p.Signature.G2.Bytes()
		w.SigH0 = p.Signature.H0.Bytes()
		w.SigH = g1SliceToWire(p.Signature.H)
		if p.IssuerKey != nil {
			w.IssuerW = p.IssuerKey.W.Bytes()
			w.IssuerYTilde = g2SliceToWire(p.IssuerKey.YTilde)
		}
	case statement.SetupAccumulator:
		w.AccumSTilde = p.Accumulator.STilde.Bytes()
	case statement.SetupCommitment:
		w.CommitBases = g1SliceToWire(p.Commitment.Bases)
		w.CommitBlinding = p.Commitment.Blinding.Bytes()
	}
	return w
}

func wireToSetupParam(w wireSetupParam) (statement.SetupParam, error) {
	switch w.Kind {
	case statement.SetupSignature:
		g1, err := backend.G1FromBytes(w.SigG1)
		if err != nil {
			return statement.SetupParam{}, err
		}
		g2, err := backend.G2FromBytes(w.SigG2)
		if err != nil {
			return statement.SetupParam{}, err
		}
		h0, err := backend.G1FromBytes(w.SigH0)
		if err != nil {
			return statement.SetupParam{}, err
		}
		h, err := g1SliceFromWire(w.SigH)
		if err != nil {
			return statement.SetupParam{}, err
		}
		sp := &backend.SignatureParams{Scheme: w.SigScheme, Label: w.SigLabel, G1: g1, G2: g2, H0: h0, H: h}

		var issuer *backend.PublicKey
		if w.IssuerW != nil {
			issuerW, err := backend.G2FromBytes(w.IssuerW)
			if err != nil {
				return statement.SetupParam{}, err
			}
			yTilde, err := g2SliceFromWire(w.IssuerYTilde)
			if err != nil {
				return statement.SetupParam{}, err
			}
			issuer = &backend.PublicKey{Scheme: w.SigScheme, W: issuerW, YTilde: yTilde}
		}
		return statement.SetupParam{Kind: w.Kind, Signature: sp, IssuerKey: issuer}, nil

	case statement.SetupAccumulator:
		sTilde, err := backend.G2FromBytes(w.AccumSTilde)
		if err != nil {
			return statement.SetupParam{}, err
		}
		return statement.SetupParam{Kind: w.Kind, Accumulator: &backend.AccumulatorPublicKey{STilde: sTilde}}, nil

	case statement.SetupCommitment:
		bases, err := g1SliceFromWire(w.CommitBases)
		if err != nil {
			return statement.SetupParam{}, err
		}
		blinding, err := backend.G1FromBytes(w.CommitBlinding)
		if err != nil {
			return statement.SetupParam{}, err
		}
		return statement.SetupParam{Kind: w.Kind, Commitment: &backend.CommitmentKey{Bases: bases, Blinding: blinding}}, nil

	default:
		return statement.SetupParam{}, fmt.Errorf("unknown setup param kind %d", w.Kind)
	}
}

// wireSpec is PresentationSpec's JSON-safe projection.
type wireSpec struct {
	Version        int
	Statements     []wireStatement
	MetaStatements []statement.WitnessEquality
	SetupParams    []wireSetupParam
	Context        []byte

	Credentials []CredentialDisclosure
	Bounds      []BoundDisclosure
	Encryptions []EncryptionDisclosure
	Circuits    []CircuitDisclosure
	Pseudonyms  []PseudonymDisclosure
}

func specToWire(s *PresentationSpec) wireSpec {
	statements := make([]wireStatement, len(s.ProofSpec.Statements))
	for i, st := range s.ProofSpec.Statements {
		statements[i] = statementToWire(st)
	}
	setupParams := make([]wireSetupParam, len(s.ProofSpec.SetupParams))
	for i, sp := range s.ProofSpec.SetupParams {
		setupParams[i] = setupParamToWire(sp)
	}
	return wireSpec{
		Version: s.Version, Statements: statements, MetaStatements: s.ProofSpec.MetaStatements,
		SetupParams: setupParams, Context: s.ProofSpec.Context,
		Credentials: s.Credentials, Bounds: s.Bounds, Encryptions: s.Encryptions,
		Circuits: s.Circuits, Pseudonyms: s.Pseudonyms,
	}
}

func wireToSpec(w wireSpec) (*PresentationSpec, error) {
	statements := make([]statement.Statement, len(w.Statements))
	for i, ws := range w.Statements {
		st, err := wireToStatement(ws)
		if err != nil {
			return nil, err
		}
		statements[i] = st
	}
	setupParams := make([]statement.SetupParam, len(w.SetupParams))
	for i, wsp := range w.SetupParams {
		sp, err := wireToSetupParam(wsp)
		if err != nil {
			return nil, err
		}
		setupParams[i] = sp
	}
	return &PresentationSpec{
		Version: w.Version,
		ProofSpec: &statement.ProofSpec{
			Statements: statements, MetaStatements: w.MetaStatements,
			SetupParams: setupParams, Context: w.Context,
		},
		Credentials: w.Credentials, Bounds: w.Bounds, Encryptions: w.Encryptions,
		Circuits: w.Circuits, Pseudonyms: w.Pseudonyms,
	}, nil
}

// wireEnvelope is the JSON shape spec.md §6 names:
// `{ version, context?, nonce?, spec, proof }`.
type wireEnvelope struct {
	Version int      `json:"version"`
	Context []byte   `json:"context,omitempty"`
	Nonce   []byte   `json:"nonce,omitempty"`
	Spec    wireSpec `json:"spec"`
	Proof   string   `json:"proof"`
}

// MarshalJSON encodes the presentation into spec.md §6's wire envelope,
// base58-encoding the composite proof (proof.Proof carries only plain
// byte slices, so it CBOR-marshals directly with no surrogate needed).
func (p *Presentation) MarshalJSON() ([]byte, error) {
	proofBytes, err := cbor.Marshal(p.Proof)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{
		Version: p.Version, Context: p.Context, Nonce: p.Nonce,
		Spec: specToWire(p.Spec), Proof: base58.Encode(proofBytes),
	})
}

// UnmarshalJSON decodes a presentation from spec.md §6's wire envelope.
func (p *Presentation) UnmarshalJSON(data []byte) error {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	proofBytes, err := base58.Decode(env.Proof)
	if err != nil {
		return fmt.Errorf("%w: malformed proof: %v", encoding.ErrEncoding, err)
	}
	var pf proof.Proof
	if err := cbor.Unmarshal(proofBytes, &pf); err != nil {
		return err
	}
	spec, err := wireToSpec(env.Spec)
	if err != nil {
		return err
	}
	p.Version = env.Version
	p.Context = env.Context
	p.Nonce = env.Nonce
	p.Spec = spec
	p.Proof = &pf
	return nil
}
