package statement

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/anoncred/anoncred/pkg/backend"
)

// ProofSpec is the fully-materialized `{statements, meta_statements,
// setup_params, context}` spec.md §3 describes.
type ProofSpec struct {
	Statements     []Statement
	MetaStatements []WitnessEquality
	SetupParams    []SetupParam
	Context        []byte
}

// IsValid runs the structural checks spec.md §4.3 names.
func (s *ProofSpec) IsValid() error {
	for i, st := range s.Statements {
		if st.SetupParamsIdx < 0 || st.SetupParamsIdx >= len(s.SetupParams) {
			return fmt.Errorf("statement %d: setup params index %d out of range", i, st.SetupParamsIdx)
		}
	}
	return IsValid(s.Statements, s.MetaStatements)
}

// specCBOR mirrors ProofSpec for deterministic CBOR encoding. Neither
// Statement (via its Revealed map[int]backend.Scalar / AccumValue) nor
// SetupParam are directly CBOR-friendly — gnark-crypto's field/curve
// types carry unexported internals a reflection-based encoder would
// silently skip — so both project down to byte-stable surrogates first.
type specCBOR struct {
	Statements     []statementCBOR
	MetaStatements []WitnessEquality
	SetupParamKeys [][]byte
	Context        []byte
}

type statementCBOR struct {
	Kind            Kind
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

func (s Statement) cborForm() statementCBOR {
	pos := make([]int, 0, len(s.Revealed))
	for p := range s.Revealed {
		pos = append(pos, p)
	}
	sort.Ints(pos)
	scalars := make([][]byte, len(pos))
	for i, p := range pos {
		v := s.Revealed[p]
		scalars[i] = v.Bytes()
	}
	return statementCBOR{
		Kind:            s.Kind,
		SetupParamsIdx:  s.SetupParamsIdx,
		TotalMessages:   s.TotalMessages,
		RevealedPos:     pos,
		RevealedScalars: scalars,
		AccumG1:         s.AccumValue.G1.Bytes(),
		AccumG2:         s.AccumValue.G2.Bytes(),
		Min:             s.Min,
		Max:             s.Max,
		ChunkBitSize:    s.ChunkBitSize,
		EncryptionPK:    s.EncryptionPK.Bytes(),
		Ciphertext1:     s.Ciphertext1.Bytes(),
		Ciphertext2:     s.Ciphertext2.Bytes(),
		Commitment:      s.Commitment.Bytes(),
	}
}

// Bytes canonically encodes the spec for Fiat-Shamir transcript binding
// (pkg/proof) and for embedding in a presentation's wire form.
func (s *ProofSpec) Bytes() ([]byte, error) {
	keys := make([][]byte, len(s.SetupParams))
	for i, p := range s.SetupParams {
		k, err := cborKeyOf(p)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	statements := make([]statementCBOR, len(s.Statements))
	for i, st := range s.Statements {
		statements[i] = st.cborForm()
	}
	return cbor.Marshal(specCBOR{
		Statements:     statements,
		MetaStatements: s.MetaStatements,
		SetupParamKeys: keys,
		Context:        s.Context,
	})
}

func cborKeyOf(p SetupParam) ([]byte, error) {
	switch p.Kind {
	case SetupSignature:
		issuerW := []byte(nil)
		issuerYTilde := [][]byte(nil)
		if p.IssuerKey != nil {
			issuerW = p.IssuerKey.W.Bytes()
			issuerYTilde = make([][]byte, len(p.IssuerKey.YTilde))
			for i, y := range p.IssuerKey.YTilde {
				issuerYTilde[i] = y.Bytes()
			}
		}
		return cbor.Marshal(struct {
			Scheme       int
			G1, G2       []byte
			H0           []byte
			H            [][]byte
			IssuerW      []byte
			IssuerYTilde [][]byte
		}{
			Scheme:       int(p.Signature.Scheme),
			G1:           p.Signature.G1.Bytes(),
			G2:           p.Signature.G2.Bytes(),
			H0:           p.Signature.H0.Bytes(),
			H:            g1Bytes(p.Signature.H),
			IssuerW:      issuerW,
			IssuerYTilde: issuerYTilde,
		})
	case SetupAccumulator:
		return cbor.Marshal(p.Accumulator.STilde.Bytes())
	case SetupCommitment:
		return cbor.Marshal(struct {
			Bases    [][]byte
			Blinding []byte
		}{Bases: g1Bytes(p.Commitment.Bases), Blinding: p.Commitment.Blinding.Bytes()})
	default:
		return nil, fmt.Errorf("unknown setup param kind %d", p.Kind)
	}
}

func g1Bytes(pts []backend.G1Point) [][]byte {
	out := make([][]byte, len(pts))
	for i, p := range pts {
		out[i] = p.Bytes()
	}
	return out
}

// QuasiProofSpec accumulates statements/meta-statements/setup-params
// incrementally and materializes a ProofSpec only in Finalize, avoiding
// the O(N) re-serialization a from-scratch ProofSpec would pay on every
// builder call (spec.md §3: "the only observable difference is
// performance").
type QuasiProofSpec struct {
	params     *Params
	statements []Statement
	metas      []WitnessEquality
	context    []byte
}

// NewQuasiProofSpec starts an incremental build against an existing
// SetupParams registry.
func NewQuasiProofSpec(params *Params) *QuasiProofSpec {
	return &QuasiProofSpec{params: params}
}

// AddStatement appends a statement and returns its index.
func (q *QuasiProofSpec) AddStatement(s Statement) int {
	q.statements = append(q.statements, s)
	return len(q.statements) - 1
}

// AddMetaStatement appends a witness-equality.
func (q *QuasiProofSpec) AddMetaStatement(m WitnessEquality) {
	q.metas = append(q.metas, m)
}

// SetContext sets the verifier-observable context bytes.
func (q *QuasiProofSpec) SetContext(ctx []byte) { q.context = ctx }

// Finalize materializes the accumulated state into a ProofSpec.
func (q *QuasiProofSpec) Finalize() *ProofSpec {
	return &ProofSpec{
		Statements:     append([]Statement(nil), q.statements...),
		MetaStatements: append([]WitnessEquality(nil), q.metas...),
		SetupParams:    q.params.All(),
		Context:        q.context,
	}
}
