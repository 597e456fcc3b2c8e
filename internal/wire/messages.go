package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/sigma"
)

// ErrTruncated is returned by any Decode function when the input is shorter
// than the fixed layout requires.
var ErrTruncated = errors.New("wire: truncated message")

// --- Setup ---------------------------------------------------------------

// SetupParams is the Setup phase's P->V params block: n, d, k, s, epsilon,
// delta, N, eta. CertPubKey is an addition beyond the core table: an
// optional trailing Schnorr verification key for the session certificate
// checked after the last query. Its presence is signalled by a one-byte flag so
// the rest of the positional layout is unaffected.
type SetupParams struct {
	DBSize     uint64
	Dimension  uint32
	MaxDegree  uint32
	Sparsity   uint32
	Epsilon    float64
	Delta      float64
	NoiseN     uint64
	Eta        float64
	CertPubKey *[32]byte
}

func putFloat64(buf *bytes.Buffer, f float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}

func takeFloat64(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// Encode serializes the params block.
func (p *SetupParams) Encode() []byte {
	var buf bytes.Buffer
	var u64 [8]byte
	var u32 [4]byte

	binary.BigEndian.PutUint64(u64[:], p.DBSize)
	buf.Write(u64[:])
	binary.BigEndian.PutUint32(u32[:], p.Dimension)
	buf.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], p.MaxDegree)
	buf.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], p.Sparsity)
	buf.Write(u32[:])
	putFloat64(&buf, p.Epsilon)
	putFloat64(&buf, p.Delta)
	binary.BigEndian.PutUint64(u64[:], p.NoiseN)
	buf.Write(u64[:])
	putFloat64(&buf, p.Eta)

	if p.CertPubKey != nil {
		buf.WriteByte(1)
		buf.Write(p.CertPubKey[:])
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// DecodeSetupParams parses a params block produced by Encode.
func DecodeSetupParams(b []byte) (*SetupParams, error) {
	const fixed = 8 + 4 + 4 + 4 + 8 + 8 + 8 + 8 + 1
	if len(b) < fixed {
		return nil, ErrTruncated
	}
	p := &SetupParams{}
	off := 0
	p.DBSize = binary.BigEndian.Uint64(b[off:])
	off += 8
	p.Dimension = binary.BigEndian.Uint32(b[off:])
	off += 4
	p.MaxDegree = binary.BigEndian.Uint32(b[off:])
	off += 4
	p.Sparsity = binary.BigEndian.Uint32(b[off:])
	off += 4
	p.Epsilon = takeFloat64(b[off:])
	off += 8
	p.Delta = takeFloat64(b[off:])
	off += 8
	p.NoiseN = binary.BigEndian.Uint64(b[off:])
	off += 8
	p.Eta = takeFloat64(b[off:])
	off += 8

	hasKey := b[off]
	off++
	if hasKey == 1 {
		if len(b) < off+32 {
			return nil, ErrTruncated
		}
		var key [32]byte
		copy(key[:], b[off:off+32])
		p.CertPubKey = &key
	}
	return p, nil
}

// --- Group element / proof encoding --------------------------------------

func encodePoint32(buf *bytes.Buffer, raw [32]byte) {
	buf.Write(raw[:])
}

func takePoint32(b []byte) (out [32]byte) {
	copy(out[:], b[:32])
	return out
}

// EncodeBitProof lays out a BitProof as C0 || C1 || Z0 || E0 || Z1 || E1,
// six 32-byte canonical encodings, matching the "(A0,A1,e0,e1,z0,z1)"
// transcript the bit proof is described as in the wire table (commitments
// in place of A0/A1).
func EncodeBitProof(p *sigma.BitProof) []byte {
	var buf bytes.Buffer
	encodePoint32(&buf, p.C0.Encode())
	encodePoint32(&buf, p.C1.Encode())
	encodePoint32(&buf, group.EncodeScalar(p.Z0))
	encodePoint32(&buf, group.EncodeScalar(p.E0))
	encodePoint32(&buf, group.EncodeScalar(p.Z1))
	encodePoint32(&buf, group.EncodeScalar(p.E1))
	return buf.Bytes()
}

// BitProofSize is the fixed encoded length of a BitProof.
const BitProofSize = 6 * 32

// DecodeBitProof parses a BitProof produced by EncodeBitProof.
func DecodeBitProof(b []byte) (*sigma.BitProof, error) {
	if len(b) < BitProofSize {
		return nil, ErrTruncated
	}
	c0, err := group.DecodeCommitment(takePoint32(b[0:32]))
	if err != nil {
		return nil, err
	}
	c1, err := group.DecodeCommitment(takePoint32(b[32:64]))
	if err != nil {
		return nil, err
	}
	z0 := group.DecodeScalar(takePoint32(b[64:96]))
	e0 := group.DecodeScalar(takePoint32(b[96:128]))
	z1 := group.DecodeScalar(takePoint32(b[128:160]))
	e1 := group.DecodeScalar(takePoint32(b[160:192]))
	return &sigma.BitProof{C0: c0, C1: c1, Z0: z0, E0: e0, Z1: z1, E1: e1}, nil
}

// ProductProofSize is the fixed encoded length of a ProductProof.
const ProductProofSize = 11 * 32

// EncodeProductProof lays out C1,C2,C3,Alpha,Beta,Gamma,Z1..Z5.
func EncodeProductProof(p *sigma.ProductProof) []byte {
	var buf bytes.Buffer
	encodePoint32(&buf, p.C1.Encode())
	encodePoint32(&buf, p.C2.Encode())
	encodePoint32(&buf, p.C3.Encode())
	encodePoint32(&buf, p.Alpha.Encode())
	encodePoint32(&buf, p.Beta.Encode())
	encodePoint32(&buf, p.Gamma.Encode())
	encodePoint32(&buf, group.EncodeScalar(p.Z1))
	encodePoint32(&buf, group.EncodeScalar(p.Z2))
	encodePoint32(&buf, group.EncodeScalar(p.Z3))
	encodePoint32(&buf, group.EncodeScalar(p.Z4))
	encodePoint32(&buf, group.EncodeScalar(p.Z5))
	return buf.Bytes()
}

// DecodeProductProof parses a ProductProof produced by EncodeProductProof.
func DecodeProductProof(b []byte) (*sigma.ProductProof, error) {
	if len(b) < ProductProofSize {
		return nil, ErrTruncated
	}
	decodeC := func(off int) (*group.Commitment, error) { return group.DecodeCommitment(takePoint32(b[off : off+32])) }
	c1, err := decodeC(0)
	if err != nil {
		return nil, err
	}
	c2, err := decodeC(32)
	if err != nil {
		return nil, err
	}
	c3, err := decodeC(64)
	if err != nil {
		return nil, err
	}
	alpha, err := decodeC(96)
	if err != nil {
		return nil, err
	}
	beta, err := decodeC(128)
	if err != nil {
		return nil, err
	}
	gamma, err := decodeC(160)
	if err != nil {
		return nil, err
	}
	return &sigma.ProductProof{
		C1: c1, C2: c2, C3: c3,
		Alpha: alpha, Beta: beta, Gamma: gamma,
		Z1: group.DecodeScalar(takePoint32(b[192:224])),
		Z2: group.DecodeScalar(takePoint32(b[224:256])),
		Z3: group.DecodeScalar(takePoint32(b[256:288])),
		Z4: group.DecodeScalar(takePoint32(b[288:320])),
		Z5: group.DecodeScalar(takePoint32(b[320:352])),
	}, nil
}

// --- HonestCommit ---------------------------------------------------------

// BaseBitEntry is a newly-introduced base-bit commitment and its bit-proof.
type BaseBitEntry struct {
	Index      uint32
	Commitment *group.Commitment
	Proof      *sigma.BitProof
}

// IntermediateEntry is a product-tree node: a commitment, the product-proof
// binding it to its two parents, and the bit-proof that it is itself a bit.
type IntermediateEntry struct {
	Commitment   *group.Commitment
	ProductProof *sigma.ProductProof
	BitProof     *sigma.BitProof
}

// MonomialCommitMsg is one P->V HonestCommit message for a single monomial.
type MonomialCommitMsg struct {
	NewBaseBits   []BaseBitEntry
	Intermediates []IntermediateEntry
	Final         *group.Commitment
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func takeUint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// Encode serializes a MonomialCommitMsg.
func (m *MonomialCommitMsg) Encode() []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(m.NewBaseBits)))
	for _, e := range m.NewBaseBits {
		putUint32(&buf, e.Index)
		encodePoint32(&buf, e.Commitment.Encode())
		buf.Write(EncodeBitProof(e.Proof))
	}
	putUint32(&buf, uint32(len(m.Intermediates)))
	for _, e := range m.Intermediates {
		encodePoint32(&buf, e.Commitment.Encode())
		buf.Write(EncodeProductProof(e.ProductProof))
		buf.Write(EncodeBitProof(e.BitProof))
	}
	encodePoint32(&buf, m.Final.Encode())
	return buf.Bytes()
}

// DecodeMonomialCommitMsg parses a MonomialCommitMsg produced by Encode.
func DecodeMonomialCommitMsg(b []byte) (*MonomialCommitMsg, error) {
	off := 0
	need := func(n int) error {
		if len(b) < off+n {
			return ErrTruncated
		}
		return nil
	}
	if err := need(4); err != nil {
		return nil, err
	}
	baseCount := takeUint32(b[off:])
	off += 4

	m := &MonomialCommitMsg{}
	for i := uint32(0); i < baseCount; i++ {
		if err := need(4 + 32 + BitProofSize); err != nil {
			return nil, err
		}
		idx := takeUint32(b[off:])
		off += 4
		comm, err := group.DecodeCommitment(takePoint32(b[off : off+32]))
		if err != nil {
			return nil, err
		}
		off += 32
		proof, err := DecodeBitProof(b[off : off+BitProofSize])
		if err != nil {
			return nil, err
		}
		off += BitProofSize
		m.NewBaseBits = append(m.NewBaseBits, BaseBitEntry{Index: idx, Commitment: comm, Proof: proof})
	}

	if err := need(4); err != nil {
		return nil, err
	}
	interCount := takeUint32(b[off:])
	off += 4
	for i := uint32(0); i < interCount; i++ {
		if err := need(32 + ProductProofSize + BitProofSize); err != nil {
			return nil, err
		}
		comm, err := group.DecodeCommitment(takePoint32(b[off : off+32]))
		if err != nil {
			return nil, err
		}
		off += 32
		pp, err := DecodeProductProof(b[off : off+ProductProofSize])
		if err != nil {
			return nil, err
		}
		off += ProductProofSize
		bp, err := DecodeBitProof(b[off : off+BitProofSize])
		if err != nil {
			return nil, err
		}
		off += BitProofSize
		m.Intermediates = append(m.Intermediates, IntermediateEntry{Commitment: comm, ProductProof: pp, BitProof: bp})
	}

	if err := need(32); err != nil {
		return nil, err
	}
	final, err := group.DecodeCommitment(takePoint32(b[off : off+32]))
	if err != nil {
		return nil, err
	}
	m.Final = final
	return m, nil
}

// HonestCommitAck is the V->P acknowledgement for one monomial: OK, or a
// rejection naming the offending monomial index.
type HonestCommitAck struct {
	OK          bool
	RejectIndex uint32
}

// Encode serializes a HonestCommitAck as a one-byte flag followed by the
// (possibly unused) reject index.
func (a *HonestCommitAck) Encode() []byte {
	var buf bytes.Buffer
	if a.OK {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	putUint32(&buf, a.RejectIndex)
	return buf.Bytes()
}

// DecodeHonestCommitAck parses a HonestCommitAck produced by Encode.
func DecodeHonestCommitAck(b []byte) (*HonestCommitAck, error) {
	if len(b) < 5 {
		return nil, ErrTruncated
	}
	return &HonestCommitAck{OK: b[0] == 1, RejectIndex: takeUint32(b[1:])}, nil
}

// --- DishonestCommit -------------------------------------------------------

// NoiseRoundMsg is the P->V message for one dishonest-commit round.
type NoiseRoundMsg struct {
	Commitment *group.Commitment
	Proof      *sigma.BitProof
}

// Encode serializes a NoiseRoundMsg.
func (m *NoiseRoundMsg) Encode() []byte {
	var buf bytes.Buffer
	encodePoint32(&buf, m.Commitment.Encode())
	buf.Write(EncodeBitProof(m.Proof))
	return buf.Bytes()
}

// DecodeNoiseRoundMsg parses a NoiseRoundMsg produced by Encode.
func DecodeNoiseRoundMsg(b []byte) (*NoiseRoundMsg, error) {
	if len(b) < 32+BitProofSize {
		return nil, ErrTruncated
	}
	comm, err := group.DecodeCommitment(takePoint32(b[0:32]))
	if err != nil {
		return nil, err
	}
	proof, err := DecodeBitProof(b[32 : 32+BitProofSize])
	if err != nil {
		return nil, err
	}
	return &NoiseRoundMsg{Commitment: comm, Proof: proof}, nil
}

// ErrInvalidChallengeBit is returned when a challenge byte is not 0 or 1.
var ErrInvalidChallengeBit = errors.New("wire: challenge bit must be 0 or 1")

// EncodeChallengeBit serializes the V->P single-byte challenge c_i.
func EncodeChallengeBit(c byte) []byte { return []byte{c} }

// DecodeChallengeBit parses a challenge byte, rejecting anything but 0/1.
func DecodeChallengeBit(b []byte) (byte, error) {
	if len(b) < 1 {
		return 0, ErrTruncated
	}
	if b[0] != 0 && b[0] != 1 {
		return 0, ErrInvalidChallengeBit
	}
	return b[0], nil
}

// --- Query -----------------------------------------------------------------

// QueryTerm is one (monomial_index, coefficient) pair in a sparse query.
type QueryTerm struct {
	MonomialIndex uint32
	Coef          int8
}

// QueryMsg is the V->P sparse query: up to s nonzero-coefficient terms.
type QueryMsg struct {
	Terms []QueryTerm
}

// Encode serializes a QueryMsg.
func (q *QueryMsg) Encode() []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(q.Terms)))
	for _, term := range q.Terms {
		putUint32(&buf, term.MonomialIndex)
		buf.WriteByte(byte(term.Coef))
	}
	return buf.Bytes()
}

// DecodeQueryMsg parses a QueryMsg produced by Encode.
func DecodeQueryMsg(b []byte) (*QueryMsg, error) {
	if len(b) < 4 {
		return nil, ErrTruncated
	}
	n := takeUint32(b)
	off := 4
	q := &QueryMsg{}
	for i := uint32(0); i < n; i++ {
		if len(b) < off+5 {
			return nil, ErrTruncated
		}
		idx := takeUint32(b[off:])
		coef := int8(b[off+4])
		q.Terms = append(q.Terms, QueryTerm{MonomialIndex: idx, Coef: coef})
		off += 5
	}
	return q, nil
}

// AnswerMsg is the P->V certified answer: A and its opening blinding.
type AnswerMsg struct {
	Answer   int64
	Blinding [32]byte
}

// Encode serializes an AnswerMsg.
func (a *AnswerMsg) Encode() []byte {
	var buf bytes.Buffer
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], uint64(a.Answer))
	buf.Write(u64[:])
	buf.Write(a.Blinding[:])
	return buf.Bytes()
}

// DecodeAnswerMsg parses an AnswerMsg produced by Encode.
func DecodeAnswerMsg(b []byte) (*AnswerMsg, error) {
	if len(b) < 40 {
		return nil, ErrTruncated
	}
	a := &AnswerMsg{Answer: int64(binary.BigEndian.Uint64(b[0:8]))}
	copy(a.Blinding[:], b[8:40])
	return a, nil
}

// CertificateMsg is the P->V session certificate: a Schnorrkel signature
// over the session transcript digest, sent once the Prover has nothing
// left to add to that digest.
type CertificateMsg struct {
	Signature [64]byte
}

// Encode serializes a CertificateMsg.
func (c *CertificateMsg) Encode() []byte {
	buf := make([]byte, 64)
	copy(buf, c.Signature[:])
	return buf
}

// DecodeCertificateMsg parses a CertificateMsg produced by Encode.
func DecodeCertificateMsg(b []byte) (*CertificateMsg, error) {
	if len(b) < 64 {
		return nil, ErrTruncated
	}
	c := &CertificateMsg{}
	copy(c.Signature[:], b[0:64])
	return c, nil
}
