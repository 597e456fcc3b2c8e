package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vdpoc/certified-dp/internal/group"
	"github.com/vdpoc/certified-dp/internal/sigma"
)

func TestFrameRoundTrip(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(WriteFrame(&buf, []byte("hello protocol")))

	body, err := ReadFrame(&buf)
	assert.NoError(err)
	assert.Equal("hello protocol", string(body))
}

func TestSetupParamsRoundTrip(t *testing.T) {
	assert := assert.New(t)

	key := [32]byte{1, 2, 3}
	p := &SetupParams{
		DBSize: 1024, Dimension: 7, MaxDegree: 7, Sparsity: 7,
		Epsilon: 1.0, Delta: 1e-30, NoiseN: 5000, Eta: 52.9,
		CertPubKey: &key,
	}
	decoded, err := DecodeSetupParams(p.Encode())
	assert.NoError(err)
	assert.Equal(p.DBSize, decoded.DBSize)
	assert.Equal(p.Epsilon, decoded.Epsilon)
	assert.Equal(p.Delta, decoded.Delta)
	assert.Equal(*p.CertPubKey, *decoded.CertPubKey)
}

func TestSetupParamsWithoutCertKey(t *testing.T) {
	assert := assert.New(t)

	p := &SetupParams{DBSize: 16, Dimension: 4, MaxDegree: 2, Sparsity: 2, Epsilon: 0.5, Delta: 1e-10, NoiseN: 10, Eta: 1.5}
	decoded, err := DecodeSetupParams(p.Encode())
	assert.NoError(err)
	assert.Nil(decoded.CertPubKey)
}

func TestBitProofRoundTrip(t *testing.T) {
	assert := assert.New(t)

	pp, err := group.GenParams()
	assert.NoError(err)

	r := group.SampleScalar(nil)
	c := pp.CommitUint(1, r)
	proof, err := sigma.ProveBit(pp, group.NewTranscript("t"), 1, c, r)
	assert.NoError(err)

	decoded, err := DecodeBitProof(EncodeBitProof(proof))
	assert.NoError(err)
	assert.True(decoded.C0.Point.Equals(proof.C0.Point))
	assert.True(decoded.C1.Point.Equals(proof.C1.Point))
}

func TestQueryMsgRoundTrip(t *testing.T) {
	assert := assert.New(t)

	q := &QueryMsg{Terms: []QueryTerm{{MonomialIndex: 3, Coef: -1}, {MonomialIndex: 90, Coef: 1}}}
	decoded, err := DecodeQueryMsg(q.Encode())
	assert.NoError(err)
	assert.Equal(q.Terms, decoded.Terms)
}

func TestAnswerMsgRoundTrip(t *testing.T) {
	assert := assert.New(t)

	a := &AnswerMsg{Answer: -4200}
	a.Blinding[0] = 0xab
	decoded, err := DecodeAnswerMsg(a.Encode())
	assert.NoError(err)
	assert.Equal(a.Answer, decoded.Answer)
	assert.Equal(a.Blinding, decoded.Blinding)
}
