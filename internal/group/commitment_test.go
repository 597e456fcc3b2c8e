package group

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func TestCommitOpen(t *testing.T) {
	assert := assert.New(t)

	pp, err := GenParams()
	assert.NoError(err)

	m := ScalarFromUint64(7)
	r := SampleScalar(nil)
	c := pp.Commit(m, r)

	assert.True(pp.Open(c, m, r))
	assert.False(pp.Open(c, ScalarFromUint64(8), r))
}

func TestHomomorphicAdd(t *testing.T) {
	assert := assert.New(t)

	pp, err := GenParams()
	assert.NoError(err)

	m1, r1 := ScalarFromUint64(3), SampleScalar(nil)
	m2, r2 := ScalarFromUint64(4), SampleScalar(nil)

	c1 := pp.Commit(m1, r1)
	c2 := pp.Commit(m2, r2)
	sum := Add(c1, c2)

	var msum, rsum ristretto.Scalar
	msum.Add(m1, m2)
	rsum.Add(r1, r2)

	assert.True(pp.Open(sum, &msum, &rsum))
}

func TestEncodeDecodeCommitmentRoundTrip(t *testing.T) {
	assert := assert.New(t)

	pp, err := GenParams()
	assert.NoError(err)

	c := pp.Commit(ScalarFromUint64(42), SampleScalar(nil))
	buf := c.Encode()

	decoded, err := DecodeCommitment(buf)
	assert.NoError(err)
	assert.True(c.Point.Equals(decoded.Point))
}

func TestDecodeCommitmentRejectsGarbage(t *testing.T) {
	assert := assert.New(t)

	var buf [32]byte
	for i := range buf {
		buf[i] = 0xff
	}
	_, err := DecodeCommitment(buf)
	assert.Error(err)
}
