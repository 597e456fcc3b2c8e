package sigma

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vdpoc/certified-dp/internal/group"
)

func TestBitProofCompleteness(t *testing.T) {
	assert := assert.New(t)

	pp, err := group.GenParams()
	assert.NoError(err)

	for _, b := range []uint64{0, 1} {
		r := group.SampleScalar(nil)
		c := pp.CommitUint(b, r)

		proverT := group.NewTranscript("bit-sigma-test")
		proof, err := ProveBit(pp, proverT, b, c, r)
		assert.NoError(err)

		verifierT := group.NewTranscript("bit-sigma-test")
		assert.True(VerifyBit(pp, verifierT, c, proof))
	}
}

func TestBitProofRejectsInvalidBit(t *testing.T) {
	assert := assert.New(t)

	pp, err := group.GenParams()
	assert.NoError(err)

	r := group.SampleScalar(nil)
	c := pp.CommitUint(2, r)
	_, err = ProveBit(pp, group.NewTranscript("bit-sigma-test"), 2, c, r)
	assert.ErrorIs(err, ErrBitProofInvalidBit)
}

func TestBitProofRejectsWrongCommitment(t *testing.T) {
	assert := assert.New(t)

	pp, err := group.GenParams()
	assert.NoError(err)

	r := group.SampleScalar(nil)
	c := pp.CommitUint(1, r)

	proverT := group.NewTranscript("bit-sigma-test")
	proof, err := ProveBit(pp, proverT, 1, c, r)
	assert.NoError(err)

	other := pp.CommitUint(0, group.SampleScalar(nil))
	verifierT := group.NewTranscript("bit-sigma-test")
	assert.False(VerifyBit(pp, verifierT, other, proof))
}
