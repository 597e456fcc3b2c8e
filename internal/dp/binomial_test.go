package dp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDefaultDelta(t *testing.T) {
	assert := assert.New(t)

	p := Derive(0.5, 0)
	assert.Equal(DefaultDelta, p.Delta)
	assert.True(p.N > 0)
}

func TestDeriveMonotonicInEpsilon(t *testing.T) {
	assert := assert.New(t)

	tight := Derive(0.1, DefaultDelta)
	loose := Derive(1.0, DefaultDelta)
	assert.True(tight.N > loose.N, "smaller epsilon must require more coin flips")
}

func TestCenterIsHalfN(t *testing.T) {
	assert := assert.New(t)

	p := Derive(0.5, DefaultDelta)
	assert.Equal(p.N/2, p.Center())
}
