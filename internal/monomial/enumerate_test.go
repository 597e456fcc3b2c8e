package monomial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumerateCountMatchesBinomialSum(t *testing.T) {
	assert := assert.New(t)

	ids := Enumerate(7, 7)
	assert.Len(ids, 127) // 2^7 - 1 nonempty subsets of a 7-bit attribute space
}

func TestEnumerateExcludesEmptyMonomial(t *testing.T) {
	assert := assert.New(t)

	ids := Enumerate(4, 4)
	for _, id := range ids {
		assert.NotEqual(ID(0), id)
	}
}

func TestEnumerateRespectsMaxDegree(t *testing.T) {
	assert := assert.New(t)

	ids := Enumerate(5, 2)
	for _, id := range ids {
		assert.LessOrEqual(id.Degree(), 2)
	}
	// sum_{d=1}^{2} C(5,d) = 5 + 10 = 15
	assert.Len(ids, 15)
}

func TestEnumerateCanonicalOrder(t *testing.T) {
	assert := assert.New(t)

	ids := Enumerate(3, 3)
	// degree-1 monomials first, in index order: {0},{1},{2}
	assert.Equal(ID(1), ids[0])
	assert.Equal(ID(2), ids[1])
	assert.Equal(ID(4), ids[2])
}

func TestEvalAndSum(t *testing.T) {
	assert := assert.New(t)

	m := ID(0b101) // bits 0 and 2
	assert.Equal(uint64(1), m.Eval(0b111))
	assert.Equal(uint64(0), m.Eval(0b001))

	data := []uint64{0b111, 0b101, 0b010, 0b100}
	assert.Equal(uint64(2), m.Sum(data))
}
