// Package monomial enumerates the monomials (conjunctions of database
// attribute bits) the protocol supports queries over, and evaluates them
// against individual database entries.
package monomial

import "math/bits"

// ID identifies a monomial by the bitmask of attribute-bit indices it
// conjoins. Bit i of the mask corresponds to attribute bit i of a database
// entry.
type ID uint64

// Set is the canonical, ordered list of monomials both parties agree on at
// Setup, indexed positionally by query messages.
type Set = []ID

// Enumerate returns every nonempty monomial over dims attribute bits whose
// degree (number of conjoined bits) is at most maxDegree, in canonical
// order: ascending by degree, then lexicographically by the sorted tuple of
// bit indices within each degree. The empty monomial (degree 0, the
// constant function 1) is excluded; it carries no information about any
// attribute and is never queried in practice.
//
// Mirrors the bitmask recursion of generate_monomial_sums in the reference
// prover, but enumerates combinations directly rather than walking a
// recursion tree, so the result is already in the canonical order both
// parties must agree on without needing to sort afterward.
func Enumerate(dims, maxDegree int) []ID {
	var out []ID
	var combo []int
	for degree := 1; degree <= maxDegree && degree <= dims; degree++ {
		combo = combo[:0]
		out = enumerateDegree(dims, degree, 0, combo, out)
	}
	return out
}

func enumerateDegree(dims, degree, start int, combo []int, out []ID) []ID {
	if len(combo) == degree {
		var mask ID
		for _, idx := range combo {
			mask |= ID(1) << uint(idx)
		}
		return append(out, mask)
	}
	for i := start; i < dims; i++ {
		out = enumerateDegree(dims, degree, i+1, append(combo, i), out)
	}
	return out
}

// Degree returns the number of attribute bits the monomial conjoins.
func (m ID) Degree() int {
	return bits.OnesCount64(uint64(m))
}

// Eval reports whether entry satisfies the monomial, i.e. whether every bit
// the monomial conjoins is set in entry: (entry & indices) == indices.
func (m ID) Eval(entry uint64) uint64 {
	if uint64(m)&entry == uint64(m) {
		return 1
	}
	return 0
}

// Sum evaluates m against every row of data and returns the count of rows
// satisfying it, matching calculate_monomial_sum.
func (m ID) Sum(data []uint64) uint64 {
	var sum uint64
	for _, entry := range data {
		sum += m.Eval(entry)
	}
	return sum
}
