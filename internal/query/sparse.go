// Package query builds the sparse counting queries the CLI binaries issue
// against a session's canonical monomial set. Which monomials to ask about
// and with what sign is an application policy decision outside the
// protocol's scope; this package exists only so the CLI surface has a
// concrete, reproducible way to supply one.
package query

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/vdpoc/certified-dp/internal/monomial"
	"github.com/vdpoc/certified-dp/internal/protocol"
	"github.com/vdpoc/certified-dp/internal/wire"
)

// Sparse builds a random query over m with up to s distinct monomial terms,
// each with a +-1 coefficient, reading randomness from rng (nil selects
// crypto/rand.Reader).
func Sparse(m *monomial.Set, s int, rng io.Reader) protocol.Query {
	if rng == nil {
		rng = rand.Reader
	}
	n := len(*m)
	if s > n {
		s = n
	}
	terms := make([]wire.QueryTerm, 0, s)
	if n == 0 {
		return protocol.Query{Terms: terms}
	}

	seen := make(map[uint32]bool, s)
	for len(terms) < s {
		idx := randUint32(rng, uint32(n))
		if seen[idx] {
			continue
		}
		seen[idx] = true
		coef := int8(1)
		if randUint32(rng, 2) == 1 {
			coef = -1
		}
		terms = append(terms, wire.QueryTerm{MonomialIndex: idx, Coef: coef})
	}
	return protocol.Query{Terms: terms}
}

func randUint32(rng io.Reader, n uint32) uint32 {
	var buf [4]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		panic(err)
	}
	return binary.BigEndian.Uint32(buf[:]) % n
}
