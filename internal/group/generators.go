// Package group implements the prime-order group layer: Ristretto255 point
// and scalar arithmetic, deterministic public-parameter derivation, and
// Pedersen commitments.
package group

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	// BaseDomainTag seeds the SHAKE256 generator chain that derives h from g.
	BaseDomainTag = "certified-dp/base-point-v1"
	hashToPointTag = "certified-dp/hash-to-point-v1"
)

// Params holds the two independent public generators fixed at setup.
type Params struct {
	G *ristretto.Point
	H *ristretto.Point
}

// GenParams derives (g, h) deterministically from BaseDomainTag. g is the
// Ristretto255 base point; h has unknown discrete log relative to g because
// it is produced by a one-way hash-to-curve chain, following the same
// construction the teacher uses for its Bulletproof generators
// (generatorsChain in generators.go) and its key-image hash-to-point
// (mod.go).
func GenParams() (*Params, error) {
	var g ristretto.Point
	g.SetBase()

	h := deriveGenerator([]byte(BaseDomainTag), 0)

	return &Params{G: &g, H: h}, nil
}

// deriveGenerator runs a SHAKE256 chain seeded by label and fast-forwarded
// by index 64-byte blocks, then maps the next 64 bytes onto the curve with
// two Elligator2 lifts, exactly as the teacher's GeneratorsChain does.
func deriveGenerator(label []byte, index int) *ristretto.Point {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write(label)

	var skip [64]byte
	for i := 0; i < index; i++ {
		h.Read(skip[:])
	}

	var data [64]byte
	h.Read(data[:])
	return pointFromUniformBytes(data[:])
}

func pointFromUniformBytes(data []byte) *ristretto.Point {
	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], data[:32])
	copy(r2Bytes[:], data[32:64])
	var r, r1, r2 ristretto.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}

// HashToPoint maps an arbitrary public point to a fresh curve point via a
// domain-tagged Blake2b-512 digest, mirroring the teacher's hashToPoint in
// mod.go, without consuming randomness. The dishonest-commit XOR fold does
// not use it: its "C_one" is Commit(1, 0).
func HashToPoint(public *ristretto.Point) *ristretto.Point {
	hash := blake2b.New512()
	hash.Write([]byte(hashToPointTag))
	hash.Write(public.Bytes())
	return pointFromUniformBytes(hash.Sum(nil))
}

// uint64ToScalar encodes i as a little-endian reduced scalar, matching the
// teacher's uint64ToScalar.
func uint64ToScalar(i uint64) *ristretto.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

// ScalarFromUint64 is the exported form of uint64ToScalar, used outside this
// package to build small constant scalars (bit values, monomial degrees).
func ScalarFromUint64(i uint64) *ristretto.Scalar {
	return uint64ToScalar(i)
}
