// Package cert implements the session certificate: a Schnorrkel signature
// over the final protocol transcript digest, giving the Prover's claim of
// honest execution a verifiable artifact beyond the homomorphic-opening
// check alone. A failed certificate check is additional evidence of
// misbehavior; it never substitutes for the opening check, which remains
// the binding correctness condition.
package cert

import (
	"errors"

	"github.com/ChainSafe/go-schnorrkel"
)

// SigningContext domain-separates session certificates from any other use
// of Schnorrkel signatures in the process, mirroring the teacher's
// SUPER_CONTEXT pattern for its own authority signatures.
const SigningContext = "certified-dp session certificate"

// KeyPair holds a Prover's long-lived (for the session) signing key.
type KeyPair struct {
	secret *schnorrkel.SecretKey
}

// Generate creates a fresh session keypair.
func Generate() (*KeyPair, error) {
	mini, err := schnorrkel.GenerateMiniSecretKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{secret: mini.ExpandEd25519()}, nil
}

// PublicKey returns the 32-byte encoding of the verification key, carried
// on the wire as SetupParams.CertPubKey.
func (k *KeyPair) PublicKey() [32]byte {
	pub, _ := k.secret.Public()
	return pub.Encode()
}

// Sign produces a certificate over digest, a 32-byte transcript digest
// summarizing every message exchanged in the session.
func (k *KeyPair) Sign(digest [32]byte) ([64]byte, error) {
	t := schnorrkel.NewSigningContext([]byte(SigningContext), digest[:])
	sig, err := k.secret.Sign(t)
	if err != nil {
		return [64]byte{}, err
	}
	return sig.Encode(), nil
}

// ErrInvalidCertificate is returned by Verify when the signature does not
// verify against the given public key and digest.
var ErrInvalidCertificate = errors.New("cert: signature does not verify")

// Verify checks a certificate against a public key and digest.
func Verify(pubKey [32]byte, digest [32]byte, sig [64]byte) error {
	public := schnorrkel.NewPublicKey(pubKey)
	t := schnorrkel.NewSigningContext([]byte(SigningContext), digest[:])

	var signature schnorrkel.Signature
	if err := signature.Decode(sig); err != nil {
		return err
	}
	if !public.Verify(&signature, t) {
		return ErrInvalidCertificate
	}
	return nil
}
