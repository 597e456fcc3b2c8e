package cert

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	assert := assert.New(t)

	kp, err := Generate()
	assert.NoError(err)

	digest := sha256.Sum256([]byte("session transcript"))
	sig, err := kp.Sign(digest)
	assert.NoError(err)

	assert.NoError(Verify(kp.PublicKey(), digest, sig))
}

func TestVerifyRejectsWrongDigest(t *testing.T) {
	assert := assert.New(t)

	kp, err := Generate()
	assert.NoError(err)

	digest := sha256.Sum256([]byte("session transcript"))
	sig, err := kp.Sign(digest)
	assert.NoError(err)

	wrong := sha256.Sum256([]byte("tampered transcript"))
	assert.ErrorIs(Verify(kp.PublicKey(), wrong, sig), ErrInvalidCertificate)
}
