package protocol

import (
	"io"

	"github.com/vdpoc/certified-dp/internal/wire"
)

// SendSetup transmits the Prover's derived session params (and, if non-nil,
// a session certificate public key) to the Verifier.
func SendSetup(w io.Writer, params *SessionParams) error {
	msg := &wire.SetupParams{
		DBSize:     params.DBSize,
		Dimension:  params.Dimension,
		MaxDegree:  params.MaxDegree,
		Sparsity:   params.Sparsity,
		Epsilon:    params.Epsilon,
		Delta:      params.Delta,
		NoiseN:     params.NoiseN,
		Eta:        params.Eta,
		CertPubKey: params.CertPubKey,
	}
	if err := wire.WriteFrame(w, msg.Encode()); err != nil {
		return &IoFailure{Kind: "setup-write", Err: err}
	}
	return nil
}

// RecvSetup reads the Prover's Setup params and checks them against the
// Verifier's own locally-derived expectation, returning ConfigMismatch on
// any disagreement.
func RecvSetup(r io.Reader, expect *SessionParams) (*SessionParams, error) {
	body, err := wire.ReadFrame(r)
	if err != nil {
		return nil, &IoFailure{Kind: "setup-read", Err: err}
	}
	msg, err := wire.DecodeSetupParams(body)
	if err != nil {
		return nil, &DecodeError{Field: "setup_params"}
	}

	got := &SessionParams{
		DBSize: msg.DBSize, Dimension: msg.Dimension, MaxDegree: msg.MaxDegree, Sparsity: msg.Sparsity,
		Epsilon: msg.Epsilon, Delta: msg.Delta, NoiseN: msg.NoiseN, Eta: msg.Eta, CertPubKey: msg.CertPubKey,
	}
	if err := expect.Matches(got); err != nil {
		return nil, err
	}
	got.SkipDishonest = expect.SkipDishonest
	got.CensusQuery = expect.CensusQuery
	got.Monomials = expect.Monomials
	return got, nil
}
