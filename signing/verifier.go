package signing

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"

	"github.com/Gajesh2007/ai-debate-judge/council"
)

// VerificationResult reports each check independently. "Invalid" is an
// expected outcome of verification, so the result is structured data,
// never an error.
type VerificationResult struct {
	// Valid is true only when every individual check passed.
	Valid bool `json:"valid"`
	// HashMatch reports whether the recomputed canonical hash equals
	// the supplied one. When false, no signature check is attempted.
	HashMatch bool `json:"hashMatch"`
	// SignatureValid reports whether the signature verifies against
	// the process's configured key.
	SignatureValid bool `json:"signatureValid"`
	// SignerMatch reports whether the claimed signer address is the
	// configured signer's address.
	SignerMatch bool `json:"signerMatch"`
	// ComputedHash is the recomputed canonical hash, for diagnostics.
	ComputedHash string `json:"computedHash"`
}

// Verifier checks signed verdicts against the process's own signer.
// It is a trust-anchor check, not a general signature service: a
// verdict signed by any other key is invalid here even if that
// signature is cryptographically sound.
type Verifier struct {
	signer *Signer
}

// NewVerifier creates a verifier anchored to the given signer.
func NewVerifier(s *Signer) *Verifier {
	return &Verifier{signer: s}
}

// Verify recomputes the canonical hash and compares it
// case-insensitively to the supplied one. A mismatch short-circuits:
// the signature is not evaluated. Otherwise the signature must verify
// against the configured key and the claimed address must match it.
func (vf *Verifier) Verify(v *council.CouncilVerdict, hash, signature, claimedSignerAddress string) (*VerificationResult, error) {
	computed, err := HashVerdict(v)
	if err != nil {
		return nil, err
	}

	res := &VerificationResult{ComputedHash: computed}
	if !strings.EqualFold(computed, hash) {
		return res, nil
	}
	res.HashMatch = true

	res.SignerMatch = strings.EqualFold(claimedSignerAddress, vf.signer.Address())

	digest, err := hex.DecodeString(computed)
	if err != nil {
		return res, nil
	}
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return res, nil
	}
	res.SignatureValid = ed25519.Verify(vf.signer.pub, digest, sig)

	res.Valid = res.HashMatch && res.SignatureValid && res.SignerMatch
	return res, nil
}

// VerifySigned is a convenience wrapper over Verify for a stored
// SignedVerdict envelope.
func (vf *Verifier) VerifySigned(sv *SignedVerdict) (*VerificationResult, error) {
	return vf.Verify(&sv.Verdict, sv.Hash, sv.Signature, sv.SignerAddress)
}
