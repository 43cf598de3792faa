package signing

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/Gajesh2007/ai-debate-judge/council"
	"github.com/Gajesh2007/ai-debate-judge/errors"
)

// keyDerivationInfo pins the HKDF context so the same secret always
// yields the same signing key. Changing it is a key rotation.
const keyDerivationInfo = "ai-debate-judge/verdict-signer/v1"

// SignedVerdict is a council verdict with its hash-and-sign commitment.
//
// Hash equals the canonical hash of Verdict at signing time; any later
// mutation of Verdict is detectable by the Verifier.
type SignedVerdict struct {
	Verdict       council.CouncilVerdict `json:"verdict"`
	Hash          string                 `json:"hash"`
	Signature     string                 `json:"signature"`
	SignerAddress string                 `json:"signerAddress"`
	Timestamp     int64                  `json:"timestamp"`
}

// Signer signs verdict hashes with a process-held Ed25519 key.
type Signer struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address string
	now     func() time.Time
}

// NewSigner derives the signing key from the configured secret. The
// derivation is deterministic: the same secret always produces the same
// key and address. The secret and the derived private key are never
// logged or persisted.
func NewSigner(secret string) (*Signer, error) {
	if len(secret) < 16 {
		return nil, errors.InvalidInput("signer secret must be at least 16 characters")
	}

	seed := make([]byte, ed25519.SeedSize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyDerivationInfo))
	if _, err := io.ReadFull(kdf, seed); err != nil {
		return nil, fmt.Errorf("signing: derive seed: %w", err)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{
		priv:    priv,
		pub:     pub,
		address: "0x" + hex.EncodeToString(pub),
		now:     time.Now,
	}, nil
}

// Address is the public identifier of the signing key.
func (s *Signer) Address() string {
	return s.address
}

// HashVerdict computes the canonical hex digest of a verdict.
func HashVerdict(v *council.CouncilVerdict) (string, error) {
	canon, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// Sign hashes the verdict canonically and signs the raw digest bytes.
func (s *Signer) Sign(v *council.CouncilVerdict) (*SignedVerdict, error) {
	hash, err := HashVerdict(v)
	if err != nil {
		return nil, err
	}
	digest, err := hex.DecodeString(hash)
	if err != nil {
		return nil, fmt.Errorf("signing: decode digest: %w", err)
	}

	sig := ed25519.Sign(s.priv, digest)
	return &SignedVerdict{
		Verdict:       *v,
		Hash:          hash,
		Signature:     hex.EncodeToString(sig),
		SignerAddress: s.address,
		Timestamp:     s.now().UnixMilli(),
	}, nil
}
