// Package signing provides hash-and-sign commitments for council
// verdicts and their verification.
//
// The signer derives an Ed25519 key once at construction from a
// configured secret and holds it for the process lifetime. Verification
// is a trust-anchor check against that same configured key: it answers
// "was this produced by our signer," not general third-party signature
// verification.
package signing
