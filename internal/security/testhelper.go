package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestIssuer and TestAudience are the iss/aud values used by NewTestSigner.
const (
	TestIssuer   = "test-issuer"
	TestAudience = "test-audience"
)

// TestSigner signs ES256 tokens with a throwaway key pair, standing in for the
// external identity provider in unit tests. Not for production use.
type TestSigner struct {
	key *ecdsa.PrivateKey
}

// NewTestSigner generates a fresh P-256 key pair and returns the signer and a
// Verifier configured for it.
func NewTestSigner() (*TestSigner, *Verifier, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return &TestSigner{key: key}, NewVerifier(&key.PublicKey, TestIssuer, TestAudience), nil
}

// Sign issues a token with the given extra claims plus iss, aud, and a 15m exp.
// Values in extra override the defaults.
func (s *TestSigner) Sign(extra map[string]any) (string, error) {
	claims := jwt.MapClaims{
		"iss": TestIssuer,
		"aud": TestAudience,
		"iat": jwt.NewNumericDate(time.Now().UTC()),
		"exp": jwt.NewNumericDate(time.Now().UTC().Add(15 * time.Minute)),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(s.key)
}
