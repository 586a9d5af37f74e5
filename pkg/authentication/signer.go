// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var _ SignerInterface = (*Signer)(nil)

// Signer issues and verifies Ed25519 signed access tokens. Verification is
// offline, no network round trip is involved.
type Signer struct {
	issuer    string
	priv      ed25519.PrivateKey
	pub       ed25519.PublicKey
	accessTTL time.Duration
}

func (s *Signer) Sign(subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}

	tk := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tk.Header["typ"] = "JWT"

	return tk.SignedString(s.priv)
}

func (s *Signer) Verify(rawToken string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	var claims jwt.RegisteredClaims
	if _, err := parser.ParseWithClaims(rawToken, &claims, func(_ *jwt.Token) (any, error) {
		return s.pub, nil
	}); err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

// NewSigner builds a Signer from a base64url encoded Ed25519 seed.
func NewSigner(issuer, encodedSeed string, accessTTL time.Duration) (*Signer, error) {
	seed, err := base64.RawURLEncoding.DecodeString(encodedSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{
		issuer:    issuer,
		priv:      priv,
		pub:       priv.Public().(ed25519.PublicKey),
		accessTTL: accessTTL,
	}, nil
}
