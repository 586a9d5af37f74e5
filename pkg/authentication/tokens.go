// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Cookie names used by browser clients. API clients use the Authorization
// header instead.
const (
	AccessTokenCookie  = "ps_access"
	RefreshTokenCookie = "ps_refresh"
)

const opaqueTokenBytes = 32

// GenerateOpaqueToken returns a random opaque token, base64url without padding.
func GenerateOpaqueToken() (string, error) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns sha256(token) in base64url without padding. Only the hash
// is ever persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
