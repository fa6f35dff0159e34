// Package auth mints and verifies the stateless admin access tokens.
// A token is base64url(claims JSON) + "." + base64url(HMAC-SHA256);
// there is exactly one verification path, used on every protected
// request.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

var encoding = base64.RawURLEncoding

// Claims identifies the authenticated admin.
type Claims struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
	JTI      string `json:"jti"`
	Exp      int64  `json:"exp"`
}

func (c Claims) complete() bool {
	return c.Sub != "" && c.Username != "" && c.JTI != "" && c.Exp != 0
}

func IssueToken(secret []byte, claims Claims) (string, error) {
	body, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	payload := encoding.EncodeToString(body)
	return payload + "." + encoding.EncodeToString(signature(secret, payload)), nil
}

func ParseToken(secret []byte, token string) (Claims, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || strings.Contains(sig, ".") {
		return Claims{}, ErrInvalidToken
	}

	given, err := encoding.DecodeString(sig)
	if err != nil || !hmac.Equal(given, signature(secret, payload)) {
		return Claims{}, ErrInvalidToken
	}

	body, err := encoding.DecodeString(payload)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(body, &claims); err != nil || !claims.complete() {
		return Claims{}, ErrInvalidToken
	}
	if time.Now().Unix() >= claims.Exp {
		return Claims{}, ErrExpiredToken
	}
	return claims, nil
}

func signature(secret []byte, payload string) []byte {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(payload))
	return mac.Sum(nil)
}
