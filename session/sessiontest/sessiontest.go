// Package sessiontest mints credentials shaped like the ones the backend
// issues at login: an HS256 JWT, zlib-compressed, base64-encoded.
package sessiontest

import (
	"bytes"
	"encoding/base64"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

const signingSecret = "1234"

// Claims builds the claims of a user session expiring at exp. A zero exp
// leaves the claim out.
func Claims(sub string, roles []string, exp time.Time) jwtlib.MapClaims {
	claims := jwtlib.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"iat":   time.Now().Unix(),
	}
	if roles != nil {
		claims["roles"] = roles
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	return claims
}

// Credential signs claims and returns the compressed, encoded credential.
func Credential(t require.TestingT, claims jwtlib.MapClaims) string {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
	require.NoError(t, err)
	return Compress(t, signed)
}

// Compress deflates any string and base64-encodes it, for building both
// valid credentials and payloads that inflate to something that is not a JWT.
func Compress(t require.TestingT, payload string) string {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
