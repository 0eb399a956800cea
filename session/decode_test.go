package session_test

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-bidagri-client/session"
	"github.com/jrsteele09/go-bidagri-client/session/sessiontest"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	raw := sessiontest.Credential(t, sessiontest.Claims("u1", []string{"SYSTEM_USER"}, exp))

	claims, err := session.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject())
	require.Equal(t, "u1@example.com", claims.Email())
	require.True(t, claims.Roles().HasAny("SYSTEM_USER"))

	got, ok, err := claims.ExpiresAt()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Equal(exp))
}

func TestDecode_Deterministic(t *testing.T) {
	raw := sessiontest.Credential(t, jwtlib.MapClaims{"sub": "u1", "roles": []string{"TENANT_ADMIN"}})

	first, err := session.Decode(raw)
	require.NoError(t, err)
	second, err := session.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecode_Gzip(t *testing.T) {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"sub": "g1"}).SignedString([]byte("k"))
	require.NoError(t, err)

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err = w.Write([]byte(signed))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	claims, err := session.Decode(base64.StdEncoding.EncodeToString(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "g1", claims.Subject())
}

func TestDecode_Unpadded(t *testing.T) {
	raw := sessiontest.Credential(t, jwtlib.MapClaims{"sub": "u1"})
	unpadded := base64.RawStdEncoding.EncodeToString(mustDecode(t, raw))

	claims, err := session.Decode(unpadded)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject())
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		stage session.DecodeStage
	}{
		{"empty", "   ", session.StageInput},
		{"not base64", "%%%not-base64%%%", session.StageBase64},
		{"not compressed", base64.StdEncoding.EncodeToString([]byte("plain text")), session.StageInflate},
		{"compressed non-jwt", sessiontest.Compress(t, "hello world"), session.StageJWT},
		{"compressed bad payload", sessiontest.Compress(t, "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"), session.StageJWT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := session.Decode(tt.raw)
			require.Nil(t, claims)
			require.ErrorIs(t, err, session.ErrInvalidToken)

			var decodeErr *session.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			require.Equal(t, tt.stage, decodeErr.Stage)
		})
	}
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}
