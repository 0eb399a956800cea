package session

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// maxInflatedSize caps the decompressed credential.
const maxInflatedSize = 1 << 20

// Decode turns an issued credential into claims. The credential is the
// base64 encoding of a zlib (or gzip) compressed JWT; the JWT payload is
// read without signature verification, the backend being the verifier.
// Decode is pure: it touches no storage. Every failure is a *DecodeError.
func Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &DecodeError{Stage: StageInput, Err: errors.New("no credential provided")}
	}

	compressed, err := decodeBase64(raw)
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Err: err}
	}

	inflated, err := inflate(compressed)
	if err != nil {
		return nil, &DecodeError{Stage: StageInflate, Err: err}
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(strings.TrimSpace(string(inflated)), jwtlib.MapClaims{})
	if err != nil {
		return nil, &DecodeError{Stage: StageJWT, Err: err}
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || mapClaims == nil {
		return nil, &DecodeError{Stage: StageJWT, Err: errors.New("error extracting claims")}
	}
	return Claims(mapClaims), nil
}

func decodeBase64(raw string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "=")); rawErr == nil {
		return data, nil
	}
	return nil, err
}

func inflate(compressed []byte) ([]byte, error) {
	var (
		reader io.ReadCloser
		err    error
	)
	if len(compressed) >= 2 && compressed[0] == 0x1f && compressed[1] == 0x8b {
		reader, err = gzip.NewReader(bytes.NewReader(compressed))
	} else {
		reader, err = zlib.NewReader(bytes.NewReader(compressed))
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxInflatedSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxInflatedSize {
		return nil, fmt.Errorf("credential exceeds %d bytes when inflated", maxInflatedSize)
	}
	return data, nil
}
