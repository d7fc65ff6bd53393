package loader

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/oakwood-commons/treepick/pkg/tree"
)

func jwtParts(input string) []string {
	input = strings.TrimSpace(strings.TrimPrefix(input, "Bearer "))
	return strings.Split(input, ".")
}

func decodeJWTSegment(part string) (*tree.Object, error) {
	raw, err := base64.RawURLEncoding.DecodeString(part)
	if err != nil {
		return nil, err
	}
	v, err := DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*tree.Object)
	if !ok {
		return nil, fmt.Errorf("segment is not a JSON object")
	}
	return obj, nil
}

// IsJWT reports whether input looks like a JWT: three non-empty base64url
// parts, the first two decoding to JSON objects.
func IsJWT(input string) bool {
	parts := jwtParts(input)
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" || strings.ContainsAny(part, " \n\t") {
			return false
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := decodeJWTSegment(parts[i]); err != nil {
			return false
		}
	}
	_, err := base64.RawURLEncoding.DecodeString(parts[2])
	return err == nil
}

// DecodeJWT splits a token into header, payload, and the raw signature.
func DecodeJWT(input string) (*tree.Object, error) {
	parts := jwtParts(input)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWT: expected 3 parts, got %d", len(parts))
	}
	header, err := decodeJWTSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid JWT header: %w", err)
	}
	payload, err := decodeJWTSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid JWT payload: %w", err)
	}
	// the signature is binary, so it stays base64url text
	return tree.ObjectOf(
		"header", header,
		"payload", payload,
		"signature", parts[2],
	), nil
}

func loadJWT(input string) ([]any, error) {
	decoded, err := DecodeJWT(input)
	if err != nil {
		return nil, err
	}
	return []any{decoded}, nil
}
