package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ForgeToken builds an unsigned JWT carrying the claims the service reads.
// The verifier checks issuer and claim shape, not the signature, so unsigned
// tokens are enough for tests.
func ForgeToken(t *testing.T, issuer, sub, username string, groups []string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss":                issuer,
		"sub":                sub,
		"preferred_username": username,
		"email":              username + "@example.com",
		"groups":             groups,
		"iat":                time.Now().Unix(),
		"exp":                time.Now().Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to forge token: %v", err)
	}
	return signed
}

// RandomUserID returns a unique identity-provider style subject id
func RandomUserID() string {
	return uuid.New().String()
}
