package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docuforms/docuforms-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// newDiscoveryServer fakes the realm OIDC discovery endpoint
func newDiscoveryServer(t *testing.T, realm string) (*httptest.Server, string) {
	t.Helper()

	var issuer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realms/"+realm+"/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"issuer": %q}`, issuer)
	}))
	issuer = server.URL + "/realms/" + realm
	return server, issuer
}

func forgeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to forge token: %v", err)
	}
	return signed
}

// TestVerifyToken tests claim extraction from a well-formed token
func TestVerifyToken(t *testing.T) {
	server, issuer := newDiscoveryServer(t, "testrealm")
	defer server.Close()

	svc := NewKeycloakService(&config.Config{
		KeycloakURL:   server.URL,
		KeycloakRealm: "testrealm",
		AdminGroup:    "Admins",
	})

	token := forgeToken(t, jwt.MapClaims{
		"iss":                issuer,
		"sub":                "user-123",
		"preferred_username": "alice",
		"email":              "alice@example.com",
		"groups":             []string{"Admins", "Editors"},
		"exp":                time.Now().Add(time.Hour).Unix(),
	})

	identity, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if identity.ID != "user-123" || identity.Username != "alice" || identity.Email != "alice@example.com" {
		t.Errorf("Claims mangled: %+v", identity)
	}
	if len(identity.Groups) != 2 || identity.Groups[0] != "Admins" {
		t.Errorf("Groups mangled: %v", identity.Groups)
	}
}

// TestVerifyTokenIssuerMismatch tests rejection of foreign-issuer tokens
func TestVerifyTokenIssuerMismatch(t *testing.T) {
	server, _ := newDiscoveryServer(t, "testrealm")
	defer server.Close()

	svc := NewKeycloakService(&config.Config{
		KeycloakURL:   server.URL,
		KeycloakRealm: "testrealm",
	})

	token := forgeToken(t, jwt.MapClaims{
		"iss": "https://evil.example.com/realms/testrealm",
		"sub": "user-123",
	})

	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

// TestVerifyTokenMalformed tests rejection of non-JWT input
func TestVerifyTokenMalformed(t *testing.T) {
	server, _ := newDiscoveryServer(t, "testrealm")
	defer server.Close()

	svc := NewKeycloakService(&config.Config{
		KeycloakURL:   server.URL,
		KeycloakRealm: "testrealm",
	})

	if _, err := svc.VerifyToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

// TestVerifyTokenDefaults tests missing optional claims
func TestVerifyTokenDefaults(t *testing.T) {
	server, issuer := newDiscoveryServer(t, "testrealm")
	defer server.Close()

	svc := NewKeycloakService(&config.Config{
		KeycloakURL:   server.URL,
		KeycloakRealm: "testrealm",
	})

	token := forgeToken(t, jwt.MapClaims{
		"iss": issuer,
		"sub": "user-456",
	})

	identity, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if identity.Groups == nil || len(identity.Groups) != 0 {
		t.Errorf("Expected empty groups slice, got %v", identity.Groups)
	}

	// Missing subject is a hard failure
	noSub := forgeToken(t, jwt.MapClaims{"iss": issuer})
	if _, err := svc.VerifyToken(noSub); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for missing sub, got %v", err)
	}
}

// TestVerifyTokenProviderUnreachable tests failure when discovery is down
func TestVerifyTokenProviderUnreachable(t *testing.T) {
	svc := NewKeycloakService(&config.Config{
		KeycloakURL:   "http://127.0.0.1:1",
		KeycloakRealm: "testrealm",
	})

	if _, err := svc.VerifyToken("whatever"); err == nil {
		t.Error("Expected error when the identity provider is unreachable")
	}
}

// TestDevIdentity tests the synthetic bypass identity
func TestDevIdentity(t *testing.T) {
	svc := NewKeycloakService(&config.Config{AdminGroup: "Admins"})

	identity := svc.DevIdentity()
	if identity.ID == "" || identity.Username != "dev" {
		t.Errorf("Unexpected dev identity: %+v", identity)
	}
	if !IsAdmin(identity, "Admins") {
		t.Error("Dev identity should be in the admin group")
	}
}

// TestAuthorizationPredicates tests IsAdmin and IsOwner
func TestAuthorizationPredicates(t *testing.T) {
	admin := &Identity{ID: "a", Groups: []string{"Admins"}}
	user := &Identity{ID: "u", Groups: []string{"Editors"}}

	if !IsAdmin(admin, "Admins") {
		t.Error("Expected admin to be admin")
	}
	if IsAdmin(user, "Admins") {
		t.Error("Expected non-member to not be admin")
	}
	if IsAdmin(nil, "Admins") {
		t.Error("Expected nil identity to not be admin")
	}

	if !IsOwner(user, "u") {
		t.Error("Expected identity to own its own id")
	}
	if IsOwner(user, "a") {
		t.Error("Expected identity to not own a different id")
	}
	if IsOwner(&Identity{}, "") {
		t.Error("Empty ids never establish ownership")
	}
}
