package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/docuforms/docuforms-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified representation of the calling user. It is derived
// per request from the identity provider token and never persisted.
type Identity struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Groups   []string `json:"groups"`
}

// KeycloakService verifies bearer tokens against a Keycloak realm. One
// instance is constructed at startup and shared by all request handlers.
type KeycloakService struct {
	cfg    *config.Config
	client *http.Client

	mu     sync.Mutex
	issuer string
}

// NewKeycloakService creates a KeycloakService from configuration.
func NewKeycloakService(cfg *config.Config) *KeycloakService {
	return &KeycloakService{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *KeycloakService) realmURL() string {
	return fmt.Sprintf("%s/realms/%s", strings.TrimSuffix(s.cfg.KeycloakURL, "/"), s.cfg.KeycloakRealm)
}

// Issuer returns the realm issuer from the OIDC discovery document, cached
// after the first successful fetch.
func (s *KeycloakService) Issuer() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.issuer != "" {
		return s.issuer, nil
	}

	resp, err := s.client.Get(s.realmURL() + "/.well-known/openid-configuration")
	if err != nil {
		return "", fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity provider discovery returned status %d", resp.StatusCode)
	}

	var discovery struct {
		Issuer string `json:"issuer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&discovery); err != nil {
		return "", fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if discovery.Issuer == "" {
		return "", fmt.Errorf("discovery document has no issuer")
	}

	s.issuer = discovery.Issuer
	return s.issuer, nil
}

// VerifyToken decodes the bearer token claims, checks the issuer against the
// realm discovery document, and builds the caller Identity.
//
// TODO: validate the token signature against the realm JWKS and check exp
// before trusting the claims.
func (s *KeycloakService) VerifyToken(token string) (*Identity, error) {
	issuer, err := s.Issuer()
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	iss, err := claims.GetIssuer()
	if err != nil || iss != issuer {
		return nil, fmt.Errorf("%w: invalid token issuer", ErrInvalidToken)
	}

	identity := &Identity{Groups: []string{}}
	if sub, ok := claims["sub"].(string); ok {
		identity.ID = sub
	}
	if username, ok := claims["preferred_username"].(string); ok {
		identity.Username = username
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if groups, ok := claims["groups"].([]interface{}); ok {
		for _, g := range groups {
			if name, ok := g.(string); ok {
				identity.Groups = append(identity.Groups, name)
			}
		}
	}

	if identity.ID == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}

	return identity, nil
}

// DevIdentity is the fixed synthetic identity returned by the development
// bypass. It is privileged so local tooling can exercise admin routes.
func (s *KeycloakService) DevIdentity() *Identity {
	return &Identity{
		ID:       "00000000-0000-0000-0000-000000000000",
		Username: "dev",
		Email:    "dev@localhost",
		Groups:   []string{s.cfg.AdminGroup},
	}
}
