package middleware_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/docuforms/docuforms-api/internal/config"
	"github.com/docuforms/docuforms-api/internal/middleware"
	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/types"
	"github.com/gofiber/fiber/v2"
)

// stubVerifier resolves a fixed token to a fixed identity
type stubVerifier struct {
	token    string
	identity *services.Identity
}

func (s *stubVerifier) VerifyToken(token string) (*services.Identity, error) {
	if token == s.token {
		return s.identity, nil
	}
	return nil, services.ErrInvalidToken
}

func (s *stubVerifier) DevIdentity() *services.Identity {
	return &services.Identity{ID: "dev-id", Username: "dev", Groups: []string{"Admins"}}
}

func newAuthTestApp(cfg *config.Config, verifier middleware.TokenVerifier) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var custom *types.CustomError
			if errors.As(err, &custom) {
				return c.Status(custom.Code).JSON(fiber.Map{"message": custom.Message, "type": custom.Type})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		},
	})
	app.Get("/protected", middleware.Auth(cfg, verifier), func(c *fiber.Ctx) error {
		return c.JSON(middleware.Identity(c))
	})
	app.Get("/admin", middleware.Auth(cfg, verifier), middleware.RequireAdmin(cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

// TestAuthBearerToken tests the happy path
func TestAuthBearerToken(t *testing.T) {
	verifier := &stubVerifier{
		token:    "good-token",
		identity: &services.Identity{ID: "user-1", Username: "alice", Groups: []string{}},
	}
	app := newAuthTestApp(&config.Config{AdminGroup: "Admins"}, verifier)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

// TestAuthMissingAndBadTokens tests the 401 paths
func TestAuthMissingAndBadTokens(t *testing.T) {
	verifier := &stubVerifier{token: "good-token", identity: &services.Identity{ID: "user-1"}}
	app := newAuthTestApp(&config.Config{AdminGroup: "Admins"}, verifier)

	cases := map[string]string{
		"no header":     "",
		"not bearer":    "Basic abc",
		"empty bearer":  "Bearer ",
		"invalid token": "Bearer bad-token",
	}
	for name, header := range cases {
		req := httptest.NewRequest("GET", "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: failed to execute request: %v", name, err)
		}
		if resp.StatusCode != 401 {
			t.Errorf("%s: expected status 401, got %d", name, resp.StatusCode)
		}
	}
}

// TestAuthDevBypass tests the development bypass header gating
func TestAuthDevBypass(t *testing.T) {
	verifier := &stubVerifier{token: "good-token", identity: &services.Identity{ID: "user-1"}}

	// Bypass enabled: truthy header authenticates as the synthetic admin
	app := newAuthTestApp(&config.Config{AdminGroup: "Admins", DevAuthBypass: true}, verifier)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set(middleware.DevBypassHeader, "1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 with bypass, got %d", resp.StatusCode)
	}

	// Falsy header values do not bypass
	for _, value := range []string{"0", "false", "no"} {
		req = httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(middleware.DevBypassHeader, value)
		resp, err = app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		if resp.StatusCode != 401 {
			t.Errorf("Header %q: expected status 401, got %d", value, resp.StatusCode)
		}
	}

	// Bypass disabled in config: the header is inert
	app = newAuthTestApp(&config.Config{AdminGroup: "Admins", DevAuthBypass: false}, verifier)
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(middleware.DevBypassHeader, "1")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("Expected status 401 with bypass disabled, got %d", resp.StatusCode)
	}
}

// TestRequireAdmin tests the admin gate after authentication
func TestRequireAdmin(t *testing.T) {
	verifier := &stubVerifier{
		token:    "user-token",
		identity: &services.Identity{ID: "user-1", Groups: []string{"Editors"}},
	}
	app := newAuthTestApp(&config.Config{AdminGroup: "Admins"}, verifier)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("Expected status 403 for non-admin, got %d", resp.StatusCode)
	}

	verifier.identity.Groups = []string{"Admins"}
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 for admin, got %d", resp.StatusCode)
	}
}
