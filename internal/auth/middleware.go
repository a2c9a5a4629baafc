package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/domain"
)

const (
	identityKey = "auth_identity"

	// CookieName carries the credential for browser clients.
	CookieName = "jwt"

	loggedOutValue = "loggedout"
)

// TokenFromRequest returns the bearer credential, preferring the Authorization header
// over the cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		if token, found := strings.CutPrefix(header, "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}
	if cookie := c.Cookies(CookieName); cookie != "" && cookie != loggedOutValue {
		return cookie
	}
	return ""
}

// Protect rejects the request unless it carries a valid credential.
func (g *Gate) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := g.Verify(c.UserContext(), TokenFromRequest(c))
		if err != nil {
			return err
		}
		c.Locals(identityKey, user)
		return c.Next()
	}
}

// IsLoggedIn attaches the identity when one can be resolved and never fails.
func (g *Gate) IsLoggedIn() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user := g.OptionalIdentity(c.UserContext(), TokenFromRequest(c)); user != nil {
			c.Locals(identityKey, user)
		}
		return c.Next()
	}
}

// NoCache tells clients and intermediaries not to store the response.
func NoCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return c.Next()
	}
}

// IdentityFromContext retrieves the authenticated user.
func IdentityFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(identityKey).(*domain.User)
	return user, ok && user != nil
}

// SetCredentialCookie stores cred in an HTTP-only cookie.
func SetCredentialCookie(c *fiber.Ctx, cred domain.Credential, ttl time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    cred.Token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCredentialCookie overwrites the credential with a short-lived placeholder.
func ClearCredentialCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    loggedOutValue,
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
