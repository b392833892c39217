package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/openvoice/feedback-service/pkg/util"
)

const tokenKey = "auth_token"

// Middleware gates admin routes behind the session abstraction.
type Middleware struct {
	session Session
}

// NewMiddleware constructs the gate.
func NewMiddleware(session Session) *Middleware {
	return &Middleware{session: session}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" || !m.session.IsAuthenticated(token) {
		return apperrors.NewUnauthorized("invalid or expired session")
	}
	c.Locals(tokenKey, token)
	return c.Next()
}

// TokenFromContext returns the bearer token stored by Handle.
func TokenFromContext(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(tokenKey).(string)
	return token, ok && token != ""
}
