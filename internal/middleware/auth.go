package middleware

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"cvgate/internal/db"
	"cvgate/internal/models"
)

// AuthMiddleware handles admin-console authentication via sessions.
type AuthMiddleware struct {
	db *db.DB
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(database *db.DB) *AuthMiddleware {
	return &AuthMiddleware{db: database}
}

// RequireAuth ensures the user is authenticated, redirecting to /login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user := m.sessionUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	c.Locals("user", user)
	return c.Next()
}

// RequireAdmin ensures the user is authenticated and holds the admin role.
// The role check runs server-side on every request; it cannot be skipped by
// anything the client sends.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	user := m.sessionUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	if !user.IsAdmin() {
		log.Printf("Forbidden: user %s (%s) attempted an admin action", user.Sub, user.Email)
		return fiber.NewError(fiber.StatusForbidden, "admin access required")
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require it.
// JSON handlers behind this middleware do their own 401/403 checks.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := m.sessionUser(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

// sessionUser resolves the session's subject to a user with roles, or nil.
func (m *AuthMiddleware) sessionUser(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}

	userSub := sess.Get("user_sub")
	if userSub == nil {
		return nil
	}

	sub, ok := userSub.(string)
	if !ok {
		return nil
	}

	user, err := m.db.GetUserBySub(c.Context(), sub)
	if err != nil {
		sess.Destroy()
		return nil
	}
	return user
}

// UserFromContext returns the authenticated user stored by the middleware,
// or nil when the request is anonymous.
func UserFromContext(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
