package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"lens-backend/internal/models"
	"lens-backend/internal/services"
	"lens-backend/internal/store"
)

// Locals keys set by the auth middlewares.
const (
	LocalUserID   = "user_id"
	LocalUserName = "user_name"
)

// SessionCookie carries the JWT for browser clients.
const SessionCookie = "session"

// tokenFromRequest looks in the session cookie, the Authorization header
// and the `access_token` query (used by the websocket handshake).
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return c.Query("access_token")
}

// AuthRequired rejects requests without a valid session token.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
		}
		userID, fullName, err := services.ParseToken(secret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalUserName, fullName)
		return c.Next()
	}
}

// OptionalAuth records the identity when a valid token is present and
// lets the request through either way. Public pages use it to tailor
// is_saved / is_connected flags.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := tokenFromRequest(c); token != "" {
			if userID, fullName, err := services.ParseToken(secret, token); err == nil {
				c.Locals(LocalUserID, userID)
				c.Locals(LocalUserName, fullName)
			}
		}
		return c.Next()
	}
}

// currentUserID returns the authenticated user's ID, or "" on public
// routes with no session.
func currentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalUserID).(string); ok {
		return id
	}
	return ""
}

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(72 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// LoginPageHandler redirects signed-in users straight to the dashboard.
func LoginPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) != "" {
			return c.Redirect("/dashboard")
		}
		return c.JSON(fiber.Map{"page": "login"})
	}
}

// LoginHandler multiplexes registration and login on the form's `action`
// field, the way the login page submits both.
func LoginHandler(userService *services.UserService, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.FormValue("action") {
		case "register":
			var req models.RegisterRequest
			if err := c.BodyParser(&req); err != nil {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
			}
			user, err := userService.Register(c.Context(), req)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrFieldsRequired),
					errors.Is(err, services.ErrPasswordTooShort),
					errors.Is(err, services.ErrEmailTaken):
					return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
				default:
					return err
				}
			}
			return establishSession(c, user, secret)

		case "login":
			var req models.LoginRequest
			if err := c.BodyParser(&req); err != nil {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
			}
			user, err := userService.Login(c.Context(), req)
			if err != nil {
				if errors.Is(err, services.ErrInvalidCredentials) {
					return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
				}
				return err
			}
			return establishSession(c, user, secret)

		default:
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
	}
}

func establishSession(c *fiber.Ctx, user *models.User, secret string) error {
	token, err := services.GenerateToken(secret, user.ID, user.FullName)
	if err != nil {
		return err
	}
	setSessionCookie(c, token)
	return c.Redirect("/dashboard")
}

// LogoutHandler clears the session and sends the user home.
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.ClearCookie(SessionCookie)
		return c.Redirect("/")
	}
}

// notFoundIfMissing maps store.ErrNotFound to the 404 page and passes
// everything else through.
func notFoundIfMissing(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.ErrNotFound
	}
	return err
}
