package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lens-backend/internal/imgproc"
	"lens-backend/internal/services"
)

func SearchHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		users, err := userService.Search(c.Context(), query)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"query": query, "users": users})
	}
}

func SettingsPageHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := userService.ByID(c.Context(), currentUserID(c))
		if err != nil {
			return notFoundIfMissing(err)
		}
		return c.JSON(user)
	}
}

// UpdateSettingsHandler updates name and bio, and optionally replaces the
// avatar. Avatars keep their original format; only portfolio uploads go
// through the normalization pipeline.
func UpdateSettingsHandler(userService *services.UserService, uploadDir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var avatarName string
		if fileHeader, err := c.FormFile("profile_image"); err == nil && fileHeader.Filename != "" {
			if !imgproc.Allowed(fileHeader.Filename) {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid image format for avatar. Allowed types are: png, jpg, jpeg, gif, webp, heic",
				})
			}
			suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
			avatarName = "avatar_" + suffix + "_" + filepath.Base(fileHeader.Filename)
			if err := c.SaveFile(fileHeader, filepath.Join(uploadDir, avatarName)); err != nil {
				return fiber.NewError(http.StatusInternalServerError, "failed to save avatar")
			}
		}

		_, err := userService.UpdateSettings(c.Context(), currentUserID(c),
			c.FormValue("full_name"), c.FormValue("bio"), avatarName)
		if err != nil {
			return err
		}
		return c.Redirect("/settings")
	}
}

// PortfolioHandler is a user's public page; is_connected reflects the
// signed-in viewer when there is one.
func PortfolioHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		portfolio, err := photoService.PortfolioFor(c.Context(), c.Params("user_id"), currentUserID(c))
		if err != nil {
			return notFoundIfMissing(err)
		}
		return c.JSON(portfolio)
	}
}

// ConnectHandler follows a user. Following yourself or someone you
// already follow changes nothing; both land back on the portfolio.
func ConnectHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID := c.Params("user_id")
		if err := userService.Connect(c.Context(), currentUserID(c), targetID); err != nil {
			return notFoundIfMissing(err)
		}
		return c.Redirect("/portfolio/" + targetID)
	}
}

func DisconnectHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID := c.Params("user_id")
		if err := userService.Disconnect(c.Context(), currentUserID(c), targetID); err != nil {
			return notFoundIfMissing(err)
		}
		return c.Redirect("/portfolio/" + targetID)
	}
}
