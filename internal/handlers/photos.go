package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/xid"

	"lens-backend/internal/imgproc"
	"lens-backend/internal/models"
	"lens-backend/internal/services"
)

// UploadPageHandler returns what the upload form needs.
func UploadPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"categories": services.ExploreCategories})
	}
}

// UploadHandler receives the multipart upload, writes it under a fresh
// collision-resistant name and hands it to the ingestion pipeline. A file
// that fails normalization is removed before the handler answers; no photo
// row exists for it.
func UploadHandler(photoService *services.PhotoService, uploadDir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "No file part"})
		}
		if fileHeader.Filename == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "No selected file"})
		}
		if !imgproc.Allowed(fileHeader.Filename) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Allowed file types are png, jpg, jpeg, gif, webp"})
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		filename := xid.New().String() + ext
		destPath := filepath.Join(uploadDir, filename)
		if err := c.SaveFile(fileHeader, destPath); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "failed to save file")
		}

		var meta models.PhotoUpload
		if err := c.BodyParser(&meta); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}

		if _, err := photoService.Ingest(c.Context(), currentUserID(c), meta, destPath); err != nil {
			if errors.Is(err, services.ErrCorruptUpload) {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return err
		}
		return c.Redirect("/dashboard")
	}
}

// PhotoHandler is the public detail page; every visit counts a view.
func PhotoHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := photoService.View(c.Context(), c.Params("photo_id"), currentUserID(c))
		if err != nil {
			return notFoundIfMissing(err)
		}
		return c.JSON(page)
	}
}

func LikeHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		likes, err := photoService.Like(c.Context(), c.Params("photo_id"))
		if err != nil {
			return notFoundIfMissing(err)
		}
		return c.JSON(fiber.Map{"status": "success", "new_likes": likes})
	}
}

func CommentHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		photoID := c.Params("photo_id")
		_, err := photoService.Comment(c.Context(), currentUserID(c), photoID, c.FormValue("content"))
		if err != nil {
			if errors.Is(err, services.ErrEmptyComment) {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return notFoundIfMissing(err)
		}
		return c.Redirect("/photo/" + photoID)
	}
}

func SaveHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action, err := photoService.ToggleSave(c.Context(), currentUserID(c), c.Params("photo_id"))
		if err != nil {
			return notFoundIfMissing(err)
		}
		return c.JSON(fiber.Map{"status": "success", "action": action})
	}
}

// DeletePhotoHandler removes a photo, its comments, its saved edges and
// its file. Only the owner may delete; anyone else gets 403 and nothing
// changes.
func DeletePhotoHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := photoService.Delete(c.Context(), currentUserID(c), c.Params("photo_id"))
		if err != nil {
			if errors.Is(err, services.ErrNotOwner) {
				return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
			}
			return notFoundIfMissing(err)
		}
		return c.Redirect("/dashboard")
	}
}

func FeedHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		photos, err := photoService.Feed(c.Context(), currentUserID(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"photos": photos})
	}
}

func ExploreHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := photoService.Explore(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(page)
	}
}

func DashboardHandler(photoService *services.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dashboard, err := photoService.Dashboard(c.Context(), currentUserID(c))
		if err != nil {
			return err
		}
		return c.JSON(dashboard)
	}
}
