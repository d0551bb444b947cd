package announcementValidator

import (
	"strconv"
	"strings"

	"classroom/middleware"

	"github.com/gofiber/fiber/v2"
)

// Create validates the multipart form for a new announcement. The
// optional image file is read by the controller from the same form.
func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := strings.TrimSpace(c.FormValue("title"))
		content := strings.TrimSpace(c.FormValue("content"))

		errors := make(map[string]string)

		// Validate Title
		if title == "" {
			errors["title"] = "Title is required!"
		} else if len(title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Content
		if content == "" {
			errors["content"] = "Content is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAnnouncement", &struct {
			Title   string
			Content string
		}{title, content})
		return c.Next()
	}
}

func Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := strings.TrimSpace(c.FormValue("title"))
		content := strings.TrimSpace(c.FormValue("content"))

		errors := make(map[string]string)

		if title != "" && len(title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAnnouncementUpdate", &struct {
			Title   string
			Content string
		}{title, content})
		return c.Next()
	}
}

func ListQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		// Validate Page
		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		// Validate Limit
		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params("courseId"))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", id)
		return c.Next()
	}
}

func AnnouncementID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params("id"))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Announcement ID is required!", nil)
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Announcement ID!", nil)
		}
		c.Locals("announcementID", id)
		return c.Next()
	}
}
