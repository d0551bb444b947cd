package syllabusValidator

import (
	"strconv"
	"strings"

	"classroom/middleware"
	"classroom/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func parseIDParam(c *fiber.Ctx, name, label string) (int, error) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
	}
	return id, nil
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ModuleNumber *int   `json:"moduleNumber"`
			Title        string `json:"title"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate ModuleNumber
		if reqData.ModuleNumber == nil || *reqData.ModuleNumber < 1 {
			errors["moduleNumber"] = "Module number must be greater than 0!"
		}

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ModuleNumber *int   `json:"moduleNumber"`
			Title        string `json:"title"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ModuleNumber != nil && *reqData.ModuleNumber < 1 {
			errors["moduleNumber"] = "Module number must be greater than 0!"
		}

		if reqData.ModuleNumber == nil && strings.TrimSpace(reqData.Title) == "" {
			errors["fields"] = "Nothing to update!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// AddItem validates the multipart form for a new syllabus item. The
// file for file items is read by the controller from the same form.
func AddItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemType := strings.TrimSpace(c.FormValue("itemType"))
		title := strings.TrimSpace(c.FormValue("title"))
		url := strings.TrimSpace(c.FormValue("url"))
		textContent := strings.TrimSpace(c.FormValue("textContent"))

		errors := make(map[string]string)

		// Validate Title
		if title == "" {
			errors["title"] = "Title is required!"
		}

		// Validate per item type
		switch itemType {
		case models.SyllabusItemFile:
			// File presence is checked by the controller.
		case models.SyllabusItemLink:
			if url == "" {
				errors["url"] = "URL is required!"
			} else if validate.Var(url, "url") != nil {
				errors["url"] = "Invalid URL!"
			}
		case models.SyllabusItemVideo:
			// A video is either an uploaded file or an external URL
			if url == "" {
				if _, err := c.FormFile("file"); err != nil {
					errors["url"] = "URL or video file is required!"
				}
			} else if validate.Var(url, "url") != nil {
				errors["url"] = "Invalid URL!"
			}
		case models.SyllabusItemText:
			if textContent == "" {
				errors["textContent"] = "Text content is required!"
			}
		default:
			errors["itemType"] = "Item type must be file, link, video or text!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedItem", &struct {
			ItemType    string
			Title       string
			URL         string
			TextContent string
		}{itemType, title, url, textContent})
		return c.Next()
	}
}

func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "courseId", "Course ID")
		if err != nil {
			return err
		}
		c.Locals("courseID", id)
		return c.Next()
	}
}

func ModuleID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "moduleId", "Module ID")
		if err != nil {
			return err
		}
		c.Locals("moduleID", id)
		return c.Next()
	}
}

func ItemID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "itemId", "Item ID")
		if err != nil {
			return err
		}
		c.Locals("itemID", id)
		return c.Next()
	}
}
