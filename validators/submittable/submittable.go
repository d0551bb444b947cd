package submittableValidator

import (
	"strconv"
	"strings"
	"time"

	"classroom/middleware"

	"github.com/gofiber/fiber/v2"
)

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

// Create validates the multipart form for a new assignment or activity.
// Attachment files are read by the controller from the same form.
func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := strings.TrimSpace(c.FormValue("title"))
		description := strings.TrimSpace(c.FormValue("description"))
		dueDateStr := strings.TrimSpace(c.FormValue("dueDate"))
		totalPointsStr := strings.TrimSpace(c.FormValue("totalPoints"))

		errors := make(map[string]string)

		// Validate Title
		if title == "" {
			errors["title"] = "Title is required!"
		} else if len(title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if description == "" {
			errors["description"] = "Description is required!"
		}

		// Validate DueDate
		var dueDate time.Time
		if dueDateStr == "" {
			errors["dueDate"] = "Due date is required!"
		} else {
			parsed, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				errors["dueDate"] = "Due date must be in RFC3339 format!"
			} else {
				dueDate = parsed
			}
		}

		// Validate TotalPoints, default 100 when omitted
		totalPoints := 100
		if totalPointsStr != "" {
			parsed, err := strconv.Atoi(totalPointsStr)
			if err != nil || parsed <= 0 {
				errors["totalPoints"] = "Total points must be a positive number!"
			} else {
				totalPoints = parsed
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubmittable", &struct {
			Title       string
			Description string
			DueDate     time.Time
			TotalPoints uint
		}{title, description, dueDate, uint(totalPoints)})
		return c.Next()
	}
}

func Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			DueDate     string `json:"dueDate"`
			TotalPoints *uint  `json:"totalPoints"`
			IsActive    *bool  `json:"isActive"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != "" && len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		var dueDate *time.Time
		if reqData.DueDate != "" {
			parsed, err := time.Parse(time.RFC3339, reqData.DueDate)
			if err != nil {
				errors["dueDate"] = "Due date must be in RFC3339 format!"
			} else {
				dueDate = &parsed
			}
		}

		if reqData.TotalPoints != nil && *reqData.TotalPoints == 0 {
			errors["totalPoints"] = "Total points must be a positive number!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubmittableUpdate", &struct {
			Title       string
			Description string
			DueDate     *time.Time
			TotalPoints *uint
			IsActive    *bool
		}{reqData.Title, reqData.Description, dueDate, reqData.TotalPoints, reqData.IsActive})
		return c.Next()
	}
}

// Grade validates the grading request body. The upper bound depends on
// the assignment's total points and is checked by the controller.
func Grade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Grade    *float64 `json:"grade"`
			Feedback string   `json:"feedback"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Grade == nil {
			errors["grade"] = "Grade is required!"
		} else if *reqData.Grade < 0 {
			errors["grade"] = "Grade cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrade", reqData)
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
		id, err := parseIDParam(c, "courseId", "Course ID")
		if err != nil {
			return err
		}
		c.Locals("courseID", id)
		return c.Next()
	}
}

func SubmittableID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id", "ID")
		if err != nil {
			return err
		}
		c.Locals("submittableID", id)
		return c.Next()
	}
}

func AttachmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "attachmentId", "Attachment ID")
		if err != nil {
			return err
		}
		c.Locals("attachmentID", id)
		return c.Next()
	}
}

func SubmissionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "submissionId", "Submission ID")
		if err != nil {
			return err
		}
		c.Locals("submissionID", id)
		return c.Next()
	}
}
