package discussionValidator

import (
	"strconv"
	"strings"

	"classroom/middleware"
	"classroom/models"

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

// Create validates the multipart form for a new discussion. Teacher
// discussions stand alone, course discussions carry a course id.
func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := strings.TrimSpace(c.FormValue("title"))
		body := strings.TrimSpace(c.FormValue("body"))
		kind := strings.TrimSpace(c.FormValue("kind"))
		courseIDStr := strings.TrimSpace(c.FormValue("courseId"))

		errors := make(map[string]string)

		// Validate Title
		if title == "" {
			errors["title"] = "Title is required!"
		} else if len(title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Body
		if body == "" {
			errors["body"] = "Body is required!"
		}

		// Validate Kind
		var courseID *uint
		switch models.DiscussionKind(kind) {
		case models.DiscussionTeacher:
			if courseIDStr != "" {
				errors["courseId"] = "Course ID is not allowed for teacher discussions!"
			}
		case models.DiscussionCourse:
			if courseIDStr == "" {
				errors["courseId"] = "Course ID is required for course discussions!"
			} else {
				parsed, err := strconv.Atoi(courseIDStr)
				if err != nil || parsed <= 0 {
					errors["courseId"] = "Invalid Course ID!"
				} else {
					id := uint(parsed)
					courseID = &id
				}
			}
		default:
			errors["kind"] = "Kind must be teacher or course!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDiscussion", &struct {
			Title    string
			Body     string
			Kind     string
			CourseID *uint
		}{title, body, kind, courseID})
		return c.Next()
	}
}

// Comment validates a comment or reply body.
func Comment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Content string `json:"content"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Content) == "" {
			errors["content"] = "Content is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedComment", reqData)
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

func DiscussionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id", "Discussion ID")
		if err != nil {
			return err
		}
		c.Locals("discussionID", id)
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

func CommentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "commentId", "Comment ID")
		if err != nil {
			return err
		}
		c.Locals("commentID", id)
		return c.Next()
	}
}

func ReplyID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "replyId", "Reply ID")
		if err != nil {
			return err
		}
		c.Locals("replyID", id)
		return c.Next()
	}
}
