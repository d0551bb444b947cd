package submittableRoutes

import (
	controllers "classroom/controllers/submittable"
	"classroom/middleware"
	validators "classroom/validators/submittable"

	"github.com/gofiber/fiber/v2"
)

// SetupSubmittableRoutes mounts one submittable family under base. The same
// handler set serves assignments and activities; main mounts it once per kind.
func SetupSubmittableRoutes(app *fiber.App, base string, auth fiber.Handler, ctl *controllers.SubmittableController) {
	group := app.Group(base)

	// Creation and per-course listing
	group.Post("/course/:courseId", auth, middleware.RequireTeacher(), validators.CourseID(), validators.Create(), ctl.Create)
	group.Get("/course/:courseId", auth, validators.CourseID(), validators.ListQuery(), ctl.List)

	// Detail and lifecycle
	group.Get("/:id", auth, validators.SubmittableID(), ctl.Get)
	group.Put("/:id", auth, middleware.RequireTeacher(), validators.SubmittableID(), validators.Update(), ctl.Update)
	group.Delete("/:id", auth, middleware.RequireTeacher(), validators.SubmittableID(), ctl.Delete)

	// Attachments
	group.Post("/:id/attachment", auth, middleware.RequireTeacher(), validators.SubmittableID(), ctl.AddAttachment)
	group.Delete("/:id/attachment/:attachmentId", auth, middleware.RequireTeacher(), validators.SubmittableID(), validators.AttachmentID(), ctl.RemoveAttachment)

	// Submissions and grading
	group.Post("/:id/submit", auth, middleware.RequireStudent(), validators.SubmittableID(), ctl.Submit)
	group.Get("/:id/submissions", auth, middleware.RequireTeacher(), validators.SubmittableID(), ctl.Submissions)
	group.Post("/:id/submissions/:submissionId/grade", auth, middleware.RequireTeacher(), validators.SubmittableID(), validators.SubmissionID(), validators.Grade(), ctl.Grade)
}
