package courseRoutes

import (
	controllers "classroom/controllers/course"
	"classroom/middleware"
	validators "classroom/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all course and enrollment routes
func SetupCourseRoutes(app *fiber.App, auth fiber.Handler, ctl *controllers.CourseController) {
	courseGroup := app.Group("/course")

	// Course CRUD
	courseGroup.Post("/create", auth, middleware.RequireTeacher(), validators.CreateCourse(), ctl.CreateCourse)
	courseGroup.Get("/mine", auth, middleware.RequireTeacher(), validators.ListQuery(), ctl.MyCourses)
	courseGroup.Get("/enrolled", auth, middleware.RequireStudent(), validators.ListQuery(), ctl.EnrolledCourses)
	courseGroup.Get("/:id", auth, validators.CourseID(), ctl.GetCourse)
	courseGroup.Put("/:id", auth, middleware.RequireTeacher(), validators.CourseID(), validators.UpdateCourse(), ctl.UpdateCourse)
	courseGroup.Delete("/:id", auth, middleware.RequireTeacher(), validators.CourseID(), ctl.DeleteCourse)

	// Enrollment
	courseGroup.Post("/:id/enroll", auth, middleware.RequireStudent(), validators.CourseID(), ctl.EnrollInCourse)
	courseGroup.Get("/:id/students", auth, middleware.RequireTeacher(), validators.CourseID(), ctl.CourseStudents)
}
