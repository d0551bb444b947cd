package announcementRoutes

import (
	controllers "classroom/controllers/announcement"
	"classroom/middleware"
	validators "classroom/validators/announcement"

	"github.com/gofiber/fiber/v2"
)

// SetupAnnouncementRoutes sets up all announcement routes
func SetupAnnouncementRoutes(app *fiber.App, auth fiber.Handler, ctl *controllers.AnnouncementController) {
	group := app.Group("/announcement")

	group.Post("/course/:courseId", auth, middleware.RequireTeacher(), validators.CourseID(), validators.Create(), ctl.Create)
	group.Get("/course/:courseId", auth, validators.CourseID(), validators.ListQuery(), ctl.List)
	group.Get("/:id", auth, validators.AnnouncementID(), ctl.Get)
	group.Put("/:id", auth, middleware.RequireTeacher(), validators.AnnouncementID(), validators.Update(), ctl.Update)
	group.Delete("/:id", auth, middleware.RequireTeacher(), validators.AnnouncementID(), ctl.Delete)
}
