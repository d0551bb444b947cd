package syllabusRoutes

import (
	controllers "classroom/controllers/syllabus"
	"classroom/middleware"
	validators "classroom/validators/syllabus"

	"github.com/gofiber/fiber/v2"
)

// SetupSyllabusRoutes sets up all syllabus module and item routes
func SetupSyllabusRoutes(app *fiber.App, auth fiber.Handler, ctl *controllers.SyllabusController) {
	group := app.Group("/syllabus")

	// Module management
	group.Post("/course/:courseId/module", auth, middleware.RequireTeacher(), validators.CourseID(), validators.CreateModule(), ctl.CreateModule)
	group.Get("/course/:courseId/modules", auth, validators.CourseID(), ctl.ListModules)
	group.Put("/module/:moduleId", auth, middleware.RequireTeacher(), validators.ModuleID(), validators.UpdateModule(), ctl.UpdateModule)
	group.Delete("/module/:moduleId", auth, middleware.RequireTeacher(), validators.ModuleID(), ctl.DeleteModule)

	// Item management
	group.Post("/module/:moduleId/item", auth, middleware.RequireTeacher(), validators.ModuleID(), validators.AddItem(), ctl.AddItem)
	group.Delete("/item/:itemId", auth, middleware.RequireTeacher(), validators.ItemID(), ctl.RemoveItem)
}
