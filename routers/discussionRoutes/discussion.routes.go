package discussionRoutes

import (
	controllers "classroom/controllers/discussion"
	"classroom/middleware"
	validators "classroom/validators/discussion"

	"github.com/gofiber/fiber/v2"
)

// SetupDiscussionRoutes sets up all discussion board routes
func SetupDiscussionRoutes(app *fiber.App, auth fiber.Handler, ctl *controllers.DiscussionController) {
	group := app.Group("/discussion")

	// Creation and feeds
	group.Post("/create", auth, middleware.RequireTeacher(), validators.Create(), ctl.Create)
	group.Get("/teacher", auth, middleware.RequireTeacher(), validators.ListQuery(), ctl.TeacherFeed)
	group.Get("/course/:courseId", auth, validators.CourseID(), validators.ListQuery(), ctl.CourseFeed)

	// Detail and removal
	group.Get("/:id", auth, validators.DiscussionID(), ctl.Get)
	group.Delete("/:id", auth, validators.DiscussionID(), ctl.Delete)

	// Comments and replies
	group.Post("/:id/comment", auth, validators.DiscussionID(), validators.Comment(), ctl.Comment)
	group.Post("/comment/:commentId/reply", auth, validators.CommentID(), validators.Comment(), ctl.Reply)
	group.Delete("/comment/:commentId", auth, validators.CommentID(), ctl.DeleteComment)
	group.Delete("/reply/:replyId", auth, validators.ReplyID(), ctl.DeleteReply)
}
